package armor

import (
	"github.com/chewxy/math32"
	"github.com/nvr-ai/go-armor/models/postprocess"
)

// DefaultConfidenceThreshold is the minimum object probability kept by the decoder.
const DefaultConfidenceThreshold float32 = 0.5

// Sigmoid maps a logit to a probability.
func Sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}

// InvSigmoid maps a probability in (0, 1) back to its logit.
func InvSigmoid(p float32) float32 {
	return -math32.Log(1/p - 1)
}

// ArgMax returns the index of the largest value. The first occurrence wins on
// ties. An empty slice returns 0.
func ArgMax(values []float32) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

// Decoder turns anchor rows into detections.
//
// The confidence threshold is compared in logit space so rejected rows never
// pay for the exponential.
type Decoder struct {
	threshold      float32
	logitThreshold float32
}

// NewDecoder creates a decoder that keeps rows whose probability exceeds threshold.
//
// Arguments:
//   - threshold: The confidence threshold in (0, 1).
//
// Returns:
//   - *Decoder: The decoder.
func NewDecoder(threshold float32) *Decoder {
	return &Decoder{
		threshold:      threshold,
		logitThreshold: InvSigmoid(threshold),
	}
}

// Threshold returns the confidence threshold in probability space.
func (d *Decoder) Threshold() float32 {
	return d.threshold
}

// Decode converts a row into a detection.
//
// Arguments:
//   - row: The anchor row.
//   - scale: The factor the image was resized by; corners are divided by it.
//
// Returns:
//   - postprocess.Detection: The decoded detection. Row is left at zero.
//   - bool: False if the row is below the confidence threshold.
func (d *Decoder) Decode(row Row, scale float32) (postprocess.Detection, bool) {
	logit := row.ConfidenceLogit()
	if !(logit > d.logitThreshold) {
		return postprocess.Detection{}, false
	}

	return postprocess.Detection{
		Points:     row.Quad().Scale(scale),
		Confidence: Sigmoid(logit),
		Color:      ArgMax(row.ColorLogits()),
		Tag:        ArgMax(row.TagLogits()),
	}, true
}

// Decode converts a row into a detection using a one-off threshold.
//
// Arguments:
//   - row: The anchor row.
//   - scale: The factor the image was resized by.
//   - threshold: The confidence threshold in (0, 1).
//
// Returns:
//   - postprocess.Detection: The decoded detection.
//   - bool: False if the row is below the confidence threshold.
func Decode(row Row, scale, threshold float32) (postprocess.Detection, bool) {
	return NewDecoder(threshold).Decode(row, scale)
}
