// Package armor - Armor plate detector: raw output layout, decoding and post-processing.
package armor

import (
	"github.com/nvr-ai/go-armor/images"
	"github.com/pkg/errors"
)

// ErrInvalidInputShape is returned when raw model output does not match the
// anchor row layout.
var ErrInvalidInputShape = errors.New("invalid input shape")

// Anchor row layout. Each row holds float32 values at these offsets.
const (
	// OffsetPoints is the first of 4 (x, y) corner pairs.
	OffsetPoints = 0
	// OffsetConfidence is the object confidence logit.
	OffsetConfidence = 8
	// OffsetColors is the first of NumColors color logits.
	OffsetColors = 9
	// OffsetTags is the first of NumTags tag logits.
	OffsetTags = OffsetColors + NumColors

	// NumPoints is the number of corners of a detection.
	NumPoints = 4
	// NumColors is the size of the color class set.
	NumColors = 4
	// NumTags is the size of the tag class set.
	NumTags = 7

	// RowSize is the minimum number of values in an anchor row.
	RowSize = OffsetTags + NumTags
)

// Row is a read-only view of one anchor row of raw model output.
type Row []float32

// NewRow validates that data is long enough to hold an anchor row.
//
// Arguments:
//   - data: The raw values for one anchor. Values past RowSize are ignored.
//
// Returns:
//   - Row: A view over data.
//   - error: ErrInvalidInputShape if data is shorter than RowSize.
func NewRow(data []float32) (Row, error) {
	if len(data) < RowSize {
		return nil, errors.Wrapf(ErrInvalidInputShape, "row has %d values, needs %d", len(data), RowSize)
	}
	return Row(data), nil
}

// Point returns corner i in resized-image coordinates.
func (r Row) Point(i int) images.Point {
	return images.Point{
		X: r[OffsetPoints+i*2],
		Y: r[OffsetPoints+i*2+1],
	}
}

// Quad returns all four corners in resized-image coordinates.
func (r Row) Quad() images.Quad {
	var q images.Quad
	for i := 0; i < NumPoints; i++ {
		q[i] = r.Point(i)
	}
	return q
}

// ConfidenceLogit returns the raw object confidence before the sigmoid.
func (r Row) ConfidenceLogit() float32 {
	return r[OffsetConfidence]
}

// ColorLogits returns the color class logits.
func (r Row) ColorLogits() []float32 {
	return r[OffsetColors : OffsetColors+NumColors]
}

// TagLogits returns the tag class logits.
func (r Row) TagLogits() []float32 {
	return r[OffsetTags : OffsetTags+NumTags]
}
