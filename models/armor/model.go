package armor

import (
	"github.com/nvr-ai/go-armor/models/model"
	"github.com/nvr-ai/go-armor/models/postprocess"
	"github.com/pkg/errors"
)

// Armor is the instance of the armor plate model.
type Armor struct {
	options model.Options
	decoder *Decoder
}

// NewModel creates a new armor model.
//
// Arguments:
//   - args: The arguments for creating a new model.
//
// Returns:
//   - *Armor: The model.
//   - error: An error if the confidence threshold is outside (0, 1).
func NewModel(args model.NewModelArgs) (*Armor, error) {
	threshold := args.ConfidenceThreshold
	if threshold == 0 {
		threshold = DefaultConfidenceThreshold
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, errors.Errorf("NewModel requires a confidence threshold in (0, 1), got %f", threshold)
	}

	return &Armor{
		options: model.Options{
			Name:                model.ModelNameArmor,
			Path:                args.Path,
			ConfidenceThreshold: threshold,
			NMS:                 args.NMS,
			RowSize:             RowSize,
		},
		decoder: NewDecoder(threshold),
	}, nil
}

// Options returns the options for the armor model.
func (m *Armor) Options() model.Options {
	return m.options
}

// PostProcess decodes raw anchor rows and removes duplicate detections.
//
// Rows above the confidence threshold are decoded in row order, sorted by
// descending confidence (ties keep row order) and passed through greedy NMS.
//
// Arguments:
//   - output: The raw model output, one anchor row every stride values.
//   - stride: The number of values per row. Must be at least RowSize.
//   - scale: The factor the image was resized by before inference.
//
// Returns:
//   - []postprocess.Detection: Surviving detections, highest confidence first.
//   - error: ErrInvalidInputShape if output does not hold whole rows.
func (m *Armor) PostProcess(output []float32, stride int, scale float32) ([]postprocess.Detection, error) {
	if stride < RowSize {
		return nil, errors.Wrapf(ErrInvalidInputShape, "stride %d is below row size %d", stride, RowSize)
	}
	if len(output)%stride != 0 {
		return nil, errors.Wrapf(ErrInvalidInputShape, "%d values do not divide into rows of %d", len(output), stride)
	}
	if !(scale > 0) {
		return nil, errors.Errorf("scale factor must be positive, got %f", scale)
	}

	numRows := len(output) / stride
	candidates := make([]postprocess.Detection, 0, numRows)

	for i := 0; i < numRows; i++ {
		row, err := NewRow(output[i*stride : (i+1)*stride])
		if err != nil {
			return nil, err
		}

		d, ok := m.decoder.Decode(row, scale)
		if !ok {
			continue
		}
		d.Row = i
		candidates = append(candidates, d)
	}

	postprocess.SortByConfidence(candidates)

	return postprocess.ApplyGreedyNMS(candidates, m.options.NMS), nil
}
