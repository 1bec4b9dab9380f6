package inference

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// ErrInvalidOutputShape is returned when an engine output tensor cannot be
// read as a list of anchor rows.
var ErrInvalidOutputShape = errors.New("invalid output tensor shape")

// RowsFromTensor validates an engine output tensor and exposes its rows.
//
// Accepted shapes are [N, S] and [1, N, S], where S is the row stride.
//
// Arguments:
//   - t: The engine output.
//   - minStride: The smallest acceptable row stride.
//
// Returns:
//   - []float32: The row-major backing data, N*S values.
//   - int: The row stride S.
//   - error: ErrInvalidOutputShape on a nil tensor, a non-float32 dtype, an
//     unsupported rank or a stride below minStride.
func RowsFromTensor(t tensor.Tensor, minStride int) ([]float32, int, error) {
	if t == nil {
		return nil, 0, errors.Wrap(ErrInvalidOutputShape, "tensor is nil")
	}
	if t.Dtype() != tensor.Float32 {
		return nil, 0, errors.Wrapf(ErrInvalidOutputShape, "dtype %v, want float32", t.Dtype())
	}

	shape := t.Shape()
	var rows, stride int
	switch {
	case len(shape) == 2:
		rows, stride = shape[0], shape[1]
	case len(shape) == 3 && shape[0] == 1:
		rows, stride = shape[1], shape[2]
	default:
		return nil, 0, errors.Wrapf(ErrInvalidOutputShape, "shape %v, want [N S] or [1 N S]", shape)
	}

	if stride < minStride {
		return nil, 0, errors.Wrapf(ErrInvalidOutputShape, "row stride %d is below %d", stride, minStride)
	}

	data, ok := t.Data().([]float32)
	if !ok {
		return nil, 0, errors.Wrapf(ErrInvalidOutputShape, "backing data is %T", t.Data())
	}
	if len(data) != rows*stride {
		return nil, 0, errors.Wrapf(ErrInvalidOutputShape, "%d values for shape %v", len(data), shape)
	}

	return data, stride, nil
}

// NewOutput wraps a row-major float32 buffer as a [1, rows, stride] tensor.
func NewOutput(data []float32, rows, stride int) tensor.Tensor {
	return tensor.New(tensor.WithShape(1, rows, stride), tensor.WithBacking(data))
}
