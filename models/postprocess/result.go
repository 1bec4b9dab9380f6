// Package postprocess - Postprocessing utilities for models.
package postprocess

import (
	"fmt"

	"github.com/nvr-ai/go-armor/images"
)

// Detection represents a single detected object.
type Detection struct {
	// The four corners of the object in original image coordinates.
	Points images.Quad `json:"points" yaml:"points"`
	// The decoded object confidence in [0, 1].
	Confidence float32 `json:"confidence" yaml:"confidence"`
	// The predicted color class index.
	Color int `json:"color" yaml:"color"`
	// The predicted tag class index.
	Tag int `json:"tag" yaml:"tag"`
	// The index of the anchor row the detection was decoded from.
	Row int `json:"row" yaml:"row"`
}

// Bounds returns the axis-aligned bounding box of the detection.
func (d Detection) Bounds() images.Rect {
	return d.Points.Bounds()
}

func (d Detection) String() string {
	b := d.Bounds()
	return fmt.Sprintf("Detection row=%d color=%d tag=%d (confidence %f): (%.2f, %.2f), (%.2f, %.2f)",
		d.Row, d.Color, d.Tag, d.Confidence, b.X1, b.Y1, b.X2, b.Y2)
}
