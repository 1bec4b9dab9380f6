// Package model - Model contract shared by detectors and the registry.
package model

import (
	"github.com/nvr-ai/go-armor/models/postprocess"
)

// Name is the unique identifier of a model.
type Name string

const (
	// ModelNameArmor is the name of the armor plate detector.
	ModelNameArmor Name = "armor"
)

// Options describes a constructed model.
type Options struct {
	Name                Name                  `json:"name" yaml:"name"`
	Path                string                `json:"path" yaml:"path"`
	ConfidenceThreshold float32               `json:"confidence_threshold" yaml:"confidence_threshold"`
	NMS                 postprocess.NMSConfig `json:"nms" yaml:"nms"`
	// RowSize is the minimum number of values per anchor row the model emits.
	RowSize int `json:"row_size" yaml:"row_size"`
}

// Model turns raw network output into detections.
type Model interface {
	Options() Options
	// PostProcess decodes output, a flat buffer of anchor rows each stride
	// values wide, into detections in original image coordinates.
	PostProcess(output []float32, stride int, scale float32) ([]postprocess.Detection, error)
}

// NewModelArgs is the arguments for creating a new model.
type NewModelArgs struct {
	Name Name   `json:"name" yaml:"name" validate:"required"`
	Path string `json:"path" yaml:"path"`
	// ConfidenceThreshold defaults to the model's own threshold when zero.
	ConfidenceThreshold float32 `json:"confidence_threshold" yaml:"confidence_threshold" validate:"gte=0,lt=1"`
	NMS                 postprocess.NMSConfig `json:"nms" yaml:"nms"`
}
