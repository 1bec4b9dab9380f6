// Package inference - Inference engine interface and implementations.
package inference

import (
	"context"
	"image"

	"github.com/go-playground/validator/v10"
	"github.com/nvr-ai/go-armor/inference/providers"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Engine runs the detection network on a single image that has already been
// resized to the model's input width.
type Engine interface {
	// Infer returns the raw output tensor, one anchor row per entry of the
	// second to last dimension.
	Infer(ctx context.Context, img image.Image) (tensor.Tensor, error)
	Close() error
}

// EngineType is the type of the engine.
type EngineType string

const (
	// EngineONNX is the ONNX engine that uses the onnxruntime library.
	EngineONNX EngineType = "onnx"
	// EngineOpenCV is the OpenCV DNN engine. It loads ONNX files as well as
	// OpenVINO IR (.xml + .bin) pairs.
	EngineOpenCV EngineType = "opencv"
)

// Engines is a list of all supported engines.
var Engines = []EngineType{EngineONNX, EngineOpenCV}

// Precision represents the numeric precision the engine runs at.
type Precision string

const (
	// PrecisionFP32 is 32-bit floating point.
	PrecisionFP32 Precision = "FP32"
	// PrecisionFP16 is 16-bit floating point.
	PrecisionFP16 Precision = "FP16"
)

// EngineConfig describes how to construct an engine.
type EngineConfig struct {
	// Type selects the implementation.
	Type EngineType `json:"type" yaml:"type" validate:"required,oneof=onnx opencv"`
	// ModelPath is the network file (.onnx or OpenVINO .xml).
	ModelPath string `json:"model_path" yaml:"model_path" validate:"required"`
	// WeightsPath is the OpenVINO .bin file. Unused for ONNX files.
	WeightsPath string `json:"weights_path" yaml:"weights_path"`
	// InputName is the ONNX input node name.
	InputName string `json:"input_name" yaml:"input_name"`
	// OutputName is the output node name.
	OutputName string `json:"output_name" yaml:"output_name"`
	// Precision selects the OpenCV DNN target.
	Precision Precision `json:"precision" yaml:"precision" validate:"omitempty,oneof=FP32 FP16"`
	// Threads is the intra-op thread count for ONNX Runtime. Zero uses the default.
	Threads int `json:"threads" yaml:"threads" validate:"gte=0"`
	// SharedLibraryPath overrides the onnxruntime library location.
	SharedLibraryPath string `json:"shared_library_path" yaml:"shared_library_path"`
	// Provider selects the ONNX Runtime execution provider.
	Provider providers.Config `json:"provider" yaml:"provider"`
}

// Validate checks the configuration fields.
func (c EngineConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid engine config")
	}
	return nil
}

// DefaultEngineConfig returns an ONNX Runtime configuration for the model at path.
func DefaultEngineConfig(path string) EngineConfig {
	return EngineConfig{
		Type:       EngineONNX,
		ModelPath:  path,
		InputName:  "input",
		OutputName: "output",
		Precision:  PrecisionFP32,
	}
}

// EngineBuilder builds an engine with a fluent API.
type EngineBuilder struct {
	config EngineConfig
	err    error
}

// NewEngineBuilder creates a new engine builder.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func NewEngineBuilder() *EngineBuilder {
	return &EngineBuilder{config: EngineConfig{Precision: PrecisionFP32}}
}

// WithConfig replaces the whole configuration.
func (b *EngineBuilder) WithConfig(cfg EngineConfig) *EngineBuilder {
	b.config = cfg
	return b
}

// WithType sets the engine implementation.
func (b *EngineBuilder) WithType(t EngineType) *EngineBuilder {
	if b.HasError() {
		return b
	}
	for _, known := range Engines {
		if t == known {
			b.config.Type = t
			return b
		}
	}
	b.err = errors.Errorf("unsupported engine type: %s", t)
	return b
}

// WithModel sets the network file and, for OpenVINO IR, the weights file.
func (b *EngineBuilder) WithModel(modelPath, weightsPath string) *EngineBuilder {
	if b.HasError() {
		return b
	}
	if modelPath == "" {
		b.err = errors.New("model path is required")
		return b
	}
	b.config.ModelPath = modelPath
	b.config.WeightsPath = weightsPath
	return b
}

// WithPrecision sets the engine precision.
func (b *EngineBuilder) WithPrecision(p Precision) *EngineBuilder {
	b.config.Precision = p
	return b
}

// WithThreads sets the intra-op thread count.
func (b *EngineBuilder) WithThreads(n int) *EngineBuilder {
	b.config.Threads = n
	return b
}

// WithProvider sets the ONNX Runtime execution provider.
func (b *EngineBuilder) WithProvider(p providers.Config) *EngineBuilder {
	b.config.Provider = p
	return b
}

// HasError checks if the engine builder has errors.
func (b *EngineBuilder) HasError() bool {
	return b.err != nil
}

// Build builds the engine.
//
// Returns:
//   - Engine: The engine.
//   - error: The first configuration error, or the engine construction error.
func (b *EngineBuilder) Build() (Engine, error) {
	if b.HasError() {
		return nil, b.err
	}

	switch b.config.Type {
	case EngineONNX, EngineOpenCV:
	case "":
		return nil, errors.New("engine type not configured")
	default:
		return nil, errors.Errorf("unsupported engine type: %s", b.config.Type)
	}

	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	if b.config.Type == EngineOpenCV {
		return NewOpenCVEngine(b.config)
	}
	return NewONNXEngine(b.config)
}

// MustBuild builds the engine and panics if there is an error.
func (b *EngineBuilder) MustBuild() Engine {
	e, err := b.Build()
	if err != nil {
		panic(err)
	}
	return e
}
