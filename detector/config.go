// Package detector - Single-image armor detection pipeline.
package detector

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/nvr-ai/go-armor/models/armor"
	"github.com/nvr-ai/go-armor/models/postprocess"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// TargetWidth is the network input width. Images are scaled to this width
// before inference.
const TargetWidth = 640

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("invalid detector config")

// Config holds the detection pipeline parameters.
type Config struct {
	// TargetWidth is the width images are resized to before inference.
	TargetWidth int `json:"target_width" yaml:"target_width" validate:"gt=0"`
	// ConfidenceThreshold filters detections at or below this probability.
	ConfidenceThreshold float32 `json:"confidence_threshold" yaml:"confidence_threshold" validate:"gt=0,lt=1"`
	// NMS controls duplicate suppression.
	NMS postprocess.NMSConfig `json:"nms" yaml:"nms"`
}

// DefaultConfig returns the configuration the armor network was trained for.
//
// Returns:
//   - Config: 640 pixel input width, 0.5 confidence threshold, class-agnostic
//     suppression on any positive-area overlap.
func DefaultConfig() Config {
	return Config{
		TargetWidth:         TargetWidth,
		ConfidenceThreshold: armor.DefaultConfidenceThreshold,
		NMS:                 postprocess.DefaultNMSConfig(),
	}
}

// Validate checks the configuration.
//
// Returns:
//   - error: ErrInvalidConfig wrapping the validation failures.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return nil
}

// LoadConfig reads a YAML configuration file. Fields missing from the file
// keep their DefaultConfig values.
//
// Arguments:
//   - path: The YAML file to read.
//
// Returns:
//   - Config: The validated configuration.
//   - error: An error if the file cannot be read, parsed or validated.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "failed to parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
