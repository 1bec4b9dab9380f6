// Package models - registry for models.
package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/nvr-ai/go-armor/models/armor"
	"github.com/nvr-ai/go-armor/models/model"
	"github.com/pkg/errors"
)

// NewModel creates a new detection model instance based on the specified model name.
//
// Arguments:
//   - args: Configuration parameters specifying the model type and thresholds.
//
// Returns:
//   - model.Model: A configured model instance implementing the Model interface.
//   - error: An error if the model name is unsupported or its arguments are invalid.
//
// Example:
//
// ```go
//
//	m, err := NewModel(model.NewModelArgs{
//	    Name: model.ModelNameArmor,
//	    Path: "/models/armor.onnx",
//	})
//	if err != nil {
//	    log.Fatalf("Failed to create detection model: %v", err)
//	}
//
// ```
func NewModel(args model.NewModelArgs) (model.Model, error) {
	if err := validator.New().Struct(args); err != nil {
		return nil, errors.Wrap(err, "invalid model args")
	}

	switch args.Name {
	case model.ModelNameArmor:
		m, err := armor.NewModel(args)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported model name: %s", args.Name)
	}
}
