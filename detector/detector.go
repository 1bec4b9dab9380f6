package detector

import (
	"context"
	"image"

	"github.com/nvr-ai/go-armor/images"
	"github.com/nvr-ai/go-armor/inference"
	"github.com/nvr-ai/go-armor/models"
	"github.com/nvr-ai/go-armor/models/model"
	"github.com/nvr-ai/go-armor/models/postprocess"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorgonia.org/tensor"
)

// Detector runs the armor detection pipeline on single images.
//
// A Detector holds no per-image state; concurrent calls are safe as long as
// the engine is.
type Detector struct {
	engine inference.Engine
	model  model.Model
	config Config
	log    logrus.FieldLogger
}

// Option configures a Detector.
type Option func(*Detector)

// WithConfig sets the pipeline configuration.
func WithConfig(cfg Config) Option {
	return func(d *Detector) {
		d.config = cfg
	}
}

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(d *Detector) {
		d.log = log
	}
}

// WithModel replaces the model built from the configuration.
func WithModel(m model.Model) Option {
	return func(d *Detector) {
		d.model = m
	}
}

// New creates a detector around an inference engine.
//
// Arguments:
//   - engine: The engine used by Detect. May be nil when only Run is used.
//   - opts: Optional configuration.
//
// Returns:
//   - *Detector: The detector.
//   - error: ErrInvalidConfig, or an error building the model.
func New(engine inference.Engine, opts ...Option) (*Detector, error) {
	d := &Detector{
		engine: engine,
		config: DefaultConfig(),
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.config.Validate(); err != nil {
		return nil, err
	}

	if d.model == nil {
		m, err := models.NewModel(model.NewModelArgs{
			Name:                model.ModelNameArmor,
			ConfidenceThreshold: d.config.ConfidenceThreshold,
			NMS:                 d.config.NMS,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create model")
		}
		d.model = m
	}

	return d, nil
}

// Config returns the pipeline configuration.
func (d *Detector) Config() Config {
	return d.config
}

// Run post-processes raw engine output for one image.
//
// Arguments:
//   - output: The engine output tensor, shape [N, S] or [1, N, S].
//   - originalWidth: The width of the image before it was resized.
//
// Returns:
//   - []postprocess.Detection: Detections in original image coordinates,
//     highest confidence first.
//   - error: An error if the tensor shape or width is invalid.
func (d *Detector) Run(output tensor.Tensor, originalWidth int) ([]postprocess.Detection, error) {
	data, stride, err := inference.RowsFromTensor(output, d.model.Options().RowSize)
	if err != nil {
		return nil, err
	}
	return d.RunRows(data, stride, originalWidth)
}

// RunRows post-processes a flat buffer of anchor rows.
//
// Arguments:
//   - output: The raw rows, stride values each.
//   - stride: The number of values per row.
//   - originalWidth: The width of the image before it was resized.
//
// Returns:
//   - []postprocess.Detection: Detections in original image coordinates.
//   - error: An error if the buffer shape or width is invalid.
func (d *Detector) RunRows(output []float32, stride, originalWidth int) ([]postprocess.Detection, error) {
	scale, err := images.ScaleFactor(originalWidth, d.config.TargetWidth)
	if err != nil {
		return nil, err
	}

	detections, err := d.model.PostProcess(output, stride, scale)
	if err != nil {
		return nil, errors.Wrap(err, "post-processing failed")
	}

	if stride > 0 {
		d.log.WithFields(logrus.Fields{
			"rows":       len(output) / stride,
			"detections": len(detections),
			"scale":      scale,
		}).Debug("post-processed model output")
	}

	return detections, nil
}

// Detect resizes img to the target width, runs the engine and post-processes
// the result.
//
// Arguments:
//   - ctx: Passed to the engine.
//   - img: The original image.
//
// Returns:
//   - []postprocess.Detection: Detections in img coordinates.
//   - error: An error from resizing, inference or post-processing.
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]postprocess.Detection, error) {
	if d.engine == nil {
		return nil, errors.New("engine not configured")
	}

	resized, _, err := images.ResizeToWidth(img, d.config.TargetWidth)
	if err != nil {
		return nil, err
	}

	output, err := d.engine.Infer(ctx, resized)
	if err != nil {
		return nil, errors.Wrap(err, "inference failed")
	}

	return d.Run(output, img.Bounds().Dx())
}

// DetectFile loads the image at path and runs Detect on it.
func (d *Detector) DetectFile(ctx context.Context, path string) ([]postprocess.Detection, error) {
	img, err := images.Load(path)
	if err != nil {
		return nil, err
	}

	detections, err := d.Detect(ctx, img)
	if err != nil {
		return nil, err
	}

	d.log.WithFields(logrus.Fields{
		"path":       path,
		"detections": len(detections),
	}).Info("detected armor plates")

	return detections, nil
}

// Close releases the engine.
func (d *Detector) Close() error {
	if d.engine == nil {
		return nil
	}
	return d.engine.Close()
}
