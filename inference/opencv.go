package inference

import (
	"context"
	"image"
	"os"
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"
)

// OpenCVEngine runs the network through the OpenCV DNN module. It accepts
// ONNX files and OpenVINO IR pairs.
type OpenCVEngine struct {
	mu         sync.Mutex
	net        gocv.Net
	outputName string
	closed     bool
}

// NewOpenCVEngine loads the network with gocv.ReadNet.
//
// Arguments:
//   - cfg: The engine configuration. WeightsPath is passed as the OpenCV
//     config argument, which for OpenVINO IR is the .bin file.
//
// Returns:
//   - *OpenCVEngine: The engine.
//   - error: An error if the files are missing or the network is empty.
func NewOpenCVEngine(cfg EngineConfig) (*OpenCVEngine, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("model path is required")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "model file not found: %s", cfg.ModelPath)
	}
	if cfg.WeightsPath != "" {
		if _, err := os.Stat(cfg.WeightsPath); err != nil {
			return nil, errors.Wrapf(err, "weights file not found: %s", cfg.WeightsPath)
		}
	}

	net := gocv.ReadNet(cfg.ModelPath, cfg.WeightsPath)
	if net.Empty() {
		return nil, errors.Errorf("failed to load model: %s", cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	if cfg.Precision == PrecisionFP16 {
		net.SetPreferableTarget(gocv.NetTargetFP16)
	} else {
		net.SetPreferableTarget(gocv.NetTargetCPU)
	}

	return &OpenCVEngine{
		net:        net,
		outputName: cfg.OutputName,
	}, nil
}

// Infer runs the network on img.
//
// Arguments:
//   - ctx: Checked for cancellation before the forward pass.
//   - img: The resized input image.
//
// Returns:
//   - tensor.Tensor: A copy of the raw output.
//   - error: An error if the engine is closed or the forward pass fails.
func (e *OpenCVEngine) Infer(ctx context.Context, img image.Image) (tensor.Tensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, shape, err := Blob(img)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare input")
	}

	sizes := make([]int, len(shape))
	for i, d := range shape {
		sizes[i] = int(d)
	}
	blob := gocv.NewMatWithSizes(sizes, gocv.MatTypeCV32F)
	defer blob.Close()

	dst, err := blob.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "failed to access input blob")
	}
	copy(dst, data)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, errors.New("engine is closed")
	}

	e.net.SetInput(blob, "")
	out := e.net.Forward(e.outputName)
	defer out.Close()

	if out.Empty() {
		return nil, errors.New("forward pass returned no output")
	}

	result, err := out.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read output")
	}

	dims := out.Size()
	backing := append([]float32(nil), result...)

	return tensor.New(tensor.WithShape(dims...), tensor.WithBacking(backing)), nil
}

// Close releases the network.
func (e *OpenCVEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	return e.net.Close()
}
