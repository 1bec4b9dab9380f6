package inference

import (
	"context"
	"image"
	"os"
	"runtime"
	"sync"

	"github.com/nvr-ai/go-armor/inference/providers"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"gorgonia.org/tensor"
)

// GetSharedLibPath returns the default path to the onnxruntime shared library
// for the current platform.
//
// Returns:
//   - string: The path to the shared library.
func GetSharedLibPath() string {
	switch runtime.GOOS {
	case "windows":
		return "./third_party/onnxruntime.dll"
	case "darwin":
		return "./third_party/libonnxruntime.dylib"
	default:
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so"
		}
		return "./third_party/onnxruntime.so"
	}
}

// ONNXEngine runs the network through ONNX Runtime.
//
// The input height follows the image aspect ratio, so the session is created
// with dynamic shapes and the output tensor is allocated by the runtime.
type ONNXEngine struct {
	mu         sync.Mutex
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
}

// NewONNXEngine creates a new ONNX Runtime engine.
//
// Order of operations:
//  1. Library path check: Ensures native runtime is accessible.
//  2. Environment setup: Required once per process.
//  3. Session options: Thread counts and execution provider.
//  4. Session creation: Loads the model.
//
// Arguments:
//   - cfg: The engine configuration.
//
// Returns:
//   - *ONNXEngine: The engine.
//   - error: An error if the runtime or model cannot be loaded.
func NewONNXEngine(cfg EngineConfig) (*ONNXEngine, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("model path is required")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "model file not found: %s", cfg.ModelPath)
	}

	libPath := cfg.SharedLibraryPath
	if libPath == "" {
		libPath = GetSharedLibPath()
	}
	if _, err := os.Stat(libPath); err != nil {
		return nil, errors.Wrapf(err, "ONNX Runtime library not found at %s", libPath)
	}

	if !ort.IsInitialized() {
		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errors.Wrap(err, "error initializing ORT environment")
		}
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "error creating ORT session options")
	}
	defer options.Destroy()

	if cfg.Threads > 0 {
		if err := options.SetIntraOpNumThreads(cfg.Threads); err != nil {
			return nil, errors.Wrap(err, "error setting intra-op threads")
		}
	}

	if err := providers.Apply(options, cfg.Provider); err != nil {
		return nil, err
	}

	inputName, outputName := cfg.InputName, cfg.OutputName
	if inputName == "" {
		inputName = "input"
	}
	if outputName == "" {
		outputName = "output"
	}

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{inputName},
		[]string{outputName},
		options,
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating ORT session")
	}

	return &ONNXEngine{
		session:    session,
		inputName:  inputName,
		outputName: outputName,
	}, nil
}

// Infer runs the network on img.
//
// Arguments:
//   - ctx: Checked for cancellation before the session runs.
//   - img: The resized input image.
//
// Returns:
//   - tensor.Tensor: A copy of the raw output.
//   - error: An error if the session is closed or the run fails.
func (e *ONNXEngine) Infer(ctx context.Context, img image.Image) (tensor.Tensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil, errors.New("engine is closed")
	}

	data, shape, err := Blob(img)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare input")
	}

	input, err := ort.NewTensor(ort.NewShape(shape...), data)
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := e.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, errors.Wrap(err, "failed to run inference")
	}
	defer outputs[0].Destroy()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, errors.Wrapf(ErrInvalidOutputShape, "output %s is %T, want float32 tensor", e.outputName, outputs[0])
	}

	dims := make([]int, 0, len(out.GetShape()))
	for _, d := range out.GetShape() {
		dims = append(dims, int(d))
	}
	backing := append([]float32(nil), out.GetData()...)

	return tensor.New(tensor.WithShape(dims...), tensor.WithBacking(backing)), nil
}

// Close releases the native session.
func (e *ONNXEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	if err != nil {
		return errors.Wrap(err, "error destroying ORT session")
	}
	return nil
}
