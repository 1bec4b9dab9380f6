// Package providers - ONNX Runtime execution provider selection.
package providers

import (
	"fmt"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// Backend names an ONNX Runtime execution provider.
type Backend string

const (
	// CPU runs on the default ONNX Runtime CPU provider.
	CPU Backend = "cpu"
	// CUDA uses NVIDIA CUDA.
	CUDA Backend = "cuda"
	// CoreML uses Apple CoreML for macOS acceleration.
	CoreML Backend = "coreml"
	// OpenVINO uses Intel OpenVINO.
	OpenVINO Backend = "openvino"
)

// Backends lists every supported backend.
var Backends = []Backend{CPU, CUDA, CoreML, OpenVINO}

// Config selects the execution provider for a session.
type Config struct {
	Backend  Backend         `json:"backend"  yaml:"backend"  validate:"omitempty,oneof=cpu cuda coreml openvino"`
	CUDA     CUDAOptions     `json:"cuda"     yaml:"cuda"`
	CoreML   CoreMLOptions   `json:"coreml"   yaml:"coreml"`
	OpenVINO OpenVINOOptions `json:"openvino" yaml:"openvino"`
}

// CUDAOptions contains arguments for the CUDA provider.
// See:
// https://onnxruntime.ai/docs/execution-providers/CUDA-ExecutionProvider.html#configuration-options
type CUDAOptions struct {
	DeviceID int `json:"device_id" yaml:"device_id"`
	// GPUMemLimit caps the device memory arena in bytes. Zero leaves the
	// runtime default.
	GPUMemLimit int64 `json:"gpu_mem_limit" yaml:"gpu_mem_limit"`
	// CudnnConvAlgoSearch is EXHAUSTIVE, HEURISTIC or DEFAULT.
	CudnnConvAlgoSearch string `json:"cudnn_conv_algo_search" yaml:"cudnn_conv_algo_search"`
}

// CoreMLOptions contains arguments for the CoreML provider.
type CoreMLOptions struct {
	// Flags is the COREML_FLAG_* bit set passed to the runtime.
	Flags uint32 `json:"flags" yaml:"flags"`
}

// OpenVINOOptions contains arguments for the OpenVINO provider.
// See:
// https://onnxruntime.ai/docs/execution-providers/OpenVINO-ExecutionProvider.html#summary-of-options
type OpenVINOOptions struct {
	// DeviceType is CPU, GPU or NPU. Empty uses the build default.
	DeviceType string `json:"device_type" yaml:"device_type"`
	// Precision is FP32, FP16 or ACCURACY.
	Precision    string `json:"precision"      yaml:"precision"`
	NumOfThreads int    `json:"num_of_threads" yaml:"num_of_threads"`
}

// Map returns the provider options in the key format ONNX Runtime expects.
// Unset fields are left out.
func (o CUDAOptions) Map() map[string]string {
	m := map[string]string{
		"device_id": fmt.Sprintf("%d", o.DeviceID),
	}
	if o.GPUMemLimit > 0 {
		m["gpu_mem_limit"] = fmt.Sprintf("%d", o.GPUMemLimit)
	}
	if o.CudnnConvAlgoSearch != "" {
		m["cudnn_conv_algo_search"] = o.CudnnConvAlgoSearch
	}
	return m
}

// Map returns the provider options in the key format ONNX Runtime expects.
// Unset fields are left out.
func (o OpenVINOOptions) Map() map[string]string {
	m := map[string]string{}
	if o.DeviceType != "" {
		m["device_type"] = o.DeviceType
	}
	if o.Precision != "" {
		m["precision"] = o.Precision
	}
	if o.NumOfThreads > 0 {
		m["num_of_threads"] = fmt.Sprintf("%d", o.NumOfThreads)
	}
	return m
}

// Apply appends the configured execution provider to options.
//
// Arguments:
//   - options: The session options being built.
//   - cfg: The provider selection. An empty backend means CPU.
//
// Returns:
//   - error: An error if the backend is unknown or the runtime rejects it.
func Apply(options *ort.SessionOptions, cfg Config) error {
	switch cfg.Backend {
	case "", CPU:
		return nil
	case CoreML:
		if err := options.AppendExecutionProviderCoreML(cfg.CoreML.Flags); err != nil {
			return errors.Wrap(err, "error enabling CoreML")
		}
	case OpenVINO:
		if err := options.AppendExecutionProviderOpenVINO(cfg.OpenVINO.Map()); err != nil {
			return errors.Wrap(err, "error enabling OpenVINO")
		}
	case CUDA:
		cuda, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return errors.Wrap(err, "error creating CUDA options")
		}
		defer cuda.Destroy()

		if err := cuda.Update(cfg.CUDA.Map()); err != nil {
			return errors.Wrap(err, "error converting CUDA options")
		}
		if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
			return errors.Wrap(err, "error enabling CUDA")
		}
	default:
		return errors.Errorf("unsupported execution provider: %s", cfg.Backend)
	}
	return nil
}
