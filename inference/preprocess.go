package inference

import (
	"image"

	"github.com/pkg/errors"
)

// Blob converts an image into an NCHW float32 tensor with a batch of one.
//
// The layout matches OpenCV's blobFromImage defaults: channels in B, G, R
// order, raw 0-255 values, no mean subtraction and no resizing. The image is
// expected to already be at the network input resolution.
//
// Arguments:
//   - img: The image to convert.
//
// Returns:
//   - []float32: The tensor data.
//   - []int64: The tensor shape [1, 3, H, W].
//   - error: An error if the image is empty.
func Blob(img image.Image) ([]float32, []int64, error) {
	if img == nil {
		return nil, nil, errors.New("image is nil")
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, nil, errors.Errorf("image has no pixels: %dx%d", width, height)
	}

	channelSize := width * height
	data := make([]float32, channelSize*3)
	blue := data[0:channelSize]
	green := data[channelSize : channelSize*2]
	red := data[channelSize*2 : channelSize*3]

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			blue[i] = float32(b >> 8)
			green[i] = float32(g >> 8)
			red[i] = float32(r >> 8)
			i++
		}
	}

	return data, []int64{1, 3, int64(height), int64(width)}, nil
}
