package images

import (
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// ErrInvalidImageSize is returned when an image dimension is not positive.
var ErrInvalidImageSize = errors.New("invalid image size")

// ScaleFactor returns the ratio that maps an image of originalWidth onto
// targetWidth. Coordinates produced in the resized space are divided by this
// factor to get back to the original image.
//
// Arguments:
//   - originalWidth: The width of the source image in pixels.
//   - targetWidth: The width the model expects.
//
// Returns:
//   - float32: targetWidth / originalWidth.
//   - error: ErrInvalidImageSize if either width is not positive.
func ScaleFactor(originalWidth, targetWidth int) (float32, error) {
	if originalWidth <= 0 {
		return 0, errors.Wrapf(ErrInvalidImageSize, "original width %d", originalWidth)
	}
	if targetWidth <= 0 {
		return 0, errors.Wrapf(ErrInvalidImageSize, "target width %d", targetWidth)
	}
	return float32(targetWidth) / float32(originalWidth), nil
}

// ResizeToWidth scales img uniformly so that its width equals targetWidth.
// The height follows the aspect ratio.
//
// Arguments:
//   - img: The image to resize.
//   - targetWidth: The output width in pixels.
//
// Returns:
//   - image.Image: The resized image.
//   - float32: The scale factor that was applied.
//   - error: ErrInvalidImageSize if the image or target width is empty.
func ResizeToWidth(img image.Image, targetWidth int) (image.Image, float32, error) {
	if img == nil {
		return nil, 0, errors.Wrap(ErrInvalidImageSize, "image is nil")
	}

	scale, err := ScaleFactor(img.Bounds().Dx(), targetWidth)
	if err != nil {
		return nil, 0, err
	}
	if img.Bounds().Dy() <= 0 {
		return nil, 0, errors.Wrapf(ErrInvalidImageSize, "original height %d", img.Bounds().Dy())
	}

	if img.Bounds().Dx() == targetWidth {
		return img, scale, nil
	}

	// A zero height keeps the aspect ratio.
	return resize.Resize(uint(targetWidth), 0, img, resize.Bilinear), scale, nil
}
