package images

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Load decodes the image file at path. EXIF orientation is applied so the
// pixel grid matches what a viewer would show.
//
// Arguments:
//   - path: The image file to read.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: An error if the file cannot be opened or decoded.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load image %s", path)
	}
	return img, nil
}
