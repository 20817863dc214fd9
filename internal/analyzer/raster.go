package analyzer

import (
	"bytes"
	"image"
	"image/draw"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	apperrors "github.com/medscope-ai/medscan/internal/errors"
)

// Raster is the decoded working copy of an uploaded study. The enhanced view
// is the contrast-limited equalized grayscale used by contour detection; all
// statistical features read the plain grayscale.
type Raster struct {
	Color    image.Image
	Gray     *image.Gray
	Enhanced *image.Gray
	Width    int
	Height   int
	Channels int
	Format   string
}

// DecodeRaster decodes image bytes into the analysis views. Decode failure
// is the only fatal error in the pipeline; anything decodable is analyzed.
func DecodeRaster(data []byte) (*Raster, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewDecodeError("unable to decode image data", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, apperrors.NewDecodeError("image has zero dimensions", nil)
	}

	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)

	channels := 3
	if _, isGray := img.(*image.Gray); isGray {
		channels = 1
	}

	return &Raster{
		Color:    img,
		Gray:     gray,
		Enhanced: applyCLAHE(gray, 8, 2.0),
		Width:    width,
		Height:   height,
		Channels: channels,
		Format:   format,
	}, nil
}
