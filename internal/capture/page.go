package capture

import (
	"image"
	"image/color"
)

// Page is one candidate image produced by a capture session. The pipeline
// only reads single-channel intensities, so pages carry a grayscale buffer
// regardless of the source format. Pages are never mutated after creation.
type Page struct {
	// Pix holds one intensity byte per pixel, row-major. A nil Pix means the
	// pixel data is not accessible; scorers treat such a page as neutral.
	Pix    []byte
	Width  int
	Height int
	Stride int

	// Index is the page's position within the capture session, used for
	// deterministic tie-breaking during selection.
	Index int
}

// FromImage converts a decoded image into a Page by collapsing it to a
// single luminance channel.
func FromImage(img image.Image, index int) Page {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	gray, ok := img.(*image.Gray)
	if !ok {
		gray = image.NewGray(bounds)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
			}
		}
	}

	return Page{
		Pix:    gray.Pix,
		Width:  w,
		Height: h,
		Stride: gray.Stride,
		Index:  index,
	}
}

// Accessible reports whether the page has readable pixel data.
func (p Page) Accessible() bool {
	return p.Pix != nil && p.Width > 0 && p.Height > 0 && p.Stride > 0
}

// IntensityAt returns the intensity at (x, y). Callers are responsible for
// staying in bounds; the quality sampler excludes border regions itself.
func (p Page) IntensityAt(x, y int) uint8 {
	return p.Pix[y*p.Stride+x]
}

// Gray reconstructs an image.Gray view over the page buffer without copying.
func (p Page) Gray() *image.Gray {
	return &image.Gray{
		Pix:    p.Pix,
		Stride: p.Stride,
		Rect:   image.Rect(0, 0, p.Width, p.Height),
	}
}
