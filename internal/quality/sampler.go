package quality

import (
	"math"

	"github.com/local/receiptimport/internal/capture"
)

const (
	// maxGridSamples bounds the Laplacian grid to ~100x100 points so a
	// multi-megapixel capture costs the same as a thumbnail.
	maxGridSamples = 100

	// maxContrastSamples bounds the standard-deviation sample count.
	maxContrastSamples = 1000

	// neutralScore is returned when a page's pixels cannot be read. Scoring
	// is advisory, so an unreadable buffer is a mid-score, not an error.
	neutralScore = 0.5
)

// Ceilings are the empirical normalization caps for the raw sampler
// measurements. Values at or above a ceiling clamp to 1.0.
type Ceilings struct {
	Sharpness float64
	Contrast  float64
}

// DefaultCeilings were tuned on phone captures of printed receipts.
func DefaultCeilings() Ceilings {
	return Ceilings{Sharpness: 40.0, Contrast: 64.0}
}

// Sharpness approximates focus by evaluating a discrete Laplacian at a
// bounded grid of sample points and averaging the response magnitude.
// The grid stride is max(dimension/100, 1) per axis; points within one
// stride of the border are excluded so the cross kernel stays in bounds.
func Sharpness(page capture.Page, ceiling float64) float64 {
	if !page.Accessible() {
		return neutralScore
	}

	sx := page.Width / maxGridSamples
	if sx < 1 {
		sx = 1
	}
	sy := page.Height / maxGridSamples
	if sy < 1 {
		sy = 1
	}

	var sum float64
	var n int
	for y := sy; y < page.Height-sy; y += sy {
		for x := sx; x < page.Width-sx; x += sx {
			c := float64(page.IntensityAt(x, y))
			top := float64(page.IntensityAt(x, y-sy))
			bottom := float64(page.IntensityAt(x, y+sy))
			left := float64(page.IntensityAt(x-sx, y))
			right := float64(page.IntensityAt(x+sx, y))
			sum += math.Abs(4*c - top - bottom - left - right)
			n++
		}
	}
	if n == 0 {
		return neutralScore
	}
	return clamp01(sum / float64(n) / ceiling)
}

// Contrast estimates exposure spread as the population standard deviation of
// up to maxContrastSamples intensities taken evenly across the page.
func Contrast(page capture.Page, ceiling float64) float64 {
	if !page.Accessible() {
		return neutralScore
	}

	total := page.Width * page.Height
	step := total / maxContrastSamples
	if step < 1 {
		step = 1
	}

	var sum, sumSq float64
	var n int
	for i := 0; i < total; i += step {
		v := float64(page.IntensityAt(i%page.Width, i/page.Width))
		sum += v
		sumSq += v * v
		n++
	}
	if n == 0 {
		return neutralScore
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return clamp01(math.Sqrt(variance) / ceiling)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
