package quality

import (
	"context"
	"strings"
	"unicode"

	"github.com/local/receiptimport/internal/capture"
	"github.com/local/receiptimport/internal/ocr"
)

// TextWeights control how the fast-OCR pass is reduced to one signal.
// These are empirical product constants with no documented derivation; they
// are configuration, not hard-coded literals, so they can be recalibrated.
type TextWeights struct {
	Confidence float64 // weight of mean line confidence
	Density    float64 // weight of line count saturation
	Digit      float64 // flat bonus when any line contains a digit

	// DensityCeiling is the line count at which the density term saturates.
	DensityCeiling int
}

func DefaultTextWeights() TextWeights {
	return TextWeights{Confidence: 0.5, Density: 0.3, Digit: 0.2, DensityCeiling: 50}
}

// TextSignal scores how much OCR-usable text a page appears to carry, using
// a fast low-accuracy recognition pass. This is a relative ranking signal
// between sibling pages, not a statement about final extraction quality.
type TextSignal struct {
	engine  ocr.Engine
	weights TextWeights
}

func NewTextSignal(engine ocr.Engine, weights TextWeights) *TextSignal {
	if weights.DensityCeiling <= 0 {
		weights.DensityCeiling = DefaultTextWeights().DensityCeiling
	}
	return &TextSignal{engine: engine, weights: weights}
}

// Score returns a value in [0,1]. Zero recognized lines is a valid score of
// 0.0: a sharp but textless page must lose to a blurry page with text.
// Receipts are dominated by prices, so a page where not a single digit was
// recognized is almost certainly a bad scan, hence the digit bonus.
func (s *TextSignal) Score(ctx context.Context, page capture.Page) (float64, error) {
	lines, err := s.engine.Recognize(ctx, page, ocr.Fast)
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return 0, nil
	}

	var confSum float64
	hasDigit := false
	for _, ln := range lines {
		confSum += ln.Confidence
		if !hasDigit && strings.ContainsFunc(ln.Text, unicode.IsDigit) {
			hasDigit = true
		}
	}

	avgConf := confSum / float64(len(lines))
	density := float64(len(lines)) / float64(s.weights.DensityCeiling)
	if density > 1 {
		density = 1
	}
	digit := 0.0
	if hasDigit {
		digit = 1.0
	}

	score := s.weights.Confidence*clamp01(avgConf) +
		s.weights.Density*density +
		s.weights.Digit*digit
	return clamp01(score), nil
}
