package quality

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/local/receiptimport/internal/capture"
)

// Weights blend the three page signals. Priority order for OCR suitability:
// recognizable text first, then focus, then exposure.
type Weights struct {
	Text      float64
	Sharpness float64
	Contrast  float64
}

func DefaultWeights() Weights {
	return Weights{Text: 0.5, Sharpness: 0.3, Contrast: 0.2}
}

// Score is one page's combined quality plus its clamped components, kept for
// diagnostics and tests. Never persisted.
type Score struct {
	Total     float64
	Text      float64
	Sharpness float64
	Contrast  float64
}

// Scorer produces a Score for a page. Satisfied by PageScorer; tests
// substitute counting fakes.
type Scorer interface {
	Score(ctx context.Context, page capture.Page) (Score, error)
}

// PageScorer combines the text signal with the pixel samplers. It has no
// failure mode of its own: a best-effort score of 0 is valid output for a
// wholly unusable page, and only the OCR pass can return an error at all.
type PageScorer struct {
	text     *TextSignal
	weights  Weights
	ceilings Ceilings
}

func NewPageScorer(text *TextSignal, weights Weights, ceilings Ceilings) *PageScorer {
	return &PageScorer{text: text, weights: weights, ceilings: ceilings}
}

func (s *PageScorer) Score(ctx context.Context, page capture.Page) (Score, error) {
	textScore, err := s.text.Score(ctx, page)
	if err != nil {
		return Score{}, err
	}

	sc := Score{
		Text:      clamp01(textScore),
		Sharpness: Sharpness(page, s.ceilings.Sharpness),
		Contrast:  Contrast(page, s.ceilings.Contrast),
	}
	sc.Total = s.weights.Text*sc.Text +
		s.weights.Sharpness*sc.Sharpness +
		s.weights.Contrast*sc.Contrast

	log.Debug().
		Int("page", page.Index).
		Float64("total", sc.Total).
		Float64("text", sc.Text).
		Float64("sharpness", sc.Sharpness).
		Float64("contrast", sc.Contrast).
		Msg("page scored")
	return sc, nil
}
