package quality

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/local/receiptimport/internal/capture"
)

// ErrNoPages is returned when selection is attempted on an empty session.
// The capture boundary guarantees at least one page on success, so hitting
// this means the contract upstream was violated.
var ErrNoPages = errors.New("no pages to select from")

// Selector picks the single best page out of a capture session.
type Selector struct {
	scorer Scorer
}

func NewSelector(scorer Scorer) *Selector {
	return &Selector{scorer: scorer}
}

// SelectBest scores every candidate and returns the arg-max, ties broken by
// lowest index. A single-page session returns immediately without invoking
// the scorer at all, which skips the fast-OCR pass in the common case.
//
// Pages are independent, so scoring runs concurrently; the winner is chosen
// only after every page has reported, because a best-so-far cut could miss a
// later, higher-scoring page. A page whose scoring fails gets 0 and simply
// loses — scoring is advisory and never fails the pipeline. Cancelling ctx
// cancels all outstanding score computations and returns ctx.Err().
func (s *Selector) SelectBest(ctx context.Context, pages []capture.Page) (capture.Page, error) {
	if len(pages) == 0 {
		return capture.Page{}, ErrNoPages
	}
	if len(pages) == 1 {
		return pages[0], nil
	}

	scores := make([]float64, len(pages))
	var wg sync.WaitGroup
	for i, page := range pages {
		wg.Add(1)
		go func(i int, page capture.Page) {
			defer wg.Done()
			sc, err := s.scorer.Score(ctx, page)
			if err != nil {
				log.Warn().Err(err).Int("page", i).Msg("page scoring failed; treating as zero")
				return
			}
			scores[i] = sc.Total
		}(i, page)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return capture.Page{}, err
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	log.Debug().Int("winner", best).Int("candidates", len(pages)).Float64("score", scores[best]).Msg("best page selected")
	return pages[best], nil
}
