package quality

import (
	"context"
	"errors"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/local/receiptimport/internal/capture"
)

// fakeScorer scores pages by their index and counts invocations.
type fakeScorer struct {
	scores []float64
	errAt  int // index that fails to score, -1 for none
	calls  atomic.Int32
}

func newFakeScorer(scores ...float64) *fakeScorer {
	return &fakeScorer{scores: scores, errAt: -1}
}

func (f *fakeScorer) Score(_ context.Context, page capture.Page) (Score, error) {
	f.calls.Add(1)
	if page.Index == f.errAt {
		return Score{}, errors.New("unscorable page")
	}
	return Score{Total: f.scores[page.Index]}, nil
}

func makePages(n int) []capture.Page {
	pages := make([]capture.Page, n)
	for i := range pages {
		pages[i] = uniformPage(10, 10, 128)
		pages[i].Index = i
	}
	return pages
}

var _ = Describe("Selector", func() {
	var (
		scorer   *fakeScorer
		selector *Selector
	)

	When("the session produced no pages", func() {
		It("returns ErrNoPages", func() {
			selector = NewSelector(newFakeScorer())
			_, err := selector.SelectBest(context.Background(), nil)
			Expect(err).To(MatchError(ErrNoPages))
		})
	})

	When("the session produced a single page", func() {
		BeforeEach(func() {
			scorer = newFakeScorer(0.1)
			selector = NewSelector(scorer)
		})

		It("returns that page without invoking the scorer", func() {
			pages := makePages(1)
			page, err := selector.SelectBest(context.Background(), pages)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Index).To(Equal(0))
			Expect(scorer.calls.Load()).To(BeZero())
		})
	})

	When("pages have distinct scores", func() {
		BeforeEach(func() {
			scorer = newFakeScorer(0.2, 0.9, 0.6)
			selector = NewSelector(scorer)
		})

		It("returns exactly the maximum-score page", func() {
			page, err := selector.SelectBest(context.Background(), makePages(3))
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Index).To(Equal(1))
			Expect(scorer.calls.Load()).To(Equal(int32(3)))
		})
	})

	When("the maximum score is tied", func() {
		BeforeEach(func() {
			scorer = newFakeScorer(0.4, 0.7, 0.7, 0.1)
			selector = NewSelector(scorer)
		})

		It("returns the lowest-index page among the tied maximum", func() {
			page, err := selector.SelectBest(context.Background(), makePages(4))
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Index).To(Equal(1))
		})
	})

	When("one page cannot be scored", func() {
		BeforeEach(func() {
			scorer = newFakeScorer(0.9, 0.3, 0.5)
			scorer.errAt = 0
			selector = NewSelector(scorer)
		})

		It("treats that page as zero and still selects among the rest", func() {
			page, err := selector.SelectBest(context.Background(), makePages(3))
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Index).To(Equal(2))
		})
	})

	When("the context is cancelled", func() {
		BeforeEach(func() {
			scorer = newFakeScorer(0.2, 0.9)
			selector = NewSelector(scorer)
		})

		It("returns the context error instead of a selection", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := selector.SelectBest(ctx, makePages(2))
			Expect(err).To(MatchError(context.Canceled))
		})
	})
})
