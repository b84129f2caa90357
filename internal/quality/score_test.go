package quality

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/local/receiptimport/internal/ocr"
)

var _ = Describe("PageScorer", func() {
	var (
		engine *stubEngine
		scorer *PageScorer
	)

	BeforeEach(func() {
		engine = &stubEngine{lines: []ocr.Line{{Text: "TOTAL 12.30", Confidence: 0.9}}}
		scorer = NewPageScorer(
			NewTextSignal(engine, DefaultTextWeights()),
			DefaultWeights(),
			DefaultCeilings(),
		)
	})

	It("equals exactly the weighted sum of its clamped components", func() {
		sc, err := scorer.Score(context.Background(), checkerboardPage(60, 60))
		Expect(err).NotTo(HaveOccurred())
		Expect(sc.Total).To(BeNumerically("~", 0.5*sc.Text+0.3*sc.Sharpness+0.2*sc.Contrast, 1e-12))
	})

	It("stays within [0,1] even for an unusable page", func() {
		engine.lines = nil
		sc, err := scorer.Score(context.Background(), uniformPage(20, 20, 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(sc.Total).To(BeNumerically(">=", 0))
		Expect(sc.Total).To(BeNumerically("<=", 1))
		Expect(sc.Text).To(BeZero())
	})
})
