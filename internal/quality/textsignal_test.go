package quality

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/local/receiptimport/internal/capture"
	"github.com/local/receiptimport/internal/ocr"
)

// stubEngine returns canned lines (or a canned error) for every page.
type stubEngine struct {
	lines []ocr.Line
	err   error
	calls int
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Recognize(_ context.Context, _ capture.Page, _ ocr.Mode) ([]ocr.Line, error) {
	s.calls++
	return s.lines, s.err
}

func repeatLines(n int, text string, conf float64) []ocr.Line {
	lines := make([]ocr.Line, n)
	for i := range lines {
		lines[i] = ocr.Line{Text: text, Confidence: conf}
	}
	return lines
}

var _ = Describe("TextSignal", func() {
	var (
		engine *stubEngine
		signal *TextSignal
		page   capture.Page
		score  float64
		err    error
	)

	BeforeEach(func() {
		engine = &stubEngine{}
		page = uniformPage(10, 10, 128)
	})

	JustBeforeEach(func() {
		signal = NewTextSignal(engine, DefaultTextWeights())
		score, err = signal.Score(context.Background(), page)
	})

	When("OCR yields zero text blocks", func() {
		It("scores 0.0 without an error", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(score).To(BeZero())
		})
	})

	When("OCR yields confident text with digits", func() {
		BeforeEach(func() {
			engine.lines = repeatLines(10, "MILK 1.29", 0.8)
		})

		It("combines confidence, density and the digit bonus", func() {
			Expect(err).NotTo(HaveOccurred())
			// 0.5*0.8 + 0.3*(10/50) + 0.2*1
			Expect(score).To(BeNumerically("~", 0.66, 1e-9))
		})
	})

	When("no recognized line contains a digit", func() {
		BeforeEach(func() {
			engine.lines = repeatLines(10, "thank you for shopping", 0.8)
		})

		It("withholds the digit bonus", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(score).To(BeNumerically("~", 0.46, 1e-9))
		})
	})

	When("the line count saturates the density term", func() {
		BeforeEach(func() {
			engine.lines = repeatLines(200, "ITEM 2", 1.0)
		})

		It("clamps the result to 1.0", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(score).To(Equal(1.0))
		})
	})

	When("the OCR pass itself fails", func() {
		BeforeEach(func() {
			engine.err = errors.New("engine exploded")
		})

		It("propagates the error for the selector to absorb", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})
