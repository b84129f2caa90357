package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/local/receiptimport/internal/capture"
	"github.com/local/receiptimport/internal/ocr"
)

func TestExtract(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Extract Suite")
}

var _ = Describe("DetectStore", func() {
	It("matches a known merchant case-insensitively", func() {
		Expect(DetectStore("Welcome to ALDI Nord store #4")).To(Equal(StoreAldi))
		Expect(DetectStore("welcome to aldi nord")).To(Equal(StoreAldi))
	})

	It("returns unknown when no alias matches", func() {
		Expect(DetectStore("random text with no store name")).To(Equal(StoreUnknown))
	})

	It("prefers the earliest merchant in table order on multi-matches", func() {
		Expect(DetectStore("LIDL voucher redeemable at REWE")).To(Equal(StoreLidl))
	})

	It("matches multi-word aliases", func() {
		Expect(DetectStore("E Center Hamburg\nEUR 12,30")).To(Equal(StoreEdeka))
	})
})

var _ = Describe("ExtractDate", func() {
	It("reads slash dates day-first", func() {
		d := ExtractDate("ALDI Sued\n18/01/2026 14:03\nTOTAL 12.30")
		Expect(d).NotTo(BeNil())
		Expect(d.Year()).To(Equal(2026))
		Expect(d.Month()).To(Equal(time.January))
		Expect(d.Day()).To(Equal(18))
	})

	It("reads ISO dates", func() {
		d := ExtractDate("printed 2026-01-18")
		Expect(d).NotTo(BeNil())
		Expect(d.Format("2006-01-02")).To(Equal("2026-01-18"))
	})

	It("returns nil when no date-like substring exists", func() {
		Expect(ExtractDate("no dates here, just items and totals")).To(BeNil())
	})

	It("returns the first date in reading order when several appear", func() {
		d := ExtractDate("02/03/2026 11:22\ncard expires 01/01/2030")
		Expect(d).NotTo(BeNil())
		Expect(d.Month()).To(Equal(time.March))
		Expect(d.Day()).To(Equal(2))
	})

	It("skips implausible years", func() {
		d := ExtractDate("ref 01/01/0001 then 05/06/2026")
		Expect(d).NotTo(BeNil())
		Expect(d.Year()).To(Equal(2026))
	})
})

// failEngine errors on every recognition attempt.
type failEngine struct{}

func (failEngine) Name() string { return "fail" }
func (failEngine) Recognize(context.Context, capture.Page, ocr.Mode) ([]ocr.Line, error) {
	return nil, errors.New("lens cap on")
}

// cannedEngine returns fixed lines.
type cannedEngine struct{ lines []ocr.Line }

func (cannedEngine) Name() string { return "canned" }
func (e cannedEngine) Recognize(context.Context, capture.Page, ocr.Mode) ([]ocr.Line, error) {
	return e.lines, nil
}

func accessiblePage() capture.Page {
	return capture.Page{Pix: make([]byte, 100), Width: 10, Height: 10, Stride: 10}
}

var _ = Describe("TextExtractor", func() {
	When("the page has no accessible pixel buffer", func() {
		It("fails with an OCR error before invoking the engine", func() {
			ex := NewTextExtractor(failEngine{})
			_, err := ex.Extract(context.Background(), capture.Page{})
			Expect(IsOCRError(err)).To(BeTrue())
		})
	})

	When("the OCR capability errors", func() {
		It("propagates as an OCR error instead of swallowing", func() {
			ex := NewTextExtractor(failEngine{})
			_, err := ex.Extract(context.Background(), accessiblePage())
			Expect(IsOCRError(err)).To(BeTrue())
		})
	})

	When("recognition succeeds", func() {
		It("returns the lines joined in order", func() {
			ex := NewTextExtractor(cannedEngine{lines: []ocr.Line{
				{Text: "ALDI", Confidence: 0.9},
				{Text: "MILK 1.29", Confidence: 0.8},
			}})
			text, err := ex.Extract(context.Background(), accessiblePage())
			Expect(err).NotTo(HaveOccurred())
			Expect(text.Joined()).To(Equal("ALDI\nMILK 1.29"))
		})
	})
})
