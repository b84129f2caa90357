package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/local/receiptimport/internal/capture"
	"github.com/local/receiptimport/internal/ocr"
)

// OCRError wraps a failed recognition on the selected page. Unlike the
// scoring pass, extraction output is load-bearing for store/date detection
// and categorization, so failures here propagate instead of degrading.
type OCRError struct {
	Reason string
	Err    error
}

func (e *OCRError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ocr failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("ocr failed: %s", e.Reason)
}

func (e *OCRError) Unwrap() error { return e.Err }

// IsOCRError reports whether err originated in the extraction stage.
func IsOCRError(err error) bool {
	var oe *OCRError
	return errors.As(err, &oe)
}

// RecognizedText is the ordered recognized lines of one page. Transient,
// lives only for the duration of a single import.
type RecognizedText struct {
	Lines []ocr.Line
}

// Joined returns the full text blob, one recognized line per row, which is
// what store/date detection and the categorizer consume.
func (t RecognizedText) Joined() string {
	parts := make([]string, len(t.Lines))
	for i, ln := range t.Lines {
		parts[i] = ln.Text
	}
	return strings.Join(parts, "\n")
}

// TextExtractor runs the accurate OCR mode on the selected page.
type TextExtractor struct {
	engine ocr.Engine
}

func NewTextExtractor(engine ocr.Engine) *TextExtractor {
	return &TextExtractor{engine: engine}
}

func (e *TextExtractor) Extract(ctx context.Context, page capture.Page) (RecognizedText, error) {
	if !page.Accessible() {
		return RecognizedText{}, &OCRError{Reason: "page has no accessible pixel buffer"}
	}
	lines, err := e.engine.Recognize(ctx, page, ocr.Accurate)
	if err != nil {
		return RecognizedText{}, &OCRError{Reason: "recognition error", Err: err}
	}
	return RecognizedText{Lines: lines}, nil
}
