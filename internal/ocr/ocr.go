package ocr

import (
	"context"

	"github.com/local/receiptimport/internal/capture"
)

// Mode selects the speed/accuracy trade-off for a recognition pass.
// Fast is used when ranking candidate pages against each other, where only
// relative signal matters; Accurate is used on the single selected page whose
// text feeds categorization.
type Mode int

const (
	Fast Mode = iota
	Accurate
)

func (m Mode) String() string {
	if m == Accurate {
		return "accurate"
	}
	return "fast"
}

// Line is one recognized text line with its confidence in [0,1].
type Line struct {
	Text       string
	Confidence float64
}

// Engine is the external OCR capability. Implementations must honor context
// cancellation, since recognition is the pipeline's main suspension point.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, page capture.Page, mode Mode) ([]Line, error)
}
