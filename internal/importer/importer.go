package importer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/receiptimport/internal/capture"
	"github.com/local/receiptimport/internal/categorize"
	"github.com/local/receiptimport/internal/extract"
	"github.com/local/receiptimport/internal/metrics"
	"github.com/local/receiptimport/internal/quality"
)

// ErrCaptureEmpty is returned when an import is attempted with no pages.
// The capture boundary should make this unreachable; it is a guard clause.
var ErrCaptureEmpty = errors.New("capture session produced no pages")

// Categorizer is the remote round trip. Satisfied by categorize.Client.
type Categorizer interface {
	Categorize(ctx context.Context, receiptText string) ([]categorize.LineItem, error)
}

// Importer composes selection, extraction, detection and categorization into
// one call. All collaborators are injected; the importer holds no mutable
// state between calls.
type Importer struct {
	selector    *quality.Selector
	extractor   *extract.TextExtractor
	categorizer Categorizer
	now         func() time.Time
}

func New(selector *quality.Selector, extractor *extract.TextExtractor, categorizer Categorizer) *Importer {
	return &Importer{
		selector:    selector,
		extractor:   extractor,
		categorizer: categorizer,
		now:         time.Now,
	}
}

// Import runs the full pipeline: select best page → extract text → detect
// store and date (both pure, run in parallel) → categorize → materialize.
//
// Whichever stage fails first propagates unmodified, except that nothing is
// sent to the categorizer once extraction has failed — there is no point in
// a network round trip for text that does not exist. Cancelling ctx cancels
// the operation as a unit, including in-flight scoring and the remote call,
// and no partial transactions are surfaced.
func (im *Importer) Import(ctx context.Context, pages []capture.Page) (Result, error) {
	start := time.Now()
	if len(pages) == 0 {
		metrics.IncImport("capture_empty")
		return Result{}, ErrCaptureEmpty
	}
	if len(pages) > 1 {
		metrics.IncPagesScored(len(pages))
	}

	page, err := im.selector.SelectBest(ctx, pages)
	if err != nil {
		metrics.IncImport(failureKind(err))
		return Result{}, err
	}

	text, err := im.extractor.Extract(ctx, page)
	if err != nil {
		metrics.IncImport(failureKind(err))
		return Result{}, err
	}
	raw := text.Joined()

	// Store and date detection are independent pure functions over the same
	// text; run them side by side while nothing else is in flight.
	var store extract.Store
	var date *time.Time
	done := make(chan struct{})
	go func() {
		store = extract.DetectStore(raw)
		close(done)
	}()
	date = extract.ExtractDate(raw)
	<-done

	facts := ReceiptFacts{Store: store, RawText: raw}
	if date != nil {
		facts.Date = *date
	} else {
		facts.Date = im.now()
	}

	items, err := im.categorizer.Categorize(ctx, facts.RawText)
	if err != nil {
		metrics.IncImport(failureKind(err))
		return Result{}, err
	}

	txs := make([]Transaction, 0, len(items))
	for _, it := range items {
		txs = append(txs, Transaction{
			ID:            uuid.NewString(),
			StoreName:     string(facts.Store),
			Category:      it.Category,
			ItemName:      it.ItemName,
			Amount:        it.Amount,
			Date:          facts.Date,
			Quantity:      it.Quantity,
			PaymentMethod: "Unknown",
		})
	}

	metrics.IncImport("success")
	metrics.ObserveImport(time.Since(start))
	log.Info().
		Int("pages", len(pages)).
		Int("transactions", len(txs)).
		Str("store", string(facts.Store)).
		Dur("took", time.Since(start)).
		Msg("receipt imported")
	return Result{Transactions: txs, Facts: facts, Page: page}, nil
}

// failureKind maps a pipeline error onto the metrics/history label set.
func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrCaptureEmpty), errors.Is(err, quality.ErrNoPages):
		return "capture_empty"
	case extract.IsOCRError(err):
		return "ocr"
	case categorize.IsTransport(err):
		return "transport"
	case categorize.IsAuth(err):
		return "auth"
	case categorize.IsServer(err):
		return "server"
	case categorize.IsMalformed(err):
		return "malformed"
	case categorize.IsEmptyResult(err):
		return "empty_result"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "other"
	}
}
