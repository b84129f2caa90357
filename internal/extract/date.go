package extract

import (
	"regexp"
	"sort"
	"time"

	"github.com/araddon/dateparse"
)

// Receipt dates show up in wildly mixed notations; these patterns only
// locate date-like spans, the actual parse is delegated to dateparse.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`\b\d{1,2}[./-]\d{1,2}[./-]\d{2,4}\b`),
	regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}\.?\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{4}\b`),
}

// ExtractDate finds the first parseable date-like span in the receipt text
// and returns it, or nil when no date is recoverable — a common case the
// caller answers with the capture time, not an error.
//
// Parsing policy: ambiguous numeric dates are read day-first ("18/01/2026"
// is 18 January), which matches European receipt layouts; US month-first
// receipts are still handled whenever the day field exceeds 12. When a
// receipt carries several dates (loyalty expiry next to the transaction
// date), the earliest occurrence in reading order wins — a known ambiguity.
func ExtractDate(text string) *time.Time {
	type span struct {
		start int
		match string
	}

	var spans []span
	for _, re := range datePatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, span{start: loc[0], match: text[loc[0]:loc[1]]})
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	for _, sp := range spans {
		t, err := dateparse.ParseAny(sp.match, dateparse.PreferMonthFirst(false))
		if err != nil {
			continue
		}
		if t.Year() < 2000 || t.Year() > 2100 {
			continue // OCR noise, not a transaction date
		}
		return &t
	}
	return nil
}
