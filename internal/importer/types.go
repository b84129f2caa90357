package importer

import (
	"time"

	"github.com/local/receiptimport/internal/capture"
	"github.com/local/receiptimport/internal/categorize"
	"github.com/local/receiptimport/internal/extract"
)

// ReceiptFacts is the immutable output of the extraction stage. Date is
// never unset: when no date is recoverable from the text, the import time is
// substituted before the facts are built.
type ReceiptFacts struct {
	Store   extract.Store
	Date    time.Time
	RawText string
}

// Transaction is the final materialized record, one per categorized line
// item. Ownership passes to the external transaction store once returned.
type Transaction struct {
	ID            string              `json:"id"`
	StoreName     string              `json:"storeName"`
	Category      categorize.Category `json:"category"`
	ItemName      string              `json:"itemName"`
	Amount        float64             `json:"amount"`
	Date          time.Time           `json:"date"`
	Quantity      int                 `json:"quantity"`
	PaymentMethod string              `json:"paymentMethod"`
}

// Result carries the transactions plus the facts and winning page, which the
// service surface uses for archival and history.
type Result struct {
	Transactions []Transaction
	Facts        ReceiptFacts
	Page         capture.Page
}
