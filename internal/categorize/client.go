package categorize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/receiptimport/internal/metrics"
)

// LineItem is one priced entry as returned by the remote service, with its
// category already normalized onto the closed set. Never constructed
// speculatively: only a successful response produces line items.
type LineItem struct {
	ItemName string
	Category Category
	Quantity int
	Amount   float64
}

// Config configures the categorization client.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration // bound on the whole round trip
}

// Client performs the receipt-text → line-items round trip. One call is one
// request: Idle → Sent → Succeeded/Failed, with no automatic retries — a
// failure surfaces immediately and the caller owns any retry decision.
type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{}}
}

// The outbound request is a typed structure serialized once, here. The
// category list is embedded so the remote must choose from the closed set.
type categorizeReq struct {
	Text       string   `json:"text"`
	Categories []string `json:"categories"`
}

type itemPayload struct {
	ItemName string  `json:"itemName"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Amount   float64 `json:"amount"`
}

type categorizeResp struct {
	Items []itemPayload `json:"items"`
}

// Categorize sends the receipt text and parses the response into line items.
// All failure paths map onto the package's error taxonomy.
func (c *Client) Categorize(ctx context.Context, receiptText string) ([]LineItem, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	cats := make([]string, len(AllCategories))
	for i, cat := range AllCategories {
		cats[i] = string(cat)
	}
	payload, err := json.Marshal(categorizeReq{Text: receiptText, Categories: cats})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.ObserveCategorizer("transport_error", time.Since(start))
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveCategorizer("transport_error", time.Since(start))
		return nil, &TransportError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		metrics.ObserveCategorizer("auth_error", time.Since(start))
		return nil, &AuthError{StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		metrics.ObserveCategorizer("server_error", time.Since(start))
		return nil, &ServerError{StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
	}

	raw := string(body)
	var parsed categorizeResp
	if err := json.Unmarshal([]byte(cleanResponseBody(raw)), &parsed); err != nil {
		metrics.ObserveCategorizer("malformed", time.Since(start))
		return nil, &MalformedResponseError{Raw: raw, Err: err}
	}
	if len(parsed.Items) == 0 {
		metrics.ObserveCategorizer("empty", time.Since(start))
		return nil, ErrEmptyResult
	}

	items := make([]LineItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		amount := it.Amount
		if amount < 0 {
			amount = 0
		}
		items = append(items, LineItem{
			ItemName: it.ItemName,
			Category: NormalizeCategory(it.Category),
			Quantity: qty,
			Amount:   amount,
		})
	}

	metrics.ObserveCategorizer("success", time.Since(start))
	log.Debug().Int("items", len(items)).Dur("took", time.Since(start)).Msg("categorization succeeded")
	return items, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
