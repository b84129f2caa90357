package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/local/receiptimport/internal/categorize"
	"github.com/local/receiptimport/internal/extract"
	"github.com/local/receiptimport/internal/history"
	"github.com/local/receiptimport/internal/ocr"
	"github.com/local/receiptimport/internal/quality"
)

// memHistory keeps records in a map, standing in for Redis.
type memHistory struct {
	records map[string]history.Record
}

func newMemHistory() *memHistory {
	return &memHistory{records: map[string]history.Record{}}
}

func (m *memHistory) Save(_ context.Context, rec history.Record) error {
	m.records[rec.ID] = rec
	return nil
}

func (m *memHistory) Get(_ context.Context, id string) (history.Record, bool, error) {
	rec, ok := m.records[id]
	return rec, ok, nil
}

func pngUpload() []byte {
	var buf bytes.Buffer
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	ExpectWithOffset(1, png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("Server", func() {
	var (
		categorizer *fakeCategorizer
		hist        *memHistory
		ts          *httptest.Server
	)

	BeforeEach(func() {
		categorizer = &fakeCategorizer{items: []categorize.LineItem{
			{ItemName: "Milk", Category: categorize.CategoryDairy, Quantity: 1, Amount: 1.2},
		}}
		hist = newMemHistory()

		engine := receiptEngine{lines: []ocr.Line{
			{Text: "LIDL", Confidence: 0.9},
			{Text: "MILK 1.20", Confidence: 0.9},
		}}
		imp := New(
			quality.NewSelector(&indexScorer{scores: []float64{1}}),
			extract.NewTextExtractor(engine),
			categorizer,
		)

		mux := http.NewServeMux()
		NewServer(imp, hist, nil, 1<<20).RegisterRoutes(mux)
		ts = httptest.NewServer(mux)
		DeferCleanup(ts.Close)
	})

	It("imports an uploaded PNG and records the outcome", func() {
		resp, err := http.Post(ts.URL+"/import", "image/png", bytes.NewReader(pngUpload()))
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var body importResp
		Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
		Expect(body.Store).To(Equal("Lidl"))
		Expect(body.Transactions).To(HaveLen(1))
		Expect(body.ImportID).NotTo(BeEmpty())

		rec, ok, _ := hist.Get(context.Background(), body.ImportID)
		Expect(ok).To(BeTrue())
		Expect(rec.Status).To(Equal("success"))
		Expect(rec.ItemCount).To(Equal(1))

		getResp, err := http.Get(ts.URL + "/imports/" + body.ImportID)
		Expect(err).NotTo(HaveOccurred())
		defer getResp.Body.Close()
		Expect(getResp.StatusCode).To(Equal(http.StatusOK))
	})

	It("maps an empty categorization result to a gateway error with a kind", func() {
		categorizer.items = nil
		categorizer.err = categorize.ErrEmptyResult

		resp, err := http.Post(ts.URL+"/import", "image/png", bytes.NewReader(pngUpload()))
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))

		var body errorResp
		Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
		Expect(body.Kind).To(Equal("empty_result"))
	})

	It("rejects an upload that is not a scan", func() {
		resp, err := http.Post(ts.URL+"/import", "text/plain", bytes.NewReader([]byte("hello")))
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusUnprocessableEntity))
	})

	It("404s an unknown import id", func() {
		resp, err := http.Get(ts.URL + "/imports/nope")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
	})
})
