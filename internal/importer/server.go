package importer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/receiptimport/internal/capture"
	"github.com/local/receiptimport/internal/history"
)

// Archiver stores the winning page image. Best-effort: archive failures are
// logged, never surfaced to the client.
type Archiver interface {
	Archive(ctx context.Context, page capture.Page) (string, error)
}

// History records import outcomes.
type History interface {
	Save(ctx context.Context, rec history.Record) error
	Get(ctx context.Context, id string) (history.Record, bool, error)
}

// Server is the HTTP surface around the import pipeline.
type Server struct {
	importer       *Importer
	hist           History
	archive        Archiver // nil when archival is disabled
	maxUploadBytes int64
}

func NewServer(imp *Importer, hist History, archive Archiver, maxUploadBytes int64) *Server {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &Server{importer: imp, hist: hist, archive: archive, maxUploadBytes: maxUploadBytes}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/import", s.handleImport)
	mux.HandleFunc("/imports/", s.handleGetImport)
}

type importResp struct {
	ImportID     string        `json:"import_id"`
	Store        string        `json:"store"`
	Date         time.Time     `json:"date"`
	Transactions []Transaction `json:"transactions"`
}

type errorResp struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	data, err := s.readUpload(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pages, err := capture.Decode(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	importID := uuid.NewString()
	result, err := s.importer.Import(r.Context(), pages)
	if err != nil {
		kind := failureKind(err)
		s.record(r.Context(), history.Record{
			ID:          importID,
			CreatedAt:   time.Now(),
			Status:      "failed",
			FailureKind: kind,
		})
		writeJSON(w, statusForKind(kind), errorResp{Error: err.Error(), Kind: kind})
		return
	}

	rec := history.Record{
		ID:        importID,
		CreatedAt: time.Now(),
		Status:    "success",
		Store:     string(result.Facts.Store),
		ItemCount: len(result.Transactions),
		Total:     sumAmounts(result.Transactions),
	}

	s.record(r.Context(), rec)

	if s.archive != nil {
		// Detached from the request: the client should not wait on S3, and a
		// backed-out request must not cancel a nearly finished upload.
		page := result.Page
		go func(rec history.Record) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			key, err := s.archive.Archive(ctx, page)
			if err != nil {
				log.Warn().Err(err).Str("import_id", importID).Msg("page archival failed")
				return
			}
			rec.ArchiveKey = key
			s.record(ctx, rec)
		}(rec)
	}

	writeJSON(w, http.StatusOK, importResp{
		ImportID:     importID,
		Store:        string(result.Facts.Store),
		Date:         result.Facts.Date,
		Transactions: result.Transactions,
	})
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/imports/")
	if id == "" || s.hist == nil {
		http.NotFound(w, r)
		return
	}
	rec, ok, err := s.hist.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// readUpload accepts either a multipart form with a "file" part or a raw
// body with the image/PDF bytes.
func (s *Server) readUpload(r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, s.maxUploadBytes)

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
			return nil, err
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return io.ReadAll(r.Body)
}

func (s *Server) record(ctx context.Context, rec history.Record) {
	if s.hist == nil {
		return
	}
	if err := s.hist.Save(ctx, rec); err != nil {
		log.Warn().Err(err).Str("import_id", rec.ID).Msg("history save failed")
	}
}

// statusForKind maps the failure taxonomy onto HTTP statuses so callers can
// render a targeted message per kind.
func statusForKind(kind string) int {
	switch kind {
	case "capture_empty":
		return http.StatusBadRequest
	case "ocr":
		return http.StatusUnprocessableEntity
	case "transport":
		return http.StatusBadGateway
	case "auth":
		return http.StatusBadGateway
	case "server":
		return http.StatusBadGateway
	case "malformed", "empty_result":
		return http.StatusBadGateway
	case "cancelled":
		return 499 // client closed request
	default:
		return http.StatusInternalServerError
	}
}

func sumAmounts(txs []Transaction) float64 {
	var total float64
	for _, tx := range txs {
		total += tx.Amount * float64(tx.Quantity)
	}
	return total
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
