package capture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog/log"
)

// RenderDPI is the resolution used when rasterizing PDF pages. Receipts are
// narrow, so 200 DPI keeps text legible for OCR without megapixel blowup.
const RenderDPI = 200.0

// MaxPDFPages caps how many pages of an uploaded PDF become capture
// candidates. Scanner apps occasionally emit dozens of near-duplicate pages.
const MaxPDFPages = 16

// Decode sniffs the upload by magic bytes and turns it into capture pages.
// A PDF yields one page per PDF page; any supported image yields exactly one.
func Decode(data []byte) ([]Page, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty upload")
	}

	mtype := mimetype.Detect(data)
	mime := mtype.String()
	log.Debug().Str("mime", mime).Int("bytes", len(data)).Msg("detected upload type")

	switch {
	case mime == "application/pdf":
		return decodePDF(data)
	case mime == "image/heic" || mime == "image/heif" || strings.Contains(mime, "heic"):
		return decodeHEIC(data)
	case strings.HasPrefix(mime, "image/"):
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", mime, err)
		}
		return []Page{FromImage(img, 0)}, nil
	default:
		return nil, fmt.Errorf("unsupported upload type %s", mime)
	}
}

func decodeHEIC(data []byte) ([]Page, error) {
	img, err := heic.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode heic: %w", err)
	}
	return []Page{FromImage(img, 0)}, nil
}

func decodePDF(data []byte) ([]Page, error) {
	total, err := pdfPageCount(data)
	if err != nil {
		log.Warn().Err(err).Msg("pdf page count failed; rendering whatever opens")
	}
	if total > MaxPDFPages {
		log.Warn().Int("pages", total).Int("cap", MaxPDFPages).Msg("pdf truncated to page cap")
		total = MaxPDFPages
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	if total <= 0 || total > doc.NumPage() {
		total = doc.NumPage()
		if total > MaxPDFPages {
			total = MaxPDFPages
		}
	}

	pages := make([]Page, 0, total)
	for i := 0; i < total; i++ {
		img, err := doc.ImageDPI(i, RenderDPI)
		if err != nil {
			// A single unreadable page should not sink the scan; it simply
			// never becomes a selection candidate.
			log.Warn().Err(err).Int("page", i).Msg("pdf page render failed; skipping")
			continue
		}
		pages = append(pages, FromImage(img, len(pages)))
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdf produced no renderable pages")
	}
	return pages, nil
}

// pdfPageCount asks pdfcpu for the page count before committing to a full
// rasterization pass. pdfcpu's API is file-based, so spill to a temp file.
func pdfPageCount(data []byte) (int, error) {
	f, err := os.CreateTemp("", "receipt-*.pdf")
	if err != nil {
		return 0, err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	return api.PageCountFile(f.Name())
}
