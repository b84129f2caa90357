package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/receiptimport/internal/capture"
	"github.com/local/receiptimport/internal/metrics"
)

// TesseractConfig configures the CLI adapter.
type TesseractConfig struct {
	Binary      string // path to the tesseract binary
	Lang        string // e.g. "eng" or "eng+deu"
	TessdataDir string // optional --tessdata-dir override
}

// Tesseract shells out to the tesseract CLI in TSV mode, which carries a
// per-word confidence column. Fast mode halves the page resolution before
// recognition; Accurate mode runs the LSTM engine on the full page.
type Tesseract struct {
	cfg TesseractConfig
}

func NewTesseract(cfg TesseractConfig) *Tesseract {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &Tesseract{cfg: cfg}
}

func (t *Tesseract) Name() string { return "tesseract" }

func (t *Tesseract) Recognize(ctx context.Context, page capture.Page, mode Mode) ([]Line, error) {
	if !page.Accessible() {
		return nil, fmt.Errorf("page has no pixel data")
	}

	img := image.Image(page.Gray())
	if mode == Fast {
		img = downscale(page.Gray(), 2)
	}

	path, err := writeTempPNG(img)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	args := []string{path, "stdout", "-l", t.cfg.Lang}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	switch mode {
	case Fast:
		// Legacy engine with a uniform-block page model: worse text, much
		// faster, good enough for ranking candidates.
		args = append(args, "--oem", "0", "--psm", "6")
	default:
		args = append(args, "--oem", "1", "--psm", "4")
	}
	args = append(args, "tsv")

	start := time.Now()
	var out, errb bytes.Buffer
	cmd := exec.CommandContext(ctx, t.cfg.Binary, args...)
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err = cmd.Run()
	metrics.ObserveOCR(mode.String(), time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(errb.String()))
	}

	lines := parseTSV(out.String())
	log.Debug().Int("lines", len(lines)).Int("mode", int(mode)).Msg("tesseract recognition done")
	return lines, nil
}

// parseTSV groups tesseract TSV words into lines keyed by
// (block, paragraph, line) and averages their confidences into 0..1.
func parseTSV(tsv string) []Line {
	type agg struct {
		words []string
		sum   float64
		n     int
	}

	var order []string
	groups := map[string]*agg{}

	rows := strings.Split(tsv, "\n")
	for i, row := range rows {
		if i == 0 || strings.TrimSpace(row) == "" {
			continue // header
		}
		cols := strings.Split(row, "\t")
		if len(cols) < 12 {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue // non-word rows carry conf -1
		}
		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}
		key := cols[2] + ":" + cols[3] + ":" + cols[4]
		g, ok := groups[key]
		if !ok {
			g = &agg{}
			groups[key] = g
			order = append(order, key)
		}
		g.words = append(g.words, word)
		g.sum += conf
		g.n++
	}

	lines := make([]Line, 0, len(order))
	for _, key := range order {
		g := groups[key]
		lines = append(lines, Line{
			Text:       strings.Join(g.words, " "),
			Confidence: g.sum / float64(g.n) / 100.0,
		})
	}
	return lines
}

func downscale(src *image.Gray, factor int) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx()/factor, b.Dy()/factor
	if w < 1 || h < 1 {
		return src
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.SetGray(x, y, src.GrayAt(b.Min.X+x*factor, b.Min.Y+y*factor))
		}
	}
	return dst
}

func writeTempPNG(img image.Image) (string, error) {
	f, err := os.CreateTemp("", "ocr-*.png")
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("encode page png: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
