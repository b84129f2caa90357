package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/local/receiptimport/internal/categorize"
	cfgpkg "github.com/local/receiptimport/internal/config"
	"github.com/local/receiptimport/internal/extract"
	"github.com/local/receiptimport/internal/history"
	"github.com/local/receiptimport/internal/importer"
	logpkg "github.com/local/receiptimport/internal/logger"
	"github.com/local/receiptimport/internal/metrics"
	"github.com/local/receiptimport/internal/ocr"
	"github.com/local/receiptimport/internal/quality"
	"github.com/local/receiptimport/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := cfgpkg.FromEnv()

	_ = logpkg.Init(logpkg.Options{
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	})
	defer logpkg.Close()

	metrics.Init()

	// Pipeline wiring: OCR engine → scorers → selector → importer.
	engine := ocr.NewTesseract(ocr.TesseractConfig{
		Binary:      cfg.OCR.Binary,
		Lang:        cfg.OCR.Lang,
		TessdataDir: cfg.OCR.TessdataDir,
	})

	textSignal := quality.NewTextSignal(engine, quality.TextWeights{
		Confidence:     cfg.Scoring.ConfidenceWeight,
		Density:        cfg.Scoring.DensityWeight,
		Digit:          cfg.Scoring.DigitWeight,
		DensityCeiling: cfg.Scoring.DensityCeiling,
	})
	scorer := quality.NewPageScorer(textSignal,
		quality.Weights{
			Text:      cfg.Scoring.TextWeight,
			Sharpness: cfg.Scoring.SharpnessWeight,
			Contrast:  cfg.Scoring.ContrastWeight,
		},
		quality.Ceilings{
			Sharpness: cfg.Scoring.SharpnessCeiling,
			Contrast:  cfg.Scoring.ContrastCeiling,
		})
	selector := quality.NewSelector(scorer)
	extractor := extract.NewTextExtractor(engine)

	client := categorize.New(categorize.Config{
		Endpoint: cfg.Categorizer.Endpoint,
		APIKey:   cfg.Categorizer.APIKey,
		Timeout:  cfg.Categorizer.Timeout,
	})

	imp := importer.New(selector, extractor, client)

	// Import history
	hist, err := history.NewRedisStore(cfg.History.RedisURL, cfg.History.TTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer hist.Close()

	// Page archive (optional)
	var archive importer.Archiver
	if cfg.Archive.Bucket != "" {
		s3a, err := storage.NewS3Archive(context.Background(), storage.Options{
			Bucket:    cfg.Archive.Bucket,
			Prefix:    cfg.Archive.Prefix,
			Region:    cfg.Archive.Region,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init s3 archive")
		}
		archive = s3a
	}

	srv := importer.NewServer(imp, hist, archive, cfg.Server.MaxUploadBytes)
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	mux.Handle("/metrics", metrics.Handler())

	httpSrv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: mux}

	go func() {
		log.Info().Msgf("HTTP server listening on :%s", cfg.Server.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	fmt.Println("shutdown complete")
}
