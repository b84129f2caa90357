package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom log forwarding configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// ScoringConfig holds the page-quality weights and normalization ceilings.
// The defaults are empirical constants carried over from product tuning with
// no documented derivation; they are deliberately configuration rather than
// literals so they can be recalibrated without a release.
type ScoringConfig struct {
	TextWeight      float64
	SharpnessWeight float64
	ContrastWeight  float64

	ConfidenceWeight float64
	DensityWeight    float64
	DigitWeight      float64
	DensityCeiling   int

	SharpnessCeiling float64
	ContrastCeiling  float64
}

// OCRConfig configures the tesseract adapter.
type OCRConfig struct {
	Binary      string
	Lang        string
	TessdataDir string
}

// CategorizerConfig configures the remote categorization endpoint.
type CategorizerConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// HistoryConfig configures the Redis import-history store.
type HistoryConfig struct {
	RedisURL string
	TTL      time.Duration
}

// ArchiveConfig configures the S3 page archive. Empty bucket disables it.
type ArchiveConfig struct {
	Bucket    string
	Prefix    string
	Region    string
	AccessKey string
	SecretKey string
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port            string
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
}

// Config is the top-level configuration.
type Config struct {
	Logging     LoggingConfig
	Axiom       AxiomConfig
	Scoring     ScoringConfig
	OCR         OCRConfig
	Categorizer CategorizerConfig
	History     HistoryConfig
	Archive     ArchiveConfig
	Server      ServerConfig
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", "logs/receiptimport.log"),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_receiptimport",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Scoring = ScoringConfig{
		TextWeight:       parseFloat(getEnv("SCORE_TEXT_WEIGHT", "0.5"), 0.5),
		SharpnessWeight:  parseFloat(getEnv("SCORE_SHARPNESS_WEIGHT", "0.3"), 0.3),
		ContrastWeight:   parseFloat(getEnv("SCORE_CONTRAST_WEIGHT", "0.2"), 0.2),
		ConfidenceWeight: parseFloat(getEnv("SCORE_CONFIDENCE_WEIGHT", "0.5"), 0.5),
		DensityWeight:    parseFloat(getEnv("SCORE_DENSITY_WEIGHT", "0.3"), 0.3),
		DigitWeight:      parseFloat(getEnv("SCORE_DIGIT_WEIGHT", "0.2"), 0.2),
		DensityCeiling:   parseInt(getEnv("SCORE_DENSITY_CEILING", "50"), 50),
		SharpnessCeiling: parseFloat(getEnv("SCORE_SHARPNESS_CEILING", "40"), 40),
		ContrastCeiling:  parseFloat(getEnv("SCORE_CONTRAST_CEILING", "64"), 64),
	}

	cfg.OCR = OCRConfig{
		Binary:      getEnv("TESSERACT_BIN", "tesseract"),
		Lang:        getEnv("TESSERACT_LANG", "eng"),
		TessdataDir: getEnv("TESSERACT_DATA_DIR", ""),
	}

	cfg.Categorizer = CategorizerConfig{
		Endpoint: getEnv("CATEGORIZER_URL", "http://localhost:8090/v1/categorize"),
		APIKey:   getEnv("CATEGORIZER_API_KEY", ""),
		Timeout:  parseDuration(getEnv("CATEGORIZER_TIMEOUT", "30s"), 30*time.Second),
	}

	cfg.History = HistoryConfig{
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		TTL:      parseDuration(getEnv("HISTORY_TTL", "720h"), 720*time.Hour),
	}

	cfg.Archive = ArchiveConfig{
		Bucket:    getEnv("ARCHIVE_S3_BUCKET", ""),
		Prefix:    getEnv("ARCHIVE_S3_PREFIX", "receipts"),
		Region:    getEnv("AWS_REGION", ""),
		AccessKey: getEnv("ARCHIVE_S3_ACCESS_KEY", ""),
		SecretKey: getEnv("ARCHIVE_S3_SECRET_KEY", ""),
	}

	cfg.Server = ServerConfig{
		Port:            getEnv("PORT", "8080"),
		MaxUploadBytes:  int64(parseInt(getEnv("MAX_UPLOAD_MB", "32"), 32)) << 20,
		ShutdownTimeout: parseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
	}

	return cfg
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func devDefaultPretty() string {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "dev" || env == "development" || env == "local" {
		return "true"
	}
	return "false"
}
