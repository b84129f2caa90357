package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	importsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "receiptimport",
			Name:      "imports_total",
			Help:      "Total receipt imports by result (success or failure kind)",
		},
		[]string{"result"},
	)

	importDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "receiptimport",
			Name:      "import_duration_seconds",
			Help:      "End-to-end duration of receipt imports",
			Buckets:   prometheus.DefBuckets,
		},
	)

	pagesScored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "receiptimport",
			Name:      "pages_scored_total",
			Help:      "Total candidate pages scored during best-page selection",
		},
	)

	ocrLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "receiptimport",
			Name:      "ocr_duration_seconds",
			Help:      "Duration of OCR passes by mode",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	categorizerReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "receiptimport",
			Name:      "categorizer_requests_total",
			Help:      "Categorization round trips by result",
		},
		[]string{"result"},
	)

	categorizerLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "receiptimport",
			Name:      "categorizer_request_duration_seconds",
			Help:      "Duration of categorization round trips",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Init registers collectors.
func Init() {
	prometheus.MustRegister(importsTotal, importDuration, pagesScored, ocrLatency, categorizerReqs, categorizerLatency)
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func IncImport(result string)         { importsTotal.WithLabelValues(result).Inc() }
func ObserveImport(dur time.Duration) { importDuration.Observe(dur.Seconds()) }
func IncPagesScored(n int)            { pagesScored.Add(float64(n)) }

func ObserveOCR(mode string, dur time.Duration) {
	ocrLatency.WithLabelValues(mode).Observe(dur.Seconds())
}

func ObserveCategorizer(result string, dur time.Duration) {
	categorizerReqs.WithLabelValues(result).Inc()
	categorizerLatency.Observe(dur.Seconds())
}
