package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCount counts HTTP requests
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	// AnalysisCount counts comparisons by outcome and verdict category
	AnalysisCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copydetect_analyses_total",
			Help: "Total number of document comparisons",
		},
		[]string{"status", "verdict"},
	)

	// AnalysisDuration measures comparison duration
	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "copydetect_analysis_duration_seconds",
			Help:    "Document comparison duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		},
	)

	// BlockPairs counts block pairs evaluated by the block matcher
	BlockPairs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "copydetect_block_pairs_total",
			Help: "Total number of block pairs compared",
		},
	)

	// StreamMessages counts queue messages by outcome
	StreamMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copydetect_stream_messages_total",
			Help: "Total number of analysis jobs read from the stream",
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

// InitPrometheus registers the collectors with the default registry.
// It is safe to call more than once.
func InitPrometheus() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCount)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(AnalysisCount)
		prometheus.MustRegister(AnalysisDuration)
		prometheus.MustRegister(BlockPairs)
		prometheus.MustRegister(StreamMessages)
	})
}

// Handler returns Prometheus metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveRequest(method, endpoint string, status int, took time.Duration) {
	RequestCount.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(took.Seconds())
}

// ObserveAnalysis records one comparison. verdict is empty for failures.
func ObserveAnalysis(status, verdict string, pairs int, took time.Duration) {
	AnalysisCount.WithLabelValues(status, verdict).Inc()
	AnalysisDuration.Observe(took.Seconds())
	BlockPairs.Add(float64(pairs))
}

func ObserveStreamMessage(outcome string) {
	StreamMessages.WithLabelValues(outcome).Inc()
}
