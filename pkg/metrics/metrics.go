package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SkipReason labels why content analysis skipped a file.
type SkipReason string

const (
	// SkipBinary records a file excluded by binary detection.
	SkipBinary SkipReason = "binary"
	// SkipOversize records a file excluded by the size ceiling.
	SkipOversize SkipReason = "oversize"
)

// Recorder publishes Prometheus metrics for evaluation activity. A nil
// Recorder is valid and records nothing, so instrumentation stays
// optional throughout the engine.
type Recorder struct {
	gatherer prometheus.Gatherer
	handler  http.Handler

	evaluations       *prometheus.CounterVec
	evaluationLatency *prometheus.HistogramVec
	cacheLookups      *prometheus.CounterVec
	scanDuration      prometheus.Histogram
	filesScanned      prometheus.Counter
	contentSkips      *prometheus.CounterVec
}

// NewRecorder constructs a Prometheus-backed Recorder. When reg is nil
// a dedicated registry is created so multiple recorders can coexist
// without conflicting with the global default registerer.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rulescan",
		Subsystem: "engine",
		Name:      "evaluations_total",
		Help:      "Total (file, rule) evaluations performed.",
	}, []string{"outcome", "from_cache"})

	evaluationLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rulescan",
		Subsystem: "engine",
		Name:      "evaluation_duration_seconds",
		Help:      "Latency distribution for single (file, rule) evaluations.",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"outcome"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rulescan",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Evaluation cache lookups by result.",
	}, []string{"result"})

	scanDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rulescan",
		Subsystem: "scanner",
		Name:      "scan_duration_seconds",
		Help:      "Latency distribution for directory scans.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	})

	filesScanned := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rulescan",
		Subsystem: "scanner",
		Name:      "files_scanned_total",
		Help:      "Total files visited during directory scans.",
	})

	contentSkips := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rulescan",
		Subsystem: "content",
		Name:      "skips_total",
		Help:      "Files excluded from content analysis by reason.",
	}, []string{"reason"})

	reg.MustRegister(evaluations, evaluationLatency, cacheLookups, scanDuration, filesScanned, contentSkips)

	return &Recorder{
		gatherer:          reg,
		handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		evaluations:       evaluations,
		evaluationLatency: evaluationLatency,
		cacheLookups:      cacheLookups,
		scanDuration:      scanDuration,
		filesScanned:      filesScanned,
		contentSkips:      contentSkips,
	}
}

// Handler exposes the Prometheus HTTP handler for the recorder's
// registry.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "metrics unavailable", http.StatusServiceUnavailable)
		})
	}
	return r.handler
}

// Gatherer returns the underlying Prometheus gatherer for tests and
// advanced integrations.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.gatherer
}

// ObserveEvaluation records the outcome and latency of one (file, rule)
// evaluation.
func (r *Recorder) ObserveEvaluation(matched, fromCache bool, duration time.Duration) {
	if r == nil {
		return
	}
	outcome := "no_match"
	if matched {
		outcome = "match"
	}
	cacheLabel := "false"
	if fromCache {
		cacheLabel = "true"
	}
	r.evaluations.WithLabelValues(outcome, cacheLabel).Inc()
	r.evaluationLatency.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveCacheLookup records one evaluation cache probe.
func (r *Recorder) ObserveCacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveScan records a completed directory scan.
func (r *Recorder) ObserveScan(files int, duration time.Duration) {
	if r == nil {
		return
	}
	r.scanDuration.Observe(duration.Seconds())
	r.filesScanned.Add(float64(files))
}

// ObserveContentSkip records a file excluded from content analysis.
func (r *Recorder) ObserveContentSkip(reason SkipReason) {
	if r == nil {
		return
	}
	r.contentSkips.WithLabelValues(string(reason)).Inc()
}
