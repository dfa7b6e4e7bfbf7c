package console

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-adp-console/models"
)

// MetricsService encapsulates Prometheus instrumentation for the console's
// outbound traffic, job tracking, uploads and lookup caches. It keeps its
// own registry so embedding hosts compose it without global collisions.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	pollTicks        prometheus.Counter
	jobsTracked      prometheus.Counter
	jobsCompleted    prometheus.Counter
	jobsFailed       prometheus.Counter
	jobsStale        prometheus.Counter
	uploadsProcessed prometheus.Counter
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	cacheHitRatio    prometheus.Gauge

	requestCount         uint64
	requestDurationNanos uint64
	pollTickCount        uint64
	jobTrackedCount      uint64
	jobCompletedCount    uint64
	jobFailedCount       uint64
	jobStaleCount        uint64
	uploadCount          uint64
	cacheHitCount        uint64
	cacheMissCount       uint64
}

// NewMetricsService registers the console collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_outbound_request_duration_seconds",
		Help:    "Duration of outbound accounts API requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_outbound_requests_total",
		Help: "Total outbound accounts API requests",
	}, []string{"method", "endpoint", "status"})

	pollTicks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "console_poll_ticks_total",
		Help: "Total job poller ticks",
	})
	jobsTracked := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "console_jobs_tracked_total",
		Help: "Total jobs registered with the tracker",
	})
	jobsCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "console_jobs_completed_total",
		Help: "Total tracked jobs that completed",
	})
	jobsFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "console_jobs_failed_total",
		Help: "Total tracked jobs that failed",
	})
	jobsStale := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "console_jobs_stale_total",
		Help: "Total tracked jobs dropped for staleness",
	})
	uploadsProcessed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "console_uploads_processed_total",
		Help: "Total onboarding batches submitted for processing",
	})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "console_cache_hits_total",
		Help: "Total lookup cache hits",
	})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "console_cache_misses_total",
		Help: "Total lookup cache misses",
	})
	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "console_cache_hit_ratio",
		Help: "Lookup cache hit ratio",
	})
	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "console_goroutines",
		Help: "Current number of goroutines",
	}, func() float64 { return float64(runtime.NumGoroutine()) })

	registry.MustRegister(
		requestDuration, requestTotal,
		pollTicks, jobsTracked, jobsCompleted, jobsFailed, jobsStale,
		uploadsProcessed, cacheHits, cacheMisses, cacheHitRatio, goroutines,
	)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		pollTicks:        pollTicks,
		jobsTracked:      jobsTracked,
		jobsCompleted:    jobsCompleted,
		jobsFailed:       jobsFailed,
		jobsStale:        jobsStale,
		uploadsProcessed: uploadsProcessed,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		cacheHitRatio:    cacheHitRatio,
	}
}

// ObserveRequest records one outbound request; it satisfies the transport
// observer contract.
func (m *MetricsService) ObserveRequest(method, endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, endpoint, label).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, endpoint, label).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationNanos, uint64(duration.Nanoseconds()))
}

// RecordPollTick counts one poller pass over the active job set.
func (m *MetricsService) RecordPollTick() {
	if m == nil {
		return
	}
	m.pollTicks.Inc()
	atomic.AddUint64(&m.pollTickCount, 1)
}

// RecordJobTracked counts one job registration.
func (m *MetricsService) RecordJobTracked() {
	if m == nil {
		return
	}
	m.jobsTracked.Inc()
	atomic.AddUint64(&m.jobTrackedCount, 1)
}

// RecordJobCompleted counts one job reaching the completed state.
func (m *MetricsService) RecordJobCompleted() {
	if m == nil {
		return
	}
	m.jobsCompleted.Inc()
	atomic.AddUint64(&m.jobCompletedCount, 1)
}

// RecordJobFailed counts one job reaching the failed state.
func (m *MetricsService) RecordJobFailed() {
	if m == nil {
		return
	}
	m.jobsFailed.Inc()
	atomic.AddUint64(&m.jobFailedCount, 1)
}

// RecordJobStale counts one job dropped for staleness.
func (m *MetricsService) RecordJobStale() {
	if m == nil {
		return
	}
	m.jobsStale.Inc()
	atomic.AddUint64(&m.jobStaleCount, 1)
}

// RecordUploadProcessed counts one onboarding batch submission.
func (m *MetricsService) RecordUploadProcessed() {
	if m == nil {
		return
	}
	m.uploadsProcessed.Inc()
	atomic.AddUint64(&m.uploadCount, 1)
}

// RecordCacheLookup counts one lookup cache read and refreshes the ratio.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// Snapshot returns the aggregated counters for embedding hosts.
func (m *MetricsService) Snapshot() models.ConsoleMetrics {
	requests := atomic.LoadUint64(&m.requestCount)
	var avgMs float64
	if requests > 0 {
		avgMs = float64(atomic.LoadUint64(&m.requestDurationNanos)) / float64(requests) / float64(time.Millisecond)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	ratio := 0.0
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}
	return models.ConsoleMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgMs,
		PollTicks:                atomic.LoadUint64(&m.pollTickCount),
		JobsTracked:              atomic.LoadUint64(&m.jobTrackedCount),
		JobsCompleted:            atomic.LoadUint64(&m.jobCompletedCount),
		JobsFailed:               atomic.LoadUint64(&m.jobFailedCount),
		JobsStale:                atomic.LoadUint64(&m.jobStaleCount),
		UploadsProcessed:         atomic.LoadUint64(&m.uploadCount),
		CacheHits:                hits,
		CacheMisses:              misses,
		CacheHitRatio:            ratio,
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

// Handler exposes the Prometheus scrape endpoint for the console registry.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}
