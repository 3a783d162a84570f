package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic,
// the recommendation cache and the rules engine. A nil *MetricsService is a
// valid no-op recorder.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	admissions      *prometheus.CounterVec
	warningsIssued  *prometheus.CounterVec
	warningsClosed  *prometheus.CounterVec
	sweepDuration   prometheus.Observer
	sweepStudents   *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	sweepCount           uint64
}

// SystemMetrics is a lightweight snapshot for the status endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	WarningSweeps            uint64    `json:"warning_sweeps"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	admissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enrollment_admissions_total",
		Help: "Enrollment attempts by outcome (accepted or the rejection reason)",
	}, []string{"outcome"})

	warningsIssued := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "academic_warnings_issued_total",
		Help: "Academic warnings issued",
	}, []string{"type", "level"})

	warningsClosed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "academic_warnings_resolved_total",
		Help: "Academic warnings resolved automatically or manually",
	}, []string{"type"})

	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "warning_sweep_duration_seconds",
		Help:    "Duration of batch warning evaluation sweeps",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
	})

	sweepStudents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warning_sweep_students_total",
		Help: "Students evaluated by batch sweeps",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		admissions, warningsIssued, warningsClosed, sweepDuration, sweepStudents, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		admissions:      admissions,
		warningsIssued:  warningsIssued,
		warningsClosed:  warningsClosed,
		sweepDuration:   sweepDuration,
		sweepStudents:   sweepStudents,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache hit or miss and updates the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordAdmission counts an enrollment attempt. outcome is "accepted" or a
// rejection reason.
func (m *MetricsService) RecordAdmission(outcome string) {
	if m == nil {
		return
	}
	m.admissions.WithLabelValues(outcome).Inc()
}

// RecordWarningIssued counts a newly issued warning.
func (m *MetricsService) RecordWarningIssued(warningType string, level int) {
	if m == nil {
		return
	}
	m.warningsIssued.WithLabelValues(warningType, fmt.Sprintf("%d", level)).Inc()
}

// RecordWarningResolved counts a resolved warning.
func (m *MetricsService) RecordWarningResolved(warningType string) {
	if m == nil {
		return
	}
	m.warningsClosed.WithLabelValues(warningType).Inc()
}

// ObserveSweep records one batch sweep.
func (m *MetricsService) ObserveSweep(duration time.Duration, processed, failed int) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(duration.Seconds())
	m.sweepStudents.WithLabelValues("processed").Add(float64(processed))
	m.sweepStudents.WithLabelValues("failed").Add(float64(failed))
	atomic.AddUint64(&m.sweepCount, 1)
}

// Snapshot returns aggregated counters for the status endpoint.
func (m *MetricsService) Snapshot() SystemMetrics {
	if m == nil {
		return SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var ratio float64
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}
	return SystemMetrics{
		CacheHitRatio:            ratio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		WarningSweeps:            atomic.LoadUint64(&m.sweepCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
