package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic, queries and record writes.
// Every method is safe on a nil receiver.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
	registrations   prometheus.Counter
	rosterSize      prometheus.Histogram
	gradeWrites     *prometheus.CounterVec
	answerKeyWrites *prometheus.CounterVec
	reportsTotal    *prometheus.CounterVec
	reportExports   *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
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

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	registrations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_registrations_total",
		Help: "Committed attendance registrations",
	})

	rosterSize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "attendance_roster_size",
		Help:    "Number of students per registered roster",
		Buckets: []float64{5, 10, 20, 30, 40, 60},
	})

	gradeWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grade_writes_total",
		Help: "Committed grade rows by operation",
	}, []string{"operation"})

	answerKeyWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "answer_key_changes_total",
		Help: "Committed answer key changes by operation",
	}, []string{"operation"})

	reportsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_generated_total",
		Help: "Reports computed by kind",
	}, []string{"kind"})

	reportExports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_exports_total",
		Help: "Reports rendered to files by kind and format",
	}, []string{"kind", "format"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, dbQueryDuration, registrations, rosterSize, gradeWrites, answerKeyWrites, reportsTotal, reportExports, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		dbQueryDuration: dbQueryDuration,
		registrations:   registrations,
		rosterSize:      rosterSize,
		gradeWrites:     gradeWrites,
		answerKeyWrites: answerKeyWrites,
		reportsTotal:    reportsTotal,
		reportExports:   reportExports,
	}
}

// Registry exposes the underlying registry for tests and collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordAttendanceRegistration counts a committed roster.
func (m *MetricsService) RecordAttendanceRegistration(rosterSize int) {
	if m == nil {
		return
	}
	m.registrations.Inc()
	m.rosterSize.Observe(float64(rosterSize))
}

// RecordGradeWrites counts committed grade inserts and updates.
func (m *MetricsService) RecordGradeWrites(inserted, updated int) {
	if m == nil {
		return
	}
	m.gradeWrites.WithLabelValues("insert").Add(float64(inserted))
	m.gradeWrites.WithLabelValues("update").Add(float64(updated))
}

// RecordAnswerKeyChanges counts committed answer key upserts and clears.
func (m *MetricsService) RecordAnswerKeyChanges(set, cleared int) {
	if m == nil {
		return
	}
	m.answerKeyWrites.WithLabelValues("set").Add(float64(set))
	m.answerKeyWrites.WithLabelValues("clear").Add(float64(cleared))
}

// RecordReport counts a computed report.
func (m *MetricsService) RecordReport(kind string) {
	if m == nil {
		return
	}
	m.reportsTotal.WithLabelValues(kind).Inc()
}

// RecordExport counts a report rendered to a file.
func (m *MetricsService) RecordExport(kind, format string) {
	if m == nil {
		return
	}
	m.reportExports.WithLabelValues(kind, format).Inc()
}

func (m *MetricsService) timeQuery(label string) func() {
	start := time.Now()
	return func() { m.ObserveDBQuery(label, time.Since(start)) }
}
