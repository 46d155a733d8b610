package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsServiceRecordsWrites(t *testing.T) {
	m := NewMetricsService()

	m.RecordAttendanceRegistration(25)
	m.RecordGradeWrites(3, 2)
	m.RecordAnswerKeyChanges(4, 1)
	m.RecordReport(ReportKindPerformance)
	m.ObserveHTTPRequest(http.MethodGet, "/health", http.StatusOK, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.gradeWrites.WithLabelValues("insert")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.gradeWrites.WithLabelValues("update")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.answerKeyWrites.WithLabelValues("clear")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reportsTotal.WithLabelValues(ReportKindPerformance)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestTotal.WithLabelValues(http.MethodGet, "/health", "200")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "attendance_roster_size")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService

	assert.NotPanics(t, func() {
		m.RecordAttendanceRegistration(1)
		m.RecordGradeWrites(1, 1)
		m.RecordAnswerKeyChanges(1, 1)
		m.RecordReport(ReportKindFrequency)
		m.RecordExport(ReportKindFrequency, "csv")
		m.ObserveHTTPRequest(http.MethodGet, "/", 200, time.Millisecond)
		m.timeQuery("noop")()
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
