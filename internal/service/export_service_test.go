package service

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-records-api/internal/dto"
	"github.com/noah-isme/class-records-api/internal/models"
	appErrors "github.com/noah-isme/class-records-api/pkg/errors"
)

func sampleFrequencyReport() *models.FrequencyReport {
	return &models.FrequencyReport{
		ClassID:       "class-1",
		DateFrom:      day(1),
		DateTo:        day(31),
		TotalSessions: 4,
		Students: []models.FrequencyRow{
			{StudentID: "s1", StudentName: "Ana", Presences: 3, Absences: 1, Percentage: 75},
		},
		MeanPercentage: 75,
		TotalPresences: 3,
		TotalAbsences:  1,
	}
}

func TestFrequencyFileCSV(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewExportService(nil, metrics)

	file, err := svc.FrequencyFile(sampleFrequencyReport(), dto.ReportFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "frequency-class-1.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	body := string(file.Body)
	assert.Contains(t, body, "student_id,student,presences,absences,excused,percentage")
	assert.Contains(t, body, "s1,Ana,3,1,0,75.00")
	assert.Contains(t, body, "Mean attendance: 75.00%")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.reportExports.WithLabelValues(ReportKindFrequency, "csv")))
}

func TestPerformanceFileFormats(t *testing.T) {
	svc := NewExportService(nil, nil)
	report := &models.PerformanceReport{
		ClassID:    "class-1",
		Students:   []models.StudentPerformance{{StudentID: "s1", StudentName: "Ana", OverallAverage: 80}},
		Stats:      models.PerformanceStats{Count: 1, Mean: 80, Median: 80, Max: 80, Min: 80},
		Histogram:  histogram([]float64{80}),
		Categories: categorize([]float64{80}),
		Sentences:  performanceSentences(models.PerformanceStats{Count: 1, Mean: 80}),
	}

	csvFile, err := svc.PerformanceFile(report, dto.ReportFormatCSV)
	require.NoError(t, err)
	body := string(csvFile.Body)
	assert.True(t, strings.Contains(body, "Histogram"))
	assert.True(t, strings.Contains(body, "Categories"))
	assert.Contains(t, body, "s1,Ana,0,80.00")

	pdfFile, err := svc.PerformanceFile(report, dto.ReportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "performance-class-1.pdf", pdfFile.Filename)
	assert.True(t, strings.HasPrefix(string(pdfFile.Body), "%PDF"))

	xlsxFile, err := svc.PerformanceFile(report, dto.ReportFormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "performance-class-1.xlsx", xlsxFile.Filename)
	assert.True(t, strings.HasPrefix(string(xlsxFile.Body), "PK"))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(nil, nil)

	_, err := svc.FrequencyFile(sampleFrequencyReport(), dto.ReportFormat("docx"))
	appErr := assertKind(t, err, appErrors.ErrBadRequest)
	assert.Equal(t, "docx", appErr.Target)

	_, err = svc.FrequencyFile(sampleFrequencyReport(), dto.ReportFormatJSON)
	assertKind(t, err, appErrors.ErrBadRequest)
}
