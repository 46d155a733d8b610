package service

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/class-records-api/internal/dto"
	"github.com/noah-isme/class-records-api/internal/models"
	appErrors "github.com/noah-isme/class-records-api/pkg/errors"
	"github.com/noah-isme/class-records-api/pkg/export"
)

// ExportFile is a rendered report ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders freshly computed reports into downloadable files. Nothing is persisted.
type ExportService struct {
	renderers map[dto.ReportFormat]export.Renderer
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewExportService constructs an ExportService with the CSV, PDF and XLSX renderers.
func NewExportService(logger *zap.Logger, metrics *MetricsService) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		renderers: map[dto.ReportFormat]export.Renderer{
			dto.ReportFormatCSV:  export.NewCSVExporter(),
			dto.ReportFormatPDF:  export.NewPDFExporter(),
			dto.ReportFormatXLSX: export.NewXLSXExporter(),
		},
		logger:  logger,
		metrics: metrics,
	}
}

// FrequencyFile renders a frequency report.
func (s *ExportService) FrequencyFile(report *models.FrequencyReport, format dto.ReportFormat) (*ExportFile, error) {
	doc := export.Document{
		Title: "Frequency report",
		Summary: []string{
			fmt.Sprintf("Class: %s", report.ClassID),
			fmt.Sprintf("Period: %s to %s", report.DateFrom.Format(dateLayout), report.DateTo.Format(dateLayout)),
			fmt.Sprintf("Total sessions: %d", report.TotalSessions),
			fmt.Sprintf("Mean attendance: %s%%", formatFloat(report.MeanPercentage, 2)),
			fmt.Sprintf("Presences: %d, absences: %d, excused: %d", report.TotalPresences, report.TotalAbsences, report.TotalExcused),
		},
	}
	rows := make([]map[string]string, 0, len(report.Students))
	for _, row := range report.Students {
		rows = append(rows, map[string]string{
			"student_id": row.StudentID,
			"student":    row.StudentName,
			"presences":  strconv.Itoa(row.Presences),
			"absences":   strconv.Itoa(row.Absences),
			"excused":    strconv.Itoa(row.Excused),
			"percentage": formatFloat(row.Percentage, 2),
		})
	}
	doc.Sections = []export.Section{{
		Name: "Students",
		Data: export.Dataset{
			Headers: []string{"student_id", "student", "presences", "absences", "excused", "percentage"},
			Rows:    rows,
		},
	}}
	return s.render(ReportKindFrequency, report.ClassID, format, doc)
}

// PerformanceFile renders a performance report.
func (s *ExportService) PerformanceFile(report *models.PerformanceReport, format dto.ReportFormat) (*ExportFile, error) {
	stats := report.Stats
	doc := export.Document{
		Title: "Performance report",
		Summary: append([]string{
			fmt.Sprintf("Class: %s", report.ClassID),
			fmt.Sprintf("Assessments: %d", len(report.Assessments)),
			fmt.Sprintf("Mean: %s, median: %s, max: %s, min: %s",
				formatFloat(stats.Mean, 2), formatFloat(stats.Median, 2), formatFloat(stats.Max, 2), formatFloat(stats.Min, 2)),
			fmt.Sprintf("Above mean: %d, below mean: %d", stats.AboveMean, stats.BelowMean),
		}, report.Sentences...),
	}

	students := make([]map[string]string, 0, len(report.Students))
	for _, st := range report.Students {
		students = append(students, map[string]string{
			"student_id":      st.StudentID,
			"student":         st.StudentName,
			"graded":          strconv.Itoa(len(st.Scores)),
			"overall_average": formatFloat(st.OverallAverage, 2),
		})
	}
	bins := make([]map[string]string, 0, len(report.Histogram))
	for _, bin := range report.Histogram {
		bins = append(bins, map[string]string{"range": bin.Label, "count": strconv.Itoa(bin.Count)})
	}
	categories := make([]map[string]string, 0, len(report.Categories))
	for _, c := range report.Categories {
		categories = append(categories, map[string]string{
			"category": c.Name,
			"count":    strconv.Itoa(c.Count),
			"percent":  formatFloat(c.Percent, 1),
		})
	}
	doc.Sections = []export.Section{
		{Name: "Students", Data: export.Dataset{Headers: []string{"student_id", "student", "graded", "overall_average"}, Rows: students}},
		{Name: "Histogram", Data: export.Dataset{Headers: []string{"range", "count"}, Rows: bins}},
		{Name: "Categories", Data: export.Dataset{Headers: []string{"category", "count", "percent"}, Rows: categories}},
	}
	return s.render(ReportKindPerformance, report.ClassID, format, doc)
}

func (s *ExportService) render(kind, classID string, format dto.ReportFormat, doc export.Document) (*ExportFile, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.WithTarget(appErrors.ErrBadRequest, "unsupported export format", string(format))
	}
	body, err := renderer.Render(doc)
	if err != nil {
		s.logger.Error("render report", zap.String("kind", kind), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to render report")
	}
	s.metrics.RecordExport(kind, string(format))
	return &ExportFile{
		Filename:    fmt.Sprintf("%s-%s.%s", kind, classID, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func formatFloat(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}
