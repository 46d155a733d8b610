package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/class-records-api/internal/models"
	appErrors "github.com/noah-isme/class-records-api/pkg/errors"
	"github.com/noah-isme/class-records-api/pkg/logger"
)

const (
	ReportKindFrequency   = "frequency"
	ReportKindPerformance = "performance"
)

type reportCatalog interface {
	FindClass(ctx context.Context, classID string) (*models.Class, error)
	ClassRoster(ctx context.Context, classID string) ([]models.Student, error)
}

type reportStore interface {
	CountSessions(ctx context.Context, classID string, from, to time.Time) (int, error)
	AttendanceTallies(ctx context.Context, classID string, from, to time.Time) ([]models.AttendanceTally, error)
	PeriodSpan(ctx context.Context, classID, period string) (*time.Time, *time.Time, error)
}

type assessmentLister interface {
	ListBySubject(ctx context.Context, subjectID string, from, to *time.Time) ([]models.Assessment, error)
}

type gradeLister interface {
	ListByAssessments(ctx context.Context, assessmentIDs []string) ([]models.GradeEntry, error)
}

// ReportConfig tunes report computation.
type ReportConfig struct {
	// MaxRangeDays bounds the frequency window; zero means unbounded.
	MaxRangeDays int
}

// ReportService computes frequency and performance reports from the current records.
type ReportService struct {
	catalog     reportCatalog
	reports     reportStore
	assessments assessmentLister
	grades      gradeLister
	cfg         ReportConfig
	logger      *zap.Logger
	metrics     *MetricsService
}

// NewReportService constructs the service.
func NewReportService(catalog reportCatalog, reports reportStore, assessments assessmentLister, grades gradeLister, cfg ReportConfig, logger *zap.Logger, metrics *MetricsService) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		catalog:     catalog,
		reports:     reports,
		assessments: assessments,
		grades:      grades,
		cfg:         cfg,
		logger:      logger,
		metrics:     metrics,
	}
}

// FrequencyReport tallies attendance per student for sessions dated within [from, to].
func (s *ReportService) FrequencyReport(ctx context.Context, teacherID, classID string, from, to time.Time) (*models.FrequencyReport, error) {
	class, err := s.ownedClass(ctx, teacherID, classID)
	if err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, appErrors.WithTarget(appErrors.ErrBadRequest, "date_from must not be after date_to", from.Format(dateLayout))
	}
	if s.cfg.MaxRangeDays > 0 && to.Sub(from) > time.Duration(s.cfg.MaxRangeDays)*24*time.Hour {
		return nil, appErrors.Clone(appErrors.ErrBadRequest, fmt.Sprintf("date range exceeds %d days", s.cfg.MaxRangeDays))
	}

	done := s.metrics.timeQuery("report_count_sessions")
	totalSessions, err := s.reports.CountSessions(ctx, class.ID, from, to)
	done()
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count sessions")
	}

	roster, err := s.catalog.ClassRoster(ctx, class.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load class roster")
	}

	done = s.metrics.timeQuery("report_attendance_tallies")
	tallies, err := s.reports.AttendanceTallies(ctx, class.ID, from, to)
	done()
	if err != nil {
		return nil, appErrors.Internal(err, "failed to tally attendance")
	}
	counts := make(map[string]map[models.AttendanceStatus]int, len(roster))
	for _, tally := range tallies {
		if counts[tally.StudentID] == nil {
			counts[tally.StudentID] = make(map[models.AttendanceStatus]int, 3)
		}
		counts[tally.StudentID][tally.Status] += tally.Total
	}

	report := &models.FrequencyReport{
		ClassID:       class.ID,
		DateFrom:      from,
		DateTo:        to,
		TotalSessions: totalSessions,
		Students:      make([]models.FrequencyRow, 0, len(roster)),
	}
	percentages := make([]float64, 0, len(roster))
	for _, student := range roster {
		c := counts[student.ID]
		row := models.FrequencyRow{
			StudentID:   student.ID,
			StudentName: student.FullName,
			Presences:   c[models.AttendancePresent],
			Absences:    c[models.AttendanceAbsent],
			Excused:     c[models.AttendanceExcusedAbsence],
		}
		if totalSessions > 0 {
			row.Percentage = round2(float64(row.Presences) / float64(totalSessions) * 100)
		}
		report.TotalPresences += row.Presences
		report.TotalAbsences += row.Absences
		report.TotalExcused += row.Excused
		percentages = append(percentages, row.Percentage)
		report.Students = append(report.Students, row)
	}
	report.MeanPercentage = round2(mean(percentages))

	s.metrics.RecordReport(ReportKindFrequency)
	logger.WithContext(ctx, s.logger).Debug("frequency report computed",
		zap.String("class_id", class.ID), zap.Int("sessions", totalSessions), zap.Int("students", len(roster)))
	return report, nil
}

// PerformanceReport computes overall averages and their distribution for the class subject.
// A non-empty period restricts assessments to the date span of the sessions tagged with it.
func (s *ReportService) PerformanceReport(ctx context.Context, teacherID, classID, period string) (*models.PerformanceReport, error) {
	class, err := s.ownedClass(ctx, teacherID, classID)
	if err != nil {
		return nil, err
	}

	var from, to *time.Time
	if period != "" {
		done := s.metrics.timeQuery("report_period_span")
		from, to, err = s.reports.PeriodSpan(ctx, class.ID, period)
		done()
		if err != nil {
			return nil, appErrors.Internal(err, "failed to resolve period")
		}
	}

	assessments, err := s.assessments.ListBySubject(ctx, class.SubjectID, from, to)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load assessments")
	}
	if assessments == nil {
		assessments = []models.Assessment{}
	}

	roster, err := s.catalog.ClassRoster(ctx, class.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load class roster")
	}

	ids := make([]string, 0, len(assessments))
	for _, a := range assessments {
		ids = append(ids, a.ID)
	}
	done := s.metrics.timeQuery("report_grades")
	grades, err := s.grades.ListByAssessments(ctx, ids)
	done()
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load grades")
	}
	byStudent := make(map[string]map[string]float64, len(roster))
	for _, g := range grades {
		if byStudent[g.StudentID] == nil {
			byStudent[g.StudentID] = make(map[string]float64)
		}
		byStudent[g.StudentID][g.AssessmentID] = g.Value
	}

	report := &models.PerformanceReport{
		ClassID:     class.ID,
		SubjectID:   class.SubjectID,
		Period:      period,
		Assessments: assessments,
		Students:    make([]models.StudentPerformance, 0, len(roster)),
	}
	averages := make([]float64, 0, len(roster))
	for _, student := range roster {
		perf := models.StudentPerformance{
			StudentID:   student.ID,
			StudentName: student.FullName,
			Scores:      []models.AssessmentScore{},
		}
		var earned, possible float64
		for _, a := range assessments {
			value, ok := byStudent[student.ID][a.ID]
			if !ok || a.MaxValue <= 0 {
				continue
			}
			earned += value
			possible += a.MaxValue
			perf.Scores = append(perf.Scores, models.AssessmentScore{
				AssessmentID: a.ID,
				Title:        a.Title,
				Value:        value,
				MaxValue:     a.MaxValue,
				Percent:      round2(value / a.MaxValue * 100),
			})
		}
		if possible > 0 {
			perf.OverallAverage = round2(earned / possible * 100)
		}
		averages = append(averages, perf.OverallAverage)
		report.Students = append(report.Students, perf)
	}

	stats, values := performanceStats(averages)
	report.Stats = stats
	report.Histogram = histogram(values)
	report.Categories = categorize(values)
	report.Sentences = performanceSentences(stats)

	s.metrics.RecordReport(ReportKindPerformance)
	logger.WithContext(ctx, s.logger).Debug("performance report computed",
		zap.String("class_id", class.ID), zap.Int("assessments", len(assessments)), zap.Int("ranked", stats.Count))
	return report, nil
}

func (s *ReportService) ownedClass(ctx context.Context, teacherID, classID string) (*models.Class, error) {
	class, err := s.catalog.FindClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load class")
	}
	if class == nil {
		return nil, appErrors.WithTarget(appErrors.ErrNotFound, "class not found", classID)
	}
	if class.TeacherID != teacherID {
		return nil, appErrors.WithTarget(appErrors.ErrUnauthorized, "class is not taught by caller", classID)
	}
	return class, nil
}
