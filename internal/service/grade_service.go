package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/class-records-api/internal/dto"
	"github.com/noah-isme/class-records-api/internal/models"
	appErrors "github.com/noah-isme/class-records-api/pkg/errors"
	"github.com/noah-isme/class-records-api/pkg/logger"
)

type gradeCatalog interface {
	StudentsTaughtBy(ctx context.Context, teacherID, subjectID string, studentIDs []string) (map[string]struct{}, error)
	SubjectsOfTeacher(ctx context.Context, teacherID string) ([]string, error)
}

type assessmentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Assessment, error)
}

type gradeStore interface {
	ListByAssessment(ctx context.Context, assessmentID string) ([]models.GradeEntry, error)
	FindByStudents(ctx context.Context, assessmentID string, studentIDs []string) (map[string]models.GradeEntry, error)
	Insert(ctx context.Context, grade *models.GradeEntry) error
	UpdateValue(ctx context.Context, gradeID string, value float64, recordedAt time.Time) error
}

// GradeService launches assessment grades.
type GradeService struct {
	tx          transactor
	catalog     gradeCatalog
	assessments assessmentFinder
	grades      gradeStore
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
	now         func() time.Time
}

// NewGradeService constructs GradeService.
func NewGradeService(tx transactor, catalog gradeCatalog, assessments assessmentFinder, grades gradeStore, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *GradeService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		tx:          tx,
		catalog:     catalog,
		assessments: assessments,
		grades:      grades,
		validator:   validate,
		logger:      logger,
		metrics:     metrics,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// LaunchGrades validates the whole batch, then inserts new grades and updates existing ones atomically.
func (s *GradeService) LaunchGrades(ctx context.Context, teacherID, assessmentID string, req dto.LaunchGradesRequest) (*models.GradeLaunchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid grade payload")
	}

	entries := make([]models.GradeInput, 0, len(req.Entries))
	studentIDs := make([]string, 0, len(req.Entries))
	for _, item := range req.Entries {
		entries = append(entries, models.GradeInput{StudentID: item.StudentID, Value: *item.Value})
		studentIDs = append(studentIDs, item.StudentID)
	}
	if dup, found := duplicateOf(studentIDs); found {
		return nil, appErrors.WithTarget(appErrors.ErrBusinessRule, "student listed more than once", dup)
	}

	log := logger.WithContext(ctx, s.logger).With(zap.String("assessment_id", assessmentID))

	result := &models.GradeLaunchResult{AssessmentID: assessmentID}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		assessment, err := s.assessments.FindByID(ctx, assessmentID)
		if err != nil {
			return appErrors.Internal(err, "failed to load assessment")
		}
		if assessment == nil {
			return appErrors.WithTarget(appErrors.ErrNotFound, "assessment not found", assessmentID)
		}

		eligible, err := s.catalog.StudentsTaughtBy(ctx, teacherID, assessment.SubjectID, studentIDs)
		if err != nil {
			return appErrors.Internal(err, "failed to load students")
		}
		for _, entry := range entries {
			if _, ok := eligible[entry.StudentID]; !ok {
				return appErrors.WithTarget(appErrors.ErrBadRequest, "student is not in a class of this subject taught by caller", entry.StudentID)
			}
			if entry.Value < 0 || entry.Value > assessment.MaxValue {
				return appErrors.WithTarget(appErrors.ErrBadRequest,
					fmt.Sprintf("grade must be between 0 and %g", assessment.MaxValue), entry.StudentID)
			}
		}

		existing, err := s.grades.FindByStudents(ctx, assessmentID, studentIDs)
		if err != nil {
			return appErrors.Internal(err, "failed to load grades")
		}

		now := s.now()
		result.Grades = make([]models.GradeEntry, 0, len(entries))
		for _, entry := range entries {
			if current, ok := existing[entry.StudentID]; ok {
				if err := s.grades.UpdateValue(ctx, current.ID, entry.Value, now); err != nil {
					return classify(err, "failed to update grade")
				}
				current.Value = entry.Value
				current.RecordedAt = now
				result.Grades = append(result.Grades, current)
				result.Updated++
				continue
			}
			grade := models.GradeEntry{
				AssessmentID: assessmentID,
				StudentID:    entry.StudentID,
				Value:        entry.Value,
				RecordedAt:   now,
				Origin:       models.GradeOriginManual,
			}
			if err := s.grades.Insert(ctx, &grade); err != nil {
				return classify(err, "failed to store grade")
			}
			result.Grades = append(result.Grades, grade)
			result.Inserted++
		}
		return nil
	})
	if err != nil {
		log.Warn("grade launch rejected", zap.Error(err))
		return nil, classify(err, "failed to launch grades")
	}

	s.metrics.RecordGradeWrites(result.Inserted, result.Updated)
	log.Info("grades launched", zap.Int("inserted", result.Inserted), zap.Int("updated", result.Updated))
	return result, nil
}

// ListGrades returns the current grades of an assessment owned by the caller.
func (s *GradeService) ListGrades(ctx context.Context, teacherID, assessmentID string) ([]models.GradeEntry, error) {
	assessment, err := s.assessments.FindByID(ctx, assessmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load assessment")
	}
	if assessment == nil {
		return nil, appErrors.WithTarget(appErrors.ErrNotFound, "assessment not found", assessmentID)
	}
	subjects, err := s.catalog.SubjectsOfTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load teacher subjects")
	}
	if !IsOwner(subjects, assessment.SubjectID) {
		return nil, appErrors.WithTarget(appErrors.ErrUnauthorized, "assessment not available to caller", assessmentID)
	}
	grades, err := s.grades.ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list grades")
	}
	if grades == nil {
		grades = []models.GradeEntry{}
	}
	return grades, nil
}
