package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/class-records-api/internal/dto"
	"github.com/noah-isme/class-records-api/internal/models"
	appErrors "github.com/noah-isme/class-records-api/pkg/errors"
	"github.com/noah-isme/class-records-api/pkg/logger"
)

type subjectCatalog interface {
	AssessmentExists(ctx context.Context, assessmentID string) (bool, error)
	AssessmentSubject(ctx context.Context, assessmentID string) (string, error)
	SubjectsOfTeacher(ctx context.Context, teacherID string) ([]string, error)
}

type answerKeyStore interface {
	FindByID(ctx context.Context, id string) (*models.Assessment, error)
	ListQuestions(ctx context.Context, assessmentID string) ([]models.ObjectiveQuestion, error)
	AnswerKeysByQuestion(ctx context.Context, questionIDs []string) (map[string]models.AnswerKeyEntry, error)
	InsertAnswerKey(ctx context.Context, entry *models.AnswerKeyEntry) error
	UpdateAnswerKey(ctx context.Context, entryID string, letter models.AnswerLetter) error
	DeleteAnswerKey(ctx context.Context, questionID string) error
	AnswerKeyLines(ctx context.Context, assessmentID string) ([]models.AnswerKeyLine, error)
}

// AnswerKeyService maintains the correct letters of objective questions.
type AnswerKeyService struct {
	tx          transactor
	catalog     subjectCatalog
	assessments answerKeyStore
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
}

// NewAnswerKeyService constructs the service.
func NewAnswerKeyService(tx transactor, catalog subjectCatalog, assessments answerKeyStore, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *AnswerKeyService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnswerKeyService{
		tx:          tx,
		catalog:     catalog,
		assessments: assessments,
		validator:   validate,
		logger:      logger,
		metrics:     metrics,
	}
}

// DefineAnswerKey sets or clears answer letters for a batch of questions in one transaction.
func (s *AnswerKeyService) DefineAnswerKey(ctx context.Context, teacherID, assessmentID string, req dto.DefineAnswerKeyRequest) (*models.AnswerKeySummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid answer key payload")
	}

	items := make([]models.AnswerKeyItem, 0, len(req.Items))
	questionIDs := make([]string, 0, len(req.Items))
	for _, raw := range req.Items {
		item := models.AnswerKeyItem{QuestionID: raw.QuestionID}
		if raw.Letter != nil {
			letter, ok := models.ParseAnswerLetter(*raw.Letter)
			if !ok {
				return nil, appErrors.WithTarget(appErrors.ErrBadRequest, "answer letter must be one of A, B, C, D, E", *raw.Letter)
			}
			item.Letter = &letter
		}
		items = append(items, item)
		questionIDs = append(questionIDs, raw.QuestionID)
	}
	if dup, found := duplicateOf(questionIDs); found {
		return nil, appErrors.WithTarget(appErrors.ErrBusinessRule, "question listed more than once", dup)
	}

	log := logger.WithContext(ctx, s.logger).With(zap.String("assessment_id", assessmentID))

	var (
		summary *models.AnswerKeySummary
		set     int
		cleared int
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.authorize(ctx, teacherID, assessmentID); err != nil {
			return err
		}

		questions, err := s.assessments.ListQuestions(ctx, assessmentID)
		if err != nil {
			return appErrors.Internal(err, "failed to load questions")
		}
		known := make(map[string]struct{}, len(questions))
		for _, q := range questions {
			known[q.ID] = struct{}{}
		}
		for _, item := range items {
			if _, ok := known[item.QuestionID]; !ok {
				return appErrors.WithTarget(appErrors.ErrNotFound, "question does not belong to assessment", item.QuestionID)
			}
		}

		existing, err := s.assessments.AnswerKeysByQuestion(ctx, questionIDs)
		if err != nil {
			return appErrors.Internal(err, "failed to load answer keys")
		}

		for _, item := range items {
			current, has := existing[item.QuestionID]
			switch {
			case item.Letter == nil:
				if !has {
					continue
				}
				if err := s.assessments.DeleteAnswerKey(ctx, item.QuestionID); err != nil {
					return classify(err, "failed to clear answer key")
				}
				cleared++
			case has:
				if current.Letter != *item.Letter {
					if err := s.assessments.UpdateAnswerKey(ctx, current.ID, *item.Letter); err != nil {
						return classify(err, "failed to update answer key")
					}
				}
				set++
			default:
				entry := &models.AnswerKeyEntry{QuestionID: item.QuestionID, Letter: *item.Letter}
				if err := s.assessments.InsertAnswerKey(ctx, entry); err != nil {
					return classify(err, "failed to store answer key")
				}
				set++
			}
		}

		summary, err = s.summary(ctx, assessmentID)
		return err
	})
	if err != nil {
		log.Warn("answer key rejected", zap.Error(err))
		return nil, classify(err, "failed to define answer key")
	}

	s.metrics.RecordAnswerKeyChanges(set, cleared)
	log.Info("answer key defined", zap.Int("set", set), zap.Int("cleared", cleared))
	return summary, nil
}

// AnswerKeySummary lists every question of the assessment with its current letter.
func (s *AnswerKeyService) AnswerKeySummary(ctx context.Context, teacherID, assessmentID string) (*models.AnswerKeySummary, error) {
	if err := s.authorize(ctx, teacherID, assessmentID); err != nil {
		return nil, err
	}
	return s.summary(ctx, assessmentID)
}

// authorize treats a missing assessment like a foreign one.
func (s *AnswerKeyService) authorize(ctx context.Context, teacherID, assessmentID string) error {
	exists, err := s.catalog.AssessmentExists(ctx, assessmentID)
	if err != nil {
		return appErrors.Internal(err, "failed to load assessment")
	}
	if !exists {
		return appErrors.WithTarget(appErrors.ErrUnauthorized, "assessment not available to caller", assessmentID)
	}
	subjectID, err := s.catalog.AssessmentSubject(ctx, assessmentID)
	if err != nil {
		return appErrors.Internal(err, "failed to load assessment subject")
	}
	subjects, err := s.catalog.SubjectsOfTeacher(ctx, teacherID)
	if err != nil {
		return appErrors.Internal(err, "failed to load teacher subjects")
	}
	if !IsOwner(subjects, subjectID) {
		return appErrors.WithTarget(appErrors.ErrUnauthorized, "assessment not available to caller", assessmentID)
	}
	return nil
}

func (s *AnswerKeyService) summary(ctx context.Context, assessmentID string) (*models.AnswerKeySummary, error) {
	assessment, err := s.assessments.FindByID(ctx, assessmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load assessment")
	}
	if assessment == nil {
		return nil, appErrors.WithTarget(appErrors.ErrNotFound, "assessment not found", assessmentID)
	}
	lines, err := s.assessments.AnswerKeyLines(ctx, assessmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load answer key")
	}
	if lines == nil {
		lines = []models.AnswerKeyLine{}
	}
	summary := &models.AnswerKeySummary{
		AssessmentID: assessmentID,
		Title:        assessment.Title,
		Subjective:   len(lines) == 0,
		Questions:    lines,
	}
	for _, line := range lines {
		if line.HasAnswer {
			summary.Answered++
		}
	}
	return summary, nil
}
