package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/class-records-api/internal/dto"
	"github.com/noah-isme/class-records-api/internal/models"
	appErrors "github.com/noah-isme/class-records-api/pkg/errors"
	"github.com/noah-isme/class-records-api/pkg/logger"
)

const dateLayout = "2006-01-02"

type classCatalog interface {
	ClassExists(ctx context.Context, classID string) (bool, error)
	ClassOwner(ctx context.Context, classID string) (string, error)
	StudentsOfClass(ctx context.Context, classID string) ([]string, error)
}

type sessionStore interface {
	FindByClassAndDate(ctx context.Context, classID string, date time.Time) (*models.ClassSession, error)
	Create(ctx context.Context, session *models.ClassSession) error
	UpdatePeriod(ctx context.Context, sessionID, period string) error
	DeleteAttendance(ctx context.Context, sessionID string) error
	InsertAttendance(ctx context.Context, records []models.AttendanceRecord) error
	ListAttendance(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error)
	FindAnnotation(ctx context.Context, sessionID string) (*models.SessionAnnotation, error)
	CreateAnnotation(ctx context.Context, annotation *models.SessionAnnotation) error
	UpdateAnnotation(ctx context.Context, annotation *models.SessionAnnotation) error
}

// AttendanceService registers class session rosters.
type AttendanceService struct {
	tx        transactor
	catalog   classCatalog
	sessions  sessionStore
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewAttendanceService constructs the service.
func NewAttendanceService(tx transactor, catalog classCatalog, sessions sessionStore, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *AttendanceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		tx:        tx,
		catalog:   catalog,
		sessions:  sessions,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
	}
}

// RegisterAttendance upserts the session of classID on the requested date and replaces its roster.
// The annotation is only written when it carries non-blank text.
func (s *AttendanceService) RegisterAttendance(ctx context.Context, teacherID, classID string, req dto.RegisterAttendanceRequest) (*models.SessionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, appErrors.WithTarget(appErrors.ErrBadRequest, "date must use YYYY-MM-DD", req.Date)
	}

	roster := make([]models.RosterEntry, 0, len(req.Roster))
	studentIDs := make([]string, 0, len(req.Roster))
	for _, item := range req.Roster {
		status, ok := models.ParseAttendanceStatus(item.Status)
		if !ok {
			return nil, appErrors.WithTarget(appErrors.ErrBadRequest, "unknown attendance status", item.Status)
		}
		roster = append(roster, models.RosterEntry{StudentID: item.StudentID, Status: status})
		studentIDs = append(studentIDs, item.StudentID)
	}
	if dup, found := duplicateOf(studentIDs); found {
		return nil, appErrors.WithTarget(appErrors.ErrBusinessRule, "student listed more than once in roster", dup)
	}

	period := strings.TrimSpace(req.Period)
	var annotationText string
	if req.Annotation != nil {
		annotationText = strings.TrimSpace(*req.Annotation)
	}

	log := logger.WithContext(ctx, s.logger).With(zap.String("class_id", classID), zap.String("date", req.Date))

	var detail *models.SessionDetail
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.authorizeClass(ctx, teacherID, classID); err != nil {
			return err
		}

		enrolled, err := s.catalog.StudentsOfClass(ctx, classID)
		if err != nil {
			return appErrors.Internal(err, "failed to load class students")
		}
		members := make(map[string]struct{}, len(enrolled))
		for _, id := range enrolled {
			members[id] = struct{}{}
		}
		for _, entry := range roster {
			if _, ok := members[entry.StudentID]; !ok {
				return appErrors.WithTarget(appErrors.ErrBusinessRule, "student does not belong to class", entry.StudentID)
			}
		}

		session, err := s.sessions.FindByClassAndDate(ctx, classID, date)
		if err != nil {
			return appErrors.Internal(err, "failed to load class session")
		}
		switch {
		case session == nil:
			session = &models.ClassSession{ClassID: classID, Date: date, Period: period}
			if err := s.sessions.Create(ctx, session); err != nil {
				return classify(err, "failed to create class session")
			}
		case session.Period != period:
			if err := s.sessions.UpdatePeriod(ctx, session.ID, period); err != nil {
				return classify(err, "failed to update session period")
			}
			session.Period = period
		}

		if err := s.sessions.DeleteAttendance(ctx, session.ID); err != nil {
			return classify(err, "failed to clear attendance")
		}
		records := make([]models.AttendanceRecord, 0, len(roster))
		for _, entry := range roster {
			records = append(records, models.AttendanceRecord{SessionID: session.ID, StudentID: entry.StudentID, Status: entry.Status})
		}
		if err := s.sessions.InsertAttendance(ctx, records); err != nil {
			return classify(err, "failed to store attendance")
		}

		if annotationText != "" {
			if err := s.writeAnnotation(ctx, session.ID, annotationText); err != nil {
				return err
			}
		}

		detail, err = s.loadDetail(ctx, session)
		return err
	})
	if err != nil {
		log.Warn("attendance registration rejected", zap.Error(err))
		return nil, classify(err, "failed to register attendance")
	}

	s.metrics.RecordAttendanceRegistration(len(roster))
	log.Info("attendance registered", zap.String("session_id", detail.ID), zap.Int("roster", len(roster)))
	return detail, nil
}

// GetSession returns the consolidated session of a class on a date.
func (s *AttendanceService) GetSession(ctx context.Context, teacherID, classID, rawDate string) (*models.SessionDetail, error) {
	date, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		return nil, appErrors.WithTarget(appErrors.ErrBadRequest, "date must use YYYY-MM-DD", rawDate)
	}
	if err := s.authorizeClass(ctx, teacherID, classID); err != nil {
		return nil, err
	}
	session, err := s.sessions.FindByClassAndDate(ctx, classID, date)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load class session")
	}
	if session == nil {
		return nil, appErrors.WithTarget(appErrors.ErrNotFound, "class session not found", rawDate)
	}
	return s.loadDetail(ctx, session)
}

func (s *AttendanceService) authorizeClass(ctx context.Context, teacherID, classID string) error {
	exists, err := s.catalog.ClassExists(ctx, classID)
	if err != nil {
		return appErrors.Internal(err, "failed to load class")
	}
	if !exists {
		return appErrors.WithTarget(appErrors.ErrNotFound, "class not found", classID)
	}
	owner, err := s.catalog.ClassOwner(ctx, classID)
	if err != nil {
		return appErrors.Internal(err, "failed to load class owner")
	}
	if owner != teacherID {
		return appErrors.WithTarget(appErrors.ErrUnauthorized, "class is not taught by caller", classID)
	}
	return nil
}

func (s *AttendanceService) writeAnnotation(ctx context.Context, sessionID, text string) error {
	existing, err := s.sessions.FindAnnotation(ctx, sessionID)
	if err != nil {
		return appErrors.Internal(err, "failed to load annotation")
	}
	if existing == nil {
		if err := s.sessions.CreateAnnotation(ctx, &models.SessionAnnotation{SessionID: sessionID, Text: text}); err != nil {
			return classify(err, "failed to create annotation")
		}
		return nil
	}
	existing.Text = text
	if err := s.sessions.UpdateAnnotation(ctx, existing); err != nil {
		return classify(err, "failed to update annotation")
	}
	return nil
}

func (s *AttendanceService) loadDetail(ctx context.Context, session *models.ClassSession) (*models.SessionDetail, error) {
	records, err := s.sessions.ListAttendance(ctx, session.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load attendance")
	}
	annotation, err := s.sessions.FindAnnotation(ctx, session.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load annotation")
	}
	if records == nil {
		records = []models.AttendanceRecord{}
	}
	return &models.SessionDetail{ClassSession: *session, Attendance: records, Annotation: annotation}, nil
}
