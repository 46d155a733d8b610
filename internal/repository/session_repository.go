package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-records-api/internal/models"
	"github.com/noah-isme/class-records-api/pkg/database"
)

// SessionRepository persists class sessions, their attendance rows and annotations.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// FindByClassAndDate returns the session of a class on date, or nil when none exists.
func (r *SessionRepository) FindByClassAndDate(ctx context.Context, classID string, date time.Time) (*models.ClassSession, error) {
	const query = `
SELECT id, class_id, session_date, period, created_at, updated_at
FROM class_sessions
WHERE class_id = $1 AND session_date = $2`

	var session models.ClassSession
	if err := sqlx.GetContext(ctx, database.Executor(ctx, r.db), &session, query, classID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find class session: %w", err)
	}
	return &session, nil
}

// Create inserts a new session.
func (r *SessionRepository) Create(ctx context.Context, session *models.ClassSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	const query = `
INSERT INTO class_sessions (id, class_id, session_date, period, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := database.Executor(ctx, r.db).ExecContext(ctx, query,
		session.ID, session.ClassID, session.Date, session.Period, session.CreatedAt, session.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create class session: %w", err)
	}
	return nil
}

// UpdatePeriod overwrites the period label of a session.
func (r *SessionRepository) UpdatePeriod(ctx context.Context, sessionID, period string) error {
	const query = `UPDATE class_sessions SET period = $2, updated_at = $3 WHERE id = $1`
	if _, err := database.Executor(ctx, r.db).ExecContext(ctx, query, sessionID, period, time.Now().UTC()); err != nil {
		return fmt.Errorf("update session period: %w", err)
	}
	return nil
}

// DeleteAttendance removes every attendance row of a session.
func (r *SessionRepository) DeleteAttendance(ctx context.Context, sessionID string) error {
	const query = `DELETE FROM attendance_records WHERE session_id = $1`
	if _, err := database.Executor(ctx, r.db).ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}

// InsertAttendance writes the given rows in a single statement.
func (r *SessionRepository) InsertAttendance(ctx context.Context, records []models.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := strings.Builder{}
	query.WriteString("INSERT INTO attendance_records (id, session_id, student_id, status) VALUES ")
	args := make([]interface{}, 0, len(records)*4)
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		if i > 0 {
			query.WriteString(", ")
		}
		n := len(args)
		fmt.Fprintf(&query, "($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, records[i].ID, records[i].SessionID, records[i].StudentID, records[i].Status)
	}

	if _, err := database.Executor(ctx, r.db).ExecContext(ctx, query.String(), args...); err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

// ListAttendance returns the attendance rows of a session.
func (r *SessionRepository) ListAttendance(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	const query = `
SELECT id, session_id, student_id, status
FROM attendance_records
WHERE session_id = $1
ORDER BY student_id`

	var records []models.AttendanceRecord
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.db), &records, query, sessionID); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// FindAnnotation returns the annotation of a session, or nil.
func (r *SessionRepository) FindAnnotation(ctx context.Context, sessionID string) (*models.SessionAnnotation, error) {
	const query = `SELECT id, session_id, text, updated_at FROM session_annotations WHERE session_id = $1`

	var annotation models.SessionAnnotation
	if err := sqlx.GetContext(ctx, database.Executor(ctx, r.db), &annotation, query, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find annotation: %w", err)
	}
	return &annotation, nil
}

// CreateAnnotation inserts the first annotation of a session.
func (r *SessionRepository) CreateAnnotation(ctx context.Context, annotation *models.SessionAnnotation) error {
	if annotation.ID == "" {
		annotation.ID = uuid.NewString()
	}
	annotation.UpdatedAt = time.Now().UTC()

	const query = `INSERT INTO session_annotations (id, session_id, text, updated_at) VALUES ($1, $2, $3, $4)`
	if _, err := database.Executor(ctx, r.db).ExecContext(ctx, query,
		annotation.ID, annotation.SessionID, annotation.Text, annotation.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create annotation: %w", err)
	}
	return nil
}

// UpdateAnnotation overwrites the annotation text.
func (r *SessionRepository) UpdateAnnotation(ctx context.Context, annotation *models.SessionAnnotation) error {
	annotation.UpdatedAt = time.Now().UTC()

	const query = `UPDATE session_annotations SET text = $2, updated_at = $3 WHERE id = $1`
	if _, err := database.Executor(ctx, r.db).ExecContext(ctx, query, annotation.ID, annotation.Text, annotation.UpdatedAt); err != nil {
		return fmt.Errorf("update annotation: %w", err)
	}
	return nil
}
