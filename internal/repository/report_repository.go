package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-records-api/internal/models"
	"github.com/noah-isme/class-records-api/pkg/database"
)

// ReportRepository runs the aggregate reads behind the class reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// CountSessions counts the sessions of a class with a date inside [from, to].
func (r *ReportRepository) CountSessions(ctx context.Context, classID string, from, to time.Time) (int, error) {
	const query = `
SELECT COUNT(*)
FROM class_sessions
WHERE class_id = $1 AND session_date BETWEEN $2 AND $3`

	var total int
	if err := sqlx.GetContext(ctx, database.Executor(ctx, r.db), &total, query, classID, from, to); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return total, nil
}

// AttendanceTallies counts attendance rows per student and status inside [from, to].
func (r *ReportRepository) AttendanceTallies(ctx context.Context, classID string, from, to time.Time) ([]models.AttendanceTally, error) {
	const query = `
SELECT ar.student_id, ar.status, COUNT(*) AS total
FROM attendance_records ar
JOIN class_sessions s ON s.id = ar.session_id
WHERE s.class_id = $1 AND s.session_date BETWEEN $2 AND $3
GROUP BY ar.student_id, ar.status`

	var tallies []models.AttendanceTally
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.db), &tallies, query, classID, from, to); err != nil {
		return nil, fmt.Errorf("attendance tallies: %w", err)
	}
	return tallies, nil
}

// PeriodSpan returns the first and last session dates of a class tagged with period.
// Both values are nil when no session carries the label.
func (r *ReportRepository) PeriodSpan(ctx context.Context, classID, period string) (*time.Time, *time.Time, error) {
	const query = `
SELECT MIN(session_date) AS first_date, MAX(session_date) AS last_date
FROM class_sessions
WHERE class_id = $1 AND period = $2`

	var span struct {
		First sql.NullTime `db:"first_date"`
		Last  sql.NullTime `db:"last_date"`
	}
	if err := sqlx.GetContext(ctx, database.Executor(ctx, r.db), &span, query, classID, period); err != nil {
		return nil, nil, fmt.Errorf("period span: %w", err)
	}
	if !span.First.Valid || !span.Last.Valid {
		return nil, nil, nil
	}
	return &span.First.Time, &span.Last.Time, nil
}
