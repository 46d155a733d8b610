package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/class-records-api/internal/models"
	"github.com/noah-isme/class-records-api/pkg/database"
)

// GradeRepository persists grade entries.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// ListByAssessment returns every grade of an assessment.
func (r *GradeRepository) ListByAssessment(ctx context.Context, assessmentID string) ([]models.GradeEntry, error) {
	const query = `
SELECT id, assessment_id, student_id, value, recorded_at, origin
FROM grade_entries
WHERE assessment_id = $1
ORDER BY student_id`

	var grades []models.GradeEntry
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.db), &grades, query, assessmentID); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// ListByAssessments returns the grades of several assessments in one query.
func (r *GradeRepository) ListByAssessments(ctx context.Context, assessmentIDs []string) ([]models.GradeEntry, error) {
	if len(assessmentIDs) == 0 {
		return nil, nil
	}
	const query = `
SELECT id, assessment_id, student_id, value, recorded_at, origin
FROM grade_entries
WHERE assessment_id = ANY($1)`

	var grades []models.GradeEntry
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.db), &grades, query, pq.Array(assessmentIDs)); err != nil {
		return nil, fmt.Errorf("list grades by assessments: %w", err)
	}
	return grades, nil
}

// FindByStudents returns existing grades of the given students keyed by student id.
func (r *GradeRepository) FindByStudents(ctx context.Context, assessmentID string, studentIDs []string) (map[string]models.GradeEntry, error) {
	result := make(map[string]models.GradeEntry, len(studentIDs))
	if len(studentIDs) == 0 {
		return result, nil
	}
	const query = `
SELECT id, assessment_id, student_id, value, recorded_at, origin
FROM grade_entries
WHERE assessment_id = $1 AND student_id = ANY($2)`

	var grades []models.GradeEntry
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.db), &grades, query, assessmentID, pq.Array(studentIDs)); err != nil {
		return nil, fmt.Errorf("find grades: %w", err)
	}
	for _, grade := range grades {
		result[grade.StudentID] = grade
	}
	return result, nil
}

// Insert creates a grade row.
func (r *GradeRepository) Insert(ctx context.Context, grade *models.GradeEntry) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	const query = `
INSERT INTO grade_entries (id, assessment_id, student_id, value, recorded_at, origin)
VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := database.Executor(ctx, r.db).ExecContext(ctx, query,
		grade.ID, grade.AssessmentID, grade.StudentID, grade.Value, grade.RecordedAt, grade.Origin,
	); err != nil {
		return fmt.Errorf("insert grade: %w", err)
	}
	return nil
}

// UpdateValue changes only the value and timestamp of an existing grade.
func (r *GradeRepository) UpdateValue(ctx context.Context, gradeID string, value float64, recordedAt time.Time) error {
	const query = `UPDATE grade_entries SET value = $2, recorded_at = $3 WHERE id = $1`
	if _, err := database.Executor(ctx, r.db).ExecContext(ctx, query, gradeID, value, recordedAt); err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	return nil
}
