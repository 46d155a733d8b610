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
	"github.com/lib/pq"

	"github.com/noah-isme/class-records-api/internal/models"
	"github.com/noah-isme/class-records-api/pkg/database"
)

// AssessmentRepository reads assessments and questions and maintains answer keys.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository constructs the repository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// FindByID returns the assessment or nil when it does not exist.
func (r *AssessmentRepository) FindByID(ctx context.Context, id string) (*models.Assessment, error) {
	const query = `SELECT id, subject_id, title, max_value, applied_on FROM assessments WHERE id = $1`

	var assessment models.Assessment
	if err := sqlx.GetContext(ctx, database.Executor(ctx, r.db), &assessment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find assessment: %w", err)
	}
	return &assessment, nil
}

// ListBySubject returns the assessments of a subject, optionally limited to an application window.
func (r *AssessmentRepository) ListBySubject(ctx context.Context, subjectID string, from, to *time.Time) ([]models.Assessment, error) {
	query := strings.Builder{}
	query.WriteString(`
SELECT id, subject_id, title, max_value, applied_on
FROM assessments
WHERE subject_id = $1`)

	args := []interface{}{subjectID}
	if from != nil {
		args = append(args, *from)
		fmt.Fprintf(&query, " AND applied_on >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		fmt.Fprintf(&query, " AND applied_on <= $%d", len(args))
	}
	query.WriteString("\nORDER BY applied_on ASC, title ASC")

	var assessments []models.Assessment
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.db), &assessments, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return assessments, nil
}

// ListQuestions returns the objective questions of an assessment ordered by number.
func (r *AssessmentRepository) ListQuestions(ctx context.Context, assessmentID string) ([]models.ObjectiveQuestion, error) {
	const query = `
SELECT id, assessment_id, number, points
FROM objective_questions
WHERE assessment_id = $1
ORDER BY number ASC`

	var questions []models.ObjectiveQuestion
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.db), &questions, query, assessmentID); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// AnswerKeysByQuestion returns the existing answer key entries keyed by question id.
func (r *AssessmentRepository) AnswerKeysByQuestion(ctx context.Context, questionIDs []string) (map[string]models.AnswerKeyEntry, error) {
	result := make(map[string]models.AnswerKeyEntry, len(questionIDs))
	if len(questionIDs) == 0 {
		return result, nil
	}

	const query = `SELECT id, question_id, letter FROM answer_key_entries WHERE question_id = ANY($1)`

	var entries []models.AnswerKeyEntry
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.db), &entries, query, pq.Array(questionIDs)); err != nil {
		return nil, fmt.Errorf("list answer keys: %w", err)
	}
	for _, entry := range entries {
		result[entry.QuestionID] = entry
	}
	return result, nil
}

// InsertAnswerKey creates an entry for a question without one.
func (r *AssessmentRepository) InsertAnswerKey(ctx context.Context, entry *models.AnswerKeyEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `INSERT INTO answer_key_entries (id, question_id, letter) VALUES ($1, $2, $3)`
	if _, err := database.Executor(ctx, r.db).ExecContext(ctx, query, entry.ID, entry.QuestionID, entry.Letter); err != nil {
		return fmt.Errorf("insert answer key: %w", err)
	}
	return nil
}

// UpdateAnswerKey overwrites the letter of an existing entry.
func (r *AssessmentRepository) UpdateAnswerKey(ctx context.Context, entryID string, letter models.AnswerLetter) error {
	const query = `UPDATE answer_key_entries SET letter = $2 WHERE id = $1`
	if _, err := database.Executor(ctx, r.db).ExecContext(ctx, query, entryID, letter); err != nil {
		return fmt.Errorf("update answer key: %w", err)
	}
	return nil
}

// DeleteAnswerKey removes the entry of a question, if any.
func (r *AssessmentRepository) DeleteAnswerKey(ctx context.Context, questionID string) error {
	const query = `DELETE FROM answer_key_entries WHERE question_id = $1`
	if _, err := database.Executor(ctx, r.db).ExecContext(ctx, query, questionID); err != nil {
		return fmt.Errorf("delete answer key: %w", err)
	}
	return nil
}

// AnswerKeyLines lists every question of an assessment with its current letter.
func (r *AssessmentRepository) AnswerKeyLines(ctx context.Context, assessmentID string) ([]models.AnswerKeyLine, error) {
	const query = `
SELECT q.id AS question_id, q.number, q.points, k.letter
FROM objective_questions q
LEFT JOIN answer_key_entries k ON k.question_id = q.id
WHERE q.assessment_id = $1
ORDER BY q.number ASC`

	var lines []models.AnswerKeyLine
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.db), &lines, query, assessmentID); err != nil {
		return nil, fmt.Errorf("list answer key lines: %w", err)
	}
	for i := range lines {
		lines[i].HasAnswer = lines[i].Letter != nil
	}
	return lines, nil
}
