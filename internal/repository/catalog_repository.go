package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/class-records-api/internal/models"
	"github.com/noah-isme/class-records-api/pkg/database"
)

// CatalogRepository answers the read-only class, student, subject and assessment lookups.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ClassExists reports whether the class is registered.
func (r *CatalogRepository) ClassExists(ctx context.Context, classID string) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, database.Executor(ctx, r.db), &exists, `SELECT EXISTS (SELECT 1 FROM classes WHERE id = $1)`, classID); err != nil {
		return false, fmt.Errorf("class exists: %w", err)
	}
	return exists, nil
}

// FindClass returns the class with its owner and subject, or nil.
func (r *CatalogRepository) FindClass(ctx context.Context, classID string) (*models.Class, error) {
	const query = `SELECT id, name, teacher_id, subject_id FROM classes WHERE id = $1`

	var class models.Class
	if err := sqlx.GetContext(ctx, database.Executor(ctx, r.db), &class, query, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find class: %w", err)
	}
	return &class, nil
}

// ClassOwner returns the teacher id owning the class.
func (r *CatalogRepository) ClassOwner(ctx context.Context, classID string) (string, error) {
	var teacherID string
	if err := sqlx.GetContext(ctx, database.Executor(ctx, r.db), &teacherID, `SELECT teacher_id FROM classes WHERE id = $1`, classID); err != nil {
		return "", fmt.Errorf("class owner: %w", err)
	}
	return teacherID, nil
}

// StudentsOfClass returns the ids of the students currently enrolled in the class.
func (r *CatalogRepository) StudentsOfClass(ctx context.Context, classID string) ([]string, error) {
	var ids []string
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.db), &ids,
		`SELECT student_id FROM class_students WHERE class_id = $1 ORDER BY student_id`, classID); err != nil {
		return nil, fmt.Errorf("students of class: %w", err)
	}
	return ids, nil
}

// ClassRoster returns the students of a class with their names, ordered by name.
func (r *CatalogRepository) ClassRoster(ctx context.Context, classID string) ([]models.Student, error) {
	const query = `
SELECT s.id, s.full_name
FROM class_students cs
JOIN students s ON s.id = cs.student_id
WHERE cs.class_id = $1
ORDER BY s.full_name ASC, s.id ASC`

	var students []models.Student
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.db), &students, query, classID); err != nil {
		return nil, fmt.Errorf("class roster: %w", err)
	}
	return students, nil
}

// SubjectsOfTeacher returns the subject ids taught by the teacher.
func (r *CatalogRepository) SubjectsOfTeacher(ctx context.Context, teacherID string) ([]string, error) {
	var ids []string
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.db), &ids,
		`SELECT subject_id FROM teacher_subjects WHERE teacher_id = $1`, teacherID); err != nil {
		return nil, fmt.Errorf("subjects of teacher: %w", err)
	}
	return ids, nil
}

// AssessmentExists reports whether the assessment is registered.
func (r *CatalogRepository) AssessmentExists(ctx context.Context, assessmentID string) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, database.Executor(ctx, r.db), &exists, `SELECT EXISTS (SELECT 1 FROM assessments WHERE id = $1)`, assessmentID); err != nil {
		return false, fmt.Errorf("assessment exists: %w", err)
	}
	return exists, nil
}

// AssessmentSubject returns the subject id of an assessment.
func (r *CatalogRepository) AssessmentSubject(ctx context.Context, assessmentID string) (string, error) {
	var subjectID string
	if err := sqlx.GetContext(ctx, database.Executor(ctx, r.db), &subjectID, `SELECT subject_id FROM assessments WHERE id = $1`, assessmentID); err != nil {
		return "", fmt.Errorf("assessment subject: %w", err)
	}
	return subjectID, nil
}

// StudentsTaughtBy filters studentIDs down to those enrolled in a class of the subject owned by the teacher.
func (r *CatalogRepository) StudentsTaughtBy(ctx context.Context, teacherID, subjectID string, studentIDs []string) (map[string]struct{}, error) {
	result := make(map[string]struct{}, len(studentIDs))
	if len(studentIDs) == 0 {
		return result, nil
	}
	const query = `
SELECT DISTINCT cs.student_id
FROM class_students cs
JOIN classes c ON c.id = cs.class_id
WHERE c.subject_id = $1 AND c.teacher_id = $2 AND cs.student_id = ANY($3)`

	var ids []string
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.db), &ids, query, subjectID, teacherID, pq.Array(studentIDs)); err != nil {
		return nil, fmt.Errorf("students taught by teacher: %w", err)
	}
	for _, id := range ids {
		result[id] = struct{}{}
	}
	return result, nil
}
