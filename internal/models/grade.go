package models

import "time"

// GradeOriginManual tags grades typed in by a teacher.
const GradeOriginManual = "Manual"

// GradeEntry is the grade of one student on one assessment.
type GradeEntry struct {
	ID           string    `db:"id" json:"id"`
	AssessmentID string    `db:"assessment_id" json:"assessment_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Value        float64   `db:"value" json:"value"`
	RecordedAt   time.Time `db:"recorded_at" json:"recorded_at"`
	Origin       string    `db:"origin" json:"origin"`
}

// GradeInput is a single (student, value) pair of a launch batch.
type GradeInput struct {
	StudentID string
	Value     float64
}

// GradeLaunchResult summarises a LaunchGrades call.
type GradeLaunchResult struct {
	AssessmentID string       `json:"assessment_id"`
	Inserted     int          `json:"inserted"`
	Updated      int          `json:"updated"`
	Grades       []GradeEntry `json:"grades"`
}
