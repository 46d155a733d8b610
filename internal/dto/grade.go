package dto

// GradeItem is the grade of one student.
type GradeItem struct {
	StudentID string   `json:"student_id" validate:"required"`
	Value     *float64 `json:"value" validate:"required"`
}

// LaunchGradesRequest upserts grades of one assessment.
type LaunchGradesRequest struct {
	Entries []GradeItem `json:"entries" validate:"required,min=1,dive"`
}
