package models

// Class is the catalog row the record services read for ownership.
type Class struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	TeacherID string `db:"teacher_id" json:"teacher_id"`
	SubjectID string `db:"subject_id" json:"subject_id"`
}

// Student is a class member as seen by the reports.
type Student struct {
	ID       string `db:"id" json:"id"`
	FullName string `db:"full_name" json:"full_name"`
}
