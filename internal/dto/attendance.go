package dto

// RosterItem is one (student, status) pair of a registration.
type RosterItem struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,attendance_status"`
}

// RegisterAttendanceRequest replaces the roster of one class session.
type RegisterAttendanceRequest struct {
	Date       string       `json:"date" validate:"required,datetime=2006-01-02"`
	Period     string       `json:"period" validate:"required,max=64"`
	Roster     []RosterItem `json:"roster" validate:"required,min=1,dive"`
	Annotation *string      `json:"annotation,omitempty" validate:"omitempty,max=2000"`
}
