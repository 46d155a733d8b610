package models

import (
	"strings"
	"time"
)

// AttendanceStatus enumerates the allowed roster states.
type AttendanceStatus string

const (
	AttendancePresent        AttendanceStatus = "PRESENT"
	AttendanceAbsent         AttendanceStatus = "ABSENT"
	AttendanceExcusedAbsence AttendanceStatus = "EXCUSED_ABSENCE"
)

// Valid reports whether the status is one of the known values.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceExcusedAbsence:
		return true
	}
	return false
}

// ParseAttendanceStatus normalises user input into a status.
func ParseAttendanceStatus(raw string) (AttendanceStatus, bool) {
	status := AttendanceStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return status, status.Valid()
}

// ClassSession is one meeting of a class on a calendar date.
type ClassSession struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	Date      time.Time `db:"session_date" json:"date"`
	Period    string    `db:"period" json:"period"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AttendanceRecord stores one student's status for a session.
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	SessionID string           `db:"session_id" json:"session_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
}

// SessionAnnotation is the optional free-text note of a session.
type SessionAnnotation struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Text      string    `db:"text" json:"text"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RosterEntry is a single (student, status) pair submitted for a session.
type RosterEntry struct {
	StudentID string
	Status    AttendanceStatus
}

// SessionDetail is the consolidated view of a session after registration.
type SessionDetail struct {
	ClassSession
	Attendance []AttendanceRecord `json:"attendance"`
	Annotation *SessionAnnotation `json:"annotation,omitempty"`
}
