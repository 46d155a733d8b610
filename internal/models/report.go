package models

import "time"

// FrequencyRow is the attendance tally of one student.
type FrequencyRow struct {
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	Presences   int     `json:"presences"`
	Absences    int     `json:"absences"`
	Excused     int     `json:"excused"`
	Percentage  float64 `json:"percentage"`
}

// FrequencyReport aggregates attendance for a class over a date window.
type FrequencyReport struct {
	ClassID        string         `json:"class_id"`
	DateFrom       time.Time      `json:"date_from"`
	DateTo         time.Time      `json:"date_to"`
	TotalSessions  int            `json:"total_sessions"`
	Students       []FrequencyRow `json:"students"`
	MeanPercentage float64        `json:"mean_percentage"`
	TotalPresences int            `json:"total_presences"`
	TotalAbsences  int            `json:"total_absences"`
	TotalExcused   int            `json:"total_excused"`
}

// AttendanceTally is a per student, per status count read from storage.
type AttendanceTally struct {
	StudentID string           `db:"student_id"`
	Status    AttendanceStatus `db:"status"`
	Total     int              `db:"total"`
}

// AssessmentScore is one graded assessment of a student.
type AssessmentScore struct {
	AssessmentID string  `json:"assessment_id"`
	Title        string  `json:"title"`
	Value        float64 `json:"value"`
	MaxValue     float64 `json:"max_value"`
	Percent      float64 `json:"percent"`
}

// StudentPerformance holds the overall average of a student.
type StudentPerformance struct {
	StudentID      string            `json:"student_id"`
	StudentName    string            `json:"student_name"`
	Scores         []AssessmentScore `json:"scores"`
	OverallAverage float64           `json:"overall_average"`
}

// PerformanceStats are computed over students with a positive overall average.
type PerformanceStats struct {
	Count     int     `json:"count"`
	Mean      float64 `json:"mean"`
	Median    float64 `json:"median"`
	Max       float64 `json:"max"`
	Min       float64 `json:"min"`
	AboveMean int     `json:"above_mean"`
	BelowMean int     `json:"below_mean"`
}

// HistogramBin counts values in [Lower, Upper), the last bin is closed.
type HistogramBin struct {
	Label string  `json:"label"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// PerformanceCategory is a named band with its share of the filtered students.
type PerformanceCategory struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// PerformanceReport bundles the per student averages with class statistics.
type PerformanceReport struct {
	ClassID     string                `json:"class_id"`
	SubjectID   string                `json:"subject_id"`
	Period      string                `json:"period,omitempty"`
	Assessments []Assessment          `json:"assessments"`
	Students    []StudentPerformance  `json:"students"`
	Stats       PerformanceStats      `json:"stats"`
	Histogram   []HistogramBin        `json:"histogram"`
	Categories  []PerformanceCategory `json:"categories"`
	Sentences   []string              `json:"sentences"`
}
