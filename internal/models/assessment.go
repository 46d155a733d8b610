package models

import (
	"strings"
	"time"
)

// AnswerLetter is a correct-answer choice on an objective question.
type AnswerLetter string

// AnswerLetters is the fixed alphabet accepted for answer keys.
var AnswerLetters = []AnswerLetter{"A", "B", "C", "D", "E"}

// ParseAnswerLetter upper-cases raw and checks it against the alphabet.
func ParseAnswerLetter(raw string) (AnswerLetter, bool) {
	letter := AnswerLetter(strings.ToUpper(strings.TrimSpace(raw)))
	for _, allowed := range AnswerLetters {
		if letter == allowed {
			return letter, true
		}
	}
	return letter, false
}

// Assessment is an evaluation applied to a subject.
type Assessment struct {
	ID        string    `db:"id" json:"id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	Title     string    `db:"title" json:"title"`
	MaxValue  float64   `db:"max_value" json:"max_value"`
	AppliedOn time.Time `db:"applied_on" json:"applied_on"`
}

// ObjectiveQuestion belongs to an assessment; Number is 1..N within it.
type ObjectiveQuestion struct {
	ID           string  `db:"id" json:"id"`
	AssessmentID string  `db:"assessment_id" json:"assessment_id"`
	Number       int     `db:"number" json:"number"`
	Points       float64 `db:"points" json:"points"`
}

// AnswerKeyEntry holds the correct letter of one question.
type AnswerKeyEntry struct {
	ID         string       `db:"id" json:"id"`
	QuestionID string       `db:"question_id" json:"question_id"`
	Letter     AnswerLetter `db:"letter" json:"letter"`
}

// AnswerKeyItem is one requested change; a nil Letter clears the entry.
type AnswerKeyItem struct {
	QuestionID string
	Letter     *AnswerLetter
}

// AnswerKeyLine is the read-back view of one question.
type AnswerKeyLine struct {
	QuestionID string        `db:"question_id" json:"question_id"`
	Number     int           `db:"number" json:"number"`
	Points     float64       `db:"points" json:"points"`
	Letter     *AnswerLetter `db:"letter" json:"letter"`
	HasAnswer  bool          `db:"-" json:"has_answer"`
}

// AnswerKeySummary lists every question of an assessment with its current letter.
type AnswerKeySummary struct {
	AssessmentID string          `json:"assessment_id"`
	Title        string          `json:"title"`
	Subjective   bool            `json:"subjective"`
	Answered     int             `json:"answered"`
	Questions    []AnswerKeyLine `json:"questions"`
}
