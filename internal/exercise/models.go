package exercise

import (
	"fmt"
	"time"
)

// Type is the closed set of exercise kinds.
type Type string

const (
	TypeMultipleChoice Type = "multiple_choice"
	TypeFreeForm       Type = "free_form"
	TypeTrueFalse      Type = "true_false"
	TypeComputation    Type = "computation"
)

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeMultipleChoice, TypeFreeForm, TypeTrueFalse, TypeComputation:
		return Type(s), nil
	default:
		return "", fmt.Errorf("unknown exercise type %q", s)
	}
}

// Exercise is a single graded question belonging to a course.
//
// Answer is the grading key and must never be empty in storage; whether it
// appears in a read response is the Gate's decision, not the caller's.
type Exercise struct {
	ID          string            `json:"id"`
	CourseID    string            `json:"course_id"`
	Type        Type              `json:"type"`
	Body        string            `json:"body"`
	Options     map[string]string `json:"options,omitempty"` // multiple_choice only: choice key -> text
	Answer      string            `json:"answer,omitempty"`
	Explanation string            `json:"explanation,omitempty"`
	Difficulty  string            `json:"difficulty,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Redacted returns a copy safe to show a viewer who has not earned the
// answer. With omitempty on Answer the field disappears from the JSON
// encoding; an already-empty answer makes this a no-op.
func (e Exercise) Redacted() Exercise {
	e.Answer = ""
	return e
}
