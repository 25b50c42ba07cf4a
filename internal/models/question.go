package models

import (
	"fmt"
	"strings"
	"time"
)

type ExamCategory string

const (
	CategoryUTME ExamCategory = "utme"
	CategorySSCE ExamCategory = "ssce"
)

var ValidCategories = map[ExamCategory]bool{
	CategoryUTME: true,
	CategorySSCE: true,
}

type Mode string

const (
	ModePractice Mode = "practice"
	ModeExam     Mode = "exam"
)

type SelectionMethod string

const (
	MethodBySubject SelectionMethod = "by-subject"
	MethodByYear    SelectionMethod = "by-year"
)

// OptionLabels is the fixed label alphabet for question options.
var OptionLabels = []string{"A", "B", "C", "D"}

// SelectionConfig describes what one session should contain. It is built
// once from the start-session request and never changes afterwards.
type SelectionConfig struct {
	Category ExamCategory    `json:"category"`
	Mode     Mode            `json:"mode"`
	Method   SelectionMethod `json:"method"`
	Subject  string          `json:"subject,omitempty"`
	Year     int             `json:"year,omitempty"`
}

// ConfigError reports a malformed SelectionConfig. It is always raised
// before any question-store call is made.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid selection config: %s %s", e.Field, e.Reason)
}

// Validate checks that exactly one selection method is active and that its
// required field is populated. A by-subject config may also narrow by year;
// a by-year config must not name a subject.
func (c SelectionConfig) Validate() error {
	if !ValidCategories[c.Category] {
		return &ConfigError{Field: "category", Reason: "must be 'utme' or 'ssce'"}
	}
	if c.Mode != ModePractice && c.Mode != ModeExam {
		return &ConfigError{Field: "mode", Reason: "must be 'practice' or 'exam'"}
	}
	switch c.Method {
	case MethodBySubject:
		if strings.TrimSpace(c.Subject) == "" {
			return &ConfigError{Field: "subject", Reason: "is required for by-subject selection"}
		}
	case MethodByYear:
		if c.Year <= 0 {
			return &ConfigError{Field: "year", Reason: "is required for by-year selection"}
		}
		if strings.TrimSpace(c.Subject) != "" {
			return &ConfigError{Field: "subject", Reason: "must be empty for by-year selection"}
		}
	default:
		return &ConfigError{Field: "method", Reason: "must be 'by-subject' or 'by-year'"}
	}
	return nil
}

type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Question is the canonical normalized unit served to a session.
// Invariant: exactly four options labeled A-D, and Correct is one of them.
type Question struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"prompt"`
	Options     []Option `json:"options"`
	Correct     string   `json:"correct"`
	Explanation string   `json:"explanation,omitempty"`
	Year        int      `json:"year,omitempty"`
	Subject     string   `json:"subject,omitempty"`
}

// OptionFor returns the option carrying the given label.
func (q Question) OptionFor(label string) (Option, bool) {
	for _, o := range q.Options {
		if o.Label == label {
			return o, true
		}
	}
	return Option{}, false
}

// RawQuestion is a question row as the store returns it. Imported banks
// populated different column generations (prompt vs question_text,
// correct_option vs answer), so both variants are carried and reconciled
// during normalization.
type RawQuestion struct {
	ID            int64
	Prompt        string
	QuestionText  string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectOption string
	Answer        string
	Explanation   string
	Year          int
	Subject       string
	CreatedAt     time.Time
}
