package models

// ── Request Types ────────────────────────────────────────

type StartSessionRequest struct {
	Category ExamCategory    `json:"category"`
	Mode     Mode            `json:"mode"`
	Method   SelectionMethod `json:"method"`
	Subject  string          `json:"subject,omitempty"`
	Year     int             `json:"year,omitempty"`
}

func (r StartSessionRequest) Config() SelectionConfig {
	return SelectionConfig{
		Category: r.Category,
		Mode:     r.Mode,
		Method:   r.Method,
		Subject:  r.Subject,
		Year:     r.Year,
	}
}

type SelectAnswerRequest struct {
	QuestionID string `json:"question_id"`
	Label      string `json:"label"`
}

type AdvanceRequest struct {
	Direction string `json:"direction"` // next | previous
}

type KeyRequest struct {
	Key string `json:"key"`
}

// ── View Types ───────────────────────────────────────────

// SessionQuestionView is the current question as shown to the client.
// The correct label and explanation are present only when practice-mode
// feedback is visible for that question.
type SessionQuestionView struct {
	ID       string   `json:"id"`
	Prompt   string   `json:"prompt"`
	Options  []Option `json:"options"`
	Subject  string   `json:"subject,omitempty"`
	Year     int      `json:"year,omitempty"`
	Selected string   `json:"selected,omitempty"`

	Correct     string `json:"correct,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

type SessionView struct {
	ID               string               `json:"id"`
	Status           string               `json:"status"`
	Mode             Mode                 `json:"mode"`
	Category         ExamCategory         `json:"category"`
	Index            int                  `json:"index"`
	Total            int                  `json:"total"`
	Answered         int                  `json:"answered"`
	FeedbackVisible  bool                 `json:"feedback_visible"`
	RemainingSeconds int                  `json:"remaining_seconds,omitempty"`
	Question         *SessionQuestionView `json:"question,omitempty"`
}
