package models

import "time"

// CategoryScore is one bucket of the per-category breakdown.
type CategoryScore struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Result is the write-once record built when a session completes. It
// carries a verbatim copy of the pool, the answer map, and the selection
// config so the review screen can replay the session without refetching.
type Result struct {
	SessionID      string                   `json:"session_id"`
	Config         SelectionConfig          `json:"config"`
	Total          int                      `json:"total"`
	Answered       int                      `json:"answered"`
	Correct        int                      `json:"correct"`
	Incorrect      int                      `json:"incorrect"`
	Unanswered     int                      `json:"unanswered"`
	Percent        int                      `json:"percent"`
	ElapsedSeconds int                      `json:"elapsed_seconds"`
	Completion     string                   `json:"completion"` // submitted | expired
	Breakdown      map[string]CategoryScore `json:"breakdown"`
	Pool           []Question               `json:"pool"`
	Answers        map[string]string        `json:"answers"`
	CompletedAt    time.Time                `json:"completed_at"`
}

// ── Analytics Types ──────────────────────────────────────

// Attempt is one persisted row of a completed session, as listed on the
// history screen.
type Attempt struct {
	ID             int64                    `json:"id"`
	Category       ExamCategory             `json:"category"`
	Mode           Mode                     `json:"mode"`
	Method         SelectionMethod          `json:"method"`
	Subject        string                   `json:"subject,omitempty"`
	Year           int                      `json:"year,omitempty"`
	Total          int                      `json:"total"`
	Correct        int                      `json:"correct"`
	Incorrect      int                      `json:"incorrect"`
	Unanswered     int                      `json:"unanswered"`
	Percent        int                      `json:"percent"`
	ElapsedSeconds int                      `json:"elapsed_seconds"`
	Completion     string                   `json:"completion"`
	Breakdown      map[string]CategoryScore `json:"breakdown,omitempty"`
	CompletedAt    time.Time                `json:"completed_at"`
}

type AttemptListResponse struct {
	Attempts []Attempt `json:"attempts"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

type SubjectStat struct {
	Attempted int     `json:"attempted"`
	Correct   int     `json:"correct"`
	Accuracy  float64 `json:"accuracy"`
}

type AttemptStatsResponse struct {
	TotalAttempts  int                    `json:"total_attempts"`
	AvgPercent     float64                `json:"avg_percent"`
	BestPercent    int                    `json:"best_percent"`
	TotalQuestions int                    `json:"total_questions"`
	TotalCorrect   int                    `json:"total_correct"`
	SubjectStats   map[string]SubjectStat `json:"subject_stats"`
}
