package session

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/examprep/backend/internal/models"
)

type Status string

const (
	StatusLoading   Status = "loading"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusEmpty     Status = "empty"
	StatusError     Status = "error"
)

type Direction string

const (
	Next     Direction = "next"
	Previous Direction = "previous"
)

const (
	CompletionSubmitted = "submitted"
	CompletionExpired   = "expired"
)

// Session owns the state of one run from pool assembly to result
// creation. All intents are synchronous transitions guarded by the
// session lock; timer callbacks are the only concurrent writers and are
// ignored once the session leaves active. Mode differences live in the
// intent guards, not in separate states.
type Session struct {
	// immutable after activation
	id     string
	userID int64
	config models.SelectionConfig
	pool   []models.Question

	mu         sync.Mutex
	status     Status
	cancelled  bool
	index      int
	answers    map[string]string
	feedback   bool
	startedAt  time.Time
	remaining  int
	timer      *Timer
	result     *models.Result
	failure    string
	onComplete func(models.Result)
}

// New creates a session in the loading state. It accepts no intents until
// Activate moves it to active.
func New(userID int64, cfg models.SelectionConfig) *Session {
	return &Session{
		id:      newSessionID(),
		userID:  userID,
		config:  cfg,
		status:  StatusLoading,
		answers: map[string]string{},
	}
}

func newSessionID() string {
	return strings.ToLower(rand.Text())
}

func (s *Session) ID() string                     { return s.id }
func (s *Session) UserID() int64                  { return s.userID }
func (s *Session) Config() models.SelectionConfig { return s.config }

// Activate installs the assembled pool and moves the session to active.
// For exam sessions durationSeconds must be positive; the timer is
// acquired here and released on every exit path from active.
func (s *Session) Activate(pool []models.Question, durationSeconds int, onComplete func(models.Result)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusLoading || s.cancelled {
		return nil
	}

	s.pool = pool
	s.onComplete = onComplete
	s.startedAt = time.Now()

	if s.config.Mode == models.ModeExam {
		timer, err := StartTimer(durationSeconds, s.handleTick, s.autoSubmit)
		if err != nil {
			s.status = StatusError
			s.failure = "timer initialization failed"
			return err
		}
		s.timer = timer
		s.remaining = durationSeconds
	}

	s.status = StatusActive
	return nil
}

// FailEmpty moves a loading session to the empty terminal.
func (s *Session) FailEmpty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusLoading {
		s.status = StatusEmpty
	}
}

// Fail moves a loading session to the error terminal.
func (s *Session) Fail(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusLoading {
		s.status = StatusError
		s.failure = reason
	}
}

// SelectAnswer records the label the user chose for the question. In
// practice mode the first pick is final and flips feedback on; in exam
// mode the answer may be revised any number of times before submission.
// Outside active, or for labels and questions not in the pool, it is a
// no-op.
func (s *Session) SelectAnswer(questionID, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusActive {
		return
	}

	q, ok := s.questionByID(questionID)
	if !ok {
		return
	}
	if _, ok := q.OptionFor(label); !ok {
		return
	}

	if s.config.Mode == models.ModePractice {
		if _, answered := s.answers[questionID]; answered {
			return // committed on first pick
		}
		s.answers[questionID] = label
		if questionID == s.pool[s.index].ID {
			s.feedback = true
		}
		return
	}

	s.answers[questionID] = label
}

// Advance moves the current index by one, clamped to pool bounds. In
// practice mode, next requires the current question to be answered.
func (s *Session) Advance(dir Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusActive {
		return
	}

	target := s.index
	switch dir {
	case Next:
		target++
	case Previous:
		target--
	default:
		return
	}
	if target < 0 || target >= len(s.pool) {
		return
	}

	if s.config.Mode == models.ModePractice && dir == Next {
		if _, answered := s.answers[s.pool[s.index].ID]; !answered {
			return // answering is mandatory to progress
		}
	}

	s.index = target
	if s.config.Mode == models.ModePractice {
		_, answered := s.answers[s.pool[s.index].ID]
		s.feedback = answered
	}
}

// Submit finishes the session. Exam mode allows finishing early with time
// remaining; practice mode requires the last question to be answered and
// its feedback acknowledged. Outside active it is a no-op.
func (s *Session) Submit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusActive {
		return
	}
	if s.config.Mode == models.ModePractice {
		if s.index != len(s.pool)-1 {
			return
		}
		if _, answered := s.answers[s.pool[s.index].ID]; !answered {
			return
		}
	}
	s.complete(CompletionSubmitted)
}

// autoSubmit is invoked only by the timer's expiry callback. A session
// that already completed by manual submit ignores it.
func (s *Session) autoSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusActive {
		return
	}
	s.remaining = 0
	s.complete(CompletionExpired)
}

// complete is called with the lock held. The transition is irreversible
// and builds the result exactly once.
func (s *Session) complete(completion string) {
	if s.timer != nil {
		s.timer.Stop()
	}
	result := BuildResult(s.id, s.config, s.pool, s.answers, s.startedAt, time.Now(), completion)
	s.result = &result
	s.status = StatusCompleted
	if s.onComplete != nil {
		// Runs under the session lock; the hook gets the result by value
		// and must not call back into the session.
		s.onComplete(result)
	}
}

// Cancel abandons the session: the timer is released and a session still
// assembling its pool can no longer activate. A late tick, or an assembly
// finishing after Cancel, mutates nothing observable.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = true
	if s.timer != nil {
		s.timer.Stop()
	}
}

func (s *Session) handleTick(remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusActive {
		return
	}
	s.remaining = remaining
}

func (s *Session) questionByID(id string) (models.Question, bool) {
	for _, q := range s.pool {
		if q.ID == id {
			return q, true
		}
	}
	return models.Question{}, false
}

// Status reports the session state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Result returns the completed result, or nil before completion.
func (s *Session) Result() *models.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Snapshot renders the client-facing view of the session. Exam mode never
// exposes correct labels; practice mode includes the correct label and
// explanation for the current question while feedback is visible.
func (s *Session) Snapshot() models.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := models.SessionView{
		ID:              s.id,
		Status:          string(s.status),
		Mode:            s.config.Mode,
		Category:        s.config.Category,
		Index:           s.index,
		Total:           len(s.pool),
		Answered:        len(s.answers),
		FeedbackVisible: s.feedback,
	}
	if s.config.Mode == models.ModeExam {
		view.RemainingSeconds = s.remaining
	}
	if s.status == StatusActive && s.index < len(s.pool) {
		q := s.pool[s.index]
		qv := models.SessionQuestionView{
			ID:       q.ID,
			Prompt:   q.Prompt,
			Options:  q.Options,
			Subject:  q.Subject,
			Year:     q.Year,
			Selected: s.answers[q.ID],
		}
		if s.config.Mode == models.ModePractice && s.feedback {
			qv.Correct = q.Correct
			qv.Explanation = q.Explanation
		}
		view.Question = &qv
	}
	return view
}

// FailureReason returns the message for the error terminal, if any.
func (s *Session) FailureReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}
