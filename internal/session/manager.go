package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/examprep/backend/internal/models"
)

// ErrNoSession means the user has no live session.
var ErrNoSession = errors.New("no active session")

// DurationResolver supplies the exam countdown length, keyed by category
// and the optional subject/year narrowing.
type DurationResolver interface {
	ResolveDuration(ctx context.Context, category models.ExamCategory, subject string, year int) (int, error)
}

// ResultSink receives completed results for analytics persistence. It is
// fire-and-forget from the engine's perspective: a sink failure never
// rolls back a completed session.
type ResultSink interface {
	PersistAttempt(ctx context.Context, userID int64, result models.Result) error
}

// Manager owns the live sessions, one per user. It drives assembly,
// duration resolution, and the result handoff; the sessions themselves
// own all intent handling.
type Manager struct {
	assembler *Assembler
	durations DurationResolver
	sink      ResultSink

	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewManager(assembler *Assembler, durations DurationResolver, sink ResultSink) *Manager {
	return &Manager{
		assembler: assembler,
		durations: durations,
		sink:      sink,
		sessions:  map[int64]*Session{},
	}
}

// Start assembles a pool for cfg and activates a new session for the
// user. Any prior live session is cancelled first so its timer cannot
// outlive it. On an empty or failed assembly the returned session is in
// its terminal state and the error describes why.
func (m *Manager) Start(ctx context.Context, userID int64, cfg models.SelectionConfig) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := New(userID, cfg)

	m.mu.Lock()
	if prev, ok := m.sessions[userID]; ok {
		prev.Cancel()
	}
	m.sessions[userID] = s
	m.mu.Unlock()

	pool, err := m.assembler.Assemble(ctx, cfg)
	if err != nil {
		if errors.Is(err, ErrEmptyPool) {
			s.FailEmpty()
		} else {
			s.Fail("question retrieval failed")
		}
		return s, err
	}

	duration := 0
	if cfg.Mode == models.ModeExam {
		duration, err = m.durations.ResolveDuration(ctx, cfg.Category, cfg.Subject, cfg.Year)
		if err != nil {
			s.Fail("duration resolution failed")
			return s, fmt.Errorf("resolve duration: %w", err)
		}
	}

	if err := s.Activate(pool, duration, m.completionHook(userID)); err != nil {
		return s, fmt.Errorf("activate session: %w", err)
	}
	log.Printf("[session] user=%d started %s/%s session %s with %d questions", userID, cfg.Category, cfg.Mode, s.ID(), len(pool))
	return s, nil
}

// completionHook forwards the result to the sink off the intent path.
func (m *Manager) completionHook(userID int64) func(models.Result) {
	return func(result models.Result) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := m.sink.PersistAttempt(ctx, userID, result); err != nil {
				log.Printf("WARN: [sink] persist attempt for user %d: %v", userID, err)
			}
		}()
	}
}

// Get returns the user's live session.
func (m *Manager) Get(userID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

// Cancel stops and discards the user's live session. Cancelling with no
// session is a no-op.
func (m *Manager) Cancel(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		s.Cancel()
		delete(m.sessions, userID)
	}
}
