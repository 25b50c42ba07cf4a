package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/examprep/backend/internal/models"
)

type fakeResolver struct {
	seconds int
	err     error
}

func (f *fakeResolver) ResolveDuration(ctx context.Context, category models.ExamCategory, subject string, year int) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.seconds, nil
}

type fakeSink struct {
	received chan models.Result
	err      error
}

func newFakeSink() *fakeSink {
	return &fakeSink{received: make(chan models.Result, 1)}
}

func (f *fakeSink) PersistAttempt(ctx context.Context, userID int64, result models.Result) error {
	if f.err != nil {
		return f.err
	}
	f.received <- result
	return nil
}

func newTestManager(store QuestionStore, resolver *fakeResolver, sink *fakeSink) *Manager {
	return NewManager(NewAssemblerWithLimits(store, testLimits()), resolver, sink)
}

// gatedStore blocks the first fetch until released, so a test can act
// while pool assembly is still in flight.
type gatedStore struct {
	inner   *fakeStore
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedStore(inner *fakeStore) *gatedStore {
	return &gatedStore{
		inner:   inner,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedStore) FetchQuestions(ctx context.Context, category models.ExamCategory, subject string, year, limit int) ([]models.RawQuestion, error) {
	g.once.Do(func() { close(g.started) })
	<-g.release
	return g.inner.FetchQuestions(ctx, category, subject, year, limit)
}

func (g *gatedStore) ListSubjects(ctx context.Context, category models.ExamCategory) ([]string, error) {
	return g.inner.ListSubjects(ctx, category)
}

func TestManagerStartPractice(t *testing.T) {
	store := &fakeStore{rows: map[string][]models.RawQuestion{
		"mathematics": rawRange("mathematics", 1, 5),
	}}
	m := newTestManager(store, &fakeResolver{seconds: 600}, newFakeSink())

	s, err := m.Start(context.Background(), 1, practiceConfig())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := s.Status(); got != StatusActive {
		t.Errorf("Status() = %v, want active", got)
	}

	got, err := m.Get(1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != s {
		t.Error("Get() returned a different session")
	}
}

func TestManagerStartRejectsInvalidConfig(t *testing.T) {
	m := newTestManager(&fakeStore{}, &fakeResolver{seconds: 600}, newFakeSink())

	_, err := m.Start(context.Background(), 1, models.SelectionConfig{
		Category: models.CategoryUTME,
		Mode:     models.ModePractice,
		Method:   models.MethodBySubject,
	})
	var cfgErr *models.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("Start() error = %v, want ConfigError", err)
	}
	if _, err := m.Get(1); !errors.Is(err, ErrNoSession) {
		t.Error("invalid config must not register a session")
	}
}

func TestManagerStartEmptyPool(t *testing.T) {
	m := newTestManager(&fakeStore{}, &fakeResolver{seconds: 600}, newFakeSink())

	s, err := m.Start(context.Background(), 1, practiceConfig())
	if !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("Start() error = %v, want ErrEmptyPool", err)
	}
	if s == nil {
		t.Fatal("Start() must return the terminal session alongside the error")
	}
	if got := s.Status(); got != StatusEmpty {
		t.Errorf("Status() = %v, want empty", got)
	}
}

func TestManagerStartStoreFailure(t *testing.T) {
	store := &fakeStore{failSubject: map[string]error{"mathematics": errors.New("down")}}
	m := newTestManager(store, &fakeResolver{seconds: 600}, newFakeSink())

	s, err := m.Start(context.Background(), 1, practiceConfig())
	if err == nil || errors.Is(err, ErrEmptyPool) {
		t.Fatalf("Start() error = %v, want retrieval failure", err)
	}
	if got := s.Status(); got != StatusError {
		t.Errorf("Status() = %v, want error", got)
	}
	if got := s.FailureReason(); got != "question retrieval failed" {
		t.Errorf("FailureReason() = %q", got)
	}
}

func TestManagerStartDurationFailure(t *testing.T) {
	store := &fakeStore{
		subjects: []string{"mathematics"},
		rows:     map[string][]models.RawQuestion{"mathematics": rawRange("mathematics", 1, 3)},
	}
	m := newTestManager(store, &fakeResolver{err: errors.New("no durations table")}, newFakeSink())

	s, err := m.Start(context.Background(), 1, examConfig())
	if err == nil {
		t.Fatal("Start() expected error when duration resolution fails")
	}
	if got := s.Status(); got != StatusError {
		t.Errorf("Status() = %v, want error", got)
	}
}

func TestManagerStartReplacesPriorSession(t *testing.T) {
	store := &fakeStore{rows: map[string][]models.RawQuestion{
		"mathematics": rawRange("mathematics", 1, 5),
	}}
	m := newTestManager(store, &fakeResolver{seconds: 600}, newFakeSink())

	first, err := m.Start(context.Background(), 1, practiceConfig())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	second, err := m.Start(context.Background(), 1, practiceConfig())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if first.ID() == second.ID() {
		t.Error("second start must create a new session")
	}
	got, _ := m.Get(1)
	if got != second {
		t.Error("Get() should return the replacement session")
	}
}

func TestManagerCancel(t *testing.T) {
	store := &fakeStore{rows: map[string][]models.RawQuestion{
		"mathematics": rawRange("mathematics", 1, 5),
	}}
	m := newTestManager(store, &fakeResolver{seconds: 600}, newFakeSink())

	if _, err := m.Start(context.Background(), 1, practiceConfig()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	m.Cancel(1)
	if _, err := m.Get(1); !errors.Is(err, ErrNoSession) {
		t.Errorf("Get() after cancel error = %v, want ErrNoSession", err)
	}
	m.Cancel(1) // no-op
}

func TestManagerSessionsAreIsolatedPerUser(t *testing.T) {
	store := &fakeStore{rows: map[string][]models.RawQuestion{
		"mathematics": rawRange("mathematics", 1, 5),
	}}
	m := newTestManager(store, &fakeResolver{seconds: 600}, newFakeSink())

	s1, err := m.Start(context.Background(), 1, practiceConfig())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	s2, err := m.Start(context.Background(), 2, practiceConfig())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s1 == s2 {
		t.Fatal("users must not share a session")
	}
	if got, _ := m.Get(1); got != s1 {
		t.Error("user 1 session was displaced by user 2")
	}
}

func TestManagerForwardsResultToSink(t *testing.T) {
	store := &fakeStore{rows: map[string][]models.RawQuestion{
		"mathematics": rawRange("mathematics", 1, 1),
	}}
	sink := newFakeSink()
	m := newTestManager(store, &fakeResolver{seconds: 600}, sink)

	s, err := m.Start(context.Background(), 7, practiceConfig())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	view := s.Snapshot()
	s.SelectAnswer(view.Question.ID, "B")
	s.Submit()

	select {
	case result := <-sink.received:
		if result.SessionID != s.ID() {
			t.Errorf("sink session id = %q, want %q", result.SessionID, s.ID())
		}
		if result.Total != 1 || result.Correct != 1 {
			t.Errorf("sink result = %d/%d, want 1 correct of 1", result.Correct, result.Total)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sink never received the result")
	}
}

func TestManagerCancelDuringAssemblyStaysCancelled(t *testing.T) {
	store := newGatedStore(&fakeStore{rows: map[string][]models.RawQuestion{
		"mathematics": rawRange("mathematics", 1, 3),
	}})
	sink := newFakeSink()
	// A one-second exam: if the cancelled session activated anyway, its
	// timer would expire and push a phantom result into the sink.
	m := newTestManager(store, &fakeResolver{seconds: 1}, sink)

	var s *Session
	done := make(chan struct{})
	go func() {
		defer close(done)
		s, _ = m.Start(context.Background(), 1, models.SelectionConfig{
			Category: models.CategoryUTME,
			Mode:     models.ModeExam,
			Method:   models.MethodBySubject,
			Subject:  "mathematics",
		})
	}()

	<-store.started
	m.Cancel(1)
	close(store.release)
	<-done

	if got := s.Status(); got == StatusActive || got == StatusCompleted {
		t.Fatalf("Status() = %v, want the cancelled session to stay inert", got)
	}
	if _, err := m.Get(1); !errors.Is(err, ErrNoSession) {
		t.Error("cancelled session is still registered")
	}
	select {
	case result := <-sink.received:
		t.Fatalf("sink received a result from a cancelled session (completion=%q)", result.Completion)
	case <-time.After(1500 * time.Millisecond):
	}
}

func TestManagerSinkFailureDoesNotAffectSession(t *testing.T) {
	store := &fakeStore{rows: map[string][]models.RawQuestion{
		"mathematics": rawRange("mathematics", 1, 1),
	}}
	sink := newFakeSink()
	sink.err = errors.New("analytics down")
	m := newTestManager(store, &fakeResolver{seconds: 600}, sink)

	s, err := m.Start(context.Background(), 7, practiceConfig())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	view := s.Snapshot()
	s.SelectAnswer(view.Question.ID, "B")
	s.Submit()

	if got := s.Status(); got != StatusCompleted {
		t.Errorf("Status() = %v, want completed despite sink failure", got)
	}
	if s.Result() == nil {
		t.Error("Result() is nil, want a result kept in memory for the result endpoint")
	}
}
