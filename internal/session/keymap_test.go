package session

import "testing"

func TestApplyKeySelectsWithLetters(t *testing.T) {
	s := activePractice(t, 2)

	s.ApplyKey("b")
	view := s.Snapshot()
	if view.Question.Selected != "B" {
		t.Errorf("selected = %q after pressing b, want B", view.Question.Selected)
	}
	if !view.FeedbackVisible {
		t.Error("letter key should trigger the same feedback as a click")
	}

	// Practice commitment applies to key selection too.
	s.ApplyKey("C")
	if got := s.Snapshot().Question.Selected; got != "B" {
		t.Errorf("selected = %q, want B (first pick committed)", got)
	}
}

func TestApplyKeyIgnoresUnknownKeys(t *testing.T) {
	s := activePractice(t, 2)
	for _, key := range []string{"E", "1", "Escape", "", " ", "Tab"} {
		s.ApplyKey(key)
	}
	if got := s.Snapshot().Answered; got != 0 {
		t.Errorf("answered = %d after unknown keys, want 0", got)
	}
}

func TestApplyKeyArrowsNavigateExam(t *testing.T) {
	s := activeExam(t, 3, 600)

	s.ApplyKey("ArrowRight")
	s.ApplyKey("ArrowRight")
	if got := s.Snapshot().Index; got != 2 {
		t.Errorf("index = %d after two right arrows, want 2", got)
	}
	s.ApplyKey("ArrowLeft")
	if got := s.Snapshot().Index; got != 1 {
		t.Errorf("index = %d after left arrow, want 1", got)
	}
}

func TestApplyKeyArrowRightGuardedInPractice(t *testing.T) {
	s := activePractice(t, 2)

	s.ApplyKey("ArrowRight") // unanswered, must not move
	if got := s.Snapshot().Index; got != 0 {
		t.Errorf("index = %d, want 0", got)
	}
	s.ApplyKey("A")
	s.ApplyKey("ArrowRight")
	if got := s.Snapshot().Index; got != 1 {
		t.Errorf("index = %d, want 1", got)
	}
}

func TestApplyEnterPractice(t *testing.T) {
	s := activePractice(t, 2)

	s.ApplyKey("Enter") // no feedback yet, no-op
	if got := s.Snapshot().Index; got != 0 {
		t.Errorf("index = %d after Enter without feedback, want 0", got)
	}

	s.ApplyKey("B")
	s.ApplyKey("Enter") // acknowledged, advances
	if got := s.Snapshot().Index; got != 1 {
		t.Errorf("index = %d, want 1", got)
	}

	s.ApplyKey("B")
	s.ApplyKey("Enter") // last question answered, submits
	if got := s.Status(); got != StatusCompleted {
		t.Errorf("Status() = %v after Enter on last answered question, want completed", got)
	}
}

func TestApplyEnterExamNavigatesOnly(t *testing.T) {
	s := activeExam(t, 2, 600)
	s.ApplyKey("A")
	s.ApplyKey("Enter")
	if got := s.Snapshot().Index; got != 1 {
		t.Errorf("index = %d, want 1", got)
	}

	s.ApplyKey("A")
	s.ApplyKey("Enter") // on the last question Enter must not submit an exam
	if got := s.Status(); got != StatusActive {
		t.Errorf("Status() = %v, want active (exam finish stays explicit)", got)
	}
}

func TestApplyKeyOnCompletedSession(t *testing.T) {
	s := activePractice(t, 1)
	s.ApplyKey("B")
	s.ApplyKey("Enter")
	if got := s.Status(); got != StatusCompleted {
		t.Fatalf("Status() = %v, want completed", got)
	}

	result := s.Result()
	s.ApplyKey("A")
	s.ApplyKey("ArrowRight")
	s.ApplyKey("Enter")
	if got := s.Result(); got != result {
		t.Error("keys after completion changed the result")
	}
}
