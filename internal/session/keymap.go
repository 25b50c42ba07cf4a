package session

import (
	"strings"

	"github.com/examprep/backend/internal/models"
)

// ApplyKey maps a keyboard event onto the session intents. Arrow keys
// navigate, option-letter keys select on the current question, and Enter
// advances or submits depending on mode and feedback state. The mapping
// goes through the same intent methods, so none of their guards can be
// bypassed from the keyboard.
func (s *Session) ApplyKey(key string) {
	switch key {
	case "ArrowLeft":
		s.Advance(Previous)
		return
	case "ArrowRight":
		s.Advance(Next)
		return
	case "Enter":
		s.applyEnter()
		return
	}

	if label := strings.ToUpper(strings.TrimSpace(key)); len(label) == 1 && label >= "A" && label <= "D" {
		s.mu.Lock()
		if s.status != StatusActive || s.index >= len(s.pool) {
			s.mu.Unlock()
			return
		}
		questionID := s.pool[s.index].ID
		s.mu.Unlock()
		s.SelectAnswer(questionID, label)
	}
}

// applyEnter advances past an acknowledged question, or submits when the
// session is positioned on the last one. In exam mode Enter only
// navigates; finishing early stays an explicit submit action.
func (s *Session) applyEnter() {
	s.mu.Lock()
	if s.status != StatusActive {
		s.mu.Unlock()
		return
	}
	mode := s.config.Mode
	last := s.index == len(s.pool)-1
	feedback := s.feedback
	s.mu.Unlock()

	if mode == models.ModePractice {
		if !feedback {
			return
		}
		if last {
			s.Submit()
		} else {
			s.Advance(Next)
		}
		return
	}
	s.Advance(Next)
}
