package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/examprep/backend/internal/models"
)

type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// getUserID extracts the authenticated user ID from the request context.
func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	s, err := h.manager.Start(r.Context(), userID, req.Config())

	var cfgErr *models.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: cfgErr.Error()})
	case errors.Is(err, ErrEmptyPool):
		// Not a failure: the store had nothing for this selection.
		writeJSON(w, http.StatusOK, s.Snapshot())
	case err != nil:
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Could not start session, please retry"})
	default:
		writeJSON(w, http.StatusCreated, s.Snapshot())
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) SelectAnswer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	var req models.SelectAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	s.SelectAnswer(req.QuestionID, req.Label)
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	var req models.AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	dir := Direction(req.Direction)
	if dir != Next && dir != Previous {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "direction must be 'next' or 'previous'"})
		return
	}

	s.Advance(dir)
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	s.Submit()
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) Key(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	var req models.KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	s.ApplyKey(req.Key)
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	result := s.Result()
	if result == nil {
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Session is not completed"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	h.manager.Cancel(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) currentSession(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return nil, false
	}
	s, err := h.manager.Get(userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "No active session"})
		return nil, false
	}
	return s, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
