package questions

import (
	"encoding/json"
	"net/http"

	"github.com/examprep/backend/internal/models"
)

// Handler serves the selection catalog the start-session screen needs.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	category := models.ExamCategory(r.URL.Query().Get("category"))
	if !models.ValidCategories[category] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "category must be 'utme' or 'ssce'"})
		return
	}

	subjects, err := h.store.ListSubjects(r.Context(), category)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list subjects"})
		return
	}
	if subjects == nil {
		subjects = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"subjects": subjects})
}

func (h *Handler) ListYears(w http.ResponseWriter, r *http.Request) {
	category := models.ExamCategory(r.URL.Query().Get("category"))
	if !models.ValidCategories[category] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "category must be 'utme' or 'ssce'"})
		return
	}

	years, err := h.store.ListYears(r.Context(), category, r.URL.Query().Get("subject"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list years"})
		return
	}
	if years == nil {
		years = []int{}
	}
	writeJSON(w, http.StatusOK, map[string][]int{"years": years})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
