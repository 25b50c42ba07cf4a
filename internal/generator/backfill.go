package generator

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/examprep/backend/internal/models"
	"github.com/examprep/backend/internal/questions"
	"github.com/examprep/backend/internal/session"
)

// BackfillResult summarizes one backfill run.
type BackfillResult struct {
	Examined  int    `json:"examined"`
	Generated int    `json:"generated"`
	Skipped   int    `json:"skipped"`
	Model     string `json:"model"`
}

// Backfiller walks questions missing an explanation and fills them in.
type Backfiller struct {
	store     *questions.Store
	explainer *Explainer
}

func NewBackfiller(store *questions.Store, explainer *Explainer) *Backfiller {
	return &Backfiller{store: store, explainer: explainer}
}

// Run generates explanations for up to limit questions. Rows that fail
// normalization or generation are skipped, not fatal; the run reports how
// far it got.
func (b *Backfiller) Run(ctx context.Context, limit int) (*BackfillResult, error) {
	raws, err := b.store.ListMissingExplanations(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := &BackfillResult{Examined: len(raws), Model: b.explainer.ModelName()}
	for _, raw := range raws {
		q, err := session.Normalize(raw)
		if err != nil {
			result.Skipped++
			continue
		}

		text, err := b.explainer.Explain(ctx, q)
		if err != nil {
			log.Printf("WARN: [explain] question %d: %v", raw.ID, err)
			result.Skipped++
			continue
		}

		if err := b.store.UpdateExplanation(ctx, raw.ID, text); err != nil {
			log.Printf("WARN: [explain] save question %d: %v", raw.ID, err)
			result.Skipped++
			continue
		}
		result.Generated++
	}

	log.Printf("[explain] backfill complete: examined=%d generated=%d skipped=%d",
		result.Examined, result.Generated, result.Skipped)
	return result, nil
}

// ── HTTP Handler ────────────────────────────────────────

type Handler struct {
	backfiller *Backfiller
}

func NewHandler(backfiller *Backfiller) *Handler {
	return &Handler{backfiller: backfiller}
}

type backfillRequest struct {
	Limit int `json:"limit"`
}

func (h *Handler) Backfill(w http.ResponseWriter, r *http.Request) {
	var req backfillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}

	result, err := h.backfiller.Run(r.Context(), req.Limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Backfill failed: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
