package session

import (
	"math"
	"time"

	"github.com/examprep/backend/internal/models"
)

// UnknownCategory is the breakdown bucket for questions carrying no
// subject label.
const UnknownCategory = "Unknown"

// BuildResult derives the immutable result record from the finished
// session state. Percentage is correct over total, not correct over
// answered: an unanswered question counts against the score without being
// counted as incorrect.
func BuildResult(sessionID string, cfg models.SelectionConfig, pool []models.Question, answers map[string]string, startedAt, completedAt time.Time, completion string) models.Result {
	res := models.Result{
		SessionID:      sessionID,
		Config:         cfg,
		Total:          len(pool),
		ElapsedSeconds: int(completedAt.Sub(startedAt).Seconds()),
		Completion:     completion,
		Breakdown:      map[string]models.CategoryScore{},
		Pool:           append([]models.Question(nil), pool...),
		Answers:        copyAnswers(answers),
		CompletedAt:    completedAt,
	}

	for _, q := range pool {
		bucket := q.Subject
		if bucket == "" {
			bucket = UnknownCategory
		}
		score := res.Breakdown[bucket]
		score.Total++

		label, answered := answers[q.ID]
		if !answered {
			res.Unanswered++
		} else {
			res.Answered++
			if label == q.Correct {
				res.Correct++
				score.Correct++
			} else {
				res.Incorrect++
			}
		}
		res.Breakdown[bucket] = score
	}

	if res.Total > 0 {
		res.Percent = int(math.Round(100 * float64(res.Correct) / float64(res.Total)))
	}
	return res
}

func copyAnswers(answers map[string]string) map[string]string {
	out := make(map[string]string, len(answers))
	for k, v := range answers {
		out[k] = v
	}
	return out
}
