package analytics

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/examprep/backend/internal/models"
)

// Store persists completed-attempt summaries and serves history queries.
// It implements the engine's ResultSink collaborator.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// PersistAttempt writes one attempt row plus its per-category breakdown.
// The engine calls this after the session has already completed, so a
// failure here is reported to the caller for logging but never affects
// the session or the result the user sees.
func (s *Store) PersistAttempt(ctx context.Context, userID int64, result models.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var attemptID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO attempts
		 (user_id, session_id, category, mode, method, subject, year,
		  total, answered, correct, incorrect, unanswered, percent,
		  elapsed_seconds, completion, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id`,
		userID, result.SessionID, result.Config.Category, result.Config.Mode,
		result.Config.Method, nullString(result.Config.Subject), nullInt(result.Config.Year),
		result.Total, result.Answered, result.Correct, result.Incorrect, result.Unanswered,
		result.Percent, result.ElapsedSeconds, result.Completion, result.CompletedAt,
	).Scan(&attemptID)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	for label, score := range result.Breakdown {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO attempt_breakdowns (attempt_id, category_label, correct, total)
			 VALUES ($1, $2, $3, $4)`,
			attemptID, label, score.Correct, score.Total,
		)
		if err != nil {
			return fmt.Errorf("insert breakdown: %w", err)
		}
	}

	return tx.Commit()
}

// ListAttempts returns the user's attempt history, newest first.
func (s *Store) ListAttempts(ctx context.Context, userID int64, page, pageSize int) ([]models.Attempt, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count attempts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, mode, method, COALESCE(subject, ''), COALESCE(year, 0),
		        total, correct, incorrect, unanswered, percent,
		        elapsed_seconds, completion, completed_at
		 FROM attempts WHERE user_id = $1
		 ORDER BY completed_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		var a models.Attempt
		if err := rows.Scan(&a.ID, &a.Category, &a.Mode, &a.Method, &a.Subject, &a.Year,
			&a.Total, &a.Correct, &a.Incorrect, &a.Unanswered, &a.Percent,
			&a.ElapsedSeconds, &a.Completion, &a.CompletedAt); err != nil {
			return nil, 0, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, total, rows.Err()
}

// GetStats aggregates the user's attempts: totals, average and best
// scores, and per-subject accuracy from the breakdown rows.
func (s *Store) GetStats(ctx context.Context, userID int64) (*models.AttemptStatsResponse, error) {
	stats := &models.AttemptStatsResponse{
		SubjectStats: map[string]models.SubjectStat{},
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(percent), 0), COALESCE(MAX(percent), 0),
		        COALESCE(SUM(total), 0), COALESCE(SUM(correct), 0)
		 FROM attempts WHERE user_id = $1`,
		userID,
	).Scan(&stats.TotalAttempts, &stats.AvgPercent, &stats.BestPercent,
		&stats.TotalQuestions, &stats.TotalCorrect)
	if err != nil {
		return nil, fmt.Errorf("attempt totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT b.category_label, SUM(b.total), SUM(b.correct)
		 FROM attempt_breakdowns b
		 JOIN attempts a ON a.id = b.attempt_id
		 WHERE a.user_id = $1
		 GROUP BY b.category_label`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("subject stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		var attempted, correct int
		if err := rows.Scan(&label, &attempted, &correct); err != nil {
			return nil, fmt.Errorf("scan subject stat: %w", err)
		}
		stat := models.SubjectStat{Attempted: attempted, Correct: correct}
		if attempted > 0 {
			stat.Accuracy = float64(correct) / float64(attempted)
		}
		stats.SubjectStats[label] = stat
	}
	return stats, rows.Err()
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}
