package questions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/examprep/backend/internal/models"
)

// Store is the Postgres-backed question bank. It implements the engine's
// QuestionStore and DurationResolver collaborator interfaces.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// FetchQuestions samples up to limit question rows for the category and
// subject, optionally narrowed to one year. Sampling is random so repeat
// sessions do not replay the same slice of the bank.
func (s *Store) FetchQuestions(ctx context.Context, category models.ExamCategory, subject string, year, limit int) ([]models.RawQuestion, error) {
	query := `SELECT id, COALESCE(prompt, ''), COALESCE(question_text, ''),
	                 COALESCE(option_a, ''), COALESCE(option_b, ''), COALESCE(option_c, ''), COALESCE(option_d, ''),
	                 COALESCE(correct_option, ''), COALESCE(answer, ''),
	                 COALESCE(explanation, ''), COALESCE(year, 0), subject, created_at
	          FROM questions
	          WHERE category = $1 AND subject = $2`
	args := []interface{}{category, subject}

	if year > 0 {
		query += fmt.Sprintf(" AND year = $%d", len(args)+1)
		args = append(args, year)
	}
	query += fmt.Sprintf(" ORDER BY random() LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	defer rows.Close()

	var raws []models.RawQuestion
	for rows.Next() {
		var r models.RawQuestion
		if err := rows.Scan(&r.ID, &r.Prompt, &r.QuestionText,
			&r.OptionA, &r.OptionB, &r.OptionC, &r.OptionD,
			&r.CorrectOption, &r.Answer,
			&r.Explanation, &r.Year, &r.Subject, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		raws = append(raws, r)
	}
	return raws, rows.Err()
}

// ListSubjects returns the subjects that have questions for the category.
func (s *Store) ListSubjects(ctx context.Context, category models.ExamCategory) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT subject FROM questions WHERE category = $1 ORDER BY subject`,
		category,
	)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var subject string
		if err := rows.Scan(&subject); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, subject)
	}
	return subjects, rows.Err()
}

// ListYears returns the years with questions for the category, optionally
// narrowed to one subject, newest first.
func (s *Store) ListYears(ctx context.Context, category models.ExamCategory, subject string) ([]int, error) {
	query := `SELECT DISTINCT year FROM questions WHERE category = $1 AND year IS NOT NULL`
	args := []interface{}{category}
	if subject != "" {
		query += " AND subject = $2"
		args = append(args, subject)
	}
	query += " ORDER BY year DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, year)
	}
	return years, rows.Err()
}

// defaultDurations is the fallback when no exam_durations row matches.
var defaultDurations = map[models.ExamCategory]int{
	models.CategoryUTME: 2100,
	models.CategorySSCE: 3600,
}

// ResolveDuration looks up the countdown length for an exam session.
// The most specific matching row wins: subject+year beats subject-only
// beats the category-wide row; a built-in category default backstops an
// unconfigured table.
func (s *Store) ResolveDuration(ctx context.Context, category models.ExamCategory, subject string, year int) (int, error) {
	var seconds int
	err := s.db.QueryRowContext(ctx,
		`SELECT duration_seconds FROM exam_durations
		 WHERE category = $1
		   AND (subject = $2 OR subject IS NULL)
		   AND (year = $3 OR year IS NULL)
		 ORDER BY subject IS NULL, year IS NULL
		 LIMIT 1`,
		category, subject, year,
	).Scan(&seconds)

	if err == sql.ErrNoRows {
		if fallback, ok := defaultDurations[category]; ok {
			return fallback, nil
		}
		return 0, fmt.Errorf("no duration configured for category %q", category)
	}
	if err != nil {
		return 0, fmt.Errorf("resolve duration: %w", err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("configured duration for %q is not positive", category)
	}
	return seconds, nil
}

// ── Explanation Backfill Support ────────────────────────

// ListMissingExplanations returns normalizable question rows that have no
// explanation text yet.
func (s *Store) ListMissingExplanations(ctx context.Context, limit int) ([]models.RawQuestion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, COALESCE(prompt, ''), COALESCE(question_text, ''),
		        COALESCE(option_a, ''), COALESCE(option_b, ''), COALESCE(option_c, ''), COALESCE(option_d, ''),
		        COALESCE(correct_option, ''), COALESCE(answer, ''),
		        COALESCE(explanation, ''), COALESCE(year, 0), subject, created_at
		 FROM questions
		 WHERE COALESCE(explanation, '') = ''
		 ORDER BY id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list missing explanations: %w", err)
	}
	defer rows.Close()

	var raws []models.RawQuestion
	for rows.Next() {
		var r models.RawQuestion
		if err := rows.Scan(&r.ID, &r.Prompt, &r.QuestionText,
			&r.OptionA, &r.OptionB, &r.OptionC, &r.OptionD,
			&r.CorrectOption, &r.Answer,
			&r.Explanation, &r.Year, &r.Subject, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		raws = append(raws, r)
	}
	return raws, rows.Err()
}

// UpdateExplanation writes generated explanation text for a question.
func (s *Store) UpdateExplanation(ctx context.Context, questionID int64, explanation string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE questions SET explanation = $1 WHERE id = $2`,
		explanation, questionID,
	)
	return err
}
