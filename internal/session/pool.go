package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/examprep/backend/internal/models"
)

// ErrEmptyPool means the store was reachable but yielded zero valid
// questions for the selection. It is an expected outcome, not a failure,
// and callers show a content message rather than a retry prompt.
var ErrEmptyPool = errors.New("no questions available for this selection")

// QuestionStore is the external question retrieval collaborator.
// A zero year means "any year".
type QuestionStore interface {
	FetchQuestions(ctx context.Context, category models.ExamCategory, subject string, year, limit int) ([]models.RawQuestion, error)
	ListSubjects(ctx context.Context, category models.ExamCategory) ([]string, error)
}

// AssemblerLimits caps how many questions one session may contain.
type AssemblerLimits struct {
	Practice   int // by-subject cap in practice mode
	Exam       int // by-subject cap in exam mode
	PerSubject int // per-subject cap during by-year fan-out
}

func LimitsFromEnv() AssemblerLimits {
	return AssemblerLimits{
		Practice:   intEnv("POOL_LIMIT_PRACTICE", 20),
		Exam:       intEnv("POOL_LIMIT_EXAM", 50),
		PerSubject: intEnv("POOL_LIMIT_PER_SUBJECT", 10),
	}
}

func intEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// Assembler builds the question pool for one session.
type Assembler struct {
	store  QuestionStore
	limits AssemblerLimits
}

func NewAssembler(store QuestionStore) *Assembler {
	return &Assembler{store: store, limits: LimitsFromEnv()}
}

func NewAssemblerWithLimits(store QuestionStore, limits AssemblerLimits) *Assembler {
	return &Assembler{store: store, limits: limits}
}

// Assemble fetches, normalizes, and shuffles the pool for cfg. Malformed
// records are dropped; the pool is built once and never refetched.
// Returns ErrEmptyPool when nothing valid survives, or a wrapped store
// error when retrieval itself failed.
func (a *Assembler) Assemble(ctx context.Context, cfg models.SelectionConfig) ([]models.Question, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var raws []models.RawQuestion
	var err error

	switch cfg.Method {
	case models.MethodBySubject:
		limit := a.limits.Practice
		if cfg.Mode == models.ModeExam {
			limit = a.limits.Exam
		}
		raws, err = a.store.FetchQuestions(ctx, cfg.Category, cfg.Subject, cfg.Year, limit)
		if err != nil {
			return nil, fmt.Errorf("fetch questions: %w", err)
		}
	case models.MethodByYear:
		raws, err = a.fanOutByYear(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	pool := make([]models.Question, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		q, err := Normalize(raw)
		if err != nil {
			dropped++
			continue
		}
		pool = append(pool, q)
	}
	if dropped > 0 {
		log.Printf("WARN: [pool] dropped %d malformed question records for %s/%s", dropped, cfg.Category, cfg.Method)
	}

	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}

	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool, nil
}

// fanOutByYear queries every subject available for the category with a
// per-subject cap and concatenates the results. A subject yielding zero
// rows (or failing outright) does not abort the assembly; the fan-out
// fails only when no subject produced anything and at least one sub-query
// errored.
func (a *Assembler) fanOutByYear(ctx context.Context, cfg models.SelectionConfig) ([]models.RawQuestion, error) {
	subjects, err := a.store.ListSubjects(ctx, cfg.Category)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	var raws []models.RawQuestion
	var lastErr error
	for _, subject := range subjects {
		rows, err := a.store.FetchQuestions(ctx, cfg.Category, subject, cfg.Year, a.limits.PerSubject)
		if err != nil {
			log.Printf("WARN: [pool] fetch %s/%s year %d: %v", cfg.Category, subject, cfg.Year, err)
			lastErr = err
			continue
		}
		raws = append(raws, rows...)
	}

	if len(raws) == 0 && lastErr != nil {
		return nil, fmt.Errorf("fetch questions by year: %w", lastErr)
	}
	return raws, nil
}

// Normalize maps a raw store record onto the canonical Question shape.
// Records missing a prompt, any of the four option texts, or a correct
// label among A-D are rejected.
func Normalize(raw models.RawQuestion) (models.Question, error) {
	prompt := strings.TrimSpace(raw.Prompt)
	if prompt == "" {
		prompt = strings.TrimSpace(raw.QuestionText)
	}
	if prompt == "" {
		return models.Question{}, fmt.Errorf("question %d: missing prompt", raw.ID)
	}

	texts := []string{raw.OptionA, raw.OptionB, raw.OptionC, raw.OptionD}
	options := make([]models.Option, 0, len(texts))
	for i, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			return models.Question{}, fmt.Errorf("question %d: missing option %s", raw.ID, models.OptionLabels[i])
		}
		options = append(options, models.Option{Label: models.OptionLabels[i], Text: text})
	}

	correct := strings.ToUpper(strings.TrimSpace(raw.CorrectOption))
	if correct == "" {
		correct = strings.ToUpper(strings.TrimSpace(raw.Answer))
	}
	valid := false
	for _, l := range models.OptionLabels {
		if correct == l {
			valid = true
			break
		}
	}
	if !valid {
		return models.Question{}, fmt.Errorf("question %d: correct label %q not among options", raw.ID, correct)
	}

	return models.Question{
		ID:          strconv.FormatInt(raw.ID, 10),
		Prompt:      prompt,
		Options:     options,
		Correct:     correct,
		Explanation: strings.TrimSpace(raw.Explanation),
		Year:        raw.Year,
		Subject:     raw.Subject,
	}, nil
}
