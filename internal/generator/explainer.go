package generator

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/examprep/backend/internal/models"
)

// LLMClient is the interface both explainer implementations satisfy.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Explainer writes explanation text for bank questions that lack one.
type Explainer struct {
	llm   LLMClient
	model string
}

func NewExplainer() *Explainer {
	if os.Getenv("MOCK_EXPLAINER") == "true" {
		log.Println("Explainer using mock data")
		return &Explainer{llm: NewMockClient(), model: "mock"}
	}

	model := os.Getenv("ANTHROPIC_MODEL")
	if model == "" {
		model = "claude-sonnet-4-5"
	}
	log.Println("Explainer using Anthropic API:", model)
	return &Explainer{llm: NewAPIClient(model), model: model}
}

func (e *Explainer) ModelName() string {
	return e.model
}

const explainerSystemPrompt = `You are a tutor for secondary-school examination candidates.
Given a multiple-choice question and its correct answer, write a short explanation
(2-4 sentences) of why the correct option is right. Do not restate the question.
Respond with the explanation text only.`

// Explain generates explanation text for one question.
func (e *Explainer) Explain(ctx context.Context, q models.Question) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", q.Subject)
	fmt.Fprintf(&b, "Question: %s\n", q.Prompt)
	for _, opt := range q.Options {
		fmt.Fprintf(&b, "%s. %s\n", opt.Label, opt.Text)
	}
	fmt.Fprintf(&b, "Correct answer: %s\n", q.Correct)

	text, err := e.llm.Generate(ctx, explainerSystemPrompt, b.String())
	if err != nil {
		return "", fmt.Errorf("explain question %s: %w", q.ID, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("explain question %s: empty response", q.ID)
	}
	return text, nil
}

// ── APIClient — Anthropic SDK ──────────────────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
}

func NewAPIClient(model string) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &APIClient{client: &client, model: model}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   1024,
		Temperature: param.NewOpt(0.3),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return "", err
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in API response")
}

func (c *APIClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Anthropic API call in %v (attempt %d)", sleepDuration, attempt+1)
			time.Sleep(sleepDuration)
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("Anthropic API attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}

// ── MockClient — Local Development ─────────────────────────

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "[Mock] The correct option follows directly from the definition tested by this question; the remaining options describe related but inapplicable concepts.", nil
}
