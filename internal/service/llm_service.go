package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maheshrc27/adwola-api/internal/observability"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

type CompletionRequest struct {
	System      string
	Prompt      string
	Model       string
	Temperature float64
	MaxTokens   int
	Kind        string // metrics label: strategy, copy, regenerate
}

// TextGenerator produces a single chat completion.
type TextGenerator interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

var ErrEmptyCompletion = errors.New("empty completion")

type llmService struct {
	model   llms.Model
	timeout time.Duration
}

// NewLLMService builds a TextGenerator on the OpenAI chat completions API.
func NewLLMService(apiKey, baseURL, defaultModel string, timeout time.Duration) (TextGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("openai API key required")
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(defaultModel),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	return NewTextGenerator(llm, timeout), nil
}

// NewTextGenerator adapts any langchaingo model.
func NewTextGenerator(model llms.Model, timeout time.Duration) TextGenerator {
	return &llmService{model: model, timeout: timeout}
}

func (s *llmService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	kind := req.Kind
	if kind == "" {
		kind = "completion"
	}
	defer observability.TrackAIRequest(kind)()

	messages := make([]llms.MessageContent, 0, 2)
	if req.System != "" {
		messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, req.System))
	}
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, req.Prompt))

	opts := []llms.CallOption{llms.WithTemperature(req.Temperature)}
	if req.Model != "" {
		opts = append(opts, llms.WithModel(req.Model))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}

	resp, err := s.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		slog.InfoContext(ctx, "completion failed", "kind", kind, "model", req.Model, "error", err)
		return "", fmt.Errorf("%s completion: %w", kind, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	content := strings.TrimSpace(resp.Choices[0].Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
