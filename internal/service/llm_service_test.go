package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

type fakeModel struct {
	messages []llms.MessageContent
	options  llms.CallOptions
	resp     *llms.ContentResponse
	err      error
	deadline bool
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, opt := range options {
		opt(&m.options)
	}
	_, m.deadline = ctx.Deadline()
	return m.resp, m.err
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func TestTextGenerator_Complete(t *testing.T) {
	model := &fakeModel{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "  hello world \n"}}}}
	gen := NewTextGenerator(model, time.Minute)

	out, err := gen.Complete(context.Background(), CompletionRequest{
		System:      "be brief",
		Prompt:      "say hello",
		Model:       "gpt-4o",
		Temperature: 0.9,
		MaxTokens:   100,
		Kind:        "copy",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)

	require.Len(t, model.messages, 2)
	assert.Equal(t, schema.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Equal(t, "gpt-4o", model.options.Model)
	assert.Equal(t, 0.9, model.options.Temperature)
	assert.Equal(t, 100, model.options.MaxTokens)
	assert.True(t, model.deadline)
}

func TestTextGenerator_Errors(t *testing.T) {
	t.Run("Provider Error", func(t *testing.T) {
		gen := NewTextGenerator(&fakeModel{err: errors.New("429")}, time.Minute)
		_, err := gen.Complete(context.Background(), CompletionRequest{Prompt: "x", Kind: "strategy"})
		assert.ErrorContains(t, err, "strategy completion")
	})

	t.Run("No Choices", func(t *testing.T) {
		gen := NewTextGenerator(&fakeModel{resp: &llms.ContentResponse{}}, time.Minute)
		_, err := gen.Complete(context.Background(), CompletionRequest{Prompt: "x"})
		assert.ErrorIs(t, err, ErrEmptyCompletion)
	})

	t.Run("Blank Content", func(t *testing.T) {
		gen := NewTextGenerator(&fakeModel{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "  "}}}}, time.Minute)
		_, err := gen.Complete(context.Background(), CompletionRequest{Prompt: "x"})
		assert.ErrorIs(t, err, ErrEmptyCompletion)
	})
}
