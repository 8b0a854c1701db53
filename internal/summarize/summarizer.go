// Package summarize generates natural-language review summaries, with an
// extractive fallback when no model backend is available.
package summarize

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/reviewpulse/reviewpulse/pkg/anthropic"
)

// Summarizer condenses a block of review text into a short summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

const summarySystemPrompt = "You summarize customer product reviews. " +
	"Write a short, neutral paragraph covering the recurring praise and " +
	"complaints. Do not invent details that are not in the reviews."

// anthropicSummarizer generates abstractive summaries through the
// Anthropic API.
type anthropicSummarizer struct {
	client anthropic.Client
	model  string
}

// NewAnthropicSummarizer creates a model-backed summarizer.
func NewAnthropicSummarizer(client anthropic.Client, model string) Summarizer {
	return &anthropicSummarizer{client: client, model: model}
}

func (s *anthropicSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	temp := 0.0
	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       s.model,
		MaxTokens:   300,
		System:      summarySystemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: "Summarize these reviews:\n\n" + text},
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "summarize: model call")
	}
	resp.Usage.LogCost(s.model, "summarize")

	out := resp.FirstText()
	if out == "" {
		return "", eris.New("summarize: model returned no text")
	}
	return out, nil
}
