// Package claude adapts the Anthropic Messages API to the persona Completer
// contract. The persona prompt frame travels as the user turn; the API sees
// no system block because the frame already carries one.
package claude

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/Afran-zero/ai-chat-nfsw/persona"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-20250514"

// Completer implements persona.Completer over an Anthropic client.
type Completer struct {
	client *anthropic.Client
	model  string
}

// Option configures the completer.
type Option func(*Completer)

// WithModel overrides the model.
func WithModel(model string) Option {
	return func(c *Completer) { c.model = model }
}

// New creates a completer around an existing Anthropic client.
func New(client *anthropic.Client, opts ...Option) *Completer {
	c := &Completer{client: client, model: DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends the prompt as a single user turn and returns the
// concatenated text blocks of the reply.
func (c *Completer) Complete(ctx context.Context, prompt string, params persona.Params) (string, error) {
	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = persona.DefaultMaxTokens
	}

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if params.Temperature > 0 {
		req.Temperature = anthropic.Float(params.Temperature)
	}
	if len(params.StopSequences) > 0 {
		req.StopSequences = params.StopSequences
	}

	resp, err := c.client.Messages.New(ctx, req)
	if err != nil {
		return "", fmt.Errorf("claude API error: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}
