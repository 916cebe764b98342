// Package persona defines the response personas and the completion contract
// they speak through. A persona is a closed identity (system prompt plus
// sampling temperature) over an injected Completer; routing between personas
// lives in the orchestrator.
package persona

import (
	"context"
	"fmt"
	"strings"
)

// Type tags a persona identity.
type Type string

const (
	TypeCare     Type = "care"
	TypeIntimate Type = "intimate"
	TypeNeutral  Type = "neutral"

	// TypeConsentHandler tags the fixed consent-request path. It has no
	// Persona object and no completion call behind it.
	TypeConsentHandler Type = "consent_handler"
)

// Params tune a single completion call.
type Params struct {
	MaxTokens     int
	Temperature   float64
	StopSequences []string
}

// Completer generates text from a prompt. Implementations:
// completion/claude (Anthropic Messages API); tests use stubs.
type Completer interface {
	Complete(ctx context.Context, prompt string, params Params) (string, error)
}

// DefaultMaxTokens bounds every persona completion.
const DefaultMaxTokens = 512

var defaultStopSequences = []string{"</|assistant|>", "<|user|>", "\n\n\n"}

// Persona is one response identity bound to a completer.
type Persona struct {
	typ          Type
	systemPrompt string
	temperature  float64
	completer    Completer
}

// NewCare creates the emotional-support persona.
func NewCare(completer Completer) *Persona {
	return &Persona{typ: TypeCare, systemPrompt: careSystemPrompt, temperature: 0.7, completer: completer}
}

// NewNeutral creates the everyday-helper persona. It reuses the care
// identity's alternate helpful framing rather than introducing a fourth one.
func NewNeutral(completer Completer) *Persona {
	return &Persona{typ: TypeNeutral, systemPrompt: neutralSystemPrompt, temperature: 0.8, completer: completer}
}

// NewIntimate creates the romantic persona. Callers must verify mutual
// consent before invoking it; the persona itself does not check.
func NewIntimate(completer Completer) *Persona {
	return &Persona{typ: TypeIntimate, systemPrompt: intimateSystemPrompt, temperature: 0.8, completer: completer}
}

// Type returns the persona's tag.
func (p *Persona) Type() Type {
	return p.typ
}

// Respond generates a reply to message grounded in contextText.
func (p *Persona) Respond(ctx context.Context, message, contextText string) (string, error) {
	prompt := p.formatPrompt(message, contextText)

	text, err := p.completer.Complete(ctx, prompt, Params{
		MaxTokens:     DefaultMaxTokens,
		Temperature:   p.temperature,
		StopSequences: defaultStopSequences,
	})
	if err != nil {
		return "", fmt.Errorf("complete %s response: %w", p.typ, err)
	}
	return strings.TrimSpace(text), nil
}

// formatPrompt frames the completion input with system, context, and user
// segments. The context segment is dropped when empty.
func (p *Persona) formatPrompt(message, contextText string) string {
	var b strings.Builder
	b.WriteString("<|system|>\n")
	b.WriteString(p.systemPrompt)
	b.WriteString("\n</|system|>\n\n")
	if contextText != "" {
		b.WriteString("<|context|>\n")
		b.WriteString(contextText)
		b.WriteString("\n</|context|>\n\n")
	}
	b.WriteString("<|user|>\n")
	b.WriteString(message)
	b.WriteString("\n</|user|>\n\n<|assistant|>\n")
	return b.String()
}
