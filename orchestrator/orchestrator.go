// Package orchestrator routes each incoming message through a fixed
// pipeline: classify intent, check consent, pick a persona, respond. The
// orchestrator holds no per-request state; consent is the only external
// state it consults, through an injected ConsentSource.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Afran-zero/ai-chat-nfsw/core"
	"github.com/Afran-zero/ai-chat-nfsw/memory"
	"github.com/Afran-zero/ai-chat-nfsw/persona"
)

// IntentClassifier is the classification capability the orchestrator needs.
// *classifier.Classifier implements it.
type IntentClassifier interface {
	Classify(ctx context.Context, text string) (core.IntentScores, error)
	IsIntimate(ctx context.Context, text string, threshold float64) (bool, error)
}

// ContextBuilder assembles grounding text for a persona.
// *fusion.Builder implements it.
type ContextBuilder interface {
	BuildContext(ctx context.Context, query, scope string, history []core.Message, memories []memory.Result, facts core.RelationshipFacts) (string, error)
}

// Input is one message to process. History and Memories are resolved by the
// caller; the orchestrator never fetches conversation history itself.
type Input struct {
	Scope    string
	Message  string
	History  []core.Message
	Memories []memory.Result
	Facts    core.RelationshipFacts
}

// Output is the routing result for one message.
type Output struct {
	Text          string
	PersonaUsed   persona.Type
	Intent        core.IntentLabel
	Scores        core.IntentScores
	ConsentNeeded bool
}

// Orchestrator is the consent-gated router.
type Orchestrator struct {
	classifier IntentClassifier
	consent    ConsentSource
	builder    ContextBuilder

	care     *persona.Persona
	intimate *persona.Persona
	neutral  *persona.Persona
}

// New creates an orchestrator. All personas share the given completer.
func New(classifier IntentClassifier, consent ConsentSource, builder ContextBuilder, completer persona.Completer) *Orchestrator {
	return &Orchestrator{
		classifier: classifier,
		consent:    consent,
		builder:    builder,
		care:       persona.NewCare(completer),
		intimate:   persona.NewIntimate(completer),
		neutral:    persona.NewNeutral(completer),
	}
}

// Process runs one message through the pipeline. The same message, history,
// and consent state always yield the same routing decision; only the
// completion text may vary.
//
// Classification failure from an unavailable embedder falls back to neutral
// intent. That is the single fallback in the pipeline; every other error
// propagates.
func (o *Orchestrator) Process(ctx context.Context, input Input) (Output, error) {
	if input.Scope == "" {
		return Output{}, fmt.Errorf("scope is required")
	}
	if input.Message == "" {
		return Output{}, fmt.Errorf("message is required")
	}

	scores, err := o.classifier.Classify(ctx, input.Message)
	if err != nil {
		if !errors.Is(err, core.ErrEmbeddingUnavailable) {
			return Output{}, fmt.Errorf("classify intent: %w", err)
		}
		log.Printf("[ORCHESTRATOR] Classification unavailable, treating as neutral: %v", err)
		scores = core.IntentScores{Primary: core.IntentNeutral, Scores: map[core.IntentLabel]float64{}}
	}
	intent := scores.Primary

	state, err := o.consent.ConsentState(ctx, input.Scope)
	if err != nil {
		return Output{}, fmt.Errorf("read consent state: %w", err)
	}
	mode := state.Mode()

	if intent == core.IntentIntimate && mode != core.ConsentEnabled {
		log.Printf("[ORCHESTRATOR] Scope %s: intimate intent blocked (consent %s)", input.Scope, mode)
		return Output{
			Text:          persona.ConsentRequestMessage,
			PersonaUsed:   persona.TypeConsentHandler,
			Intent:        intent,
			Scores:        scores,
			ConsentNeeded: true,
		}, nil
	}

	p := o.route(intent, mode)

	contextText, err := o.builder.BuildContext(ctx, input.Message, input.Scope, input.History, input.Memories, input.Facts)
	if err != nil {
		return Output{}, fmt.Errorf("build context: %w", err)
	}

	text, err := p.Respond(ctx, input.Message, contextText)
	if err != nil {
		return Output{}, &core.ResponseError{Persona: string(p.Type()), Err: err}
	}

	log.Printf("[ORCHESTRATOR] Scope %s: intent=%s persona=%s", input.Scope, intent, p.Type())
	return Output{
		Text:        text,
		PersonaUsed: p.Type(),
		Intent:      intent,
		Scores:      scores,
	}, nil
}

// route picks a persona from (intent, consent mode) alone. The consent mode
// is re-checked here even though Process already filtered blocked intimate
// traffic; an intimate intent without enabled consent lands on neutral.
func (o *Orchestrator) route(intent core.IntentLabel, mode core.ConsentMode) *persona.Persona {
	switch {
	case intent == core.IntentCare:
		return o.care
	case intent == core.IntentIntimate && mode == core.ConsentEnabled:
		return o.intimate
	default:
		return o.neutral
	}
}

// Classification classifies text without routing, consent checks, or a
// completion call: the primary label plus all normalized scores.
func (o *Orchestrator) Classification(ctx context.Context, text string) (core.IntentScores, error) {
	return o.classifier.Classify(ctx, text)
}

// DetectIntimateIntent reports whether text carries intimate intent at the
// classifier's default threshold, without routing or consent checks.
func (o *Orchestrator) DetectIntimateIntent(ctx context.Context, text string) (bool, error) {
	return o.classifier.IsIntimate(ctx, text, 0)
}

// SetConsent records one participant's consent for a scope.
func (o *Orchestrator) SetConsent(ctx context.Context, scope string, participant core.Participant, consent bool) (core.ConsentState, error) {
	return o.consent.SetConsent(ctx, scope, participant, consent)
}

// ConsentMode returns the scope's current consent mode.
func (o *Orchestrator) ConsentMode(ctx context.Context, scope string) (core.ConsentMode, error) {
	state, err := o.consent.ConsentState(ctx, scope)
	if err != nil {
		return core.ConsentDisabled, err
	}
	return state.Mode(), nil
}
