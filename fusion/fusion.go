// Package fusion assembles the grounding context handed to a persona: it
// merges relationship facts, caller-resolved memories, the recent
// conversation window, and a live vector search into one prompt-ready
// string with fixed section order.
package fusion

import (
	"context"
	"fmt"
	"strings"

	"github.com/Afran-zero/ai-chat-nfsw/core"
	"github.com/Afran-zero/ai-chat-nfsw/memory"
)

const (
	// DefaultTopK is how many store hits the retrieval section pulls.
	DefaultTopK = 5

	// DefaultHistoryWindow is how many trailing messages the conversation
	// section renders.
	DefaultHistoryWindow = 10

	// DefaultSnippetLimit caps retrieved passage length in runes.
	DefaultSnippetLimit = 200
)

// Searcher is the store capability fusion needs. *memory.Store implements it.
type Searcher interface {
	Search(ctx context.Context, scope, query string, topK int, category memory.Category) ([]memory.Result, error)
}

// Builder builds context strings. Safe for concurrent use: it holds no
// per-request state, and identical inputs produce identical output.
type Builder struct {
	store         Searcher
	topK          int
	historyWindow int
	snippetLimit  int
}

// Option configures a Builder.
type Option func(*Builder)

// WithTopK overrides how many store hits the retrieval section includes.
func WithTopK(k int) Option {
	return func(b *Builder) { b.topK = k }
}

// WithHistoryWindow overrides the trailing message count.
func WithHistoryWindow(n int) Option {
	return func(b *Builder) { b.historyWindow = n }
}

// New creates a context builder over the given store.
func New(store Searcher, opts ...Option) *Builder {
	b := &Builder{
		store:         store,
		topK:          DefaultTopK,
		historyWindow: DefaultHistoryWindow,
		snippetLimit:  DefaultSnippetLimit,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildContext renders the four sections in fixed order: relationship facts,
// supplied memories, recent conversation, then a fresh store search for the
// query. Empty sections are omitted entirely. Output contains no control
// characters beyond newlines.
func (b *Builder) BuildContext(ctx context.Context, query, scope string, history []core.Message, memories []memory.Result, facts core.RelationshipFacts) (string, error) {
	var sections []string

	if s := formatFacts(facts); s != "" {
		sections = append(sections, "## Relationship Context\n"+s)
	}

	if s := formatMemories(memories); s != "" {
		sections = append(sections, "## Remembered Information\n"+s)
	}

	if len(history) > b.historyWindow {
		history = history[len(history)-b.historyWindow:]
	}
	if s := formatHistory(history); s != "" {
		sections = append(sections, "## Recent Conversation\n"+s)
	}

	retrieved, err := b.store.Search(ctx, scope, query, b.topK, "")
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}
	if s := b.formatRetrieved(retrieved); s != "" {
		sections = append(sections, "## Relevant Context\n"+s)
	}

	return strings.Join(sections, "\n\n"), nil
}

func formatFacts(facts core.RelationshipFacts) string {
	var lines []string
	if facts.RelationshipType != "" {
		lines = append(lines, "- Relationship: "+sanitize(facts.RelationshipType))
	}
	if facts.Anniversary != "" {
		lines = append(lines, "- Anniversary: "+sanitize(facts.Anniversary))
	}
	if facts.CommunicationStyle != "" {
		lines = append(lines, "- Communication style: "+sanitize(facts.CommunicationStyle))
	}
	if len(facts.Interests) > 0 {
		lines = append(lines, "- Shared interests: "+sanitize(strings.Join(facts.Interests, ", ")))
	}
	return strings.Join(lines, "\n")
}

func formatMemories(memories []memory.Result) string {
	var lines []string
	for _, m := range memories {
		lines = append(lines, fmt.Sprintf("- [%s] %s (relevance: %.2f)",
			m.Entry.Category, sanitize(m.Entry.Text), m.Similarity))
	}
	return strings.Join(lines, "\n")
}

func formatHistory(history []core.Message) string {
	var lines []string
	for _, msg := range history {
		lines = append(lines, capitalize(msg.Role)+": "+sanitize(msg.Content))
	}
	return strings.Join(lines, "\n")
}

func (b *Builder) formatRetrieved(results []memory.Result) string {
	var lines []string
	for _, r := range results {
		text := sanitize(r.Entry.Text)
		if runes := []rune(text); len(runes) > b.snippetLimit {
			text = string(runes[:b.snippetLimit]) + "..."
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s (score: %.2f)",
			r.Entry.Category, text, r.Similarity))
	}
	return strings.Join(lines, "\n")
}

// sanitize keeps rendered text single-line and free of control characters.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
