package memory

import (
	"context"
	"strings"
	"time"
)

// Category determines a memory entry's retention policy.
type Category string

const (
	CategoryEvent      Category = "event"
	CategoryPreference Category = "preference"
	CategoryEmotion    Category = "emotion"
	CategoryBoundary   Category = "boundary"
	CategoryGeneral    Category = "general"
)

// ParseCategory maps a free-form label onto a retention-bearing category.
// Labels without their own retention rule (fact, relationship, experience,
// anything unknown) fold into general.
func ParseCategory(s string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryEvent:
		return CategoryEvent
	case CategoryPreference:
		return CategoryPreference
	case CategoryEmotion:
		return CategoryEmotion
	case CategoryBoundary:
		return CategoryBoundary
	default:
		return CategoryGeneral
	}
}

// Entry is one remembered snippet. Entries are immutable after creation:
// the store never edits them in place, and callers always receive copies.
type Entry struct {
	ID        string
	Scope     string
	Author    string
	Text      string
	Category  Category
	Embedding []float32
	CreatedAt time.Time
	Metadata  map[string]string

	seq uint64 // insertion order, breaks CreatedAt ties under an injected clock
}

// clone returns a deep copy so callers cannot mutate stored state.
func (e *Entry) clone() Entry {
	out := *e
	out.Embedding = append([]float32(nil), e.Embedding...)
	if e.Metadata != nil {
		out.Metadata = make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Result is a search hit: an entry copy plus its similarity to the query.
type Result struct {
	Entry      Entry
	Similarity float64
}

// Embedder converts text to vector embeddings.
// Implementations: embedder/mock (testing), embedder/onnx (local),
// embedder/cached (ristretto decorator).
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// Config holds Store tuning parameters.
type Config struct {
	// DuplicateThreshold is the similarity at or above which a new entry is
	// rejected as a duplicate of an existing one in the same scope.
	DuplicateThreshold float64

	// PreferenceThreshold is the (looser) similarity at or above which a new
	// preference supersedes and deletes an older one.
	PreferenceThreshold float64

	// EmotionWindow caps how many emotion entries a scope keeps.
	EmotionWindow int

	// Clock supplies entry timestamps. Defaults to time.Now.
	Clock func() time.Time
}

// DefaultConfig holds sensible defaults for the local store.
var DefaultConfig = &Config{
	DuplicateThreshold:  0.85,
	PreferenceThreshold: 0.7,
	EmotionWindow:       10,
}
