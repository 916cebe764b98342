// Package mock provides a deterministic embedder for tests. Embeddings are
// derived from a hash of the text, so equal texts always embed equally and
// distinct texts land far apart. Fixtures pin exact vectors for specific
// texts when a test needs controlled similarities.
package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
)

// MockEmbedder generates deterministic embeddings from text hashes.
type MockEmbedder struct {
	dimensions int

	mu       sync.Mutex
	fixtures map[string][]float32
	failWith error
	calls    int
}

// Option configures a MockEmbedder.
type Option func(*MockEmbedder)

// WithDimensions overrides the embedding size (default 384).
func WithDimensions(n int) Option {
	return func(m *MockEmbedder) { m.dimensions = n }
}

// New creates a new mock embedder.
func New(opts ...Option) *MockEmbedder {
	m := &MockEmbedder{
		dimensions: 384, // Match all-MiniLM-L6-v2 dimensions
		fixtures:   make(map[string][]float32),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fix pins an exact (normalized) vector for a text. The vector length must
// match the embedder's dimensions.
func (m *MockEmbedder) Fix(text string, vec []float32) {
	if len(vec) != m.dimensions {
		panic(fmt.Sprintf("fixture dimension mismatch: got %d, want %d", len(vec), m.dimensions))
	}
	m.mu.Lock()
	m.fixtures[text] = normalize(append([]float32(nil), vec...))
	m.mu.Unlock()
}

// Fail makes every subsequent Embed call return err. Pass nil to recover.
func (m *MockEmbedder) Fail(err error) {
	m.mu.Lock()
	m.failWith = err
	m.mu.Unlock()
}

// Calls returns how many times Embed has been invoked.
func (m *MockEmbedder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Embed creates a deterministic embedding from text.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	failWith := m.failWith
	fixed := m.fixtures[text]
	m.mu.Unlock()

	if failWith != nil {
		return nil, failWith
	}
	if fixed != nil {
		return append([]float32(nil), fixed...), nil
	}

	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	embedding := make([]float32, m.dimensions)
	for i := 0; i < m.dimensions; i++ {
		// Simple LCG (Linear Congruential Generator)
		seed = seed*6364136223846793005 + 1442695040888963407
		embedding[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	return normalize(embedding), nil
}

// Dimensions returns the embedding size.
func (m *MockEmbedder) Dimensions() int {
	return m.dimensions
}

// normalize converts embedding to unit vector.
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = v / norm
	}
	return normalized
}
