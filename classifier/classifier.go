// Package classifier scores message text against fixed per-intent reference
// sets using embedding similarity. There is no pattern matching anywhere:
// classification is purely semantic.
package classifier

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/Afran-zero/ai-chat-nfsw/core"
)

// DefaultIntimateThreshold is the minimum normalized intimate score for
// IsIntimate to report true.
const DefaultIntimateThreshold = 0.4

// Embedder converts text to a fixed-length vector. Implementations:
// embedder/mock (testing), embedder/onnx (local), embedder/cached (decorator).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Classifier classifies text into one of the three intent labels.
// Reference embeddings are computed on first use and cached for the process
// lifetime; after population they are read without synchronization.
type Classifier struct {
	embedder Embedder

	mu   sync.Mutex
	refs map[core.IntentLabel][][]float32 // nil until first successful population
}

// New creates a classifier around the given embedder.
func New(embedder Embedder) *Classifier {
	return &Classifier{embedder: embedder}
}

// ensureReferences populates the reference embeddings exactly once.
// Unlike sync.Once, a failed population does not latch: a transient embedder
// outage is retried on the next call.
func (c *Classifier) ensureReferences(ctx context.Context) (map[core.IntentLabel][][]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refs != nil {
		return c.refs, nil
	}

	refs := make(map[core.IntentLabel][][]float32, len(referenceSets))
	for _, label := range core.IntentLabels {
		phrases := referenceSets[label]
		vecs := make([][]float32, 0, len(phrases))
		for _, phrase := range phrases {
			vec, err := c.embedder.Embed(ctx, phrase)
			if err != nil {
				return nil, fmt.Errorf("%w: embed reference for %s: %v", core.ErrEmbeddingUnavailable, label, err)
			}
			vecs = append(vecs, vec)
		}
		refs[label] = vecs
	}

	log.Printf("[CLASSIFIER] Reference embeddings ready (%d labels, %d phrases each)",
		len(refs), len(careReferences))
	c.refs = refs
	return refs, nil
}

// Classify scores text against every reference set and returns normalized
// per-label scores. Each label's raw score is the maximum cosine similarity
// to any exemplar in its set: a single strong match dominates many weak ones.
// Scores are normalized to sum to 1 when the raw total is positive; otherwise
// all scores are zero and the primary label defaults to neutral.
func (c *Classifier) Classify(ctx context.Context, text string) (core.IntentScores, error) {
	refs, err := c.ensureReferences(ctx)
	if err != nil {
		return core.IntentScores{}, err
	}

	query, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return core.IntentScores{}, fmt.Errorf("%w: embed query: %v", core.ErrEmbeddingUnavailable, err)
	}

	scores := make(map[core.IntentLabel]float64, len(core.IntentLabels))
	total := 0.0
	for _, label := range core.IntentLabels {
		best := 0.0
		for _, ref := range refs[label] {
			if sim := core.Cosine(query, ref); sim > best {
				best = sim
			}
		}
		scores[label] = best
		total += best
	}

	result := core.IntentScores{Primary: core.IntentNeutral, Scores: scores}
	if total == 0 {
		return result, nil
	}

	for label := range scores {
		scores[label] /= total
	}

	// Argmax with ties resolved by label declaration order.
	primary := core.IntentLabels[0]
	for _, label := range core.IntentLabels[1:] {
		if scores[label] > scores[primary] {
			primary = label
		}
	}
	result.Primary = primary
	return result, nil
}

// IsIntimate reports whether text carries intimate intent: the primary label
// must be intimate and its score must clear the threshold. A threshold <= 0
// falls back to DefaultIntimateThreshold.
func (c *Classifier) IsIntimate(ctx context.Context, text string, threshold float64) (bool, error) {
	if threshold <= 0 {
		threshold = DefaultIntimateThreshold
	}

	scores, err := c.Classify(ctx, text)
	if err != nil {
		return false, err
	}

	return scores.Primary == core.IntentIntimate && scores.Confidence() >= threshold, nil
}
