package memory

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"

	"github.com/Afran-zero/ai-chat-nfsw/core"
)

// Store is the scope-partitioned vector memory store.
//
// Each scope owns a chromem-go collection for nearest-neighbor search plus
// an in-process index carrying timestamps and insertion order for listing
// and retention. Operations on the same scope are serialized by a per-scope
// mutex; operations on different scopes proceed independently.
type Store struct {
	embedder Embedder
	config   *Config
	db       *chromem.DB

	mu     sync.RWMutex
	scopes map[string]*scopeState
	ids    map[string]string // entry id -> owning scope
	seq    uint64
}

// scopeState serializes all mutations for one scope. Lock ordering: sc.mu
// may be held while taking Store.mu, never the reverse.
type scopeState struct {
	mu         sync.Mutex
	name       string
	collection *chromem.Collection
	entries    map[string]*Entry
}

// NewStore creates a store around the given embedder. A nil config uses
// DefaultConfig; zero fields fall back to defaults individually.
func NewStore(embedder Embedder, config *Config) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	if cfg.DuplicateThreshold == 0 {
		cfg.DuplicateThreshold = DefaultConfig.DuplicateThreshold
	}
	if cfg.PreferenceThreshold == 0 {
		cfg.PreferenceThreshold = DefaultConfig.PreferenceThreshold
	}
	if cfg.EmotionWindow == 0 {
		cfg.EmotionWindow = DefaultConfig.EmotionWindow
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Store{
		embedder: embedder,
		config:   &cfg,
		db:       chromem.NewDB(),
		scopes:   make(map[string]*scopeState),
		ids:      make(map[string]string),
	}, nil
}

// getOrCreateScope returns the state for a scope, creating its collection
// on first use. Double-checked so concurrent first access creates it once.
func (s *Store) getOrCreateScope(scope string) (*scopeState, error) {
	s.mu.RLock()
	sc := s.scopes[scope]
	s.mu.RUnlock()
	if sc != nil {
		return sc, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sc := s.scopes[scope]; sc != nil {
		return sc, nil
	}

	name := "scope_" + scope
	col, err := s.db.CreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	sc = &scopeState{
		name:       name,
		collection: col,
		entries:    make(map[string]*Entry),
	}
	s.scopes[scope] = sc
	return sc, nil
}

func (s *Store) getScope(scope string) *scopeState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scopes[scope]
}

// AddMemory embeds text and stores it as a new entry in the scope.
//
// The duplicate check runs before insertion: if the nearest existing entry
// in the scope is at or above the duplicate threshold, a *core.DuplicateError
// is returned and nothing is written. On success the category retention
// policy runs against the updated set. Insert and retention are one unit:
// once the entry is written, eviction runs on a detached context so caller
// cancellation cannot leave the pass half-applied.
func (s *Store) AddMemory(ctx context.Context, scope, author, text string, category Category, metadata map[string]string) (Entry, error) {
	if scope == "" {
		return Entry{}, fmt.Errorf("scope is required")
	}
	if strings.TrimSpace(text) == "" {
		return Entry{}, fmt.Errorf("text is required")
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: embed memory: %v", core.ErrEmbeddingUnavailable, err)
	}
	if len(embedding) != s.embedder.Dimensions() {
		return Entry{}, fmt.Errorf("embedding dimension mismatch: got %d, want %d",
			len(embedding), s.embedder.Dimensions())
	}

	sc, err := s.getOrCreateScope(scope)
	if err != nil {
		return Entry{}, err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if id, sim, ok := s.nearestLocked(sc, embedding); ok && sim >= s.config.DuplicateThreshold {
		return Entry{}, &core.DuplicateError{Scope: scope, ExistingID: id, Similarity: sim}
	}

	// Last cancellation point before the store mutates.
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}

	entry := &Entry{
		ID:        uuid.New().String(),
		Scope:     scope,
		Author:    author,
		Text:      text,
		Category:  category,
		Embedding: append([]float32(nil), embedding...),
		CreatedAt: s.config.Clock(),
		Metadata:  copyMetadata(metadata),
		seq:       atomic.AddUint64(&s.seq, 1),
	}

	dctx := context.Background()
	doc := chromem.Document{
		ID:        entry.ID,
		Content:   text,
		Embedding: entry.Embedding,
		Metadata: map[string]string{
			"scope":    scope,
			"author":   author,
			"category": string(category),
		},
	}
	if err := sc.collection.AddDocument(dctx, doc); err != nil {
		return Entry{}, fmt.Errorf("add document: %w", err)
	}
	sc.entries[entry.ID] = entry
	s.trackID(entry.ID, scope)

	s.applyRetentionLocked(dctx, sc, entry)

	log.Printf("[MEMORY] Stored entry: scope=%s category=%s id=%s", scope, category, entry.ID)
	return entry.clone(), nil
}

// nearestLocked probes the scope's collection for the single closest entry
// to the candidate embedding. Reports ok=false for an empty scope.
func (s *Store) nearestLocked(sc *scopeState, embedding []float32) (id string, similarity float64, ok bool) {
	if len(sc.entries) == 0 {
		return "", 0, false
	}

	results, err := sc.collection.QueryEmbedding(context.Background(), embedding, 1, nil, nil)
	if err != nil || len(results) == 0 {
		if err != nil {
			log.Printf("[MEMORY] Duplicate probe failed: %v", err)
		}
		return "", 0, false
	}

	entry, found := sc.entries[results[0].ID]
	if !found {
		return "", 0, false
	}
	return entry.ID, core.Cosine(embedding, entry.Embedding), true
}

// applyRetentionLocked enforces the category lifecycle rule after an insert.
// Event, boundary, and general entries have no rule beyond the duplicate
// guard and are kept as-is.
func (s *Store) applyRetentionLocked(ctx context.Context, sc *scopeState, entry *Entry) {
	switch entry.Category {
	case CategoryEmotion:
		s.trimEmotionLocked(ctx, sc)
	case CategoryPreference:
		s.supersedePreferencesLocked(ctx, sc, entry)
	}
}

// trimEmotionLocked keeps only the EmotionWindow most recent emotion entries,
// evicting the oldest beyond that count.
func (s *Store) trimEmotionLocked(ctx context.Context, sc *scopeState) {
	var emotions []*Entry
	for _, e := range sc.entries {
		if e.Category == CategoryEmotion {
			emotions = append(emotions, e)
		}
	}
	if len(emotions) <= s.config.EmotionWindow {
		return
	}

	sort.Slice(emotions, func(i, j int) bool {
		if !emotions[i].CreatedAt.Equal(emotions[j].CreatedAt) {
			return emotions[i].CreatedAt.After(emotions[j].CreatedAt)
		}
		return emotions[i].seq > emotions[j].seq
	})

	for _, e := range emotions[s.config.EmotionWindow:] {
		s.removeLocked(ctx, sc, e.ID)
		log.Printf("[MEMORY] Evicted old emotion entry: scope=%s id=%s", e.Scope, e.ID)
	}
}

// supersedePreferencesLocked deletes older preference entries similar to the
// newly inserted one. The newest statement of a preference wins; unrelated
// preferences (below the threshold) coexist.
func (s *Store) supersedePreferencesLocked(ctx context.Context, sc *scopeState, entry *Entry) {
	for _, e := range sc.entries {
		if e.ID == entry.ID || e.Category != CategoryPreference {
			continue
		}
		if core.Cosine(entry.Embedding, e.Embedding) >= s.config.PreferenceThreshold {
			s.removeLocked(ctx, sc, e.ID)
			log.Printf("[MEMORY] Superseded preference: scope=%s old=%s new=%s", e.Scope, e.ID, entry.ID)
		}
	}
}

// removeLocked deletes an entry from both the collection and the index.
func (s *Store) removeLocked(ctx context.Context, sc *scopeState, id string) {
	if err := sc.collection.Delete(ctx, nil, nil, id); err != nil {
		log.Printf("[MEMORY] Collection delete failed for %s: %v", id, err)
	}
	delete(sc.entries, id)
	s.untrackID(id)
}

// Search returns up to topK entries from the scope ordered by descending
// similarity to the query. An empty category matches all categories. An
// unknown scope yields no results: nearest-neighbor over an empty set.
func (s *Store) Search(ctx context.Context, scope, query string, topK int, category Category) ([]Result, error) {
	if topK <= 0 {
		return nil, nil
	}

	sc := s.getScope(scope)
	if sc == nil {
		return nil, nil
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", core.ErrEmbeddingUnavailable, err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	var where map[string]string
	available := len(sc.entries)
	if category != "" {
		where = map[string]string{"category": string(category)}
		available = 0
		for _, e := range sc.entries {
			if e.Category == category {
				available++
			}
		}
	}

	limit := topK
	if limit > available {
		limit = available
	}
	if limit == 0 {
		return nil, nil
	}

	results, err := sc.collection.QueryEmbedding(ctx, embedding, limit, where, nil)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	out := make([]Result, 0, len(results))
	for _, res := range results {
		entry, found := sc.entries[res.ID]
		if !found {
			continue
		}
		out = append(out, Result{
			Entry:      entry.clone(),
			Similarity: core.Cosine(embedding, entry.Embedding),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

// ListAll returns every entry in the scope, oldest first. An empty category
// matches all categories. Returns core.ErrScopeNotFound for unknown scopes.
func (s *Store) ListAll(scope string, category Category) ([]Entry, error) {
	sc := s.getScope(scope)
	if sc == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrScopeNotFound, scope)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	var out []Entry
	for _, e := range sc.entries {
		if category != "" && e.Category != category {
			continue
		}
		out = append(out, e.clone())
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].seq < out[j].seq
	})
	return out, nil
}

// Delete removes one entry by id. Reports whether an entry was deleted.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.RLock()
	scope, ok := s.ids[id]
	sc := s.scopes[scope]
	s.mu.RUnlock()
	if !ok || sc == nil {
		return false
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if _, found := sc.entries[id]; !found {
		return false
	}
	s.removeLocked(ctx, sc, id)
	return true
}

// ClearScope removes every entry in the scope and returns how many were
// deleted. The scope itself survives (empty) so in-flight holders of its
// state stay consistent. Returns core.ErrScopeNotFound for unknown scopes.
func (s *Store) ClearScope(scope string) (int, error) {
	sc := s.getScope(scope)
	if sc == nil {
		return 0, fmt.Errorf("%w: %s", core.ErrScopeNotFound, scope)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	count := len(sc.entries)
	for id := range sc.entries {
		s.untrackID(id)
	}
	sc.entries = make(map[string]*Entry)

	if err := s.db.DeleteCollection(sc.name); err != nil {
		return 0, fmt.Errorf("delete collection: %w", err)
	}
	col, err := s.db.CreateCollection(sc.name, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("recreate collection: %w", err)
	}
	sc.collection = col

	log.Printf("[MEMORY] Cleared scope %s (%d entries)", scope, count)
	return count, nil
}

// Stats returns per-category entry counts for the scope.
// Returns core.ErrScopeNotFound for unknown scopes.
func (s *Store) Stats(scope string) (map[Category]int, error) {
	sc := s.getScope(scope)
	if sc == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrScopeNotFound, scope)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	stats := make(map[Category]int)
	for _, e := range sc.entries {
		stats[e.Category]++
	}
	return stats, nil
}

func (s *Store) trackID(id, scope string) {
	s.mu.Lock()
	s.ids[id] = scope
	s.mu.Unlock()
}

func (s *Store) untrackID(id string) {
	s.mu.Lock()
	delete(s.ids, id)
	s.mu.Unlock()
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
