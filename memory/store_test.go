package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/Afran-zero/ai-chat-nfsw/core"
	"github.com/Afran-zero/ai-chat-nfsw/memory/embedder/mock"
)

// testClock hands out strictly increasing timestamps.
func testClock() func() time.Time {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func newTestStore(t *testing.T, emb Embedder) *Store {
	t.Helper()
	store, err := NewStore(emb, &Config{Clock: testClock()})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

// basis returns a unit vector along axis i, tilted toward axis j by the given
// weight so tests can dial in exact cosine similarities.
func basis(dims, i, j int, weight float64) []float32 {
	vec := make([]float32, dims)
	vec[i] = float32(weight)
	if j != i {
		vec[j] = float32(math.Sqrt(1 - weight*weight))
	}
	return vec
}

func TestAddAndListRoundTrip(t *testing.T) {
	store := newTestStore(t, mock.New())
	ctx := context.Background()

	entry, err := store.AddMemory(ctx, "room-1", "alice", "We met at the lake house", CategoryEvent,
		map[string]string{"source": "chat"})
	if err != nil {
		t.Fatalf("AddMemory failed: %v", err)
	}
	if entry.ID == "" {
		t.Error("Expected entry to have an id")
	}
	if entry.Category != CategoryEvent {
		t.Errorf("Expected category event, got %s", entry.Category)
	}

	entries, err := store.ListAll("room-1", "")
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Text != "We met at the lake house" {
		t.Errorf("Unexpected text: %s", entries[0].Text)
	}

	// Returned copies must not alias stored state.
	entries[0].Metadata["source"] = "tampered"
	again, err := store.ListAll("room-1", "")
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if again[0].Metadata["source"] != "chat" {
		t.Error("Caller mutation leaked into stored entry")
	}
}

func TestAddThenSearchSameText(t *testing.T) {
	store := newTestStore(t, mock.New())
	ctx := context.Background()

	entry, err := store.AddMemory(ctx, "room-1", "alice", "We met at the lake house", CategoryEvent, nil)
	if err != nil {
		t.Fatalf("AddMemory failed: %v", err)
	}

	// Searching the identical text returns the entry as the top hit, above
	// the duplicate threshold.
	results, err := store.Search(ctx, "room-1", "We met at the lake house", 1, "")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Entry.ID != entry.ID {
		t.Errorf("Expected top hit %s, got %s", entry.ID, results[0].Entry.ID)
	}
	if results[0].Similarity < DefaultConfig.DuplicateThreshold {
		t.Errorf("Expected similarity >= %.2f for identical text, got %f",
			DefaultConfig.DuplicateThreshold, results[0].Similarity)
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	store := newTestStore(t, mock.New())
	ctx := context.Background()

	if _, err := store.AddMemory(ctx, "room-1", "alice", "I love hiking", CategoryGeneral, nil); err != nil {
		t.Fatalf("First AddMemory failed: %v", err)
	}

	// Identical text embeds identically, similarity 1.0.
	_, err := store.AddMemory(ctx, "room-1", "bob", "I love hiking", CategoryGeneral, nil)
	var dup *core.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateError, got %v", err)
	}
	if dup.Similarity < 0.99 {
		t.Errorf("Expected similarity ~1.0, got %f", dup.Similarity)
	}

	entries, err := store.ListAll("room-1", "")
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Duplicate rejection must leave the store unchanged, got %d entries", len(entries))
	}
}

func TestDuplicateCheckSpansScopesIndependently(t *testing.T) {
	store := newTestStore(t, mock.New())
	ctx := context.Background()

	if _, err := store.AddMemory(ctx, "room-1", "alice", "I love hiking", CategoryGeneral, nil); err != nil {
		t.Fatalf("AddMemory failed: %v", err)
	}
	// Same text in a different scope is not a duplicate.
	if _, err := store.AddMemory(ctx, "room-2", "alice", "I love hiking", CategoryGeneral, nil); err != nil {
		t.Fatalf("Expected cross-scope add to succeed, got %v", err)
	}
}

func TestEmotionWindowEviction(t *testing.T) {
	store := newTestStore(t, mock.New())
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		text := fmt.Sprintf("feeling number %d about today", i)
		if _, err := store.AddMemory(ctx, "room-1", "alice", text, CategoryEmotion, nil); err != nil {
			t.Fatalf("AddMemory %d failed: %v", i, err)
		}
	}

	entries, err := store.ListAll("room-1", CategoryEmotion)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(entries) != 10 {
		t.Fatalf("Expected 10 emotion entries after eviction, got %d", len(entries))
	}
	// The oldest entry is the one evicted.
	if entries[0].Text != "feeling number 1 about today" {
		t.Errorf("Expected oldest surviving entry to be #1, got %q", entries[0].Text)
	}
	if entries[9].Text != "feeling number 10 about today" {
		t.Errorf("Expected newest entry to be #10, got %q", entries[9].Text)
	}
}

func TestEmotionWindowIgnoresOtherCategories(t *testing.T) {
	store := newTestStore(t, mock.New())
	ctx := context.Background()

	if _, err := store.AddMemory(ctx, "room-1", "alice", "our anniversary is in june", CategoryEvent, nil); err != nil {
		t.Fatalf("AddMemory failed: %v", err)
	}
	for i := 0; i < 11; i++ {
		text := fmt.Sprintf("mood entry %d", i)
		if _, err := store.AddMemory(ctx, "room-1", "alice", text, CategoryEmotion, nil); err != nil {
			t.Fatalf("AddMemory %d failed: %v", i, err)
		}
	}

	events, err := store.ListAll("room-1", CategoryEvent)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("Emotion eviction must not touch event entries, got %d", len(events))
	}
}

func TestPreferenceSupersede(t *testing.T) {
	emb := mock.New()
	dims := emb.Dimensions()
	// Old and new preference at cosine 0.75: similar enough to supersede,
	// not similar enough to trip the duplicate guard.
	emb.Fix("I like green tea", basis(dims, 0, 0, 1))
	emb.Fix("actually I prefer black coffee", basis(dims, 0, 1, 0.75))
	emb.Fix("I enjoy long walks", basis(dims, 2, 2, 1))

	store := newTestStore(t, emb)
	ctx := context.Background()

	if _, err := store.AddMemory(ctx, "room-1", "alice", "I like green tea", CategoryPreference, nil); err != nil {
		t.Fatalf("AddMemory failed: %v", err)
	}
	if _, err := store.AddMemory(ctx, "room-1", "alice", "I enjoy long walks", CategoryPreference, nil); err != nil {
		t.Fatalf("AddMemory failed: %v", err)
	}
	newest, err := store.AddMemory(ctx, "room-1", "alice", "actually I prefer black coffee", CategoryPreference, nil)
	if err != nil {
		t.Fatalf("AddMemory failed: %v", err)
	}

	prefs, err := store.ListAll("room-1", CategoryPreference)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(prefs) != 2 {
		t.Fatalf("Expected 2 preferences after supersede, got %d", len(prefs))
	}
	for _, p := range prefs {
		if p.Text == "I like green tea" {
			t.Error("Superseded preference should have been deleted")
		}
	}
	found := false
	for _, p := range prefs {
		if p.ID == newest.ID {
			found = true
		}
	}
	if !found {
		t.Error("Newest preference missing after supersede pass")
	}
}

func TestSearchRanksBySimilarity(t *testing.T) {
	emb := mock.New()
	dims := emb.Dimensions()
	emb.Fix("the query", basis(dims, 0, 0, 1))
	emb.Fix("close match", basis(dims, 0, 1, 0.8))
	emb.Fix("loose match", basis(dims, 0, 3, 0.4))
	emb.Fix("unrelated", basis(dims, 2, 2, 1))

	store := newTestStore(t, emb)
	ctx := context.Background()

	for _, text := range []string{"unrelated", "loose match", "close match"} {
		if _, err := store.AddMemory(ctx, "room-1", "alice", text, CategoryGeneral, nil); err != nil {
			t.Fatalf("AddMemory %q failed: %v", text, err)
		}
	}

	results, err := store.Search(ctx, "room-1", "the query", 2, "")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Entry.Text != "close match" {
		t.Errorf("Expected closest first, got %q", results[0].Entry.Text)
	}
	if results[1].Entry.Text != "loose match" {
		t.Errorf("Expected loose match second, got %q", results[1].Entry.Text)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Error("Results not in descending similarity order")
	}
}

func TestSearchCategoryFilter(t *testing.T) {
	store := newTestStore(t, mock.New())
	ctx := context.Background()

	if _, err := store.AddMemory(ctx, "room-1", "alice", "no pet names in public", CategoryBoundary, nil); err != nil {
		t.Fatalf("AddMemory failed: %v", err)
	}
	if _, err := store.AddMemory(ctx, "room-1", "alice", "dinner reservation friday", CategoryEvent, nil); err != nil {
		t.Fatalf("AddMemory failed: %v", err)
	}

	results, err := store.Search(ctx, "room-1", "boundaries", 10, CategoryBoundary)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 filtered result, got %d", len(results))
	}
	if results[0].Entry.Category != CategoryBoundary {
		t.Errorf("Filter leaked category %s", results[0].Entry.Category)
	}
}

func TestSearchUnknownScopeIsEmpty(t *testing.T) {
	store := newTestStore(t, mock.New())

	results, err := store.Search(context.Background(), "nowhere", "anything", 5, "")
	if err != nil {
		t.Fatalf("Search on unknown scope must not error, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestListAllUnknownScope(t *testing.T) {
	store := newTestStore(t, mock.New())

	if _, err := store.ListAll("nowhere", ""); !errors.Is(err, core.ErrScopeNotFound) {
		t.Errorf("Expected ErrScopeNotFound, got %v", err)
	}
}

func TestDeleteByID(t *testing.T) {
	store := newTestStore(t, mock.New())
	ctx := context.Background()

	entry, err := store.AddMemory(ctx, "room-1", "alice", "something to forget", CategoryGeneral, nil)
	if err != nil {
		t.Fatalf("AddMemory failed: %v", err)
	}

	if !store.Delete(ctx, entry.ID) {
		t.Error("Expected Delete to report true")
	}
	if store.Delete(ctx, entry.ID) {
		t.Error("Second Delete of same id should report false")
	}
	if store.Delete(ctx, "no-such-id") {
		t.Error("Delete of unknown id should report false")
	}

	entries, err := store.ListAll("room-1", "")
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty scope, got %d entries", len(entries))
	}
}

func TestClearScope(t *testing.T) {
	store := newTestStore(t, mock.New())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		text := fmt.Sprintf("memory %d", i)
		if _, err := store.AddMemory(ctx, "room-1", "alice", text, CategoryGeneral, nil); err != nil {
			t.Fatalf("AddMemory failed: %v", err)
		}
	}

	count, err := store.ClearScope("room-1")
	if err != nil {
		t.Fatalf("ClearScope failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 cleared, got %d", count)
	}

	entries, err := store.ListAll("room-1", "")
	if err != nil {
		t.Fatalf("ListAll after clear failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty scope after clear, got %d", len(entries))
	}

	// The scope stays usable.
	if _, err := store.AddMemory(ctx, "room-1", "alice", "fresh start", CategoryGeneral, nil); err != nil {
		t.Fatalf("AddMemory after clear failed: %v", err)
	}

	if _, err := store.ClearScope("nowhere"); !errors.Is(err, core.ErrScopeNotFound) {
		t.Errorf("Expected ErrScopeNotFound, got %v", err)
	}
}

func TestStats(t *testing.T) {
	store := newTestStore(t, mock.New())
	ctx := context.Background()

	if _, err := store.AddMemory(ctx, "room-1", "alice", "our first trip", CategoryEvent, nil); err != nil {
		t.Fatalf("AddMemory failed: %v", err)
	}
	if _, err := store.AddMemory(ctx, "room-1", "bob", "feeling great", CategoryEmotion, nil); err != nil {
		t.Fatalf("AddMemory failed: %v", err)
	}
	if _, err := store.AddMemory(ctx, "room-1", "bob", "second trip planned", CategoryEvent, nil); err != nil {
		t.Fatalf("AddMemory failed: %v", err)
	}

	stats, err := store.Stats("room-1")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[CategoryEvent] != 2 || stats[CategoryEmotion] != 1 {
		t.Errorf("Unexpected stats: %v", stats)
	}
}

func TestAddEmbedderFailure(t *testing.T) {
	emb := mock.New()
	emb.Fail(errors.New("model offline"))
	store := newTestStore(t, emb)

	_, err := store.AddMemory(context.Background(), "room-1", "alice", "text", CategoryGeneral, nil)
	if !errors.Is(err, core.ErrEmbeddingUnavailable) {
		t.Errorf("Expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestConcurrentScopes(t *testing.T) {
	store := newTestStore(t, mock.New())
	ctx := context.Background()

	var wg sync.WaitGroup
	for s := 0; s < 4; s++ {
		scope := fmt.Sprintf("room-%d", s)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				text := fmt.Sprintf("%s note %d", scope, i)
				if _, err := store.AddMemory(ctx, scope, "alice", text, CategoryGeneral, nil); err != nil {
					t.Errorf("AddMemory in %s failed: %v", scope, err)
					return
				}
			}
		}()
	}
	wg.Wait()

	for s := 0; s < 4; s++ {
		scope := fmt.Sprintf("room-%d", s)
		entries, err := store.ListAll(scope, "")
		if err != nil {
			t.Fatalf("ListAll %s failed: %v", scope, err)
		}
		if len(entries) != 10 {
			t.Errorf("Scope %s: expected 10 entries, got %d", scope, len(entries))
		}
	}
}

func TestParseCategory(t *testing.T) {
	cases := map[string]Category{
		"event":        CategoryEvent,
		" Preference ": CategoryPreference,
		"EMOTION":      CategoryEmotion,
		"boundary":     CategoryBoundary,
		"general":      CategoryGeneral,
		"fact":         CategoryGeneral,
		"relationship": CategoryGeneral,
		"experience":   CategoryGeneral,
		"":             CategoryGeneral,
	}
	for in, want := range cases {
		if got := ParseCategory(in); got != want {
			t.Errorf("ParseCategory(%q) = %s, want %s", in, got, want)
		}
	}
}
