package orchestrator

import (
	"context"
	"log"
	"sync"

	"github.com/Afran-zero/ai-chat-nfsw/core"
)

// ConsentSource is how the orchestrator reads and writes consent state.
// Persistence lives behind this interface; the orchestrator never touches a
// datastore directly.
type ConsentSource interface {
	// ConsentState returns the current state for a scope. Unknown scopes
	// report the zero state (both flags off, never enabled).
	ConsentState(ctx context.Context, scope string) (core.ConsentState, error)

	// SetConsent records one participant's consent flag and returns the
	// resulting state.
	SetConsent(ctx context.Context, scope string, participant core.Participant, consent bool) (core.ConsentState, error)
}

// MemoryConsentStore is an in-process ConsentSource keyed by scope.
type MemoryConsentStore struct {
	mu     sync.Mutex
	scopes map[string]core.ConsentState
}

// NewMemoryConsentStore creates an empty consent store.
func NewMemoryConsentStore() *MemoryConsentStore {
	return &MemoryConsentStore{scopes: make(map[string]core.ConsentState)}
}

// ConsentState returns the scope's state; unknown scopes are zero-valued.
func (s *MemoryConsentStore) ConsentState(ctx context.Context, scope string) (core.ConsentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scopes[scope], nil
}

// SetConsent applies one participant's flag and returns the new state.
func (s *MemoryConsentStore) SetConsent(ctx context.Context, scope string, participant core.Participant, consent bool) (core.ConsentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.scopes[scope].Apply(participant, consent)
	s.scopes[scope] = state

	log.Printf("[CONSENT] Scope %s: participant %d -> %t (mode %s)", scope, participant, consent, state.Mode())
	return state, nil
}
