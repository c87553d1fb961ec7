// Package store provides a volatile in-memory ContextStore implementation.
package store

import (
	"context"
	"sync"

	"github.com/hupe1980/turnguard/core"
)

// Options configures an InMemoryStore.
type Options struct {
	// MaxTurns bounds retained history per conversation; the oldest turns
	// are dropped past the bound. 0 keeps everything.
	MaxTurns int
}

// InMemoryStore keeps conversation histories in a process-local map. It is
// safe for concurrent access and best suited for tests or ephemeral demo
// servers. List returns copies so callers cannot mutate internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	turns    map[string][]core.Turn
	maxTurns int
}

var _ core.ContextStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory context store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryStore{turns: make(map[string][]core.Turn), maxTurns: opts.MaxTurns}
}

// Append implements core.ContextStore. The batch is applied under one lock
// acquisition, so it is atomic with respect to List and Clear.
func (s *InMemoryStore) Append(_ context.Context, conversationID string, turns ...core.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.turns[conversationID], turns...)
	if s.maxTurns > 0 && len(history) > s.maxTurns {
		history = history[len(history)-s.maxTurns:]
	}
	s.turns[conversationID] = history
	return nil
}

// List implements core.ContextStore.
func (s *InMemoryStore) List(_ context.Context, conversationID string, limit int) ([]core.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.turns[conversationID]
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]core.Turn, len(history))
	copy(out, history)
	return out, nil
}

// Clear implements core.ContextStore. Clearing an unknown conversation is a
// no-op.
func (s *InMemoryStore) Clear(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, conversationID)
	return nil
}
