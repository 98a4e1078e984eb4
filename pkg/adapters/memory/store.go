package memory

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/ports"
)

// Store implements ports.HistoryStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*ports.History
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*ports.History),
	}
}

func copyHistory(h *ports.History) *ports.History {
	out := *h
	out.Done = copyEnvelopes(h.Done)
	out.Undone = copyEnvelopes(h.Undone)
	return &out
}

func copyEnvelopes(in []command.Envelope) []command.Envelope {
	out := slices.Clone(in)
	for i := range out {
		out[i].Payload = bytes.Clone(out[i].Payload)
	}
	return out
}

// Save persists the history in memory.
func (s *Store) Save(ctx context.Context, docID string, h *ports.History) error {
	// Deep copy to ensure isolation, similar to serialization
	c := copyHistory(h)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[docID] = c
	return nil
}

// Load retrieves the history from memory.
func (s *Store) Load(ctx context.Context, docID string) (*ports.History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[docID]
	if !ok {
		return nil, ports.ErrHistoryNotFound
	}

	// Copy on read so caller can't mutate store state directly by pointer
	return copyHistory(h), nil
}

// Delete removes the history.
func (s *Store) Delete(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, docID)
	return nil
}

// List returns stored documents.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]string, 0, len(s.data))
	for id := range s.data {
		docs = append(docs, id)
	}
	slices.Sort(docs)
	return docs, nil
}
