package store

import (
	"context"
	"sync"
)

// Memory implements Store with an in-memory map. Used for testing and
// development; contents are lost on restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (s *Memory) Get(_ context.Context, gw int, kind Kind, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.data[snapKey(gw, kind, key)]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy so callers cannot mutate the stored snapshot.
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (s *Memory) Put(_ context.Context, gw int, kind Kind, key string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := make([]byte, len(body))
	copy(b, body)
	s.data[snapKey(gw, kind, key)] = b
	return nil
}

// Len reports how many snapshots are held. Test helper.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
