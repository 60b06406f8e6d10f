package wallet

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps connections in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	conns map[string]Connection
	now   func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{conns: make(map[string]Connection), now: time.Now}
}

func (s *MemoryStore) Connect(_ context.Context, c Connection) (Connection, error) {
	c, err := prepare(c, s.now())
	if err != nil {
		return Connection{}, err
	}
	s.mu.Lock()
	s.conns[c.Address] = c
	s.mu.Unlock()
	return c.clone(), nil
}

func (s *MemoryStore) Disconnect(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conns[address]; !ok {
		return fmt.Errorf("%w: %s", ErrNotConnected, address)
	}
	delete(s.conns, address)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, address string) (Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conns[address]
	if !ok {
		return Connection{}, fmt.Errorf("%w: %s", ErrNotConnected, address)
	}
	return c.clone(), nil
}

func (s *MemoryStore) List(_ context.Context) ([]Connection, error) {
	s.mu.RLock()
	out := make([]Connection, 0, len(s.conns))
	for _, c := range s.conns {
		out = append(out, c.clone())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out, nil
}

func (s *MemoryStore) Touch(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conns[address]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotConnected, address)
	}
	c.LastSeenAt = s.now()
	s.conns[address] = c
	return nil
}
