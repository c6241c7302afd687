package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemKV keeps values in process memory. Gets and sets can be made to fail
// to simulate unavailable storage.
type MemKV struct {
	mu   sync.RWMutex
	m    map[string]string
	sets int

	failGets bool
	failSets bool
}

func NewMemKV() *MemKV {
	return &MemKV{m: make(map[string]string)}
}

func (s *MemKV) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failGets {
		return "", false, fmt.Errorf("get %q: %w", key, ErrUnavailable)
	}
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemKV) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSets {
		return fmt.Errorf("set %q: %w", key, ErrUnavailable)
	}
	s.m[key] = value
	s.sets++
	return nil
}

func (s *MemKV) Ping(ctx context.Context) error { return nil }

func (s *MemKV) FailGets(fail bool) {
	s.mu.Lock()
	s.failGets = fail
	s.mu.Unlock()
}

func (s *MemKV) FailSets(fail bool) {
	s.mu.Lock()
	s.failSets = fail
	s.mu.Unlock()
}

// Sets is the number of successful writes so far.
func (s *MemKV) Sets() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sets
}
