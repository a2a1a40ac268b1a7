// Package cache stores the logistics provider's bearer token so that every
// handler, and every instance when Redis is enabled, shares one credential.
package cache

import (
	"context"
	"sync"
	"time"
)

// Token is a bearer credential and the moment it stops being valid.
type Token struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the token is usable at now with margin to spare.
func (t Token) Valid(now time.Time, margin time.Duration) bool {
	return t.Value != "" && now.Add(margin).Before(t.ExpiresAt)
}

type TokenStore interface {
	// Get returns false when nothing is stored.
	Get(ctx context.Context, key string) (Token, bool, error)
	Set(ctx context.Context, key string, token Token) error
	Delete(ctx context.Context, key string) error
}

type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]Token
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]Token)}
}

func (s *MemoryTokenStore) Get(ctx context.Context, key string) (Token, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[key]
	return t, ok, nil
}

func (s *MemoryTokenStore) Set(ctx context.Context, key string, token Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = token
	return nil
}

func (s *MemoryTokenStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, key)
	return nil
}

var _ TokenStore = (*MemoryTokenStore)(nil)
