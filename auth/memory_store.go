package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-kaduu/core"
)

type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]core.TokenData
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: map[string]core.TokenData{}}
}

func (s *MemoryTokenStore) Load(_ context.Context, key string) (core.TokenData, bool, error) {
	if s == nil {
		return core.TokenData{}, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[strings.TrimSpace(key)]
	if !ok {
		return core.TokenData{}, false, nil
	}
	return token.Clone(), true, nil
}

func (s *MemoryTokenStore) Save(_ context.Context, key string, token core.TokenData) error {
	if s == nil {
		return core.NewInternalError("auth: memory token store is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return core.NewValidationError("key", "token key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		s.tokens = map[string]core.TokenData{}
	}
	s.tokens[key] = token.Clone()
	return nil
}

func (s *MemoryTokenStore) Delete(_ context.Context, key string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, strings.TrimSpace(key))
	return nil
}

var _ core.TokenStore = (*MemoryTokenStore)(nil)
