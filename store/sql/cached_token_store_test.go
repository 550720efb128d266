package sqlstore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-kaduu/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

type stubTokenStore struct {
	mu          sync.Mutex
	tokens      map[string]core.TokenData
	loadCalls   int
	saveCalls   int
	deleteCalls int
	loadErr     error
	saveErr     error
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{tokens: map[string]core.TokenData{}}
}

func (s *stubTokenStore) Load(_ context.Context, key string) (core.TokenData, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadCalls++
	if s.loadErr != nil {
		return core.TokenData{}, false, s.loadErr
	}
	token, ok := s.tokens[key]
	return token.Clone(), ok, nil
}

func (s *stubTokenStore) Save(_ context.Context, key string, token core.TokenData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.tokens[key] = token.Clone()
	return nil
}

func (s *stubTokenStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	delete(s.tokens, key)
	return nil
}

func TestCachedTokenStore_Load_MissFetchThenHit(t *testing.T) {
	base := newStubTokenStore()
	base.tokens["kaduu::alice"] = core.TokenData{AccessToken: "cached", IssuedAt: time.Now().UTC()}
	store, err := NewCachedTokenStore(base, newTestTokenCacheService(t))
	if err != nil {
		t.Fatalf("new cached token store: %v", err)
	}

	for range 2 {
		token, found, err := store.Load(context.Background(), "kaduu::alice")
		if err != nil || !found {
			t.Fatalf("load: found=%v err=%v", found, err)
		}
		if token.AccessToken != "cached" {
			t.Fatalf("expected cached token, got %q", token.AccessToken)
		}
	}
	if base.loadCalls != 1 {
		t.Fatalf("expected one base load, got %d", base.loadCalls)
	}
}

func TestCachedTokenStore_SaveInvalidatesEntry(t *testing.T) {
	ctx := context.Background()
	base := newStubTokenStore()
	base.tokens["k"] = core.TokenData{AccessToken: "old"}
	store, err := NewCachedTokenStore(base, newTestTokenCacheService(t))
	if err != nil {
		t.Fatalf("new cached token store: %v", err)
	}

	if _, _, err := store.Load(ctx, "k"); err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	if err := store.Save(ctx, "k", core.TokenData{AccessToken: "new"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	token, _, err := store.Load(ctx, "k")
	if err != nil {
		t.Fatalf("load after save: %v", err)
	}
	if token.AccessToken != "new" {
		t.Fatalf("expected fresh token after save, got %q", token.AccessToken)
	}
	if base.loadCalls != 2 {
		t.Fatalf("expected save to evict cache entry, base loads=%d", base.loadCalls)
	}
}

func TestCachedTokenStore_DeleteInvalidatesEntry(t *testing.T) {
	ctx := context.Background()
	base := newStubTokenStore()
	base.tokens["k"] = core.TokenData{AccessToken: "old"}
	store, err := NewCachedTokenStore(base, newTestTokenCacheService(t))
	if err != nil {
		t.Fatalf("new cached token store: %v", err)
	}

	if _, _, err := store.Load(ctx, "k"); err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, err := store.Load(ctx, "k"); err != nil || found {
		t.Fatalf("expected deleted token, found=%v err=%v", found, err)
	}
}

func TestCachedTokenStore_SaveErrorKeepsCache(t *testing.T) {
	ctx := context.Background()
	base := newStubTokenStore()
	base.tokens["k"] = core.TokenData{AccessToken: "old"}
	store, err := NewCachedTokenStore(base, newTestTokenCacheService(t))
	if err != nil {
		t.Fatalf("new cached token store: %v", err)
	}
	if _, _, err := store.Load(ctx, "k"); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	base.saveErr = errors.New("write failed")
	if err := store.Save(ctx, "k", core.TokenData{AccessToken: "new"}); err == nil {
		t.Fatalf("expected save error")
	}
	token, _, err := store.Load(ctx, "k")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if token.AccessToken != "old" || base.loadCalls != 1 {
		t.Fatalf("expected cached token to survive failed save, token=%q loads=%d", token.AccessToken, base.loadCalls)
	}
}

func TestCachedTokenStore_LoadErrorPropagates(t *testing.T) {
	base := newStubTokenStore()
	base.loadErr = errors.New("db down")
	store, err := NewCachedTokenStore(base, newTestTokenCacheService(t))
	if err != nil {
		t.Fatalf("new cached token store: %v", err)
	}
	if _, _, err := store.Load(context.Background(), "k"); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestTokenCacheKey(t *testing.T) {
	key, err := TokenCacheKey(" kaduu::https://api.example/token::alice ")
	if err != nil {
		t.Fatalf("cache key: %v", err)
	}
	if !strings.HasPrefix(key, tokenCacheKeyPrefix+"::") {
		t.Fatalf("unexpected cache key prefix: %q", key)
	}
	if strings.Contains(strings.TrimPrefix(key, tokenCacheKeyPrefix+"::"), "/") {
		t.Fatalf("expected escaped cache key, got %q", key)
	}
	if _, err := TokenCacheKey("  "); err == nil {
		t.Fatalf("expected empty key error")
	}
}

func TestNewCachedTokenStore_RequiresDependencies(t *testing.T) {
	if _, err := NewCachedTokenStore(nil, newTestTokenCacheService(t)); err == nil {
		t.Fatalf("expected missing base store error")
	}
	if _, err := NewCachedTokenStore(newStubTokenStore(), nil); err == nil {
		t.Fatalf("expected missing cache service error")
	}
}

func newTestTokenCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}
