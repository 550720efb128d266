package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-kaduu/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const tokenCacheKeyPrefix = "go-kaduu::token::v1"

// CachedTokenStore is a read-through cache in front of another TokenStore.
// Writes go to the base store first and then evict the cached entry.
type CachedTokenStore struct {
	base  core.TokenStore
	cache repositorycache.CacheService
}

type cachedToken struct {
	Token core.TokenData
	Found bool
}

func NewCachedTokenStore(base core.TokenStore, cacheService repositorycache.CacheService) (*CachedTokenStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base token store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: token cache service is required")
	}
	return &CachedTokenStore{base: base, cache: cacheService}, nil
}

// TokenCacheKey returns go-kaduu::token::v1::<escaped key>.
func TokenCacheKey(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", fmt.Errorf("sqlstore: token key is required")
	}
	return tokenCacheKeyPrefix + "::" + url.PathEscape(trimmed), nil
}

func (s *CachedTokenStore) Load(ctx context.Context, key string) (core.TokenData, bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.TokenData{}, false, fmt.Errorf("sqlstore: cached token store is not configured")
	}
	cacheKey, err := TokenCacheKey(key)
	if err != nil {
		return core.TokenData{}, false, err
	}
	entry, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (cachedToken, error) {
		token, found, fetchErr := s.base.Load(ctx, key)
		if fetchErr != nil {
			return cachedToken{}, fetchErr
		}
		return cachedToken{Token: token.Clone(), Found: found}, nil
	})
	if err != nil {
		return core.TokenData{}, false, err
	}
	if !entry.Found {
		return core.TokenData{}, false, nil
	}
	return entry.Token.Clone(), true, nil
}

func (s *CachedTokenStore) Save(ctx context.Context, key string, token core.TokenData) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached token store is not configured")
	}
	cacheKey, err := TokenCacheKey(key)
	if err != nil {
		return err
	}
	if err := s.base.Save(ctx, key, token); err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

func (s *CachedTokenStore) Delete(ctx context.Context, key string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached token store is not configured")
	}
	cacheKey, err := TokenCacheKey(key)
	if err != nil {
		return err
	}
	if err := s.base.Delete(ctx, key); err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}
