package sqlstore

import (
	"fmt"

	"github.com/goliatone/go-kaduu/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// RepositoryFactory builds the SQL token store from a bun database or a
// persistence client, optionally wrapped in a read-through cache.
type RepositoryFactory struct {
	db      *bun.DB
	secrets core.SecretProvider
	cache   repositorycache.CacheService

	tokenStore  *TokenStore
	cachedStore *CachedTokenStore
}

type FactoryOption func(*RepositoryFactory)

func WithCacheService(service repositorycache.CacheService) FactoryOption {
	return func(f *RepositoryFactory) {
		f.cache = service
	}
}

func NewRepositoryFactoryFromPersistence(persistenceClient any, secrets core.SecretProvider, opts ...FactoryOption) (*RepositoryFactory, error) {
	db, err := resolveBunDB(persistenceClient)
	if err != nil {
		return nil, err
	}
	factory := &RepositoryFactory{db: db, secrets: secrets}
	for _, opt := range opts {
		if opt != nil {
			opt(factory)
		}
	}

	factory.tokenStore, err = NewTokenStore(db, secrets)
	if err != nil {
		return nil, err
	}
	if factory.cache != nil {
		factory.cachedStore, err = NewCachedTokenStore(factory.tokenStore, factory.cache)
		if err != nil {
			return nil, err
		}
	}
	return factory, nil
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

// TokenStore returns the cached store when a cache service was configured.
func (f *RepositoryFactory) TokenStore() core.TokenStore {
	if f == nil {
		return nil
	}
	if f.cachedStore != nil {
		return f.cachedStore
	}
	return f.tokenStore
}

func (f *RepositoryFactory) SQLTokenStore() *TokenStore {
	if f == nil {
		return nil
	}
	return f.tokenStore
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
