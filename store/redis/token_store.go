package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-kaduu/core"
	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "kaduu:token:"

type Config struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
	// FallbackTTL applies to tokens without an expiry. Zero keeps them until
	// deleted.
	FallbackTTL time.Duration
}

// TokenStore keeps sealed tokens in redis with a TTL matching the token
// expiry, so stale entries disappear without a sweeper.
type TokenStore struct {
	client  redis.UniversalClient
	secrets core.SecretProvider
	codec   core.TokenCodec
	prefix  string
	ttl     time.Duration
	now     func() time.Time
	owned   bool
}

type Option func(*TokenStore)

func WithPrefix(prefix string) Option {
	return func(s *TokenStore) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			s.prefix = trimmed
		}
	}
}

func WithFallbackTTL(ttl time.Duration) Option {
	return func(s *TokenStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithTokenCodec(codec core.TokenCodec) Option {
	return func(s *TokenStore) {
		if codec != nil {
			s.codec = codec
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *TokenStore) {
		if now != nil {
			s.now = now
		}
	}
}

// New dials redis and pings it before returning the store.
func New(ctx context.Context, cfg Config, secrets core.SecretProvider, opts ...Option) (*TokenStore, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, fmt.Errorf("redisstore: redis address required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redisstore: redis ping failed: %w", err)
	}

	opts = append([]Option{WithPrefix(cfg.Prefix), WithFallbackTTL(cfg.FallbackTTL)}, opts...)
	store, err := NewWithClient(client, secrets, opts...)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	store.owned = true
	return store, nil
}

func NewWithClient(client redis.UniversalClient, secrets core.SecretProvider, opts ...Option) (*TokenStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redisstore: redis client is required")
	}
	if secrets == nil {
		return nil, fmt.Errorf("redisstore: secret provider is required")
	}
	store := &TokenStore{
		client:  client,
		secrets: secrets,
		codec:   core.JSONTokenCodec{},
		prefix:  DefaultPrefix,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

func (s *TokenStore) key(tokenKey string) string {
	return s.prefix + tokenKey
}

func (s *TokenStore) Load(ctx context.Context, key string) (core.TokenData, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return core.TokenData{}, false, fmt.Errorf("redisstore: token key is required")
	}
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return core.TokenData{}, false, nil
		}
		return core.TokenData{}, false, err
	}
	plaintext, err := s.secrets.Decrypt(ctx, raw)
	if err != nil {
		return core.TokenData{}, false, fmt.Errorf("redisstore: decrypt token: %w", err)
	}
	token, err := s.codec.Decode(plaintext)
	if err != nil {
		return core.TokenData{}, false, err
	}
	return token, true, nil
}

func (s *TokenStore) Save(ctx context.Context, key string, token core.TokenData) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("redisstore: token key is required")
	}
	plaintext, err := s.codec.Encode(token)
	if err != nil {
		return err
	}
	ciphertext, err := s.secrets.Encrypt(ctx, plaintext)
	if err != nil {
		return fmt.Errorf("redisstore: encrypt token: %w", err)
	}

	expiry := s.ttl
	if expiresAt := token.ExpiresAt(); !expiresAt.IsZero() {
		expiry = expiresAt.Sub(s.now())
		if expiry <= 0 {
			// already expired, nothing worth caching
			return s.client.Del(ctx, s.key(key)).Err()
		}
	}
	return s.client.Set(ctx, s.key(key), ciphertext, expiry).Err()
}

func (s *TokenStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(strings.TrimSpace(key))).Err()
}

// Keys lists the token keys currently held under the store prefix.
func (s *TokenStore) Keys(ctx context.Context) ([]string, error) {
	var cursor uint64
	keys := make([]string, 0)
	pattern := s.prefix + "*"
	for {
		res, nextCursor, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range res {
			keys = append(keys, strings.TrimPrefix(key, s.prefix))
		}
		if nextCursor == 0 {
			break
		}
		cursor = nextCursor
	}
	return keys, nil
}

// Close releases the client when New created it.
func (s *TokenStore) Close() error {
	if s == nil || !s.owned {
		return nil
	}
	return s.client.Close()
}

var _ core.TokenStore = (*TokenStore)(nil)
