package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-kaduu/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// TokenStore persists tokens sealed by a SecretProvider. Saving a key
// replaces whatever was stored under it.
type TokenStore struct {
	db      *bun.DB
	repo    repository.Repository[*tokenRecord]
	secrets core.SecretProvider
	codec   core.TokenCodec
	now     func() time.Time
}

type TokenStoreOption func(*TokenStore)

func WithTokenCodec(codec core.TokenCodec) TokenStoreOption {
	return func(s *TokenStore) {
		if codec != nil {
			s.codec = codec
		}
	}
}

func WithClock(now func() time.Time) TokenStoreOption {
	return func(s *TokenStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewTokenStore(db *bun.DB, secrets core.SecretProvider, opts ...TokenStoreOption) (*TokenStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	if secrets == nil {
		return nil, fmt.Errorf("sqlstore: secret provider is required")
	}
	repo := repository.NewRepository[*tokenRecord](db, tokenHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid token repository wiring: %w", err)
		}
	}
	store := &TokenStore{
		db:      db,
		repo:    repo,
		secrets: secrets,
		codec:   core.JSONTokenCodec{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

func (s *TokenStore) Load(ctx context.Context, key string) (core.TokenData, bool, error) {
	if s == nil || s.repo == nil {
		return core.TokenData{}, false, fmt.Errorf("sqlstore: token store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return core.TokenData{}, false, fmt.Errorf("sqlstore: token key is required")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("token_key", "=", key),
		repository.OrderBy("updated_at DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.TokenData{}, false, err
	}
	if len(records) == 0 {
		return core.TokenData{}, false, nil
	}

	record := records[0]
	if record.PayloadFormat != "" && record.PayloadFormat != s.codec.Format() {
		return core.TokenData{}, false, fmt.Errorf("sqlstore: unsupported token payload format %q", record.PayloadFormat)
	}
	plaintext, err := s.secrets.Decrypt(ctx, record.EncryptedPayload)
	if err != nil {
		return core.TokenData{}, false, fmt.Errorf("sqlstore: decrypt token: %w", err)
	}
	token, err := s.codec.Decode(plaintext)
	if err != nil {
		return core.TokenData{}, false, err
	}
	return token, true, nil
}

func (s *TokenStore) Save(ctx context.Context, key string, token core.TokenData) error {
	if s == nil || s.repo == nil || s.db == nil {
		return fmt.Errorf("sqlstore: token store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("sqlstore: token key is required")
	}
	plaintext, err := s.codec.Encode(token)
	if err != nil {
		return err
	}
	ciphertext, err := s.secrets.Encrypt(ctx, plaintext)
	if err != nil {
		return fmt.Errorf("sqlstore: encrypt token: %w", err)
	}
	keyID, keyVersion := secretMetadata(s.secrets)
	record := newTokenRecord(key, token, sealedToken{
		payload: ciphertext,
		format:  s.codec.Format(),
		version: s.codec.Version(),
		keyID:   keyID,
		keyVer:  keyVersion,
	}, s.now())

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*tokenRecord)(nil)).
			Where("token_key = ?", key).
			Exec(ctx); err != nil {
			return err
		}
		_, err := s.repo.CreateTx(ctx, tx, record)
		return err
	})
}

func (s *TokenStore) Delete(ctx context.Context, key string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: token store is not configured")
	}
	_, err := s.db.NewDelete().
		Model((*tokenRecord)(nil)).
		Where("token_key = ?", strings.TrimSpace(key)).
		Exec(ctx)
	return err
}

// PurgeExpired removes tokens that expired before cutoff and returns how many
// rows went away. Tokens without an expiry are kept.
func (s *TokenStore) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: token store is not configured")
	}
	result, err := s.db.NewDelete().
		Model((*tokenRecord)(nil)).
		Where("expires_at IS NOT NULL").
		Where("expires_at < ?", cutoff.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
