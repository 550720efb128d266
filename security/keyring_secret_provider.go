package security

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-kaduu/core"
	glog "github.com/goliatone/go-logger/glog"
)

type KeyRingOption func(*KeyRingSecretProvider)

// KeyRingSecretProvider encrypts with the active key and decrypts with
// whichever configured key sealed the payload. Retired keys stay readable so
// persisted tokens survive a key rotation.
type KeyRingSecretProvider struct {
	active  *AppKeySecretProvider
	retired map[string]*AppKeySecretProvider
	logger  core.Logger
}

func WithRetiredKey(provider *AppKeySecretProvider) KeyRingOption {
	return func(ring *KeyRingSecretProvider) {
		if provider == nil {
			return
		}
		ring.retired[keyRef(provider.KeyID(), provider.Version())] = provider
	}
}

func WithKeyRingLogger(logger core.Logger) KeyRingOption {
	return func(ring *KeyRingSecretProvider) {
		if logger != nil {
			ring.logger = logger
		}
	}
}

func NewKeyRingSecretProvider(active *AppKeySecretProvider, opts ...KeyRingOption) (*KeyRingSecretProvider, error) {
	if active == nil {
		return nil, fmt.Errorf("security: active secret provider is required")
	}
	ring := &KeyRingSecretProvider{
		active:  active,
		retired: map[string]*AppKeySecretProvider{},
		logger:  glog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ring)
		}
	}
	delete(ring.retired, keyRef(active.KeyID(), active.Version()))
	return ring, nil
}

func (r *KeyRingSecretProvider) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("security: secret provider is nil")
	}
	return r.active.Encrypt(ctx, plaintext)
}

func (r *KeyRingSecretProvider) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("security: secret provider is nil")
	}
	meta, err := ParseEnvelopeMetadata(ciphertext)
	if err != nil {
		return nil, err
	}
	ref := keyRef(meta.KeyID, meta.Version)
	if ref == keyRef(r.active.KeyID(), r.active.Version()) {
		return r.active.Decrypt(ctx, ciphertext)
	}
	retired, ok := r.retired[ref]
	if !ok {
		return nil, fmt.Errorf("security: no key configured for %s", ref)
	}
	r.logger.Debug("decrypting with retired key", "key_id", meta.KeyID, "key_version", meta.Version)
	return retired.Decrypt(ctx, ciphertext)
}

// NeedsRotation reports whether ciphertext was sealed by a key other than the
// active one.
func (r *KeyRingSecretProvider) NeedsRotation(ciphertext []byte) bool {
	if r == nil {
		return false
	}
	meta, err := ParseEnvelopeMetadata(ciphertext)
	if err != nil {
		return false
	}
	return keyRef(meta.KeyID, meta.Version) != keyRef(r.active.KeyID(), r.active.Version())
}

func (r *KeyRingSecretProvider) Metadata() (string, int) {
	if r == nil {
		return "", 0
	}
	return r.active.Metadata()
}

func keyRef(keyID string, version int) string {
	return fmt.Sprintf("%s:%d", strings.TrimSpace(keyID), version)
}

var _ core.SecretProvider = (*KeyRingSecretProvider)(nil)
