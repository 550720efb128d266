package sqlstore

import (
	"strings"
	"time"

	"github.com/goliatone/go-kaduu/core"
	"github.com/google/uuid"
)

type sealedToken struct {
	payload []byte
	format  string
	version int
	keyID   string
	keyVer  int
}

func newTokenRecord(key string, token core.TokenData, sealed sealedToken, now time.Time) *tokenRecord {
	record := &tokenRecord{
		ID:                uuid.NewString(),
		TokenKey:          strings.TrimSpace(key),
		EncryptedPayload:  append([]byte(nil), sealed.payload...),
		PayloadFormat:     sealed.format,
		PayloadVersion:    sealed.version,
		TokenType:         strings.TrimSpace(token.TokenType),
		EncryptionKeyID:   sealed.keyID,
		EncryptionVersion: sealed.keyVer,
		IssuedAt:          token.IssuedAt.UTC(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if record.IssuedAt.IsZero() {
		record.IssuedAt = now
	}
	if expiresAt := token.ExpiresAt(); !expiresAt.IsZero() {
		value := expiresAt.UTC()
		record.ExpiresAt = &value
	}
	return record
}

// secretMetadata reads the key reference from providers that expose one.
func secretMetadata(provider core.SecretProvider) (string, int) {
	described, ok := provider.(interface{ Metadata() (string, int) })
	if !ok {
		return "", 0
	}
	keyID, version := described.Metadata()
	return strings.TrimSpace(keyID), version
}
