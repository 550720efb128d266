package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

// tokenRecord is one sealed token per token key. The payload is produced by
// a core.TokenCodec and encrypted by a core.SecretProvider; no column holds a
// secret in clear.
type tokenRecord struct {
	bun.BaseModel `bun:"table:kaduu_tokens,alias:kt"`

	ID                string     `bun:"id,pk"`
	TokenKey          string     `bun:"token_key,notnull"`
	EncryptedPayload  []byte     `bun:"encrypted_payload,notnull"`
	PayloadFormat     string     `bun:"payload_format,notnull"`
	PayloadVersion    int        `bun:"payload_version,notnull"`
	TokenType         string     `bun:"token_type,notnull"`
	EncryptionKeyID   string     `bun:"encryption_key_id,notnull"`
	EncryptionVersion int        `bun:"encryption_version,notnull"`
	IssuedAt          time.Time  `bun:"issued_at,notnull"`
	ExpiresAt         *time.Time `bun:"expires_at,nullzero"`
	CreatedAt         time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
