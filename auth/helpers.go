package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

func readString(metadata map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := metadata[key]
		if !ok || value == nil {
			continue
		}
		switch typed := value.(type) {
		case string:
			trimmed := strings.TrimSpace(typed)
			if trimmed != "" {
				return trimmed
			}
		case []byte:
			trimmed := strings.TrimSpace(string(typed))
			if trimmed != "" {
				return trimmed
			}
		case fmt.Stringer:
			trimmed := strings.TrimSpace(typed.String())
			if trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// TokenKey derives the store key for a token endpoint and operator. The
// username is hashed so store keys can be logged.
func TokenKey(tokenURL string, clientID string, username string) string {
	sum := sha256.Sum256([]byte(
		strings.TrimSpace(tokenURL) + "|" + strings.TrimSpace(clientID) + "|" + strings.ToLower(strings.TrimSpace(username)),
	))
	return "kaduu:token:" + hex.EncodeToString(sum[:16])
}
