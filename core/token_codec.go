package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	TokenPayloadFormatJSONV1 = "token_data_json"
	TokenPayloadVersionV1    = 1
)

// TokenCodec turns TokenData into the plaintext that persisted stores seal
// with a SecretProvider.
type TokenCodec interface {
	Format() string
	Version() int
	Encode(token TokenData) ([]byte, error)
	Decode(payload []byte) (TokenData, error)
}

type JSONTokenCodec struct{}

func (JSONTokenCodec) Format() string {
	return TokenPayloadFormatJSONV1
}

func (JSONTokenCodec) Version() int {
	return TokenPayloadVersionV1
}

type jsonTokenPayload struct {
	AccessToken  string         `json:"access_token"`
	TokenType    string         `json:"token_type,omitempty"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	Scope        string         `json:"scope,omitempty"`
	ExpiresIn    int            `json:"expires_in,omitempty"`
	IssuedAt     time.Time      `json:"issued_at"`
	Raw          map[string]any `json:"raw,omitempty"`
}

func (JSONTokenCodec) Encode(token TokenData) ([]byte, error) {
	if strings.TrimSpace(token.AccessToken) == "" {
		return nil, fmt.Errorf("core: token payload requires an access token")
	}
	encoded, err := json.Marshal(jsonTokenPayload{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
		Scope:        token.Scope,
		ExpiresIn:    token.ExpiresIn,
		IssuedAt:     token.IssuedAt.UTC(),
		Raw:          copyAnyMap(token.Raw),
	})
	if err != nil {
		return nil, fmt.Errorf("core: encode token payload: %w", err)
	}
	return encoded, nil
}

func (JSONTokenCodec) Decode(payload []byte) (TokenData, error) {
	if len(payload) == 0 {
		return TokenData{}, fmt.Errorf("core: token payload is empty")
	}
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	decoded := jsonTokenPayload{}
	if err := decoder.Decode(&decoded); err != nil {
		return TokenData{}, fmt.Errorf("core: decode token payload: %w", err)
	}
	if strings.TrimSpace(decoded.AccessToken) == "" {
		return TokenData{}, fmt.Errorf("core: token payload requires an access token")
	}
	return TokenData{
		AccessToken:  decoded.AccessToken,
		TokenType:    decoded.TokenType,
		RefreshToken: decoded.RefreshToken,
		Scope:        decoded.Scope,
		ExpiresIn:    decoded.ExpiresIn,
		IssuedAt:     decoded.IssuedAt.UTC(),
		Raw:          decoded.Raw,
	}, nil
}

var _ TokenCodec = JSONTokenCodec{}
