package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-kaduu/core"
	glog "github.com/goliatone/go-logger/glog"
)

const grantTypePassword = "password"

type PasswordGrantConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	Logger       core.Logger
	Now          func() time.Time
}

// PasswordGrantAuthenticator performs the OAuth2 resource owner password
// grant with a single form-encoded POST. It does not cache tokens.
type PasswordGrantAuthenticator struct {
	config    PasswordGrantConfig
	transport core.TransportAdapter
	logger    core.Logger
}

func NewPasswordGrantAuthenticator(transport core.TransportAdapter, cfg PasswordGrantConfig) *PasswordGrantAuthenticator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = core.DefaultTimeout
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &PasswordGrantAuthenticator{
		config: PasswordGrantConfig{
			TokenURL:     firstNonEmpty(cfg.TokenURL, core.DefaultTokenURL),
			ClientID:     firstNonEmpty(cfg.ClientID, core.DefaultClientID),
			ClientSecret: firstNonEmpty(cfg.ClientSecret, core.DefaultClientSecret),
			Timeout:      timeout,
			Now:          now,
		},
		transport: transport,
		logger:    glog.Ensure(cfg.Logger),
	}
}

// PasswordGrantConfigFrom maps the node config onto the authenticator config.
func PasswordGrantConfigFrom(cfg core.Config) PasswordGrantConfig {
	return PasswordGrantConfig{
		TokenURL:     cfg.TokenURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Timeout:      cfg.Timeout,
	}
}

func (a *PasswordGrantAuthenticator) TokenURL() string {
	if a == nil {
		return ""
	}
	return a.config.TokenURL
}

func (a *PasswordGrantAuthenticator) Authenticate(ctx context.Context, credential core.Credential) (core.TokenData, error) {
	if a == nil || a.transport == nil {
		return core.TokenData{}, core.NewAuthenticationError("token transport is not configured", nil)
	}
	metadata := map[string]any{
		"token_url":    a.config.TokenURL,
		"has_username": strings.TrimSpace(credential.Username) != "",
	}
	if strings.TrimSpace(credential.Username) == "" {
		return core.TokenData{}, core.NewAuthenticationError("username is required", metadata)
	}
	if credential.Password == "" {
		return core.TokenData{}, core.NewAuthenticationError("password is required", metadata)
	}

	form := url.Values{}
	form.Set("client_id", a.config.ClientID)
	form.Set("client_secret", a.config.ClientSecret)
	form.Set("grant_type", grantTypePassword)
	form.Set("username", credential.Username)
	form.Set("password", credential.Password)

	a.logger.Debug("requesting access token", "token_url", a.config.TokenURL, "has_username", true)

	res, err := a.transport.Do(ctx, core.TransportRequest{
		Method: http.MethodPost,
		URL:    a.config.TokenURL,
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
			"Accept":       "application/json",
		},
		Body:    []byte(form.Encode()),
		Timeout: a.config.Timeout,
	})
	if err != nil {
		a.logger.Warn("token request failed", "token_url", a.config.TokenURL, "error", core.ErrorMessage(err))
		return core.TokenData{}, core.WrapAuthenticationError(err, "token request failed", metadata)
	}

	metadata["status_code"] = res.StatusCode
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		a.logger.Warn("token endpoint rejected credentials", "token_url", a.config.TokenURL, "status_code", res.StatusCode)
		return core.TokenData{}, core.NewAuthenticationError(rejectionMessage(res), metadata)
	}

	raw := map[string]any{}
	decoder := json.NewDecoder(strings.NewReader(string(res.Body)))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return core.TokenData{}, core.WrapAuthenticationError(err, "token response is not valid JSON", metadata)
	}

	token := core.TokenDataFromResponse(raw, a.config.Now())
	if token.AccessToken == "" {
		return core.TokenData{}, core.NewAuthenticationError("No access token received", metadata)
	}

	a.logger.Debug("access token issued", "token_url", a.config.TokenURL, "expires_in", token.ExpiresIn)
	return token, nil
}

// rejectionMessage prefers the OAuth2 error_description over the raw body.
func rejectionMessage(res core.TransportResponse) string {
	payload := map[string]any{}
	if err := json.Unmarshal(res.Body, &payload); err == nil {
		if description := readString(payload, "error_description", "message", "error"); description != "" {
			return fmt.Sprintf("token endpoint returned %d: %s", res.StatusCode, description)
		}
	}
	return fmt.Sprintf("token endpoint returned %d", res.StatusCode)
}

var _ core.Authenticator = (*PasswordGrantAuthenticator)(nil)
