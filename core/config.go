package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultNodeName             = "Kaduu Leaks"
	DefaultTokenURL             = "https://app.leak.center/uaa/oauth/token"
	DefaultAPIURL               = "https://app.leak.center/svc-saas"
	DefaultClientID             = "client-api"
	DefaultClientSecret         = "comfy-litigate-embargo-forelimb"
	DefaultTimeout              = 10 * time.Second
	DefaultRenewBefore          = 2 * time.Minute
	DefaultMaxResponseBodyBytes = int64(10 << 20)
)

type Config struct {
	NodeName             string        `koanf:"node_name" mapstructure:"node_name"`
	TokenURL             string        `koanf:"token_url" mapstructure:"token_url"`
	APIURL               string        `koanf:"api_url" mapstructure:"api_url"`
	ClientID             string        `koanf:"client_id" mapstructure:"client_id"`
	ClientSecret         string        `koanf:"client_secret" mapstructure:"client_secret"`
	Timeout              time.Duration `koanf:"timeout" mapstructure:"timeout"`
	RenewBefore          time.Duration `koanf:"renew_before" mapstructure:"renew_before"`
	ContinueOnFail       bool          `koanf:"continue_on_fail" mapstructure:"continue_on_fail"`
	MaxResponseBodyBytes int64         `koanf:"max_response_body_bytes" mapstructure:"max_response_body_bytes"`
}

func DefaultConfig() Config {
	return Config{
		NodeName:             DefaultNodeName,
		TokenURL:             DefaultTokenURL,
		APIURL:               DefaultAPIURL,
		ClientID:             DefaultClientID,
		ClientSecret:         DefaultClientSecret,
		Timeout:              DefaultTimeout,
		RenewBefore:          DefaultRenewBefore,
		MaxResponseBodyBytes: DefaultMaxResponseBodyBytes,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.NodeName) == "" {
		return fmt.Errorf("core: node_name is required")
	}
	if err := validateEndpoint("token_url", c.TokenURL); err != nil {
		return err
	}
	if err := validateEndpoint("api_url", c.APIURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("core: client_id is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("core: timeout must be positive")
	}
	if c.RenewBefore < 0 {
		return fmt.Errorf("core: renew_before must not be negative")
	}
	if c.MaxResponseBodyBytes <= 0 {
		return fmt.Errorf("core: max_response_body_bytes must be positive")
	}
	return nil
}

func validateEndpoint(key string, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("core: %s is required", key)
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("core: %s is invalid: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("core: %s must use http or https", key)
	}
	if parsed.Host == "" {
		return fmt.Errorf("core: %s must include a host", key)
	}
	return nil
}
