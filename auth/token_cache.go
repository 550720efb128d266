package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-kaduu/core"
	glog "github.com/goliatone/go-logger/glog"
)

type CachingTokenProviderConfig struct {
	Credential  core.Credential
	Key         string
	RenewBefore time.Duration
	Logger      core.Logger
	Now         func() time.Time
}

// CachingTokenProvider reuses a stored token until it is missing or inside
// the renew window, then authenticates once and stores the result. Calls are
// serialized so concurrent callers share a single exchange.
type CachingTokenProvider struct {
	authenticator core.Authenticator
	store         core.TokenStore
	credential    core.Credential
	key           string
	renewBefore   time.Duration
	now           func() time.Time
	logger        core.Logger
	mu            sync.Mutex
}

func NewCachingTokenProvider(
	authenticator core.Authenticator,
	store core.TokenStore,
	cfg CachingTokenProviderConfig,
) *CachingTokenProvider {
	if store == nil {
		store = NewMemoryTokenStore()
	}
	renewBefore := cfg.RenewBefore
	if renewBefore < 0 {
		renewBefore = 0
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		key = TokenKey("", "", cfg.Credential.Username)
	}
	return &CachingTokenProvider{
		authenticator: authenticator,
		store:         store,
		credential:    cfg.Credential,
		key:           key,
		renewBefore:   renewBefore,
		now:           now,
		logger:        glog.Ensure(cfg.Logger),
	}
}

func (p *CachingTokenProvider) Key() string {
	if p == nil {
		return ""
	}
	return p.key
}

func (p *CachingTokenProvider) Token(ctx context.Context) (core.TokenData, error) {
	if p == nil || p.authenticator == nil {
		return core.TokenData{}, core.NewAuthenticationError("authenticator is not configured", nil)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	stored, found, err := p.store.Load(ctx, p.key)
	if err != nil {
		p.logger.Warn("token store load failed", "token_key", p.key, "error", core.ErrorMessage(err))
	}
	if err == nil && found && !stored.Expired(p.now(), p.renewBefore) {
		return stored, nil
	}

	token, err := p.authenticator.Authenticate(ctx, p.credential)
	if err != nil {
		return core.TokenData{}, err
	}
	if err := p.store.Save(ctx, p.key, token); err != nil {
		p.logger.Warn("token store save failed", "token_key", p.key, "error", core.ErrorMessage(err))
	}
	return token, nil
}

func (p *CachingTokenProvider) Invalidate(ctx context.Context) error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger.Debug("invalidating cached token", "token_key", p.key)
	return p.store.Delete(ctx, p.key)
}

var _ core.TokenProvider = (*CachingTokenProvider)(nil)
