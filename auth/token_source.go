package auth

import (
	"context"

	"github.com/goliatone/go-kaduu/core"
	"golang.org/x/oauth2"
)

type tokenSource struct {
	ctx      context.Context
	provider core.TokenProvider
}

// NewTokenSource adapts a TokenProvider to oauth2.TokenSource. The provider
// already caches, so the source is not wrapped in oauth2.ReuseTokenSource.
func NewTokenSource(ctx context.Context, provider core.TokenProvider) oauth2.TokenSource {
	if ctx == nil {
		ctx = context.Background()
	}
	return &tokenSource{ctx: ctx, provider: provider}
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	if s.provider == nil {
		return nil, core.NewAuthenticationError("token provider is not configured", nil)
	}
	token, err := s.provider.Token(s.ctx)
	if err != nil {
		return nil, err
	}
	return token.OAuth2Token(), nil
}
