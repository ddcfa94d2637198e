package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
)

// Ensure StaticTokenProvider implements the interface.
var _ driven.TokenProvider = (*StaticTokenProvider)(nil)

// TokenSourceAdapter adapts a TokenProvider to oauth2.TokenSource so that
// Google API clients pick up the agent's credentials.
type TokenSourceAdapter struct {
	provider driven.TokenProvider
	ctx      context.Context
}

// NewTokenSource creates an oauth2.TokenSource from a TokenProvider.
func NewTokenSource(ctx context.Context, provider driven.TokenProvider) oauth2.TokenSource {
	return &TokenSourceAdapter{
		provider: provider,
		ctx:      ctx,
	}
}

// Token implements oauth2.TokenSource.
func (t *TokenSourceAdapter) Token() (*oauth2.Token, error) {
	accessToken, err := t.provider.GetToken(t.ctx)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}, nil
}

// StaticTokenProvider serves a pre-issued access token, typically one
// obtained on the examiner's workstation and passed in via config or env.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider returns a provider for token. An empty token
// yields a provider that reports unauthorized.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

// GetToken returns the configured token.
func (p *StaticTokenProvider) GetToken(_ context.Context) (string, error) {
	if p.token == "" {
		return "", fmt.Errorf("%w: no google access token configured", domain.ErrUnauthorized)
	}
	return p.token, nil
}

// IsAuthenticated returns true if a token is configured.
func (p *StaticTokenProvider) IsAuthenticated() bool {
	return p.token != ""
}
