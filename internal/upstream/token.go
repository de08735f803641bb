package upstream

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/config"
)

// NewTokenSource returns the bearer token source for the destination API.
// A configured token URL selects the OAuth2 client-credentials flow, otherwise
// the static token is used. It returns nil when no credentials are configured.
func NewTokenSource(ctx context.Context, cfg config.DestinationConfig) oauth2.TokenSource {
	if cfg.TokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		return cc.TokenSource(ctx)
	}

	return StaticTokenSource(cfg.Token)
}

// StaticTokenSource wraps a fixed bearer token, or returns nil for an empty one
func StaticTokenSource(token string) oauth2.TokenSource {
	if token == "" {
		return nil
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

// newHTTPClient returns a client that authorizes every request with ts.
// A nil source yields base unchanged.
func newHTTPClient(base *http.Client, ts oauth2.TokenSource) *http.Client {
	if ts == nil {
		return base
	}
	return &http.Client{
		Timeout: base.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, ts),
			Base:   base.Transport,
		},
	}
}
