package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"charter-concierge/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// BackendOAuth authenticates the service against the charter backend with client credentials
type BackendOAuth struct {
	config *clientcredentials.Config
	logger logger.Logger
}

// NewBackendOAuth creates a new backend OAuth handler
func NewBackendOAuth(clientID, clientSecret, tokenURL string, scopes []string, logger logger.Logger) *BackendOAuth {
	return &BackendOAuth{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		logger: logger,
	}
}

// Enabled reports whether credentials are configured
func (o *BackendOAuth) Enabled() bool {
	return o.config.ClientID != "" && o.config.TokenURL != ""
}

// GetTokenSource returns a caching token source
func (o *BackendOAuth) GetTokenSource(ctx context.Context) oauth2.TokenSource {
	return o.config.TokenSource(ctx)
}

// HTTPClient returns a client that attaches a fresh bearer token to every backend call.
// Without credentials a plain client is returned.
func (o *BackendOAuth) HTTPClient(ctx context.Context, timeout time.Duration) *http.Client {
	if !o.Enabled() {
		o.logger.Warn("Backend credentials are not configured, calling the backend anonymously")
		return &http.Client{Timeout: timeout}
	}
	client := o.config.Client(ctx)
	client.Timeout = timeout
	return client
}

// FetchToken requests a token right away
func (o *BackendOAuth) FetchToken(ctx context.Context) (*oauth2.Token, error) {
	token, err := o.config.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch backend token: %w", err)
	}
	o.logger.Debug("Backend token obtained", "expiry", token.Expiry)
	return token, nil
}

// TokenToJSON converts a token to JSON
func (o *BackendOAuth) TokenToJSON(token *oauth2.Token) (string, error) {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
