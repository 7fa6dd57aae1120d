package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"charter-concierge/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTokenServer(t *testing.T, issued *int32) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "concierge", user)
		assert.Equal(t, "s3cret", pass)

		atomic.AddInt32(issued, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token-1","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestBackendOAuth_HTTPClientAttachesToken(t *testing.T) {
	var issued int32
	tokenServer := newTokenServer(t, &issued)

	var (
		mu   sync.Mutex
		seen []string
	)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	auth := NewBackendOAuth("concierge", "s3cret", tokenServer.URL, []string{"charter"}, logger.NewFromZap(zaptest.NewLogger(t)))
	require.True(t, auth.Enabled())

	client := auth.HTTPClient(context.Background(), 5*time.Second)
	for i := 0; i < 2; i++ {
		resp, err := client.Get(backend.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}

	mu.Lock()
	assert.Equal(t, []string{"Bearer token-1", "Bearer token-1"}, seen)
	mu.Unlock()
	assert.Equal(t, int32(1), atomic.LoadInt32(&issued), "token is cached between calls")
}

func TestBackendOAuth_FetchToken(t *testing.T) {
	var issued int32
	tokenServer := newTokenServer(t, &issued)
	auth := NewBackendOAuth("concierge", "s3cret", tokenServer.URL, nil, logger.NewNop())

	token, err := auth.FetchToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token.AccessToken)

	raw, err := auth.TokenToJSON(token)
	require.NoError(t, err)
	assert.Contains(t, raw, `"access_token": "token-1"`)
}

func TestBackendOAuth_Disabled(t *testing.T) {
	auth := NewBackendOAuth("", "", "", nil, logger.NewNop())
	assert.False(t, auth.Enabled())

	client := auth.HTTPClient(context.Background(), time.Second)
	assert.Equal(t, time.Second, client.Timeout)
	assert.Nil(t, client.Transport)
}
