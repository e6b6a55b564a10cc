package discovery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiscoveryServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestResolveIssuerHost(t *testing.T) {
	srv := newDiscoveryServer(t, http.StatusOK, `{"issuer":"api.cluster.example.com","token_endpoint":"x"}`)

	host, err := NewResolver(srv.Client(), srv.URL).ResolveIssuerHost(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "api.cluster.example.com", host)
}

func TestResolveIssuerHostFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "unexpected status", status: http.StatusForbidden, body: `{"issuer":"api.example.com"}`, wantStatus: http.StatusForbidden},
		{name: "server error", status: http.StatusInternalServerError, body: ``, wantStatus: http.StatusInternalServerError},
		{name: "empty body", status: http.StatusOK, body: ``, wantStatus: http.StatusOK},
		{name: "not json", status: http.StatusOK, body: `<html></html>`, wantStatus: http.StatusOK},
		{name: "missing issuer", status: http.StatusOK, body: `{"token_endpoint":"https://x/oauth/token"}`, wantStatus: http.StatusOK},
		{name: "empty issuer", status: http.StatusOK, body: `{"issuer":""}`, wantStatus: http.StatusOK},
		{name: "non-string issuer", status: http.StatusOK, body: `{"issuer":42}`, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newDiscoveryServer(t, tt.status, tt.body)

			host, err := NewResolver(srv.Client(), srv.URL).ResolveIssuerHost(context.Background())

			require.Error(t, err)
			assert.Empty(t, host)

			var discoveryErr *DiscoveryError
			require.True(t, errors.As(err, &discoveryErr))
			assert.Equal(t, tt.wantStatus, discoveryErr.StatusCode)
			assert.Equal(t, srv.URL, discoveryErr.URL)
		})
	}
}

type failingClient struct {
	err error
}

func (c failingClient) Do(_ *http.Request) (*http.Response, error) {
	return nil, c.err
}

func TestResolveIssuerHostTransportError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	_, err := NewResolver(failingClient{err: cause}, "https://kubernetes.default/.well-known/oauth-authorization-server").
		ResolveIssuerHost(context.Background())

	var discoveryErr *DiscoveryError
	require.True(t, errors.As(err, &discoveryErr))
	assert.Zero(t, discoveryErr.StatusCode)
	assert.ErrorIs(t, err, cause)
}
