package root

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bear-san/openshift-config-server/internal/config"
	"github.com/bear-san/openshift-config-server/internal/metrics"
	"github.com/bear-san/openshift-config-server/pkg/discovery"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discoveryServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	calls := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, calls
}

func resolverFor(srv *httptest.Server) func(cfg *config.Config) discovery.IssuerResolver {
	return func(cfg *config.Config) discovery.IssuerResolver {
		return discovery.NewResolver(srv.Client(), cfg.DiscoveryURL)
	}
}

func configBody(t *testing.T, srv *http.Server, mutate func(r *http.Request)) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/config.js", nil)
	if mutate != nil {
		mutate(req)
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	return rec.Body.String()
}

func TestNewServerDiscoversIssuer(t *testing.T) {
	ds, calls := discoveryServer(t, http.StatusOK, `{"issuer":"api.cluster.example.com"}`)
	cfg := &config.Config{Port: "5001", OAuthClientID: "webapp", DiscoveryURL: ds.URL}

	srv := newServer(context.Background(), cfg, zap.NewNop(), metrics.New(), resolverFor(ds))

	assert.Equal(t, ":5001", srv.Addr)
	assert.EqualValues(t, 1, calls.Load())

	body := configBody(t, srv, func(r *http.Request) { r.Host = "localhost:5001" })
	assert.Contains(t, body, "clientId: 'webapp'")
	assert.Contains(t, body, "accessTokenUri: 'https://api.cluster.example.com/oauth/token'")
	assert.Contains(t, body, "redirectUri: 'https://localhost:5001/oauth/callback'")
	assert.NotContains(t, body, "mockData")

	configBody(t, srv, nil)
	assert.EqualValues(t, 1, calls.Load(), "issuer must not be re-resolved per request")
}

func TestNewServerFallsBackToMockMode(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "unexpected status", status: http.StatusUnauthorized, body: `{"issuer":"api.cluster.example.com"}`},
		{name: "missing issuer", status: http.StatusOK, body: `{"authorization_endpoint":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, _ := discoveryServer(t, tt.status, tt.body)
			cfg := &config.Config{Port: "5001", DiscoveryURL: ds.URL}

			srv := newServer(context.Background(), cfg, zap.NewNop(), metrics.New(), resolverFor(ds))

			for i := 0; i < 3; i++ {
				body := configBody(t, srv, nil)
				assert.Contains(t, body, "mockData")
				assert.NotContains(t, body, "clientId")
			}
		})
	}
}

func TestNewServerSkipsDiscoveryWhenHostConfigured(t *testing.T) {
	ds, calls := discoveryServer(t, http.StatusOK, `{"issuer":"discovered.example.com"}`)
	cfg := &config.Config{Port: "5001", OpenShiftHost: "configured.example.com", DiscoveryURL: ds.URL}

	built := false
	srv := newServer(context.Background(), cfg, zap.NewNop(), metrics.New(), func(c *config.Config) discovery.IssuerResolver {
		built = true
		return resolverFor(ds)(c)
	})

	assert.False(t, built)
	assert.Zero(t, calls.Load())
	assert.Contains(t, configBody(t, srv, nil), "masterUri: 'https://configured.example.com'")
}
