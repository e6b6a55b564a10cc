// Package discovery resolves the OAuth issuer host of the cluster
package discovery

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

// maxDocumentSize bounds the discovery document read from the server.
const maxDocumentSize = 1 << 20

// DiscoveryError reports an unusable response from the discovery endpoint.
type DiscoveryError struct {
	URL string
	// StatusCode is the observed HTTP status, zero when no response was received.
	StatusCode int
	Reason     string
	Err        error
}

func (e *DiscoveryError) Error() string {
	msg := fmt.Sprintf("discovery %s: %s", e.URL, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// HTTPClient is the subset of *http.Client used by the resolver.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Resolver struct {
	client HTTPClient
	url    string
}

func NewResolver(client HTTPClient, url string) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}

	return &Resolver{
		client: client,
		url:    url,
	}
}

// ResolveIssuerHost fetches the discovery document once and returns its issuer.
func (r *Resolver) ResolveIssuerHost(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build discovery request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &DiscoveryError{URL: r.url, Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &DiscoveryError{
			URL:        r.url,
			StatusCode: resp.StatusCode,
			Reason:     fmt.Sprintf("received unexpected %d status", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return "", &DiscoveryError{URL: r.url, StatusCode: resp.StatusCode, Reason: "failed to read body", Err: err}
	}

	if len(body) == 0 || !gjson.ValidBytes(body) {
		return "", &DiscoveryError{URL: r.url, StatusCode: resp.StatusCode, Reason: "received unexpected response"}
	}

	issuer := gjson.GetBytes(body, "issuer")
	if issuer.Type != gjson.String || issuer.Str == "" {
		return "", &DiscoveryError{URL: r.url, StatusCode: resp.StatusCode, Reason: "response has no issuer"}
	}

	return issuer.Str, nil
}
