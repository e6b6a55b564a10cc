// Package kubernetes provides HTTP clients that trust the Kubernetes API server
package kubernetes

import (
	"fmt"
	"net/http"

	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/client/config"
)

// NewHTTPClient returns an HTTP client whose TLS settings come from the
// cluster's REST config (in-cluster service account or kubeconfig).
func NewHTTPClient() (*http.Client, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	return HTTPClientFor(cfg)
}

// HTTPClientFor builds an HTTP client trusting the CA of the given REST config.
// No credentials are attached; the discovery document is served anonymously.
func HTTPClientFor(cfg *rest.Config) (*http.Client, error) {
	tlsConfig, err := rest.TLSConfigFor(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create TLS config: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if tlsConfig != nil {
		transport.TLSClientConfig = tlsConfig
	}

	return &http.Client{
		Transport: transport,
	}, nil
}
