package discovery

import (
	"context"

	"go.uber.org/zap"
)

// IssuerResolver is implemented by *Resolver.
type IssuerResolver interface {
	ResolveIssuerHost(ctx context.Context) (string, error)
}

// IssuerHost is the issuer host determined at startup. The zero value means
// the host could not be determined and the server runs in mock mode.
type IssuerHost struct {
	host string
}

func NewIssuerHost(host string) IssuerHost {
	return IssuerHost{host: host}
}

func (h IssuerHost) Get() (string, bool) {
	return h.host, h.host != ""
}

func (h IssuerHost) IsSet() bool {
	return h.host != ""
}

// Outcome describes how the issuer host was determined.
type Outcome string

const (
	OutcomeConfigured Outcome = "configured"
	OutcomeDiscovered Outcome = "discovered"
	OutcomeFailed     Outcome = "failed"
)

// DetermineIssuerHost returns the configured host when present and otherwise
// asks the resolver. Resolution failures are logged and leave the host unset.
func DetermineIssuerHost(
	ctx context.Context,
	configured string,
	resolver IssuerResolver,
	logger *zap.Logger,
) (IssuerHost, Outcome) {
	if configured != "" {
		logger.Info("using configured OpenShift host", zap.String("host", configured))
		return NewIssuerHost(configured), OutcomeConfigured
	}

	logger.Info("OPENSHIFT_HOST environment variable not set, fetching host programmatically")

	host, err := resolver.ResolveIssuerHost(ctx)
	if err != nil {
		logger.Warn("unable to programmatically determine OPENSHIFT_HOST", zap.Error(err))
		return IssuerHost{}, OutcomeFailed
	}

	logger.Info("discovered OpenShift host", zap.String("host", host))

	return NewIssuerHost(host), OutcomeDiscovered
}
