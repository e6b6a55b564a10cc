// Package root provides the root command for the openshift-config-server
package root

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bear-san/openshift-config-server/internal/config"
	"github.com/bear-san/openshift-config-server/internal/logging"
	"github.com/bear-san/openshift-config-server/internal/metrics"
	"github.com/bear-san/openshift-config-server/pkg/discovery"
	"github.com/bear-san/openshift-config-server/pkg/handlers"
	"github.com/bear-san/openshift-config-server/pkg/kubernetes"
)

var v = config.NewViper()

var rootCmd = &cobra.Command{
	Use:   "openshift-config-server",
	Short: "Configuration server for the OpenShift web front-end",
	Long: `A server that resolves the cluster's OAuth issuer at startup and serves
config.js to the single-page front-end, optionally alongside its static bundle`,
	Run: runServer,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringP(config.KeyPort, "p", config.DefaultPort, "Server port")
	flags.String(config.KeyStaticDir, config.DefaultStaticDir, "Directory holding the built front-end (production mode)")
	flags.String(config.KeyLogLevel, config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	flags.String(config.KeyDiscoveryURL, config.DefaultDiscoveryURL, "OAuth authorization server metadata URL")

	if err := flags.MarkHidden(config.KeyDiscoveryURL); err != nil {
		panic("failed to hide flag: " + err.Error())
	}

	for _, key := range []string{config.KeyPort, config.KeyStaticDir, config.KeyLogLevel, config.KeyDiscoveryURL} {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic("failed to bind flag: " + err.Error())
		}
	}
}

func Execute() error {
	return rootCmd.Execute()
}

func runServer(cmd *cobra.Command, _ []string) {
	cfg := config.Load(v)

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	gin.SetMode(gin.ReleaseMode)

	srv := newServer(cmd.Context(), cfg, logger, metrics.New(), clusterResolver(logger))

	go func() {
		logger.Info("Listening", zap.String("port", cfg.Port))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("Server exited")
}

// clusterResolver returns a factory for the discovery resolver. The factory
// runs only when no issuer host is configured.
func clusterResolver(logger *zap.Logger) func(cfg *config.Config) discovery.IssuerResolver {
	return func(cfg *config.Config) discovery.IssuerResolver {
		client, err := kubernetes.NewHTTPClient()
		if err != nil {
			logger.Debug("cluster TLS config unavailable, using default HTTP client", zap.Error(err))
			return discovery.NewResolver(http.DefaultClient, cfg.DiscoveryURL)
		}

		return discovery.NewResolver(client, cfg.DiscoveryURL)
	}
}

// newServer determines the issuer host once and builds the HTTP server
// around it.
func newServer(
	ctx context.Context,
	cfg *config.Config,
	logger *zap.Logger,
	m *metrics.Metrics,
	newResolver func(cfg *config.Config) discovery.IssuerResolver,
) *http.Server {
	resolver := lazyResolver(func() discovery.IssuerResolver { return newResolver(cfg) })

	issuer, outcome := discovery.DetermineIssuerHost(ctx, cfg.OpenShiftHost, resolver, logger)
	m.ObserveIssuerDiscovery(string(outcome))

	h := handlers.NewHandler(cfg, issuer, logger, m)

	if cfg.Production() {
		if _, err := os.Stat(h.EntryDocumentPath()); err != nil {
			logger.Warn("entry document not found, fallback requests will fail",
				zap.String("path", h.EntryDocumentPath()), zap.Error(err))
		}
	}

	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handlers.NewRouter(h, m, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// lazyResolver defers building the real resolver until it is needed.
type lazyResolver func() discovery.IssuerResolver

func (f lazyResolver) ResolveIssuerHost(ctx context.Context) (string, error) {
	return f().ResolveIssuerHost(ctx)
}
