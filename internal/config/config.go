// Package config provides configuration management for the config server
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Environment variable names read by the server.
const (
	EnvPort          = "PORT"
	EnvOpenShiftHost = "OPENSHIFT_HOST"
	EnvOpenShiftURL  = "OPENSHIFT_URL"
	EnvFuseURL       = "FUSE_URL"
	EnvEnmasseURL    = "ENMASSE_URL"
	EnvLauncherURL   = "LAUNCHER_URL"
	EnvCheURL        = "CHE_URL"
	EnvOAuthClientID = "OPENSHIFT_OAUTHCLIENT_ID"
	EnvNodeEnv       = "NODE_ENV"
	EnvStaticDir     = "STATIC_DIR"
	EnvLogLevel      = "LOG_LEVEL"
)

const (
	DefaultPort      = "5001"
	DefaultStaticDir = "build"
	DefaultLogLevel  = "info"

	// ProductionMode is the NODE_ENV value that enables static asset serving.
	ProductionMode = "production"

	// DefaultDiscoveryURL is the in-cluster OAuth authorization server metadata endpoint.
	DefaultDiscoveryURL = "https://kubernetes.default/.well-known/oauth-authorization-server"
)

// Viper keys. Flags are bound under the same names.
const (
	KeyPort          = "port"
	KeyOpenShiftHost = "openshift-host"
	KeyOpenShiftURL  = "openshift-url"
	KeyFuseURL       = "fuse-url"
	KeyEnmasseURL    = "enmasse-url"
	KeyLauncherURL   = "launcher-url"
	KeyCheURL        = "che-url"
	KeyOAuthClientID = "oauth-client-id"
	KeyNodeEnv       = "node-env"
	KeyStaticDir     = "static-dir"
	KeyLogLevel      = "log-level"
	KeyDiscoveryURL  = "discovery-url"
)

var envBindings = map[string]string{
	KeyPort:          EnvPort,
	KeyOpenShiftHost: EnvOpenShiftHost,
	KeyOpenShiftURL:  EnvOpenShiftURL,
	KeyFuseURL:       EnvFuseURL,
	KeyEnmasseURL:    EnvEnmasseURL,
	KeyLauncherURL:   EnvLauncherURL,
	KeyCheURL:        EnvCheURL,
	KeyOAuthClientID: EnvOAuthClientID,
	KeyNodeEnv:       EnvNodeEnv,
	KeyStaticDir:     EnvStaticDir,
	KeyLogLevel:      EnvLogLevel,
}

// ServiceLinks holds the mock-mode links to the cluster's managed services.
type ServiceLinks struct {
	OpenShift string
	Fuse      string
	Enmasse   string
	Launcher  string
	Che       string
}

type Config struct {
	Port          string
	OpenShiftHost string
	OAuthClientID string
	NodeEnv       string
	StaticDir     string
	LogLevel      string
	DiscoveryURL  string
	Links         ServiceLinks
}

// Production reports whether static asset serving is enabled.
func (c *Config) Production() bool {
	return c.NodeEnv == ProductionMode
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// NewViper returns a viper instance with defaults and environment bindings set up.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyStaticDir, DefaultStaticDir)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyDiscoveryURL, DefaultDiscoveryURL)

	for key, env := range envBindings {
		// BindEnv only errors when called without a key.
		_ = v.BindEnv(key, env)
	}

	return v
}

// Load builds a Config from the given viper instance.
func Load(v *viper.Viper) *Config {
	port := strings.TrimSpace(v.GetString(KeyPort))
	if port == "" {
		port = DefaultPort
	}

	return &Config{
		Port:          port,
		OpenShiftHost: v.GetString(KeyOpenShiftHost),
		OAuthClientID: v.GetString(KeyOAuthClientID),
		NodeEnv:       v.GetString(KeyNodeEnv),
		StaticDir:     v.GetString(KeyStaticDir),
		LogLevel:      v.GetString(KeyLogLevel),
		DiscoveryURL:  v.GetString(KeyDiscoveryURL),
		Links: ServiceLinks{
			OpenShift: v.GetString(KeyOpenShiftURL),
			Fuse:      v.GetString(KeyFuseURL),
			Enmasse:   v.GetString(KeyEnmasseURL),
			Launcher:  v.GetString(KeyLauncherURL),
			Che:       v.GetString(KeyCheURL),
		},
	}
}
