// Package handlers provides HTTP handlers for the config server
package handlers

import (
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bear-san/openshift-config-server/internal/config"
	"github.com/bear-san/openshift-config-server/internal/metrics"
	"github.com/bear-san/openshift-config-server/pkg/discovery"
)

// EntryDocument is served for every path the static bundle does not contain.
const EntryDocument = "index.html"

const javascriptContentType = "application/javascript; charset=utf-8"

type Handler struct {
	config  *config.Config
	issuer  discovery.IssuerHost
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewHandler(cfg *config.Config, issuer discovery.IssuerHost, logger *zap.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		config:  cfg,
		issuer:  issuer,
		logger:  logger,
		metrics: m,
	}
}

// GetConfigJS serves the front-end configuration script.
func (h *Handler) GetConfigJS(c *gin.Context) {
	issuerHost, ok := h.issuer.Get()
	if !ok {
		h.logger.Warn("OPENSHIFT_HOST not set, using service URLs from env vars")

		body, err := RenderMockConfig(h.config.Links)
		if err != nil {
			_ = c.AbortWithError(http.StatusInternalServerError, err)
			return
		}

		h.metrics.ObserveConfigRequest(metrics.ModeMock)
		c.Data(http.StatusOK, javascriptContentType, []byte(body))

		return
	}

	oauthConfig := OAuthConfig(issuerHost, h.config.OAuthClientID, RedirectHost(c.Request))

	body, err := RenderLiveConfig(oauthConfig, MasterURI(issuerHost))
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	h.metrics.ObserveConfigRequest(metrics.ModeLive)
	c.Data(http.StatusOK, javascriptContentType, []byte(body))
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// ServeStatic serves files from the static bundle and falls back to the
// entry document so the front-end can handle its own routes.
func (h *Handler) ServeStatic(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	name := filepath.Join(h.config.StaticDir, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))

	info, err := os.Stat(name)
	switch {
	case err == nil && !info.IsDir():
		h.serveFile(c, name)
	case err == nil && fileExists(filepath.Join(name, EntryDocument)):
		h.serveFile(c, filepath.Join(name, EntryDocument))
	default:
		h.serveFile(c, h.EntryDocumentPath())
	}
}

// EntryDocumentPath returns the location of the entry document on disk.
func (h *Handler) EntryDocumentPath() string {
	return filepath.Join(h.config.StaticDir, EntryDocument)
}

func (h *Handler) serveFile(c *gin.Context, name string) {
	f, err := os.Open(name) //nolint:gosec // path is cleaned and rooted at the static directory
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, os.ErrNotExist) {
			status = http.StatusNotFound
		}

		_ = c.AbortWithError(status, err)

		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

func fileExists(name string) bool {
	info, err := os.Stat(name)
	return err == nil && !info.IsDir()
}
