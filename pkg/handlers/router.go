package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bear-san/openshift-config-server/internal/logging"
	"github.com/bear-san/openshift-config-server/internal/metrics"
)

// NewRouter wires the handler's routes. Static serving is registered only in
// production mode.
func NewRouter(h *Handler, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(logging.RequestLogger(logger))
	router.Use(gin.Recovery())

	router.GET("/config.js", h.GetConfigJS)
	router.GET("/health", h.GetHealth)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	if h.config.Production() {
		router.NoRoute(h.ServeStatic)
	}

	return router
}
