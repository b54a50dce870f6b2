// Package handlers implements the HTTP routes that serve subtitles and run transcripts.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amaumene/gosubfetch/internal/config"
	"github.com/amaumene/gosubfetch/internal/pipeline"
	"github.com/amaumene/gosubfetch/pkg/logger"
	"github.com/amaumene/gosubfetch/pkg/security"
)

// Producer runs the subtitle pipeline for a release path.
type Producer interface {
	Produce(ctx context.Context, releasePath string) (*pipeline.Outcome, error)
}

// Handler handles HTTP requests for subtitles and their transcripts.
type Handler struct {
	producer  Producer
	config    *config.Config
	logger    logger.Logger
	metrics   http.Handler
	validator *security.NameValidator
}

// New creates a new Handler. A nil metrics handler serves the default registry.
func New(producer Producer, cfg *config.Config, metricsHandler http.Handler, log logger.Logger) *Handler {
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	if log == nil {
		log = logger.New()
	}
	return &Handler{
		producer:  producer,
		config:    cfg,
		logger:    log,
		metrics:   metricsHandler,
		validator: security.NewNameValidator(),
	}
}

// RegisterRoutes registers the subtitle, transcript, metrics and static routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/release/*name", h.handleRelease)
	r.GET("/log/*name", h.handleLog)
	r.GET("/metrics", gin.WrapH(h.metrics))

	// Everything else comes from the static directory
	static := http.FileServer(gin.Dir(h.config.StaticDir, false))
	r.NoRoute(gin.WrapH(static))
}
