package handlers

import (
	"context"
	"net/http"

	"print-personalizer/internal/coords"
	"print-personalizer/internal/design"
	"print-personalizer/internal/pricing"
	"print-personalizer/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PlacementStore loads a print area with the image of its side.
type PlacementStore interface {
	GetPrintAreaPlacement(ctx context.Context, areaID string) (*storage.PrintAreaPlacement, error)
}

// DimensionSource measures reference images; it never fails.
type DimensionSource interface {
	Load(ctx context.Context, ref string) coords.Dimensions
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Handler holds the services behind the HTTP API.
type Handler struct {
	engine *pricing.Engine
	scorer *design.Scorer
	areas  PlacementStore
	images DimensionSource
	checks map[string]HealthCheck
	logger *zap.Logger
}

type Deps struct {
	Engine *pricing.Engine
	Scorer *design.Scorer
	Areas  PlacementStore
	Images DimensionSource
	Checks map[string]HealthCheck
	Logger *zap.Logger
}

// New returns a new Handler instance.
func New(d Deps) *Handler {
	return &Handler{
		engine: d.Engine,
		scorer: d.Scorer,
		areas:  d.Areas,
		images: d.Images,
		checks: d.Checks,
		logger: d.Logger,
	}
}

// Health pings every registered dependency.
func (h *Handler) Health(c *gin.Context) {
	failed := gin.H{}
	for name, check := range h.checks {
		if err := check(c.Request.Context()); err != nil {
			h.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "failed": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg,
		zap.Error(err),
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString(requestIDKey)))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
