package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires every route. limiter may be nil.
func NewRouter(h *Handler, limiter RateLimiter, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(AccessLog(logger))
	r.Use(Recovery(logger))

	r.GET("/health", h.Health)

	api := r.Group("/api")
	if limiter != nil {
		api.Use(RateLimit(limiter, logger))
	}
	{
		coordinates := api.Group("/coordinates")
		coordinates.POST("/to-relative", h.ToRelative)
		coordinates.POST("/to-absolute", h.ToAbsolute)
		coordinates.POST("/scale", h.Scale)
		coordinates.POST("/normalize", h.Normalize)
		coordinates.POST("/fit", h.Fit)

		api.GET("/print-areas/:id/placement", h.Placement)

		pricing := api.Group("/pricing")
		pricing.POST("/design", h.DesignPrice)
		pricing.POST("/design/total", h.DesignTotal)
		pricing.POST("/personalization", h.PersonalizationPrice)
		pricing.POST("/personalization/export", h.ExportQuote)

		api.GET("/products/:id/pricing-rules", h.ProductPricingRules)
		api.GET("/products/:id/quantity-discounts", h.QuantityDiscounts)
	}

	return r
}
