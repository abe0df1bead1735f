package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"print-personalizer/internal/models"
	"print-personalizer/internal/pricing"
	"print-personalizer/internal/quote"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type designPriceRequest struct {
	Design   json.RawMessage `json:"design"`
	Quantity int             `json:"quantity"`
	Category string          `json:"category"`
}

// DesignPrice scores a design payload. Unreadable designs price at zero;
// only a malformed request envelope is rejected.
func (h *Handler) DesignPrice(c *gin.Context) {
	var req designPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, h.scorer.Price(req.Design, req.Quantity, req.Category))
}

type designTotalRequest struct {
	BasePrice float64         `json:"basePrice"`
	Design    json.RawMessage `json:"design"`
	Quantity  int             `json:"quantity"`
	Category  string          `json:"category"`
}

func (h *Handler) DesignTotal(c *gin.Context) {
	var req designTotalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.BasePrice < 0 {
		badRequest(c, "basePrice must not be negative")
		return
	}
	c.JSON(http.StatusOK, h.scorer.Total(req.BasePrice, req.Design, req.Quantity, req.Category))
}

type personalizationResponse struct {
	*models.PricingBreakdown
	FormattedFinalPrice string `json:"formattedFinalPrice"`
}

func (h *Handler) PersonalizationPrice(c *gin.Context) {
	_, breakdown, ok := h.personalize(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, personalizationResponse{
		PricingBreakdown:    breakdown,
		FormattedFinalPrice: pricing.FormatPrice(breakdown.FinalPrice),
	})
}

// ExportQuote prices the request like PersonalizationPrice and returns the
// result as an xlsx download.
func (h *Handler) ExportQuote(c *gin.Context) {
	req, breakdown, ok := h.personalize(c)
	if !ok {
		return
	}

	q := quote.Quote{
		ProductID:   req.ProductID,
		Quantity:    max(req.Quantity, 1),
		Sides:       req.Sides,
		Areas:       req.Areas,
		Breakdown:   breakdown,
		GeneratedAt: time.Now(),
	}

	var buf bytes.Buffer
	if err := quote.Write(&buf, q); err != nil {
		h.internalError(c, "failed to write quote", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, q.Filename()))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handler) personalize(c *gin.Context) (pricing.Request, *models.PricingBreakdown, bool) {
	var req pricing.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return req, nil, false
	}

	breakdown, err := h.engine.CalculatePersonalizationPrice(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, pricing.ErrProductNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return req, nil, false
		}
		h.internalError(c, "failed to calculate personalization price", err)
		return req, nil, false
	}
	return req, breakdown, true
}

func (h *Handler) ProductPricingRules(c *gin.Context) {
	rules, err := h.engine.ProductPricingRules(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.internalError(c, "failed to load pricing rules", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

func (h *Handler) QuantityDiscounts(c *gin.Context) {
	tiers, err := h.engine.QuantityDiscounts(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.internalError(c, "failed to load quantity discounts", err)
		return
	}
	if tiers == nil {
		tiers = []pricing.TierSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"discounts": tiers})
}
