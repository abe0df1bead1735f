package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"print-personalizer/internal/models"

	"go.uber.org/zap"
)

// ErrProductNotFound is the one pricing failure that is reported to the
// caller instead of degraded.
var ErrProductNotFound = errors.New("product not found")

// Store is the read side of the catalog the engine prices against.
type Store interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	// GetActivePricingRules returns active rules with their items and
	// discount tiers, in a stable order.
	GetActivePricingRules(ctx context.Context, productID string) ([]models.PricingRule, error)
}

type Request struct {
	ProductID string   `json:"productId" binding:"required"`
	Quantity  int      `json:"quantity"`
	Sides     []string `json:"sides"`
	Areas     []string `json:"areas"`
}

type Engine struct {
	store  Store
	logger *zap.Logger
}

func NewEngine(store Store, logger *zap.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// CalculatePersonalizationPrice prices a product for the selected sides and
// print areas. Discounts are taken per unit against each rule's own
// subtotal, then the unit price is multiplied by the quantity.
func (e *Engine) CalculatePersonalizationPrice(ctx context.Context, req Request) (*models.PricingBreakdown, error) {
	const operation = "pricing.CalculatePersonalizationPrice"

	quantity := max(req.Quantity, 1)

	product, err := e.store.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	rules, err := e.store.GetActivePricingRules(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%s: load rules: %w", operation, err)
	}

	sides := toSet(req.Sides)
	areas := toSet(req.Areas)

	result := &models.PricingBreakdown{
		BasePrice: product.BasePrice,
		Breakdown: []models.BreakdownItem{{
			Description: product.Name,
			Amount:      product.BasePrice,
			Type:        models.BreakdownBase,
		}},
	}

	for _, rule := range rules {
		var subtotal float64
		applied := false

		for _, item := range rule.Items {
			if !itemSelected(item, sides, areas) {
				continue
			}
			subtotal += item.Price
			applied = true
			result.Breakdown = append(result.Breakdown, models.BreakdownItem{
				Description: ruleLabel(rule),
				Amount:      item.Price,
				Type:        models.BreakdownPersonalization,
			})
		}
		result.PersonalizationPrice += subtotal

		if !applied || quantity <= 1 {
			continue
		}

		tier, ok := SelectTier(rule.QuantityDiscounts, quantity)
		if !ok {
			continue
		}

		discount := DiscountAmount(tier, subtotal)
		if discount == 0 {
			continue
		}
		result.Breakdown = append(result.Breakdown, models.BreakdownItem{
			Description: fmt.Sprintf("Quantity discount (%d+ units)", tier.MinQuantity),
			Amount:      -discount,
			Type:        models.BreakdownDiscount,
		})
		result.PersonalizationPrice -= discount
		result.QuantityDiscount += discount
	}

	result.FinalPrice = roundCents((result.BasePrice + result.PersonalizationPrice) * float64(quantity))

	e.logger.Debug("personalization priced",
		zap.String("product_id", req.ProductID),
		zap.Int("quantity", quantity),
		zap.Int("rules", len(rules)),
		zap.Float64("final_price", result.FinalPrice),
	)

	return result, nil
}

// SelectTier returns the tier with the highest MinQuantity not above
// quantity. Tiers sharing a MinQuantity resolve to the first one defined.
func SelectTier(tiers []models.QuantityDiscount, quantity int) (models.QuantityDiscount, bool) {
	sorted := make([]models.QuantityDiscount, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinQuantity > sorted[j].MinQuantity
	})

	for _, t := range sorted {
		if quantity >= t.MinQuantity {
			return t, true
		}
	}
	return models.QuantityDiscount{}, false
}

// DiscountAmount is the positive amount a tier takes off subtotal, never
// more than the subtotal itself.
func DiscountAmount(tier models.QuantityDiscount, subtotal float64) float64 {
	if subtotal <= 0 {
		return 0
	}

	var amount float64
	switch tier.DiscountType {
	case models.DiscountTypePercentage:
		amount = subtotal * tier.DiscountValue / 100
	case models.DiscountTypeFixed:
		amount = tier.DiscountValue
	}
	return math.Min(math.Max(amount, 0), subtotal)
}

func itemSelected(item models.RuleItem, sides, areas map[string]struct{}) bool {
	switch item.Type {
	case models.RuleScopeSide:
		return contains(sides, item.SideID)
	case models.RuleScopeArea:
		return contains(areas, item.PrintAreaID)
	}
	return false
}

func contains(set map[string]struct{}, id *string) bool {
	if id == nil {
		return false
	}
	_, ok := set[*id]
	return ok
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func ruleLabel(r models.PricingRule) string {
	if r.Description != "" {
		return r.Description
	}
	return r.Name
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
