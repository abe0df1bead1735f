package pricing

import (
	"context"
	"fmt"
	"sort"

	"print-personalizer/internal/models"
)

// ProductPricingRules lists the active rules of a product with each rule's
// discount tiers in ascending MinQuantity order.
func (e *Engine) ProductPricingRules(ctx context.Context, productID string) ([]models.PricingRule, error) {
	const operation = "pricing.ProductPricingRules"

	rules, err := e.store.GetActivePricingRules(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	out := make([]models.PricingRule, len(rules))
	for i, r := range rules {
		tiers := make([]models.QuantityDiscount, len(r.QuantityDiscounts))
		copy(tiers, r.QuantityDiscounts)
		sortAscending(tiers)
		r.QuantityDiscounts = tiers
		out[i] = r
	}
	return out, nil
}

// TierSummary is a discount tier as shown to customers, with the rule it
// came from.
type TierSummary struct {
	models.QuantityDiscount
	RuleName        string `json:"ruleName"`
	RuleDescription string `json:"ruleDescription"`
}

// QuantityDiscounts merges the tiers of every active rule: one tier per
// MinQuantity, keeping the largest DiscountValue, ascending.
func (e *Engine) QuantityDiscounts(ctx context.Context, productID string) ([]TierSummary, error) {
	const operation = "pricing.QuantityDiscounts"

	rules, err := e.store.GetActivePricingRules(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	byMin := make(map[int]int)
	var merged []TierSummary
	for _, r := range rules {
		for _, t := range r.QuantityDiscounts {
			s := TierSummary{QuantityDiscount: t, RuleName: r.Name, RuleDescription: r.Description}
			idx, seen := byMin[t.MinQuantity]
			switch {
			case !seen:
				byMin[t.MinQuantity] = len(merged)
				merged = append(merged, s)
			case t.DiscountValue > merged[idx].DiscountValue:
				merged[idx] = s
			}
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].MinQuantity < merged[j].MinQuantity
	})
	return merged, nil
}

func sortAscending(tiers []models.QuantityDiscount) {
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MinQuantity < tiers[j].MinQuantity
	})
}
