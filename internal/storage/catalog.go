package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"print-personalizer/internal/models"
	"print-personalizer/internal/pricing"

	"github.com/jmoiron/sqlx"
)

// GetProduct reads a product through the cache. A missing product is
// reported as pricing.ErrProductNotFound.
func (s *PostgresStorage) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	const operation = "storage.GetProduct"

	var product models.Product
	if s.cached(ctx, productKey(id), &product) {
		return &product, nil
	}

	const query = `
		SELECT id, name, base_price, is_personalizable
		FROM products
		WHERE id = $1
	`
	if err := s.db.GetContext(ctx, &product, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %s: %w", operation, id, pricing.ErrProductNotFound)
		}
		return nil, fmt.Errorf("%s: failed to get product: %w", operation, err)
	}

	s.store(ctx, productKey(id), product)
	return &product, nil
}

// GetActivePricingRules loads the active rules of a product with their items
// and discount tiers. Rules, items and tiers come back in creation order.
func (s *PostgresStorage) GetActivePricingRules(ctx context.Context, productID string) ([]models.PricingRule, error) {
	const operation = "storage.GetActivePricingRules"

	var rules []models.PricingRule
	if s.cached(ctx, pricingRulesKey(productID), &rules) {
		return rules, nil
	}

	const rulesQuery = `
		SELECT id, product_id, name, description, is_active, created_at
		FROM personalization_pricing_rules
		WHERE product_id = $1 AND is_active = TRUE
		ORDER BY created_at, id
	`
	if err := s.db.SelectContext(ctx, &rules, rulesQuery, productID); err != nil {
		return nil, fmt.Errorf("%s: failed to get rules: %w", operation, err)
	}
	if len(rules) == 0 {
		s.store(ctx, pricingRulesKey(productID), []models.PricingRule{})
		return []models.PricingRule{}, nil
	}

	ids := make([]string, len(rules))
	index := make(map[string]int, len(rules))
	for i, r := range rules {
		ids[i] = r.ID
		index[r.ID] = i
	}

	var items []models.RuleItem
	if err := s.selectIn(ctx, &items, `
		SELECT id, pricing_rule_id, type, side_id, print_area_id, price
		FROM pricing_rule_items
		WHERE pricing_rule_id IN (?)
		ORDER BY created_at, id
	`, ids); err != nil {
		return nil, fmt.Errorf("%s: failed to get rule items: %w", operation, err)
	}

	var tiers []models.QuantityDiscount
	if err := s.selectIn(ctx, &tiers, `
		SELECT id, pricing_rule_id, min_quantity, discount_type, discount_value
		FROM quantity_discounts
		WHERE pricing_rule_id IN (?)
		ORDER BY created_at, id
	`, ids); err != nil {
		return nil, fmt.Errorf("%s: failed to get quantity discounts: %w", operation, err)
	}

	for _, item := range items {
		i := index[item.PricingRuleID]
		rules[i].Items = append(rules[i].Items, item)
	}
	for _, t := range tiers {
		i := index[t.PricingRuleID]
		rules[i].QuantityDiscounts = append(rules[i].QuantityDiscounts, t)
	}

	s.store(ctx, pricingRulesKey(productID), rules)
	return rules, nil
}

func (s *PostgresStorage) selectIn(ctx context.Context, dst any, query string, args ...any) error {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return fmt.Errorf("expand query: %w", err)
	}
	return s.db.SelectContext(ctx, dst, s.db.Rebind(query), args...)
}
