package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"print-personalizer/internal/models"

	"go.uber.org/zap"
)

type fakeStore struct {
	products map[string]models.Product
	rules    map[string][]models.PricingRule
	rulesErr error
}

func (s *fakeStore) GetProduct(_ context.Context, id string) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("storage.GetProduct: %s: %w", id, ErrProductNotFound)
	}
	return &p, nil
}

func (s *fakeStore) GetActivePricingRules(_ context.Context, productID string) ([]models.PricingRule, error) {
	if s.rulesErr != nil {
		return nil, s.rulesErr
	}
	return s.rules[productID], nil
}

func ptr(s string) *string { return &s }

func sideItem(sideID string, price float64) models.RuleItem {
	return models.RuleItem{Type: models.RuleScopeSide, SideID: ptr(sideID), Price: price}
}

func areaItem(areaID string, price float64) models.RuleItem {
	return models.RuleItem{Type: models.RuleScopeArea, PrintAreaID: ptr(areaID), Price: price}
}

func tier(min int, kind models.DiscountType, value float64) models.QuantityDiscount {
	return models.QuantityDiscount{MinQuantity: min, DiscountType: kind, DiscountValue: value}
}

func newEngine(rules ...models.PricingRule) *Engine {
	store := &fakeStore{
		products: map[string]models.Product{"tee": {ID: "tee", Name: "Basic tee", BasePrice: 20}},
		rules:    map[string][]models.PricingRule{"tee": rules},
	}
	return NewEngine(store, zap.NewNop())
}

func countType(b *models.PricingBreakdown, typ models.BreakdownType) int {
	n := 0
	for _, item := range b.Breakdown {
		if item.Type == typ {
			n++
		}
	}
	return n
}

func TestCalculatePersonalizationPriceSingleSide(t *testing.T) {
	engine := newEngine(models.PricingRule{
		Name:  "front print",
		Items: []models.RuleItem{sideItem("front", 5)},
	})

	got, err := engine.CalculatePersonalizationPrice(context.Background(), Request{
		ProductID: "tee", Quantity: 3, Sides: []string{"front"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.FinalPrice != 75 {
		t.Errorf("FinalPrice = %.2f, want 75", got.FinalPrice)
	}
	if got.BasePrice != 20 || got.PersonalizationPrice != 5 || got.QuantityDiscount != 0 {
		t.Errorf("breakdown totals = %+v", got)
	}
	if len(got.Breakdown) != 2 {
		t.Fatalf("got %d breakdown lines, want 2", len(got.Breakdown))
	}
	if got.Breakdown[0].Type != models.BreakdownBase || got.Breakdown[0].Description != "Basic tee" {
		t.Errorf("first line = %+v, want base line", got.Breakdown[0])
	}
	if got.Breakdown[1].Description != "front print" {
		t.Errorf("personalization line falls back to rule name, got %q", got.Breakdown[1].Description)
	}
	if n := countType(got, models.BreakdownDiscount); n != 0 {
		t.Errorf("got %d discount lines, want 0", n)
	}
}

func TestCalculatePersonalizationPriceWithTier(t *testing.T) {
	engine := newEngine(models.PricingRule{
		Description: "Front print",
		Items:       []models.RuleItem{sideItem("front", 5)},
		QuantityDiscounts: []models.QuantityDiscount{
			tier(2, models.DiscountTypePercentage, 10),
			tier(3, models.DiscountTypeFixed, 1),
			tier(10, models.DiscountTypePercentage, 50),
		},
	})

	got, err := engine.CalculatePersonalizationPrice(context.Background(), Request{
		ProductID: "tee", Quantity: 3, Sides: []string{"front"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// (20 + 5 - 1) * 3
	if got.FinalPrice != 72 {
		t.Errorf("FinalPrice = %.2f, want 72", got.FinalPrice)
	}
	if got.QuantityDiscount != 1 {
		t.Errorf("QuantityDiscount = %.2f, want 1", got.QuantityDiscount)
	}
	if n := countType(got, models.BreakdownDiscount); n != 1 {
		t.Fatalf("got %d discount lines, want 1", n)
	}
	last := got.Breakdown[len(got.Breakdown)-1]
	if last.Amount != -1 || last.Description != "Quantity discount (3+ units)" {
		t.Errorf("discount line = %+v", last)
	}
}

func TestCalculatePersonalizationPricePercentageUsesRuleSubtotal(t *testing.T) {
	engine := newEngine(
		models.PricingRule{Name: "sides", Items: []models.RuleItem{sideItem("front", 5)}},
		models.PricingRule{
			Name:              "logo",
			Items:             []models.RuleItem{areaItem("chest", 10)},
			QuantityDiscounts: []models.QuantityDiscount{tier(2, models.DiscountTypePercentage, 10)},
		},
	)

	got, err := engine.CalculatePersonalizationPrice(context.Background(), Request{
		ProductID: "tee", Quantity: 2, Sides: []string{"front"}, Areas: []string{"chest"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.QuantityDiscount != 1 {
		t.Errorf("QuantityDiscount = %.2f, want 1 (10%% of the logo rule only)", got.QuantityDiscount)
	}
	if got.PersonalizationPrice != 14 {
		t.Errorf("PersonalizationPrice = %.2f, want 14", got.PersonalizationPrice)
	}
	if got.FinalPrice != 68 {
		t.Errorf("FinalPrice = %.2f, want 68", got.FinalPrice)
	}

	wantTypes := []models.BreakdownType{
		models.BreakdownBase, models.BreakdownPersonalization,
		models.BreakdownPersonalization, models.BreakdownDiscount,
	}
	if len(got.Breakdown) != len(wantTypes) {
		t.Fatalf("got %d lines, want %d", len(got.Breakdown), len(wantTypes))
	}
	for i, typ := range wantTypes {
		if got.Breakdown[i].Type != typ {
			t.Errorf("line %d type = %s, want %s", i, got.Breakdown[i].Type, typ)
		}
	}
}

func TestCalculatePersonalizationPriceNoDiscountCases(t *testing.T) {
	rule := models.PricingRule{
		Name:              "front",
		Items:             []models.RuleItem{sideItem("front", 5)},
		QuantityDiscounts: []models.QuantityDiscount{tier(1, models.DiscountTypePercentage, 20)},
	}

	tests := []struct {
		name      string
		req       Request
		wantFinal float64
	}{
		{"single unit", Request{ProductID: "tee", Quantity: 1, Sides: []string{"front"}}, 25},
		{"zero quantity counts as one", Request{ProductID: "tee", Quantity: 0, Sides: []string{"front"}}, 25},
		{"unselected side", Request{ProductID: "tee", Quantity: 4, Sides: []string{"back"}}, 80},
		{"area id does not match side item", Request{ProductID: "tee", Quantity: 4, Areas: []string{"front"}}, 80},
		{"empty selection", Request{ProductID: "tee", Quantity: 2}, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newEngine(rule).CalculatePersonalizationPrice(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.FinalPrice != tt.wantFinal {
				t.Errorf("FinalPrice = %.2f, want %.2f", got.FinalPrice, tt.wantFinal)
			}
			if got.QuantityDiscount != 0 {
				t.Errorf("QuantityDiscount = %.2f, want 0", got.QuantityDiscount)
			}
		})
	}
}

func TestCalculatePersonalizationPriceFixedDiscountCapped(t *testing.T) {
	engine := newEngine(models.PricingRule{
		Name:              "front",
		Items:             []models.RuleItem{sideItem("front", 5)},
		QuantityDiscounts: []models.QuantityDiscount{tier(2, models.DiscountTypeFixed, 8)},
	})

	got, err := engine.CalculatePersonalizationPrice(context.Background(), Request{
		ProductID: "tee", Quantity: 2, Sides: []string{"front"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PersonalizationPrice != 0 || got.QuantityDiscount != 5 {
		t.Errorf("got personalization %.2f discount %.2f, want 0 and 5", got.PersonalizationPrice, got.QuantityDiscount)
	}
	if got.FinalPrice != 40 {
		t.Errorf("FinalPrice = %.2f, want 40", got.FinalPrice)
	}
}

func TestCalculatePersonalizationPriceNotFound(t *testing.T) {
	_, err := newEngine().CalculatePersonalizationPrice(context.Background(), Request{ProductID: "missing", Quantity: 1})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

func TestCalculatePersonalizationPriceStoreError(t *testing.T) {
	boom := errors.New("connection reset")
	engine := NewEngine(&fakeStore{
		products: map[string]models.Product{"tee": {ID: "tee", BasePrice: 20}},
		rulesErr: boom,
	}, zap.NewNop())

	_, err := engine.CalculatePersonalizationPrice(context.Background(), Request{ProductID: "tee", Quantity: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped store error", err)
	}
	if errors.Is(err, ErrProductNotFound) {
		t.Error("store failure must not look like NotFound")
	}
}

func TestSelectTier(t *testing.T) {
	tiers := []models.QuantityDiscount{
		{ID: "a", MinQuantity: 5, DiscountType: models.DiscountTypePercentage, DiscountValue: 10},
		{ID: "b", MinQuantity: 20, DiscountType: models.DiscountTypePercentage, DiscountValue: 25},
		{ID: "c", MinQuantity: 5, DiscountType: models.DiscountTypePercentage, DiscountValue: 50},
	}

	tests := []struct {
		quantity int
		wantID   string
		wantOK   bool
	}{
		{4, "", false},
		{5, "a", true},
		{19, "a", true},
		{20, "b", true},
		{500, "b", true},
	}

	for _, tt := range tests {
		got, ok := SelectTier(tiers, tt.quantity)
		if ok != tt.wantOK || got.ID != tt.wantID {
			t.Errorf("SelectTier(%d) = %q,%v want %q,%v", tt.quantity, got.ID, ok, tt.wantID, tt.wantOK)
		}
	}

	if tiers[0].ID != "a" || tiers[1].ID != "b" {
		t.Error("SelectTier reordered its input")
	}
}

func TestDiscountAmount(t *testing.T) {
	tests := []struct {
		name     string
		tier     models.QuantityDiscount
		subtotal float64
		want     float64
	}{
		{"percentage", tier(1, models.DiscountTypePercentage, 15), 20, 3},
		{"fixed", tier(1, models.DiscountTypeFixed, 2.5), 20, 2.5},
		{"fixed capped", tier(1, models.DiscountTypeFixed, 30), 20, 20},
		{"over 100 percent capped", tier(1, models.DiscountTypePercentage, 150), 20, 20},
		{"negative value ignored", tier(1, models.DiscountTypeFixed, -4), 20, 0},
		{"unknown type", tier(1, "BOGO", 5), 20, 0},
		{"nothing to discount", tier(1, models.DiscountTypeFixed, 5), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DiscountAmount(tt.tier, tt.subtotal); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DiscountAmount = %.4f, want %.4f", got, tt.want)
			}
		})
	}
}
