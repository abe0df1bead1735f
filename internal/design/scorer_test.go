package design

import (
	"math"
	"testing"

	"go.uber.org/zap"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func sampleDesign() Design {
	return Design{Elements: []Element{
		{ID: "t1", Type: "text"},
		{ID: "t2", Type: "i-text"},
		{ID: "i1", Type: "image", Src: "/uploads/logo.png"},
	}}
}

func TestCalculateDesignPriceScenarios(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		wantPrice float64
		wantDisc  float64
	}{
		{"single unit", 1, 10.00, 0},
		{"below first tier", 4, 10.00, 0},
		{"mid tier", 5, 9.20, -0.80},
		{"mid tier upper bound", 9, 9.20, -0.80},
		{"bulk tier", 10, 8.50, -1.50},
		{"bulk tier large order", 250, 8.50, -1.50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CalculateDesignPrice(sampleDesign(), tt.quantity, DefaultRules())
			if !almostEqual(res.CustomPrice, tt.wantPrice) {
				t.Errorf("CustomPrice = %.4f, want %.2f", res.CustomPrice, tt.wantPrice)
			}
			if math.Abs(res.Breakdown.QuantityDiscount-tt.wantDisc) > 1e-6 {
				t.Errorf("QuantityDiscount = %.4f, want %.2f", res.Breakdown.QuantityDiscount, tt.wantDisc)
			}
			if res.ComplexityScore != 40 {
				t.Errorf("ComplexityScore = %d, want 40", res.ComplexityScore)
			}
		})
	}
}

func TestCalculateDesignPriceColorComplexity(t *testing.T) {
	d := Design{Elements: []Element{
		{Type: "text", Fill: "#ff0000"},
		{Type: "text", Fill: "#0000ff", Stroke: "#00ff00"},
		{Type: "text", Color: "#000000", Fill: "#ff0000"},
	}}

	res := CalculateDesignPrice(d, 1, DefaultRules())

	// 3 texts = 7.50, 4 colors -> 7.50 * 0.15 * 2 = 2.25
	if !almostEqual(res.Breakdown.ColorComplexity, 2.25) {
		t.Errorf("ColorComplexity = %.4f, want 2.25", res.Breakdown.ColorComplexity)
	}
	if !almostEqual(res.CustomPrice, 9.75) {
		t.Errorf("CustomPrice = %.4f, want 9.75", res.CustomPrice)
	}
	if res.Stats.DistinctColors != 4 {
		t.Errorf("DistinctColors = %d, want 4", res.Stats.DistinctColors)
	}
	if res.ComplexityScore != 50 {
		t.Errorf("ComplexityScore = %d, want 50", res.ComplexityScore)
	}
}

func TestCalculateDesignPriceTwoColorsAreFree(t *testing.T) {
	d := Design{Elements: []Element{
		{Type: "rect", Fill: "#fff", Stroke: "#000"},
		{Type: "circle", Fill: "#fff"},
	}}

	res := CalculateDesignPrice(d, 1, DefaultRules())
	if res.Breakdown.ColorComplexity != 0 {
		t.Errorf("ColorComplexity = %.4f, want 0", res.Breakdown.ColorComplexity)
	}
	if !almostEqual(res.CustomPrice, 3.50) {
		t.Errorf("CustomPrice = %.4f, want 3.50", res.CustomPrice)
	}
}

func TestCalculateDesignPriceSpecialEffects(t *testing.T) {
	half, opaque := 0.5, 1.0
	tests := []struct {
		name        string
		elements    []Element
		wantPrice   float64
		wantEffects bool
	}{
		{"shadow", []Element{{Type: "rect", Shadow: true}}, 4.75, true},
		{"partial opacity", []Element{{Type: "rect", Opacity: &half}}, 4.75, true},
		{"full opacity", []Element{{Type: "rect", Opacity: &opaque}}, 1.75, false},
		{
			"priced once for many elements",
			[]Element{{Type: "rect", Blend: true}, {Type: "rect", Filters: true}},
			6.50, true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CalculateDesignPrice(Design{Elements: tt.elements}, 1, DefaultRules())
			if !almostEqual(res.CustomPrice, tt.wantPrice) {
				t.Errorf("CustomPrice = %.4f, want %.2f", res.CustomPrice, tt.wantPrice)
			}
			if res.Stats.HasEffects != tt.wantEffects {
				t.Errorf("HasEffects = %v, want %v", res.Stats.HasEffects, tt.wantEffects)
			}
		})
	}
}

func TestCalculateDesignPriceSizeMultiplier(t *testing.T) {
	rules := DefaultRules()
	rules.SizeMultiplier = 1.5

	res := CalculateDesignPrice(Design{Elements: []Element{{Type: "image"}}}, 1, rules)
	if !almostEqual(res.Breakdown.SizeMultiplier, 2.50) {
		t.Errorf("SizeMultiplier = %.4f, want 2.50", res.Breakdown.SizeMultiplier)
	}
	if !almostEqual(res.CustomPrice, 7.50) {
		t.Errorf("CustomPrice = %.4f, want 7.50", res.CustomPrice)
	}
}

func TestCalculateDesignPriceClassification(t *testing.T) {
	d := Design{Elements: []Element{
		{Type: "textbox"},
		{Type: "img"},
		{Type: "sticker", Src: "data:image/png;base64,AAAA"},
		{Type: "polygon"},
		{Type: "path"},
		{Type: "clipart"},
	}}

	stats := Analyze(d)
	if stats.Texts != 1 || stats.Images != 2 || stats.Shapes != 2 {
		t.Errorf("Analyze = %+v, want 1 text, 2 images, 2 shapes", stats)
	}
}

func TestCalculateDesignPriceEmptyAndFloor(t *testing.T) {
	res := CalculateDesignPrice(Design{}, 1, DefaultRules())
	if res.CustomPrice != 0 || res.ComplexityScore != 0 {
		t.Errorf("empty design = %+v, want zero", res)
	}

	rules := DefaultRules()
	rules.BaseComplexity = -20
	res = CalculateDesignPrice(sampleDesign(), 1, rules)
	if res.CustomPrice != 0 {
		t.Errorf("CustomPrice = %.2f, want floor at 0", res.CustomPrice)
	}
}

func TestComplexityScoreIsCapped(t *testing.T) {
	var d Design
	for i := 0; i < 6; i++ {
		d.Elements = append(d.Elements, Element{Type: "image"})
	}
	if got := CalculateDesignPrice(d, 1, DefaultRules()).ComplexityScore; got != 100 {
		t.Errorf("ComplexityScore = %d, want 100", got)
	}
}

func TestCategoryOverrides(t *testing.T) {
	tests := []struct {
		slug      string
		wantText  float64
		wantBase  float64
		wantColor float64
	}{
		{"textil", 3.00, 0, 0.15},
		{"Textile", 3.00, 0, 0.15},
		{"sublimacion", 2.00, 0, 0.10},
		{"laser-engraving", 2.50, 0, 0.05},
		{"premium", 4.00, 5.00, 0.15},
		{"unknown", 2.50, 0, 0.15},
		{"", 2.50, 0, 0.15},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			r := RulesForCategory(DefaultRules(), tt.slug)
			if r.TextElementPrice != tt.wantText {
				t.Errorf("TextElementPrice = %.2f, want %.2f", r.TextElementPrice, tt.wantText)
			}
			if r.BaseComplexity != tt.wantBase {
				t.Errorf("BaseComplexity = %.2f, want %.2f", r.BaseComplexity, tt.wantBase)
			}
			if r.ColorComplexityMultiplier != tt.wantColor {
				t.Errorf("ColorComplexityMultiplier = %.2f, want %.2f", r.ColorComplexityMultiplier, tt.wantColor)
			}
		})
	}
}

func TestCategoryOverridesKeepUnsetFields(t *testing.T) {
	r := RulesForCategory(DefaultRules(), "laser")
	if r.TextElementPrice != 2.50 || r.ImageElementPrice != 5.00 || r.SizeMultiplier != 1 {
		t.Errorf("laser rules changed unrelated prices: %+v", r)
	}
}

func TestCalculateTotalDesignPrice(t *testing.T) {
	res := CalculateTotalDesignPrice(12, sampleDesign(), 10, "", DefaultRules())

	if !almostEqual(res.BasePrice, 120) {
		t.Errorf("BasePrice = %.2f, want 120", res.BasePrice)
	}
	if !almostEqual(res.CustomPrice, 8.50) {
		t.Errorf("CustomPrice = %.2f, want 8.50", res.CustomPrice)
	}
	if !almostEqual(res.TotalPrice, 128.50) {
		t.Errorf("TotalPrice = %.2f, want 128.50", res.TotalPrice)
	}
	if math.Abs(res.Savings-1.50) > 1e-6 {
		t.Errorf("Savings = %.4f, want 1.50", res.Savings)
	}
}

func TestCalculateTotalDesignPricePremium(t *testing.T) {
	d := Design{Elements: []Element{{Type: "text"}}}
	res := CalculateTotalDesignPrice(20, d, 1, "premium", DefaultRules())

	// base complexity 5 + text 4
	if !almostEqual(res.CustomPrice, 9) || !almostEqual(res.TotalPrice, 29) {
		t.Errorf("premium total = %+v, want custom 9 total 29", res)
	}
	if res.Savings != 0 {
		t.Errorf("Savings = %.2f, want 0", res.Savings)
	}
}

func TestScorerDegradesOnBadPayload(t *testing.T) {
	s := NewScorer(DefaultRules(), zap.NewNop())

	for _, raw := range []string{"", "null", "not json", `{"customizations": {}}`, `[1,2,3]`} {
		res := s.Price([]byte(raw), 1, "")
		if res.CustomPrice != 0 || res.ComplexityScore != 0 {
			t.Errorf("Price(%q) = %+v, want zero", raw, res)
		}
	}
}

func TestScorerPricesRawPayload(t *testing.T) {
	s := NewScorer(DefaultRules(), zap.NewNop())
	raw := []byte(`{
		"texts": [{"id": "a", "type": "text"}, {"id": "b", "type": "textbox"}],
		"images": [{"id": "c", "type": "image", "data": {"src": "/u/logo.png"}}]
	}`)

	res := s.Price(raw, 10, "")
	if !almostEqual(res.CustomPrice, 8.50) {
		t.Errorf("CustomPrice = %.2f, want 8.50", res.CustomPrice)
	}

	total := s.Total(10, raw, 1, "textil")
	// textil: 2 texts * 3 + 1 image * 6
	if !almostEqual(total.CustomPrice, 12) || !almostEqual(total.TotalPrice, 22) {
		t.Errorf("Total = %+v, want custom 12 total 22", total)
	}
}
