package design

import "strings"

// Rules is the complexity price table. It is a plain value: callers pass it
// in explicitly, usually DefaultRules merged with category overrides.
type Rules struct {
	BaseComplexity            float64 `json:"baseComplexity"`
	TextElementPrice          float64 `json:"textElementPrice"`
	ImageElementPrice         float64 `json:"imageElementPrice"`
	ShapeElementPrice         float64 `json:"shapeElementPrice"`
	ColorComplexityMultiplier float64 `json:"colorComplexityMultiplier"`
	SizeMultiplier            float64 `json:"sizeMultiplier"`
	SpecialEffectsPrice       float64 `json:"specialEffectsPrice"`
}

// DefaultRules returns the standard price table, in EUR.
func DefaultRules() Rules {
	return Rules{
		BaseComplexity:            0,
		TextElementPrice:          2.50,
		ImageElementPrice:         5.00,
		ShapeElementPrice:         1.75,
		ColorComplexityMultiplier: 0.15,
		SizeMultiplier:            1.0,
		SpecialEffectsPrice:       3.00,
	}
}

// Overrides is a partial Rules; nil fields keep the base value.
type Overrides struct {
	BaseComplexity            *float64 `json:"baseComplexity,omitempty"`
	TextElementPrice          *float64 `json:"textElementPrice,omitempty"`
	ImageElementPrice         *float64 `json:"imageElementPrice,omitempty"`
	ShapeElementPrice         *float64 `json:"shapeElementPrice,omitempty"`
	ColorComplexityMultiplier *float64 `json:"colorComplexityMultiplier,omitempty"`
	SizeMultiplier            *float64 `json:"sizeMultiplier,omitempty"`
	SpecialEffectsPrice       *float64 `json:"specialEffectsPrice,omitempty"`
}

// Merge returns r with every non-nil override applied.
func (r Rules) Merge(o Overrides) Rules {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&r.BaseComplexity, o.BaseComplexity)
	set(&r.TextElementPrice, o.TextElementPrice)
	set(&r.ImageElementPrice, o.ImageElementPrice)
	set(&r.ShapeElementPrice, o.ShapeElementPrice)
	set(&r.ColorComplexityMultiplier, o.ColorComplexityMultiplier)
	set(&r.SizeMultiplier, o.SizeMultiplier)
	set(&r.SpecialEffectsPrice, o.SpecialEffectsPrice)
	return r
}

func f(v float64) *float64 { return &v }

// categoryOverrides are keyed by category slug. English aliases point at
// the same tables as the storefront's original slugs.
var categoryOverrides = map[string]Overrides{
	"textil": {
		TextElementPrice:    f(3.00),
		ImageElementPrice:   f(6.00),
		SpecialEffectsPrice: f(4.00),
	},
	// Sublimation handles full color well.
	"sublimacion": {
		TextElementPrice:          f(2.00),
		ImageElementPrice:         f(4.50),
		ColorComplexityMultiplier: f(0.10),
	},
	// Laser engraving is mostly single color.
	"laser": {
		ShapeElementPrice:         f(2.50),
		SpecialEffectsPrice:       f(5.00),
		ColorComplexityMultiplier: f(0.05),
	},
	"premium": {
		BaseComplexity:      f(5.00),
		TextElementPrice:    f(4.00),
		ImageElementPrice:   f(8.00),
		SpecialEffectsPrice: f(6.00),
	},
}

var categoryAliases = map[string]string{
	"textile":         "textil",
	"sublimation":     "sublimacion",
	"laser-engraving": "laser",
}

// CategoryOverrides returns the price overrides for a production category.
// Unknown or empty slugs return no overrides.
func CategoryOverrides(slug string) Overrides {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if alias, ok := categoryAliases[slug]; ok {
		slug = alias
	}
	return categoryOverrides[slug]
}

// RulesForCategory merges a category's overrides over defaults.
func RulesForCategory(defaults Rules, slug string) Rules {
	return defaults.Merge(CategoryOverrides(slug))
}
