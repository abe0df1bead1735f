package models

import (
	"time"

	"print-personalizer/internal/coords"
)

// ============ CATALOG ============

type Product struct {
	ID               string  `json:"id" db:"id"`
	Name             string  `json:"name" db:"name"`
	BasePrice        float64 `json:"basePrice" db:"base_price"`
	IsPersonalizable bool    `json:"isPersonalizable" db:"is_personalizable"`
}

// ProductSide is one face of a product (front, back, sleeve).
type ProductSide struct {
	ID          string `json:"id" db:"id"`
	ProductID   string `json:"productId" db:"product_id"`
	Name        string `json:"name" db:"name"`
	DisplayName string `json:"displayName" db:"display_name"`
	ImageURL    string `json:"imageUrl" db:"image_url"`
	Position    int    `json:"position" db:"position"`
}

// PrintArea is a region of a side where customer content may be placed.
// Legacy rows hold pixels drawn against ReferenceWidth x ReferenceHeight;
// migrated rows hold percentages and set IsRelativeCoordinates.
type PrintArea struct {
	ID                    string  `json:"id" db:"id"`
	SideID                string  `json:"sideId" db:"side_id"`
	Name                  string  `json:"name" db:"name"`
	DisplayName           string  `json:"displayName" db:"display_name"`
	X                     float64 `json:"x" db:"x"`
	Y                     float64 `json:"y" db:"y"`
	Width                 float64 `json:"width" db:"width"`
	Height                float64 `json:"height" db:"height"`
	IsRelativeCoordinates bool    `json:"isRelativeCoordinates" db:"is_relative_coordinates"`
	ReferenceWidth        float64 `json:"referenceWidth" db:"reference_width"`
	ReferenceHeight       float64 `json:"referenceHeight" db:"reference_height"`
	PrintingMethod        string  `json:"printingMethod" db:"printing_method"`
	AllowText             bool    `json:"allowText" db:"allow_text"`
	AllowImages           bool    `json:"allowImages" db:"allow_images"`
	AllowShapes           bool    `json:"allowShapes" db:"allow_shapes"`
	AllowClipart          bool    `json:"allowClipart" db:"allow_clipart"`
	MaxColors             int     `json:"maxColors" db:"max_colors"`
	BasePrice             float64 `json:"basePrice" db:"base_price"`
}

// ReferenceSize is the canvas the stored box was measured against, or the
// standard editor canvas when none was recorded.
func (a PrintArea) ReferenceSize() coords.CanvasSize {
	ref := coords.CanvasSize{Width: a.ReferenceWidth, Height: a.ReferenceHeight}
	if !ref.Valid() {
		return coords.StandardCanvas
	}
	return ref
}

// RelativeBox returns the area in percent of its reference image.
func (a PrintArea) RelativeBox() coords.Relative {
	if a.IsRelativeCoordinates {
		return coords.Relative{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height}
	}
	return coords.AbsoluteToRelative(
		coords.Absolute{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height},
		a.ReferenceSize(),
	)
}

// ============ PRICING RULES ============

type RuleScope string

const (
	RuleScopeSide RuleScope = "SIDE"
	RuleScopeArea RuleScope = "AREA"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	DiscountTypeFixed      DiscountType = "FIXED"
)

// PricingRule groups per-side/per-area prices for one product together with
// its own quantity discount tiers.
type PricingRule struct {
	ID                string             `json:"id" db:"id"`
	ProductID         string             `json:"productId" db:"product_id"`
	Name              string             `json:"name" db:"name"`
	Description       string             `json:"description" db:"description"`
	IsActive          bool               `json:"isActive" db:"is_active"`
	CreatedAt         time.Time          `json:"createdAt" db:"created_at"`
	Items             []RuleItem         `json:"rules" db:"-"`
	QuantityDiscounts []QuantityDiscount `json:"quantityDiscounts" db:"-"`
}

// RuleItem prices one side or one print area; exactly one target id is set.
type RuleItem struct {
	ID            string    `json:"id" db:"id"`
	PricingRuleID string    `json:"pricingRuleId" db:"pricing_rule_id"`
	Type          RuleScope `json:"type" db:"type"`
	SideID        *string   `json:"sideId,omitempty" db:"side_id"`
	PrintAreaID   *string   `json:"printAreaId,omitempty" db:"print_area_id"`
	Price         float64   `json:"price" db:"price"`
}

type QuantityDiscount struct {
	ID            string       `json:"id" db:"id"`
	PricingRuleID string       `json:"pricingRuleId" db:"pricing_rule_id"`
	MinQuantity   int          `json:"minQuantity" db:"min_quantity"`
	DiscountType  DiscountType `json:"discountType" db:"discount_type"`
	DiscountValue float64      `json:"discountValue" db:"discount_value"`
}

// ============ PRICING RESULT ============

type BreakdownType string

const (
	BreakdownBase            BreakdownType = "base"
	BreakdownPersonalization BreakdownType = "personalization"
	BreakdownDiscount        BreakdownType = "discount"
)

type BreakdownItem struct {
	Description string        `json:"description"`
	Amount      float64       `json:"amount"`
	Type        BreakdownType `json:"type"`
}

// PricingBreakdown is recomputed on demand; orders snapshot it at checkout.
type PricingBreakdown struct {
	BasePrice            float64         `json:"basePrice"`
	PersonalizationPrice float64         `json:"personalizationPrice"`
	QuantityDiscount     float64         `json:"quantityDiscount"`
	FinalPrice           float64         `json:"finalPrice"`
	Breakdown            []BreakdownItem `json:"breakdown"`
}
