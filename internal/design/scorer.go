package design

import (
	"errors"
	"math"

	"go.uber.org/zap"
)

var (
	textTypes  = map[string]bool{"text": true, "textbox": true, "i-text": true}
	imageTypes = map[string]bool{"image": true, "img": true}
	shapeTypes = map[string]bool{
		"rect": true, "circle": true, "triangle": true,
		"polygon": true, "path": true, "shape": true,
	}
)

const (
	bulkQuantity     = 10
	bulkDiscount     = 0.15
	midQuantity      = 5
	midDiscount      = 0.08
	maxComplexity    = 100
	freeColors       = 2
	textScoreWeight  = 10
	imageScoreWeight = 20
	shapeScoreWeight = 8
	colorScoreWeight = 5
	effectsScore     = 15
)

// Breakdown holds the amount each step contributed. QuantityDiscount is
// zero or negative.
type Breakdown struct {
	TextElements     float64 `json:"textElements"`
	ImageElements    float64 `json:"imageElements"`
	ShapeElements    float64 `json:"shapeElements"`
	ColorComplexity  float64 `json:"colorComplexity"`
	SpecialEffects   float64 `json:"specialEffects"`
	SizeMultiplier   float64 `json:"sizeMultiplier"`
	QuantityDiscount float64 `json:"quantityDiscount"`
}

type Stats struct {
	Texts          int  `json:"texts"`
	Images         int  `json:"images"`
	Shapes         int  `json:"shapes"`
	DistinctColors int  `json:"distinctColors"`
	HasEffects     bool `json:"hasEffects"`
}

type Result struct {
	CustomPrice     float64   `json:"customPrice"`
	Breakdown       Breakdown `json:"breakdown"`
	ComplexityScore int       `json:"complexityScore"`
	Stats           Stats     `json:"stats"`
}

type TotalResult struct {
	BasePrice       float64   `json:"basePrice"`
	CustomPrice     float64   `json:"customPrice"`
	TotalPrice      float64   `json:"totalPrice"`
	Savings         float64   `json:"savings"`
	Breakdown       Breakdown `json:"breakdown"`
	ComplexityScore int       `json:"complexityScore"`
}

// Analyze counts the elements, colors and effects of a design.
func Analyze(d Design) Stats {
	var s Stats
	colors := make(map[string]struct{})
	for _, e := range d.Elements {
		if textTypes[e.Type] {
			s.Texts++
		}
		if imageTypes[e.Type] || e.Src != "" {
			s.Images++
		}
		if shapeTypes[e.Type] {
			s.Shapes++
		}
		for _, c := range e.Colors() {
			colors[c] = struct{}{}
		}
		if e.HasEffects() {
			s.HasEffects = true
		}
	}
	s.DistinctColors = len(colors)
	return s
}

// CalculateDesignPrice prices a design from its composition alone. It is
// total: an empty design costs rules.BaseComplexity (floored at 0) and
// scores 0.
func CalculateDesignPrice(d Design, quantity int, rules Rules) Result {
	stats := Analyze(d)
	var b Breakdown

	price := rules.BaseComplexity

	b.TextElements = float64(stats.Texts) * rules.TextElementPrice
	b.ImageElements = float64(stats.Images) * rules.ImageElementPrice
	b.ShapeElements = float64(stats.Shapes) * rules.ShapeElementPrice
	price += b.TextElements + b.ImageElements + b.ShapeElements

	// Extra colors scale everything priced so far.
	if stats.DistinctColors > freeColors {
		b.ColorComplexity = price * rules.ColorComplexityMultiplier * float64(stats.DistinctColors-freeColors)
		price += b.ColorComplexity
	}

	if stats.HasEffects {
		b.SpecialEffects = rules.SpecialEffectsPrice
		price += b.SpecialEffects
	}

	if rules.SizeMultiplier != 1 {
		b.SizeMultiplier = price * (rules.SizeMultiplier - 1)
		price += b.SizeMultiplier
	}

	if rate := designQuantityRate(quantity); rate > 0 {
		discount := price * rate
		b.QuantityDiscount = -discount
		price -= discount
	}

	return Result{
		CustomPrice:     math.Max(0, roundCents(price)),
		Breakdown:       b,
		ComplexityScore: complexityScore(stats),
		Stats:           stats,
	}
}

// CalculateTotalDesignPrice adds the product's base price for the whole
// quantity to the design surcharge, using defaults merged with the
// category's overrides.
func CalculateTotalDesignPrice(basePrice float64, d Design, quantity int, category string, defaults Rules) TotalResult {
	quantity = max(quantity, 1)
	res := CalculateDesignPrice(d, quantity, RulesForCategory(defaults, category))

	baseTotal := basePrice * float64(quantity)
	return TotalResult{
		BasePrice:       baseTotal,
		CustomPrice:     res.CustomPrice,
		TotalPrice:      roundCents(baseTotal + res.CustomPrice),
		Savings:         math.Abs(res.Breakdown.QuantityDiscount),
		Breakdown:       res.Breakdown,
		ComplexityScore: res.ComplexityScore,
	}
}

func designQuantityRate(quantity int) float64 {
	switch {
	case quantity >= bulkQuantity:
		return bulkDiscount
	case quantity >= midQuantity:
		return midDiscount
	default:
		return 0
	}
}

func complexityScore(s Stats) int {
	score := s.Texts*textScoreWeight +
		s.Images*imageScoreWeight +
		s.Shapes*shapeScoreWeight +
		s.DistinctColors*colorScoreWeight
	if s.HasEffects {
		score += effectsScore
	}
	return min(maxComplexity, score)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Scorer binds the configured default rules to raw payload handling.
type Scorer struct {
	defaults Rules
	logger   *zap.Logger
}

func NewScorer(defaults Rules, logger *zap.Logger) *Scorer {
	return &Scorer{defaults: defaults, logger: logger}
}

func (s *Scorer) Defaults() Rules {
	return s.defaults
}

// Design parses a raw payload. Unreadable payloads are logged and scored as
// an empty design.
func (s *Scorer) Design(raw []byte) Design {
	d, err := ParseDesign(raw)
	if err != nil {
		if errors.Is(err, ErrUnrecognizedDesign) {
			s.logger.Warn("design payload has no element groups", zap.Int("bytes", len(raw)))
		} else {
			s.logger.Warn("malformed design payload", zap.Error(err))
		}
	}
	return d
}

func (s *Scorer) Price(raw []byte, quantity int, category string) Result {
	return CalculateDesignPrice(s.Design(raw), quantity, RulesForCategory(s.defaults, category))
}

func (s *Scorer) Total(basePrice float64, raw []byte, quantity int, category string) TotalResult {
	return CalculateTotalDesignPrice(basePrice, s.Design(raw), quantity, category, s.defaults)
}
