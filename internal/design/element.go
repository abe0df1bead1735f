package design

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"print-personalizer/internal/coords"
)

// ErrUnrecognizedDesign is returned when a payload carries none of the
// known element groups. The accompanying Design is empty and still usable.
var ErrUnrecognizedDesign = errors.New("design: no element groups in payload")

// elementGroups are the keys a payload may list its content under.
var elementGroups = []string{"elements", "texts", "images", "shapes"}

// Element is the canonical form of anything placed on a print area,
// whichever group of the payload it came from.
type Element struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Src     string   `json:"src,omitempty"`
	Fill    string   `json:"fill,omitempty"`
	Stroke  string   `json:"stroke,omitempty"`
	Color   string   `json:"color,omitempty"`
	Shadow  bool     `json:"shadow,omitempty"`
	Filters bool     `json:"filters,omitempty"`
	Effects bool     `json:"effects,omitempty"`
	Blend   bool     `json:"blend,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
}

// Design is a flattened design payload.
type Design struct {
	Elements []Element `json:"elements"`
}

// Box returns the element position and size as stored in the payload.
func (e Element) Box() coords.Absolute {
	return coords.Absolute{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
}

// HasEffects reports a shadow, filter, effect, blend mode or partial opacity.
func (e Element) HasEffects() bool {
	return e.Shadow || e.Filters || e.Effects || e.Blend || (e.Opacity != nil && *e.Opacity < 1)
}

// Colors returns the non-empty fill, stroke and color values.
func (e Element) Colors() []string {
	out := make([]string, 0, 3)
	for _, c := range []string{e.Fill, e.Stroke, e.Color} {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// ParseDesign decodes a raw design payload. Any error comes with an empty
// but valid Design, so callers may log it and carry on.
func ParseDesign(raw []byte) (Design, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return Design{}, ErrUnrecognizedDesign
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Design{}, fmt.Errorf("design: decode payload: %w", err)
	}

	d, ok := NormalizeDesign(payload)
	if !ok {
		return d, ErrUnrecognizedDesign
	}
	return d, nil
}

// NormalizeDesign flattens every known element group into one list, in
// group order. The bool reports whether any group was present.
func NormalizeDesign(payload map[string]any) (Design, bool) {
	var (
		d          Design
		recognized bool
	)
	for _, group := range elementGroups {
		list, ok := payload[group].([]any)
		if !ok {
			continue
		}
		recognized = true
		for _, item := range list {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			d.Elements = append(d.Elements, elementFrom(obj))
		}
	}
	return d, recognized
}

// elementFrom reads attributes from the element's "data" object first and
// falls back to the element itself, which covers both editor formats.
func elementFrom(obj map[string]any) Element {
	data, _ := obj["data"].(map[string]any)
	attr := func(key string) any {
		if v, ok := data[key]; ok {
			return v
		}
		return obj[key]
	}

	e := Element{
		ID:      stringOf(obj["id"]),
		Type:    strings.ToLower(strings.TrimSpace(stringOf(obj["type"]))),
		Src:     stringOf(attr("src")),
		Fill:    stringOf(attr("fill")),
		Stroke:  stringOf(attr("stroke")),
		Color:   stringOf(attr("color")),
		Shadow:  truthy(attr("shadow")),
		Filters: truthy(attr("filters")),
		Effects: truthy(attr("effects")),
		Blend:   truthy(attr("blend")),
		X:       firstNumber(attr("x"), attr("left")),
		Y:       firstNumber(attr("y"), attr("top")),
		Width:   firstNumber(attr("width")),
		Height:  firstNumber(attr("height")),
	}
	if op, ok := attr("opacity").(float64); ok && !math.IsNaN(op) {
		e.Opacity = &op
	}
	return e
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

// truthy treats missing, false, zero, empty strings and empty lists as unset.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

func firstNumber(vs ...any) float64 {
	for _, v := range vs {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return 0
}
