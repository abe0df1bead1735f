// Package coords converts print-area and design-element boxes between pixel
// coordinates and percentages of a reference canvas, and computes how a
// reference image is letterboxed into an editor canvas.
//
// Every function here is pure. The only blocking operation lives in
// DimensionLoader.
package coords

import "math"

// CanvasSize is a width and height in pixels.
type CanvasSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (c CanvasSize) Valid() bool {
	return c.Width > 0 && c.Height > 0
}

// AspectRatio returns width/height, or 0 for an invalid size.
func (c CanvasSize) AspectRatio() float64 {
	if !c.Valid() {
		return 0
	}
	return c.Width / c.Height
}

// StandardCanvas is the editor canvas legacy absolute areas were drawn on.
var StandardCanvas = CanvasSize{Width: 800, Height: 600}

// Absolute is a box in pixels of some canvas.
type Absolute struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Relative is a box in percent (0-100) of a reference canvas.
type Relative struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AbsoluteToRelative expresses a pixel box as percentages of canvas.
// No rounding is applied; round once at the persistence boundary with Round.
// An invalid canvas yields the zero box.
func AbsoluteToRelative(a Absolute, canvas CanvasSize) Relative {
	if !canvas.Valid() {
		return Relative{}
	}
	return Relative{
		X:      a.X / canvas.Width * 100,
		Y:      a.Y / canvas.Height * 100,
		Width:  a.Width / canvas.Width * 100,
		Height: a.Height / canvas.Height * 100,
	}
}

// RelativeToAbsolute is the inverse of AbsoluteToRelative.
func RelativeToAbsolute(r Relative, canvas CanvasSize) Absolute {
	if !canvas.Valid() {
		return Absolute{}
	}
	return Absolute{
		X:      r.X / 100 * canvas.Width,
		Y:      r.Y / 100 * canvas.Height,
		Width:  r.Width / 100 * canvas.Width,
		Height: r.Height / 100 * canvas.Height,
	}
}

// ScaleRelative re-projects a relative box defined against from onto to,
// using the smaller of the two axis scale factors so proportions hold.
func ScaleRelative(r Relative, from, to CanvasSize) Relative {
	if from == to || !from.Valid() || !to.Valid() {
		return r
	}
	scale := math.Min(to.Width/from.Width, to.Height/from.Height)
	return Relative{
		X:      r.X * scale,
		Y:      r.Y * scale,
		Width:  r.Width * scale,
		Height: r.Height * scale,
	}
}

// Round rounds every field to the given number of decimal places.
func Round(r Relative, places int) Relative {
	p := math.Pow(10, float64(places))
	round := func(v float64) float64 { return math.Round(v*p) / p }
	return Relative{
		X:      round(r.X),
		Y:      round(r.Y),
		Width:  round(r.Width),
		Height: round(r.Height),
	}
}
