package coords

import "math"

// boundsTolerance absorbs float error in x+width after clamping.
const boundsTolerance = 1e-9

// NormalizeArea pulls a relative box back inside the canvas. Position is
// clamped to [0,100] first, then size is clamped against the clamped position.
// Out-of-range input is corrected, never rejected: boxes overshoot routinely
// while being dragged in the editor.
func NormalizeArea(area Relative) Relative {
	x := clamp(area.X, 0, 100)
	y := clamp(area.Y, 0, 100)
	return Relative{
		X:      x,
		Y:      y,
		Width:  clamp(area.Width, 0, 100-x),
		Height: clamp(area.Height, 0, 100-y),
	}
}

// ValidateRelative reports whether a box is already inside the canvas.
func ValidateRelative(c Relative) bool {
	for _, v := range []float64{c.X, c.Y, c.Width, c.Height} {
		if math.IsNaN(v) || v < 0 || v > 100 {
			return false
		}
	}
	return c.X+c.Width <= 100+boundsTolerance && c.Y+c.Height <= 100+boundsTolerance
}

// ClampRelative is the corrective counterpart of ValidateRelative: every
// field is clamped to [0,100], then the size is trimmed to the right and
// bottom edges.
func ClampRelative(c Relative) Relative {
	out := Relative{
		X:      clamp(c.X, 0, 100),
		Y:      clamp(c.Y, 0, 100),
		Width:  clamp(c.Width, 0, 100),
		Height: clamp(c.Height, 0, 100),
	}
	if out.X+out.Width > 100 {
		out.Width = 100 - out.X
	}
	if out.Y+out.Height > 100 {
		out.Height = 100 - out.Y
	}
	return out
}

// clamp maps NaN to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
