package coords

// NamedAbsolute is a legacy print area stored in pixels.
type NamedAbsolute struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Absolute
}

// NamedRelative is a print area after migration to percentages.
type NamedRelative struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Relative
}

// MigrateAreasToRelative converts a batch of pixel areas drawn against one
// reference canvas. Order is preserved.
func MigrateAreasToRelative(areas []NamedAbsolute, reference CanvasSize) []NamedRelative {
	out := make([]NamedRelative, 0, len(areas))
	for _, a := range areas {
		out = append(out, NamedRelative{
			ID:       a.ID,
			Name:     a.Name,
			Relative: AbsoluteToRelative(a.Absolute, reference),
		})
	}
	return out
}
