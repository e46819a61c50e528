package models

// ClassMethod selects how symbology break values are derived from the synced
// attribute's distribution. The method is mandatory configuration: there is
// no silent default.
type ClassMethod string

const (
	ClassMethodEqualInterval ClassMethod = "equal-interval"
	ClassMethodQuantile      ClassMethod = "quantile"
)

// Valid reports whether m names a supported classification method.
func (m ClassMethod) Valid() bool {
	return m == ClassMethodEqualInterval || m == ClassMethodQuantile
}

// ClassBreaks is an ordered sequence of upper-bound thresholds for the map
// renderer. Values are strictly increasing and len(Values) equals the
// configured class count.
type ClassBreaks struct {
	Method ClassMethod `json:"method"`
	Values []float64   `json:"values"`
}
