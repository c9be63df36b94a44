package layout

import "unicode/utf8"

// Default label metrics for [LabelWidth].
const (
	DefaultCharWidth = 9
	DefaultPadding   = 4
)

// LabelWidth returns a measurer that sizes a label as a fixed-width run of
// characters plus padding on both sides.
func LabelWidth(charWidth, padding float64) func(string) float64 {
	return func(label string) float64 {
		return float64(utf8.RuneCountInString(label))*charWidth + 2*padding
	}
}
