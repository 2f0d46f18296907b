package layout

import "math"

// NormalizeTextRotation maps a component rotation to a text rotation that
// never renders upside-down. Angles in the upper half circle (90 to 270
// degrees inclusive) are flipped by 180 so glyphs stay right-reading
// regardless of how the part is mounted.
func NormalizeTextRotation(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	if a >= 90 && a <= 270 {
		return a - 180
	}
	return a
}
