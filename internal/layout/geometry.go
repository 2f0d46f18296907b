// Package layout implements the label placement engine: given anchor points,
// label texts and footprint sizes for one board side, it chooses a final
// position, size and rotation for every label such that labels stay close to
// their true coordinates while avoiding each other.
//
// Placement is sequential and deterministic. Requests are processed in input
// order and earlier requests win contested positions; later labels route
// around them. The search for a free position is tiered: the anchor itself,
// then a fixed ring of near offsets, then an outward spiral, then a uniform
// grid, and finally a forced position that accepts overlap rather than
// dropping the label.
package layout

import "math"

// Point is a coordinate in board millimetres.
type Point struct {
	X, Y float64
}

// Size is a width/height pair in millimetres.
type Size struct {
	W, H float64
}

// Box is an axis-aligned rectangle given by its center and half-extents.
type Box struct {
	CX, CY float64
	HalfW  float64
	HalfH  float64
}

// NewBox builds a Box centered at p with full width w and full height h.
func NewBox(p Point, w, h float64) Box {
	return Box{CX: p.X, CY: p.Y, HalfW: w / 2, HalfH: h / 2}
}

// Overlaps reports whether a and b are closer than the required separation
// buffer on both axes. Rotation is deliberately ignored: it is a rendering
// cue, not a collision dimension, which keeps the test to two comparisons.
func Overlaps(a, b Box, buffer float64) bool {
	return math.Abs(a.CX-b.CX) < a.HalfW+b.HalfW+buffer &&
		math.Abs(a.CY-b.CY) < a.HalfH+b.HalfH+buffer
}
