package layout

import "math"

// SelectFontSize derives the single text size used for an entire layer.
//
// Two candidate sizes are computed: one proportional to the smallest
// supported footprint height (scaled up for legibility), and one bounding
// text height to a fraction of the tightest anchor spacing. The smaller of
// the two wins, clamped into [MinFontSize, MaxFontSize]. One size per layer
// keeps visual density consistent across the drawing.
func SelectFontSize(minSpacing float64, s Settings) float64 {
	packageBased := s.RefPackageHeight * s.PackageFraction * s.UnitToPoint * s.LegibilityScale
	distanceBased := minSpacing * s.DistanceFraction * s.UnitToPoint

	size := math.Min(packageBased, distanceBased)
	size = math.Max(s.MinFontSize, size)
	return math.Min(s.MaxFontSize, size)
}
