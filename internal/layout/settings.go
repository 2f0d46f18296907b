package layout

import "math"

// Settings holds the engine's tuning constants. The defaults are field
// calibration carried over from production boards; they are configuration,
// not law, so every one of them is overridable.
type Settings struct {
	// Font sizing
	MinFontSize      float64 // pt, hard floor for legibility
	MaxFontSize      float64 // pt, hard ceiling so text never dominates
	RefPackageHeight float64 // mm, height of the smallest supported footprint (0201)
	PackageFraction  float64 // share of the reference height text may fill
	LegibilityScale  float64 // multiplier applied to the package-based size
	DistanceFraction float64 // share of the tightest spacing text may fill
	UnitToPoint      float64 // mm to pt conversion

	// Text footprint estimation
	CharWidthRatio float64 // estimated glyph width as a share of font size
	MinTextDim     float64 // mm, clamp for degenerate text extents

	// Collision buffer
	MinBuffer      float64 // mm, absolute separation floor
	BufferFraction float64 // share of the smallest footprint dimension

	// Density estimation
	DefaultSpacing  float64 // mm, fallback when a layer has no usable pairs
	KDTreeThreshold int     // layer size at which the kd-tree path kicks in

	// Search bounds
	RingOffsetPad   float64 // mm added to the half-extent for ring offsets
	SpiralStepDiv   float64 // spiral radius step = min text dim / this
	SpiralAngleStep float64 // radians between samples on a spiral ring
	MaxRadiusFactor float64 // search bound = this x max text dim
	GridStepDiv     float64 // grid step = min text dim / this
}

// DefaultSettings returns the calibrated defaults.
func DefaultSettings() Settings {
	return Settings{
		MinFontSize:      1.5,
		MaxFontSize:      4.0,
		RefPackageHeight: 0.3,
		PackageFraction:  0.8,
		LegibilityScale:  2.0,
		DistanceFraction: 0.25,
		UnitToPoint:      2.83,
		CharWidthRatio:   0.65,
		MinTextDim:       0.1,
		MinBuffer:        0.3,
		BufferFraction:   0.5,
		DefaultSpacing:   5.0,
		KDTreeThreshold:  64,
		RingOffsetPad:    0.5,
		SpiralStepDiv:    3.0,
		SpiralAngleStep:  math.Pi / 12,
		MaxRadiusFactor:  5.0,
		GridStepDiv:      2.0,
	}
}
