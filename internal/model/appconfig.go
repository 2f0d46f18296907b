package model

// AppConfig holds application-wide preferences and default tuning values.
// The numeric fields mirror the placement engine defaults so users can
// recalibrate them without rebuilding; zero values mean "use the default".
type AppConfig struct {
	// Engine calibration overrides
	MinFontSize    float64 `json:"min_font_size"`
	MaxFontSize    float64 `json:"max_font_size"`
	CharWidthRatio float64 `json:"char_width_ratio"`
	MinBuffer      float64 `json:"min_buffer"`

	// Rendering preferences
	MarginRatio  float64 `json:"margin_ratio"`
	OutputFormat string  `json:"output_format"` // "pdf", "dxf", "both"

	// Path to a JSON file with extra package footprint sizes
	FootprintOverrides string `json:"footprint_overrides,omitempty"`

	RecentFiles []string `json:"recent_files"`
}

// DefaultAppConfig returns an AppConfig populated with the shipped defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		MinFontSize:    1.5,
		MaxFontSize:    4.0,
		CharWidthRatio: 0.65,
		MinBuffer:      0.3,
		MarginRatio:    0.15,
		OutputFormat:   "pdf",
		RecentFiles:    []string{},
	}
}
