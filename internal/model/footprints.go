package model

import (
	"sort"
	"strings"
)

// FootprintSize is the physical extent of a package in millimetres.
type FootprintSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultFootprint is used for packages not present in the catalog.
var DefaultFootprint = FootprintSize{Width: 2.0, Height: 2.0}

// footprintEntry pairs a lowercase package name fragment with its size.
type footprintEntry struct {
	key  string
	size FootprintSize
}

// Catalog maps package names to physical footprint sizes. Lookup is by
// case-insensitive substring match, longest fragment first, so that
// "sot23-5" wins over "sot23" for a package named "SOT23-5L".
type Catalog struct {
	entries []footprintEntry
}

// builtinFootprints covers the common chip, transistor, IC, connector and
// crystal packages. Dimensions are nominal body sizes in mm.
var builtinFootprints = map[string]FootprintSize{
	// Chip capacitors
	"c0201": {0.6, 0.3},
	"c0402": {1.0, 0.5},
	"c0603": {1.6, 0.8},
	"c0805": {2.0, 1.25},
	"c1206": {3.2, 1.6},
	"c1210": {3.2, 2.5},
	"c1812": {4.5, 3.2},
	"c2220": {5.7, 5.0},

	// Chip resistors
	"r0201": {0.6, 0.3},
	"r0402": {1.0, 0.5},
	"r0603": {1.6, 0.8},
	"r0805": {2.0, 1.25},
	"r1206": {3.2, 1.6},
	"r1210": {3.2, 2.5},
	"r2010": {5.0, 2.5},
	"r2512": {6.4, 3.2},

	// Transistors
	"sot23":   {2.9, 1.3},
	"sot23-3": {2.9, 1.3},
	"sot23-5": {2.9, 1.6},
	"sot23-6": {2.9, 1.6},
	"sot89":   {4.5, 2.5},
	"sot223":  {6.5, 3.5},
	"to-220":  {10.0, 4.5},
	"to-252":  {6.5, 6.0},

	// SOP / SOIC
	"sop8":   {5.0, 4.0},
	"sop14":  {8.7, 4.0},
	"sop16":  {10.0, 4.0},
	"sop20":  {12.8, 4.0},
	"sop28":  {17.9, 4.0},
	"soic8":  {5.0, 4.0},
	"soic14": {8.7, 4.0},
	"soic16": {10.0, 4.0},
	"soic20": {12.8, 4.0},
	"soic28": {17.9, 4.0},

	// QFN
	"qfn":    {5.0, 5.0},
	"qfn16":  {3.0, 3.0},
	"qfn20":  {4.0, 4.0},
	"qfn24":  {4.0, 4.0},
	"qfn32":  {5.0, 5.0},
	"qfn48":  {7.0, 7.0},
	"qfn64":  {9.0, 9.0},
	"qfn76":  {10.0, 10.0},
	"qfn128": {14.0, 14.0},

	// QFP
	"qfp32":  {7.0, 7.0},
	"qfp44":  {10.0, 10.0},
	"qfp64":  {12.0, 12.0},
	"qfp100": {14.0, 14.0},
	"qfp144": {20.0, 20.0},

	// BGA
	"bga":    {15.0, 15.0},
	"bga64":  {8.0, 8.0},
	"bga100": {10.0, 10.0},
	"bga144": {13.0, 13.0},
	"bga256": {17.0, 17.0},

	// Connectors
	"usb":    {12.0, 8.0},
	"usb-a":  {14.0, 6.5},
	"usb-b":  {12.0, 11.0},
	"usb-c":  {9.0, 3.2},
	"usb3.0": {14.0, 8.0},
	"usb3.1": {14.0, 8.0},
	"type-c": {9.0, 3.2},
	"hdmi":   {15.0, 12.0},
	"rj45":   {16.0, 13.0},
	"sd":     {15.0, 11.0},
	"tf":     {11.0, 15.0},
	"audio":  {6.0, 6.0},

	// Crystals
	"x-3225": {3.2, 2.5},
	"x-5032": {5.0, 3.2},
	"x-7050": {7.0, 5.0},

	// Inductors
	"l-0630":       {6.0, 3.0},
	"l-4040":       {4.0, 4.0},
	"l-zadh252012": {2.5, 2.0},

	// Diodes
	"sod-323": {1.7, 1.25},
	"sod-523": {1.25, 0.85},
	"sod-923": {0.8, 0.6},

	// Misc
	"ce-1206":   {3.2, 1.6},
	"dfn3x3":    {3.0, 3.0},
	"cap-5x8mm": {5.0, 8.0},
}

// NewCatalog returns a catalog seeded with the builtin package table.
func NewCatalog() *Catalog {
	c := &Catalog{}
	c.Merge(builtinFootprints)
	return c
}

// Merge adds or replaces entries. Keys are lowercased; matching order is
// re-derived so lookup stays deterministic.
func (c *Catalog) Merge(sizes map[string]FootprintSize) {
	byKey := make(map[string]FootprintSize, len(c.entries)+len(sizes))
	for _, e := range c.entries {
		byKey[e.key] = e.size
	}
	for k, v := range sizes {
		byKey[strings.ToLower(strings.TrimSpace(k))] = v
	}
	entries := make([]footprintEntry, 0, len(byKey))
	for k, v := range byKey {
		entries = append(entries, footprintEntry{key: k, size: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].key) != len(entries[j].key) {
			return len(entries[i].key) > len(entries[j].key)
		}
		return entries[i].key < entries[j].key
	})
	c.entries = entries
}

// Lookup estimates the footprint for a package name. Unknown packages get
// DefaultFootprint, so the caller always receives a positive size.
func (c *Catalog) Lookup(pkg string) FootprintSize {
	needle := strings.ToLower(strings.TrimSpace(pkg))
	if needle == "" {
		return DefaultFootprint
	}
	for _, e := range c.entries {
		if strings.Contains(needle, e.key) {
			return e.size
		}
	}
	return DefaultFootprint
}
