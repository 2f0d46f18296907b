// Package model defines the core data types shared across the placement
// pipeline: components parsed from placement files, board layers, and the
// label field variants that can be rendered.
package model

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// Layer represents a physical board side.
type Layer int

const (
	LayerTop Layer = iota
	LayerBottom
)

func (l Layer) String() string {
	switch l {
	case LayerBottom:
		return "Bottom"
	default:
		return "Top"
	}
}

// ParseLayer recognizes the layer spellings seen in placement exports from
// common EDA tools. Returns false for unrecognized values.
func ParseLayer(s string) (Layer, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top", "top layer", "t", "front", "f.cu":
		return LayerTop, true
	case "bottom", "bottom layer", "bot", "b", "back", "b.cu":
		return LayerBottom, true
	default:
		return LayerTop, false
	}
}

// LabelField selects which component field is rendered as the label text.
// The placement engine never sees this: field selection is resolved to a
// plain string before any geometry runs.
type LabelField int

const (
	FieldRefDes LabelField = iota
	FieldPackage
	FieldValue
)

func (f LabelField) String() string {
	switch f {
	case FieldPackage:
		return "Package"
	case FieldValue:
		return "Value"
	default:
		return "RefDes"
	}
}

// Component is a single part record from a placement file.
// Coordinates are board millimetres; rotation is degrees in [0, 360).
type Component struct {
	ID       string  `json:"id"`
	Num      int     `json:"num"`
	RefDes   string  `json:"refdes"`
	Package  string  `json:"package"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Layer    Layer   `json:"layer"`
	Rotation float64 `json:"rotation"`
	Value    string  `json:"value"`
}

// NewComponent builds a Component with a fresh short ID and the rotation
// normalized into [0, 360).
func NewComponent(num int, refdes, pkg string, x, y float64, layer Layer, rotation float64, value string) Component {
	return Component{
		ID:       uuid.New().String()[:8],
		Num:      num,
		RefDes:   refdes,
		Package:  pkg,
		X:        x,
		Y:        y,
		Layer:    layer,
		Rotation: NormalizeAngle(rotation),
		Value:    value,
	}
}

// NormalizeAngle maps an angle in degrees into [0, 360).
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// LabelText returns the text to render for the component under the given
// field. An empty value falls back to "N/A" so every label has content.
func (c Component) LabelText(f LabelField) string {
	switch f {
	case FieldPackage:
		return c.Package
	case FieldValue:
		if c.Value == "" {
			return "N/A"
		}
		return c.Value
	default:
		return c.RefDes
	}
}

// Board groups components by side, preserving the input order within each
// side. Order is significant: earlier components get first claim on their
// ideal label position.
type Board struct {
	Top    []Component
	Bottom []Component
}

// SplitByLayer distributes components into a Board, keeping input order.
func SplitByLayer(comps []Component) Board {
	var b Board
	for _, c := range comps {
		if c.Layer == LayerBottom {
			b.Bottom = append(b.Bottom, c)
		} else {
			b.Top = append(b.Top, c)
		}
	}
	return b
}

// Side returns the components on the given layer.
func (b Board) Side(l Layer) []Component {
	if l == LayerBottom {
		return b.Bottom
	}
	return b.Top
}

// Statistics summarizes a parsed placement file.
type Statistics struct {
	Total        int
	Top          int
	Bottom       int
	Packages     int
	UniqueValues int
}

// Stats computes summary counts across both sides.
func (b Board) Stats() Statistics {
	st := Statistics{
		Top:    len(b.Top),
		Bottom: len(b.Bottom),
	}
	st.Total = st.Top + st.Bottom
	pkgs := make(map[string]bool)
	vals := make(map[string]bool)
	for _, side := range [][]Component{b.Top, b.Bottom} {
		for _, c := range side {
			pkgs[c.Package] = true
			if c.Value != "" {
				vals[c.Value] = true
			}
		}
	}
	st.Packages = len(pkgs)
	st.UniqueValues = len(vals)
	return st
}
