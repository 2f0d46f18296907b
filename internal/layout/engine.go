package layout

import (
	"math"
	"unicode/utf8"
)

// Request is one label to place. Footprint is the physical extent of the
// component the label annotates; it feeds separation buffers only and never
// blocks placement at the anchor itself.
type Request struct {
	Anchor    Point
	Text      string
	Footprint Size
	Rotation  float64 // degrees
}

// Stage identifies which search tier produced a placement.
type Stage int

const (
	StageIdeal Stage = iota
	StageRing
	StageSpiral
	StageGrid
	StageForced
)

func (s Stage) String() string {
	switch s {
	case StageIdeal:
		return "ideal"
	case StageRing:
		return "ring"
	case StageSpiral:
		return "spiral"
	case StageGrid:
		return "grid"
	default:
		return "forced"
	}
}

// Placement is the engine's output for one Request. Forced is set when every
// search tier was exhausted and the label was positioned unconditionally,
// accepting visual overlap rather than dropping it.
type Placement struct {
	Request      Request
	Position     Point
	FontSize     float64
	TextRotation float64
	Stage        Stage
	Forced       bool
}

// occupied is a placed label's realized extent together with the component
// footprint it annotates (kept for buffer computation only).
type occupied struct {
	box  Box
	part Size
}

// Session places the labels of a single layer. It owns the append-only
// occupancy set: once a footprint is accepted it is never moved or removed,
// so later labels route around earlier ones and never the other way round.
// A Session must not be shared across layers.
type Session struct {
	settings Settings
	fontSize float64
	taken    []occupied
	forced   int
}

// NewSession creates a placement session using the given uniform font size.
func NewSession(s Settings, fontSize float64) *Session {
	return &Session{settings: s, fontSize: fontSize}
}

// Occupied returns the number of footprints recorded so far.
func (ss *Session) Occupied() int { return len(ss.taken) }

// ForcedCount returns how many placements exhausted the search budget.
func (ss *Session) ForcedCount() int { return ss.forced }

// textExtent estimates the printed size of a label. The estimate is a crude
// character-count model, which is fine: it only needs to be a stable,
// monotonic proxy so that overlap decisions are reproducible. Degenerate
// extents are clamped to keep later step-size divisions sane.
func (ss *Session) textExtent(text string) (w, h float64) {
	n := utf8.RuneCountInString(text)
	w = float64(n) * ss.fontSize * ss.settings.CharWidthRatio
	h = ss.fontSize
	if w < ss.settings.MinTextDim {
		w = ss.settings.MinTextDim
	}
	if h < ss.settings.MinTextDim {
		h = ss.settings.MinTextDim
	}
	return w, h
}

// buffer computes the dynamic separation margin between two labels from the
// component footprints they annotate: half the smallest footprint dimension,
// never below the absolute minimum. Small parts pack tighter, big parts get
// more air.
func (ss *Session) buffer(a, b Size) float64 {
	smallest := math.Min(math.Min(a.W, a.H), math.Min(b.W, b.H))
	return math.Max(ss.settings.MinBuffer, smallest*ss.settings.BufferFraction)
}

// isFree reports whether a candidate box clears every recorded footprint.
func (ss *Session) isFree(cand Box, part Size) bool {
	for _, o := range ss.taken {
		if Overlaps(cand, o.box, ss.buffer(part, o.part)) {
			return false
		}
	}
	return true
}

// clampSize guards against zero-size footprints reaching buffer math.
func (ss *Session) clampSize(s Size) Size {
	if s.W < ss.settings.MinTextDim {
		s.W = ss.settings.MinTextDim
	}
	if s.H < ss.settings.MinTextDim {
		s.H = ss.settings.MinTextDim
	}
	return s
}

// Place finds a position for one label and records its footprint. Every
// request receives exactly one placement; there is no rejected state.
func (ss *Session) Place(req Request) Placement {
	tw, th := ss.textExtent(req.Text)
	part := ss.clampSize(req.Footprint)

	pl := Placement{
		Request:      req,
		FontSize:     ss.fontSize,
		TextRotation: NormalizeTextRotation(req.Rotation),
	}

	pos, stage := ss.search(req.Anchor, tw, th, part)
	pl.Position = pos
	pl.Stage = stage
	if stage == StageForced {
		pl.Forced = true
		ss.forced++
	}

	// Forced placements are recorded too: the position is final either way.
	ss.taken = append(ss.taken, occupied{box: NewBox(pos, tw, th), part: part})
	return pl
}

// search runs the tiered position search around the anchor.
func (ss *Session) search(anchor Point, tw, th float64, part Size) (Point, Stage) {
	// Tier 1: the anchor itself. This is the dominant path; a label sits on
	// its true coordinate whenever physically possible.
	if ss.isFree(NewBox(anchor, tw, th), part) {
		return anchor, StageIdeal
	}

	// Tier 2: fixed ring of near offsets, ordered so the visually closest
	// positions are tried first.
	minOffset := math.Max(tw, th)/2 + ss.settings.RingOffsetPad
	for _, off := range ringOffsets(minOffset) {
		p := Point{X: anchor.X + off.X, Y: anchor.Y + off.Y}
		if ss.isFree(NewBox(p, tw, th), part) {
			return p, StageRing
		}
	}

	maxRadius := ss.settings.MaxRadiusFactor * math.Max(tw, th)

	// Tier 3: concentric rings of increasing radius, sampling angles in
	// fixed increments, radius outward then angle around each ring.
	step := math.Min(tw, th) / ss.settings.SpiralStepDiv
	for r := step; r < maxRadius; r += step {
		for ang := 0.0; ang < 2*math.Pi; ang += ss.settings.SpiralAngleStep {
			p := Point{X: anchor.X + r*math.Cos(ang), Y: anchor.Y + r*math.Sin(ang)}
			if ss.isFree(NewBox(p, tw, th), part) {
				return p, StageSpiral
			}
		}
	}

	// Tier 4: uniform grid over the full search square, row-major.
	gstep := math.Min(tw, th) / ss.settings.GridStepDiv
	for dy := -maxRadius; dy < maxRadius; dy += gstep {
		for dx := -maxRadius; dx < maxRadius; dx += gstep {
			p := Point{X: anchor.X + dx, Y: anchor.Y + dy}
			if ss.isFree(NewBox(p, tw, th), part) {
				return p, StageGrid
			}
		}
	}

	// Last resort: park the label at the search boundary. Overlap is
	// accepted; silently dropping a component's label is not.
	return Point{X: anchor.X + maxRadius, Y: anchor.Y + maxRadius}, StageForced
}

// ringOffsets returns the near-offset candidates in their fixed trial order:
// the four cardinal directions, the four diagonals at reduced magnitude,
// then the cardinals again at 1.5x the base magnitude.
func ringOffsets(m float64) [12]Point {
	d := m * 0.7
	f := m * 1.5
	return [12]Point{
		{m, 0}, {-m, 0}, {0, m}, {0, -m},
		{d, d}, {-d, d}, {d, -d}, {-d, -d},
		{f, 0}, {-f, 0}, {0, f}, {0, -f},
	}
}

// PlaceAll places every request in input order and returns one placement per
// request, in the same order.
func (ss *Session) PlaceAll(reqs []Request) []Placement {
	out := make([]Placement, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, ss.Place(r))
	}
	return out
}

// LayerResult is the outcome of the per-layer pipeline.
type LayerResult struct {
	Placements []Placement
	FontSize   float64
	MinSpacing float64
	Forced     int
}

// PlaceLayer runs the full pipeline for one layer: density estimation, font
// size selection, then sequential placement. An empty request list yields an
// empty result; it is not an error, it means "skip this layer".
func PlaceLayer(reqs []Request, s Settings) LayerResult {
	if len(reqs) == 0 {
		return LayerResult{FontSize: s.MinFontSize}
	}

	pts := make([]Point, len(reqs))
	for i, r := range reqs {
		pts[i] = r.Anchor
	}
	spacing := MinPairwiseDistance(pts, s)
	fontSize := SelectFontSize(spacing, s)

	sess := NewSession(s, fontSize)
	return LayerResult{
		Placements: sess.PlaceAll(reqs),
		FontSize:   fontSize,
		MinSpacing: spacing,
		Forced:     sess.ForcedCount(),
	}
}
