package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// MinPairwiseDistance returns the smallest strictly-positive distance between
// any two anchor points, the proxy for how tight the tightest neighbourhood
// is. Coincident points are ignored so stacked anchors cannot collapse the
// estimate to zero. Layers with fewer than two distinct points fall back to
// s.DefaultSpacing.
//
// Small layers use the exact O(n^2) scan; past s.KDTreeThreshold distinct
// points a kd-tree nearest-neighbour query takes over. Both paths return the
// same value.
func MinPairwiseDistance(pts []Point, s Settings) float64 {
	unique := dedupe(pts)
	if len(unique) < 2 {
		return s.DefaultSpacing
	}
	if len(unique) < s.KDTreeThreshold {
		return minDistBrute(unique)
	}
	return minDistKD(unique)
}

// dedupe removes exact coordinate duplicates, preserving first-seen order.
func dedupe(pts []Point) []Point {
	seen := make(map[Point]bool, len(pts))
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func minDistBrute(pts []Point) float64 {
	best := math.Inf(1)
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			dx := pts[i].X - pts[j].X
			dy := pts[i].Y - pts[j].Y
			if d2 := dx*dx + dy*dy; d2 < best {
				best = d2
			}
		}
	}
	return math.Sqrt(best)
}

// minDistKD computes the same minimum via nearest-neighbour queries.
// Points are deduplicated by the caller, so for every query point the
// second-closest tree member is a distinct point at positive distance.
func minDistKD(pts []Point) float64 {
	data := make(kdtree.Points, len(pts))
	for i, p := range pts {
		data[i] = kdtree.Point{p.X, p.Y}
	}
	tree := kdtree.New(data, false)

	best := math.Inf(1)
	for _, q := range data {
		keep := kdtree.NewNKeeper(2)
		tree.NearestSet(keep, q)
		for _, cd := range keep.Heap {
			if cd.Comparable == nil || math.IsInf(cd.Dist, 1) {
				continue
			}
			// Dist is the squared Euclidean distance; zero is the query
			// point finding itself.
			if cd.Dist > 0 && cd.Dist < best {
				best = cd.Dist
			}
		}
	}
	return math.Sqrt(best)
}
