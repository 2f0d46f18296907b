package layout

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinPairwiseDistance_TwoPoints(t *testing.T) {
	pts := []Point{{0, 0}, {3, 4}}
	assert.InDelta(t, 5.0, MinPairwiseDistance(pts, DefaultSettings()), 1e-9)
}

func TestMinPairwiseDistance_PicksClosestPair(t *testing.T) {
	pts := []Point{{0, 0}, {10, 0}, {10.5, 0}, {20, 20}}
	assert.InDelta(t, 0.5, MinPairwiseDistance(pts, DefaultSettings()), 1e-9)
}

func TestMinPairwiseDistance_FewerThanTwoPoints(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, s.DefaultSpacing, MinPairwiseDistance(nil, s))
	assert.Equal(t, s.DefaultSpacing, MinPairwiseDistance([]Point{{1, 1}}, s))
}

func TestMinPairwiseDistance_CoincidentPointsIgnored(t *testing.T) {
	// Stacked anchors must not collapse the estimate to zero.
	pts := []Point{{0, 0}, {0, 0}, {0, 0}, {2, 0}}
	assert.InDelta(t, 2.0, MinPairwiseDistance(pts, DefaultSettings()), 1e-9)
}

func TestMinPairwiseDistance_AllCoincident(t *testing.T) {
	s := DefaultSettings()
	pts := []Point{{5, 5}, {5, 5}, {5, 5}}
	assert.Equal(t, s.DefaultSpacing, MinPairwiseDistance(pts, s))
}

func TestMinPairwiseDistance_KDTreeMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pts := make([]Point, 200)
	for i := range pts {
		pts[i] = Point{X: rng.Float64() * 100, Y: rng.Float64() * 100}
	}

	brute := DefaultSettings()
	brute.KDTreeThreshold = 10000 // force the exact scan
	kd := DefaultSettings()
	kd.KDTreeThreshold = 2 // force the tree path

	want := MinPairwiseDistance(pts, brute)
	got := MinPairwiseDistance(pts, kd)
	require.False(t, math.IsInf(want, 1))
	assert.InDelta(t, want, got, 1e-9)
}

func TestMinPairwiseDistance_LargeSetIsPositive(t *testing.T) {
	// A dense grid exercises the kd-tree path with many equal-distance
	// neighbours.
	var pts []Point
	for x := 0; x < 12; x++ {
		for y := 0; y < 12; y++ {
			pts = append(pts, Point{X: float64(x) * 1.27, Y: float64(y) * 1.27})
		}
	}
	got := MinPairwiseDistance(pts, DefaultSettings())
	assert.InDelta(t, 1.27, got, 1e-9)
}
