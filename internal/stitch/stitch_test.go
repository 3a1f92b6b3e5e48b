package stitch

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/copperforge/copperline/internal/board"
	"github.com/copperforge/copperline/internal/geom"
)

func signalVia(x, y float64) board.Via {
	return board.Via{
		ID: board.NewItemID(), Position: r2.Vec{X: x, Y: y},
		Net: "DATA0", NetClass: "signal", Layers: board.AllCopper,
	}
}

func groundVia(x, y float64) board.Via {
	return board.Via{
		ID: board.NewItemID(), Position: r2.Vec{X: x, Y: y},
		Net: "GND", NetClass: "GND", Layers: board.AllCopper,
	}
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	t.Run("reports pair beyond threshold", func(t *testing.T) {
		t.Parallel()
		vias := []board.Via{signalVia(0, 0), groundVia(3, 0)}

		violations := Analyze(vias, Params{Threshold: 2})
		require.Len(t, violations, 1)
		assert.Equal(t, vias[0].ID, violations[0].Signal.ID)
		require.NotNil(t, violations[0].Ground)
		assert.Equal(t, vias[1].ID, violations[0].Ground.ID)
		assert.InDelta(t, 3.0, violations[0].Distance, 1e-12)
	})

	t.Run("quiet within threshold", func(t *testing.T) {
		t.Parallel()
		vias := []board.Via{signalVia(0, 0), groundVia(1.5, 0)}
		assert.Empty(t, Analyze(vias, Params{Threshold: 2}))
	})

	t.Run("picks the nearest ground via", func(t *testing.T) {
		t.Parallel()
		far := groundVia(10, 0)
		near := groundVia(4, 0)
		vias := []board.Via{signalVia(0, 0), far, near}

		violations := Analyze(vias, Params{Threshold: 2})
		require.Len(t, violations, 1)
		assert.Equal(t, near.ID, violations[0].Ground.ID)
		assert.InDelta(t, 4.0, violations[0].Distance, 1e-12)
	})

	t.Run("ignores ground vias on disjoint layers", func(t *testing.T) {
		t.Parallel()
		s := signalVia(0, 0)
		s.Layers = board.NewLayerSet(board.LayerFrontCopper)
		g := groundVia(1, 0)
		g.Layers = board.NewLayerSet(board.LayerBackCopper)

		violations := Analyze([]board.Via{s, g}, Params{Threshold: 2})
		require.Len(t, violations, 1)
		assert.True(t, violations[0].Unreachable())
		assert.True(t, math.IsInf(violations[0].Distance, 1))
	})

	t.Run("no ground vias at all", func(t *testing.T) {
		t.Parallel()
		violations := Analyze([]board.Via{signalVia(0, 0)}, Params{Threshold: 2})
		require.Len(t, violations, 1)
		assert.True(t, violations[0].Unreachable())
	})

	t.Run("equidistant tie keeps first in document order", func(t *testing.T) {
		t.Parallel()
		first := groundVia(0, 5)
		second := groundVia(0, -5)
		vias := []board.Via{signalVia(0, 0), first, second}

		violations := Analyze(vias, Params{Threshold: 2})
		require.Len(t, violations, 1)
		assert.Equal(t, first.ID, violations[0].Ground.ID)
	})
}

func TestNearestGroundMatchesBruteForce(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	var ground []board.Via
	for i := 0; i < 200; i++ {
		ground = append(ground, groundVia(rng.Float64()*100, rng.Float64()*100))
	}

	for i := 0; i < 50; i++ {
		s := signalVia(rng.Float64()*100, rng.Float64()*100)

		want := math.Inf(1)
		for _, g := range ground {
			if d := geom.Dist(s.Position, g.Position); d < want {
				want = d
			}
		}

		nearest, got := NearestGround(s, ground)
		require.NotNil(t, nearest)
		assert.Equal(t, want, got)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	var vias []board.Via
	for i := 0; i < 60; i++ {
		vias = append(vias, signalVia(rng.Float64()*50, rng.Float64()*50))
	}
	for i := 0; i < 5; i++ {
		vias = append(vias, groundVia(rng.Float64()*50, rng.Float64()*50))
	}

	p := Params{Threshold: 1}
	first := Analyze(vias, p)
	second := Analyze(vias, p)
	assert.Equal(t, first, second)

	// Sorted by signal position.
	for i := 1; i < len(first); i++ {
		a, b := first[i-1].Signal.Position, first[i].Signal.Position
		if a.X == b.X {
			assert.LessOrEqual(t, a.Y, b.Y)
		} else {
			assert.Less(t, a.X, b.X)
		}
	}
}

func TestAnnotations(t *testing.T) {
	t.Parallel()

	g := groundVia(3, 0)
	pair := Violation{Signal: signalVia(0, 0), Ground: &g, Distance: 3}
	lost := Violation{Signal: signalVia(5, 5), Distance: math.Inf(1)}

	got := Annotations([]Violation{pair, lost})
	require.Len(t, got, 3) // one line plus a two-segment X marker

	assert.Equal(t, pair.Signal.Position, got[0].Start)
	assert.Equal(t, g.Position, got[0].End)
	for _, a := range got {
		assert.Equal(t, AnnotationWidth, a.Width)
	}
}

func TestRenderIdempotent(t *testing.T) {
	t.Parallel()

	doc := board.NewMemDocument()
	vias := []board.Via{signalVia(0, 0), groundVia(3, 0), signalVia(20, 20)}
	violations := Analyze(vias, Params{Threshold: 2})

	require.NoError(t, Render(doc, board.LayerAnnotations, violations))
	first := doc.Annotations(board.LayerAnnotations)

	require.NoError(t, Render(doc, board.LayerAnnotations, violations))
	second := doc.Annotations(board.LayerAnnotations)

	assert.Equal(t, first, second, "re-render must replace, not append")
}
