package geom

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func seg(x0, y0, x1, y1 float64) []r2.Vec {
	return []r2.Vec{{X: x0, Y: y0}, {X: x1, Y: y1}}
}

func TestChainOutlinesSquare(t *testing.T) {
	// Four edges of a unit square in shuffled order and mixed directions,
	// the way outline primitives come back from the host.
	prims := [][]r2.Vec{
		seg(1, 1, 0, 1),
		seg(0, 0, 1, 0),
		seg(0, 1, 0, 0),
		seg(1, 0, 1, 1),
	}

	rings, err := ChainOutlines(prims, 0.001)
	if err != nil {
		t.Fatalf("ChainOutlines: %v", err)
	}
	if len(rings) != 1 {
		t.Fatalf("got %d rings, want 1", len(rings))
	}
	if got := len(rings[0].Vertices); got != 4 {
		t.Errorf("ring has %d vertices, want 4", got)
	}
	if err := rings[0].Validate(); err != nil {
		t.Errorf("chained ring invalid: %v", err)
	}
}

func TestChainOutlinesTolerance(t *testing.T) {
	// Endpoints that miss each other by less than the tolerance still chain.
	prims := [][]r2.Vec{
		seg(0, 0, 1, 0),
		seg(1.0004, 0, 1, 1),
		seg(1, 1.0003, 0, 1),
		seg(0, 1, 0, 0.0002),
	}
	rings, err := ChainOutlines(prims, 0.001)
	if err != nil {
		t.Fatalf("ChainOutlines: %v", err)
	}
	if len(rings) != 1 {
		t.Fatalf("got %d rings, want 1", len(rings))
	}
}

func TestChainOutlinesOpen(t *testing.T) {
	// A dangling edge leaves two endpoints with degree one.
	prims := [][]r2.Vec{
		seg(0, 0, 1, 0),
		seg(1, 0, 1, 1),
	}
	if _, err := ChainOutlines(prims, 0.001); !errors.Is(err, ErrOpenOutline) {
		t.Errorf("got %v, want ErrOpenOutline", err)
	}
}

func TestChainOutlinesTwoRings(t *testing.T) {
	prims := [][]r2.Vec{
		seg(0, 0, 1, 0), seg(1, 0, 1, 1), seg(1, 1, 0, 1), seg(0, 1, 0, 0),
		seg(5, 5, 6, 5), seg(6, 5, 6, 6), seg(6, 6, 5, 6), seg(5, 6, 5, 5),
	}
	rings, err := ChainOutlines(prims, 0.001)
	if err != nil {
		t.Fatalf("ChainOutlines: %v", err)
	}
	if len(rings) != 2 {
		t.Fatalf("got %d rings, want 2", len(rings))
	}
}

func TestChainOutlinesWithArc(t *testing.T) {
	// A rounded corner: three straight edges plus a quarter-circle arc
	// from (1, 0.5) up to (0.5, 1) around (0.5, 0.5).
	arc := Arc{
		Start: r2.Vec{X: 1, Y: 0.5},
		Mid:   r2.Vec{X: 0.5 + 0.5/1.4142135623730951, Y: 0.5 + 0.5/1.4142135623730951},
		End:   r2.Vec{X: 0.5, Y: 1},
	}
	prims := [][]r2.Vec{
		seg(0, 0, 1, 0),
		seg(1, 0, 1, 0.5),
		arc.Flatten(),
		seg(0.5, 1, 0, 1),
		seg(0, 1, 0, 0),
	}
	rings, err := ChainOutlines(prims, 0.001)
	if err != nil {
		t.Fatalf("ChainOutlines: %v", err)
	}
	if len(rings) != 1 {
		t.Fatalf("got %d rings, want 1", len(rings))
	}
	if err := rings[0].Validate(); err != nil {
		t.Errorf("ring with arc invalid: %v", err)
	}
	// The arc corner must be interior to the ring's bounding box edge.
	if !rings[0].Contains(r2.Vec{X: 0.5, Y: 0.5}) {
		t.Error("center of rounded square not inside ring")
	}
}

func TestArcFlatten(t *testing.T) {
	// Semicircle of radius 1 around the origin, counterclockwise.
	a := Arc{
		Start: r2.Vec{X: 1, Y: 0},
		Mid:   r2.Vec{X: 0, Y: 1},
		End:   r2.Vec{X: -1, Y: 0},
	}
	pts := a.Flatten()
	if len(pts) < 90 {
		t.Fatalf("semicircle flattened to only %d points", len(pts))
	}
	if !Coincident(pts[0], a.Start) || !Coincident(pts[len(pts)-1], a.End) {
		t.Error("flattened arc does not start/end at the arc endpoints")
	}
	for _, p := range pts {
		if d := Dist(p, r2.Vec{}); d < 0.999 || d > 1.001 {
			t.Fatalf("flattened point %v at radius %v", p, d)
		}
		if p.Y < -1e-9 {
			t.Fatalf("flattened point %v below the chord", p)
		}
	}
}

func TestArcFlattenDegenerate(t *testing.T) {
	a := Arc{
		Start: r2.Vec{X: 0, Y: 0},
		Mid:   r2.Vec{X: 1, Y: 0},
		End:   r2.Vec{X: 2, Y: 0},
	}
	pts := a.Flatten()
	if len(pts) != 2 {
		t.Fatalf("degenerate arc flattened to %d points, want 2 (chord)", len(pts))
	}
}
