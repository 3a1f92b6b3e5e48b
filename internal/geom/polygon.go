package geom

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/copperforge/copperline/internal/units"
)

// Polygon is a closed boundary described by its vertices in order. The
// closing edge from the last vertex back to the first is implicit.
type Polygon struct {
	Vertices []r2.Vec
}

var (
	// ErrTooFewVertices is returned for polygons with fewer than three vertices.
	ErrTooFewVertices = errors.New("polygon has fewer than three vertices")
	// ErrDegenerate is returned for polygons with effectively zero area.
	ErrDegenerate = errors.New("polygon has zero area")
	// ErrSelfIntersecting is returned when non-adjacent edges cross.
	ErrSelfIntersecting = errors.New("polygon is self-intersecting")
)

// edge returns the i-th edge, wrapping the closing edge.
func (p Polygon) edge(i int) Segment {
	n := len(p.Vertices)
	return Segment{Start: p.Vertices[i], End: p.Vertices[(i+1)%n]}
}

// Area returns the absolute area enclosed by the polygon (shoelace formula).
func (p Polygon) Area() float64 {
	var sum float64
	n := len(p.Vertices)
	for i := 0; i < n; i++ {
		a := p.Vertices[i]
		b := p.Vertices[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(sum) / 2
}

// Bounds returns the axis-aligned bounding box as (min, max) corners.
func (p Polygon) Bounds() (min, max r2.Vec) {
	if len(p.Vertices) == 0 {
		return r2.Vec{}, r2.Vec{}
	}
	min, max = p.Vertices[0], p.Vertices[0]
	for _, v := range p.Vertices[1:] {
		min.X = math.Min(min.X, v.X)
		min.Y = math.Min(min.Y, v.Y)
		max.X = math.Max(max.X, v.X)
		max.Y = math.Max(max.Y, v.Y)
	}
	return min, max
}

// Validate checks that the polygon is usable as a courtyard boundary.
// Self-intersecting outlines make inside/outside classification ambiguous,
// so the caller is expected to skip them with a warning.
func (p Polygon) Validate() error {
	n := len(p.Vertices)
	if n < 3 {
		return ErrTooFewVertices
	}
	if p.Area() < units.Tolerance*units.Tolerance {
		return ErrDegenerate
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			// Skip edges sharing a vertex (neighbours and the wrap pair).
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			if _, _, ok := p.edge(i).Intersect(p.edge(j)); ok {
				return ErrSelfIntersecting
			}
		}
	}
	return nil
}

// Contains reports whether the point lies strictly inside the polygon,
// using the even-odd ray casting rule.
func (p Polygon) Contains(pt r2.Vec) bool {
	n := len(p.Vertices)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi, vj := p.Vertices[i], p.Vertices[j]
		if (vi.Y > pt.Y) != (vj.Y > pt.Y) &&
			pt.X < (vj.X-vi.X)*(pt.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Crossings returns the parameters along seg at which the segment genuinely
// crosses the polygon boundary, sorted ascending. A genuine crossing flips
// the inside/outside state; tangent grazes at vertices or along edges are
// discarded. The returned slice always has even length when the segment
// starts and ends outside the polygon.
func (p Polygon) Crossings(seg Segment) []float64 {
	if seg.IsDegenerate() || len(p.Vertices) < 3 {
		return nil
	}

	// Collect candidate parameters against every edge.
	var ts []float64
	for i := range p.Vertices {
		if t, _, ok := seg.Intersect(p.edge(i)); ok {
			ts = append(ts, t)
		}
	}
	if len(ts) == 0 {
		return nil
	}
	sort.Float64s(ts)

	// Merge candidates closer than the coordinate tolerance: a crossing
	// exactly at a vertex is reported once per incident edge. Touches at
	// the segment ends are not crossings; a cut needs positive length on
	// both sides.
	tol := units.Tolerance / seg.Length()
	var merged []float64
	for _, t := range ts {
		if t < tol || t > 1-tol {
			continue
		}
		if len(merged) > 0 && t-merged[len(merged)-1] <= tol {
			continue
		}
		merged = append(merged, t)
	}
	if len(merged) == 0 {
		return nil
	}

	// Keep only candidates where the inside/outside state flips between
	// the surrounding intervals. Interval midpoints are classified with
	// ray casting; tangent touches see the same state on both sides.
	bounds := append([]float64{0}, merged...)
	bounds = append(bounds, 1)
	states := make([]bool, len(bounds)-1)
	for i := 0; i < len(bounds)-1; i++ {
		mid := (bounds[i] + bounds[i+1]) / 2
		states[i] = p.Contains(seg.PointAt(mid))
	}

	var crossings []float64
	for i, t := range merged {
		if states[i] != states[i+1] {
			crossings = append(crossings, t)
		}
	}
	return crossings
}
