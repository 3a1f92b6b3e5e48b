// Package geom implements the 2D primitives used by the stitching analyzer
// and the neckdown cutter: line segments, closed polygons, and flattened
// arcs. Coordinates are millimetres in a y-up frame; vectors are
// gonum spatial/r2 values.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/copperforge/copperline/internal/units"
)

// Segment is a directed straight line segment.
type Segment struct {
	Start r2.Vec
	End   r2.Vec
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return r2.Norm(r2.Sub(s.End, s.Start))
}

// PointAt returns the point at parameter t, where t=0 is Start and t=1 is End.
func (s Segment) PointAt(t float64) r2.Vec {
	return r2.Add(s.Start, r2.Scale(t, r2.Sub(s.End, s.Start)))
}

// IsDegenerate reports whether the segment is shorter than the coordinate
// tolerance and therefore unusable for crossing computations.
func (s Segment) IsDegenerate() bool {
	return s.Length() < units.Tolerance
}

// Intersect computes the intersection of two segments. It returns the
// parameters t (along s) and u (along o) of the intersection point and
// whether both fall inside [0, 1]. Parallel and collinear pairs report no
// intersection: a collinear overlap is a graze, not a crossing.
func (s Segment) Intersect(o Segment) (t, u float64, ok bool) {
	d1 := r2.Sub(s.End, s.Start)
	d2 := r2.Sub(o.End, o.Start)

	denom := r2.Cross(d1, d2)
	if math.Abs(denom) < 1e-12 {
		return 0, 0, false
	}

	w := r2.Sub(o.Start, s.Start)
	t = r2.Cross(w, d2) / denom
	u = r2.Cross(w, d1) / denom

	const eps = 1e-9
	if t < -eps || t > 1+eps || u < -eps || u > 1+eps {
		return 0, 0, false
	}
	return clamp01(t), clamp01(u), true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// Coincident reports whether two points are within coordinate tolerance.
func Coincident(a, b r2.Vec) bool {
	return Dist(a, b) < units.Tolerance
}
