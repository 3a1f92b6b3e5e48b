package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Arc is a circular arc described by its start, a point on the arc, and its
// end, the form used by the host editor for board outlines.
type Arc struct {
	Start r2.Vec
	Mid   r2.Vec
	End   r2.Vec
}

// Center returns the circumcenter of the three defining points, or false
// when they are collinear and the arc is degenerate.
func (a Arc) Center() (r2.Vec, bool) {
	ax, ay := a.Start.X, a.Start.Y
	bx, by := a.Mid.X, a.Mid.Y
	cx, cy := a.End.X, a.End.Y

	d := 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
	if math.Abs(d) < 1e-12 {
		return r2.Vec{}, false
	}
	ux := ((ax*ax+ay*ay)*(by-cy) + (bx*bx+by*by)*(cy-ay) + (cx*cx+cy*cy)*(ay-by)) / d
	uy := ((ax*ax+ay*ay)*(cx-bx) + (bx*bx+by*by)*(ax-cx) + (cx*cx+cy*cy)*(bx-ax)) / d
	return r2.Vec{X: ux, Y: uy}, true
}

// Flatten approximates the arc as a polyline with roughly one point per
// degree of sweep. Degenerate (collinear) arcs flatten to their chord. The
// first and last points are exactly Start and End so that flattened arcs
// chain cleanly with neighbouring outline primitives.
func (a Arc) Flatten() []r2.Vec {
	center, ok := a.Center()
	if !ok {
		return []r2.Vec{a.Start, a.End}
	}
	radius := Dist(center, a.Start)

	startAngle := math.Atan2(a.Start.Y-center.Y, a.Start.X-center.X)
	endAngle := math.Atan2(a.End.Y-center.Y, a.End.X-center.X)

	// The winding direction follows which side of the start-center axis
	// the mid point falls on.
	ccw := r2.Cross(r2.Sub(a.Start, center), r2.Sub(a.Mid, center)) > 0
	if ccw && endAngle < startAngle {
		endAngle += 2 * math.Pi
	} else if !ccw && endAngle > startAngle {
		endAngle -= 2 * math.Pi
	}

	sweep := math.Abs(endAngle - startAngle)
	n := int(sweep*180/math.Pi) + 2
	pts := make([]r2.Vec, 0, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		ang := startAngle + (endAngle-startAngle)*t
		pts = append(pts, r2.Vec{
			X: center.X + radius*math.Cos(ang),
			Y: center.Y + radius*math.Sin(ang),
		})
	}
	pts[0] = a.Start
	pts[n-1] = a.End
	return pts
}
