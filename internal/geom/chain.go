package geom

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrOpenOutline is returned when outline primitives do not form closed
// rings: some endpoint is shared by a number of primitives other than two.
var ErrOpenOutline = errors.New("outline primitives do not form a closed boundary")

// node is a tolerance-quantized endpoint used to match primitives that
// meet within drawing tolerance rather than exactly.
type node struct {
	x, y int64
}

func quantize(p r2.Vec, tol float64) node {
	return node{
		x: int64(math.Round(p.X / tol)),
		y: int64(math.Round(p.Y / tol)),
	}
}

// prim is an outline primitive with its quantized endpoints.
type prim struct {
	pts  []r2.Vec
	a, b node
}

// ChainOutlines assembles unordered open outline primitives (polylines,
// typically two-point segments and flattened arcs) into closed polygons.
// Primitives connect where their endpoints coincide within tol. Every
// endpoint must be shared by exactly two primitive ends, the closure rule
// courtyard outlines are drawn to; anything else returns ErrOpenOutline.
func ChainOutlines(prims [][]r2.Vec, tol float64) ([]Polygon, error) {
	ps := make([]prim, 0, len(prims))
	degree := make(map[node]int)
	atNode := make(map[node][]int)
	for _, pts := range prims {
		if len(pts) < 2 {
			return nil, fmt.Errorf("%w: primitive with %d points", ErrOpenOutline, len(pts))
		}
		p := prim{pts: pts, a: quantize(pts[0], tol), b: quantize(pts[len(pts)-1], tol)}
		i := len(ps)
		ps = append(ps, p)
		degree[p.a]++
		degree[p.b]++
		atNode[p.a] = append(atNode[p.a], i)
		if p.b != p.a {
			atNode[p.b] = append(atNode[p.b], i)
		}
	}

	for n, d := range degree {
		if d != 2 {
			return nil, fmt.Errorf("%w: endpoint (%d, %d) touched %d times", ErrOpenOutline, n.x, n.y, d)
		}
	}

	visited := make([]bool, len(ps))
	var rings []Polygon
	for start := range ps {
		if visited[start] {
			continue
		}
		ring, err := walkRing(ps, atNode, visited, start, tol)
		if err != nil {
			return nil, err
		}
		rings = append(rings, ring)
	}
	return rings, nil
}

// walkRing follows connected primitives from ps[start] until the walk
// returns to its origin, reversing primitives as needed.
func walkRing(ps []prim, atNode map[node][]int, visited []bool, start int, tol float64) (Polygon, error) {
	var ring []r2.Vec
	appendPts := func(pts []r2.Vec) {
		for _, p := range pts {
			if len(ring) > 0 && Dist(ring[len(ring)-1], p) < tol {
				continue
			}
			ring = append(ring, p)
		}
	}

	visited[start] = true
	appendPts(ps[start].pts)
	origin := ps[start].a
	at := ps[start].b

	for at != origin {
		next := -1
		for _, i := range atNode[at] {
			if !visited[i] {
				next = i
				break
			}
		}
		if next == -1 {
			return Polygon{}, fmt.Errorf("%w: chain stalled before closing", ErrOpenOutline)
		}
		visited[next] = true
		if ps[next].a == at {
			appendPts(ps[next].pts)
			at = ps[next].b
		} else {
			appendPts(reversed(ps[next].pts))
			at = ps[next].a
		}
	}

	// Drop the duplicated closing point left by the final primitive.
	if len(ring) > 1 && Dist(ring[0], ring[len(ring)-1]) < tol {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return Polygon{}, fmt.Errorf("%w: ring collapsed to %d points", ErrOpenOutline, len(ring))
	}
	return Polygon{Vertices: ring}, nil
}

func reversed(pts []r2.Vec) []r2.Vec {
	out := make([]r2.Vec, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}
