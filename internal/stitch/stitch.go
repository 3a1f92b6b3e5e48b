// Package stitch implements the ground-via stitching analysis: for every
// signal via it finds the nearest ground-reference via reachable on a shared
// copper layer and reports the pairs whose separation exceeds a threshold.
package stitch

import (
	"math"
	"sort"

	"github.com/copperforge/copperline/internal/board"
	"github.com/copperforge/copperline/internal/geom"
)

// DefaultThreshold is the stitching distance limit in millimetres.
const DefaultThreshold = 2.0

// DefaultGroundClasses are the net classes treated as stitching reference
// when none are configured.
var DefaultGroundClasses = []string{"GND"}

// Params configures the analysis.
type Params struct {
	// Threshold is the maximum acceptable signal-to-ground via distance
	// in millimetres.
	Threshold float64
	// GroundClasses lists the net classes whose vias count as stitching
	// reference. Every other via is a signal via.
	GroundClasses []string
}

// Violation is a signal via too far from its nearest ground via. Ground is
// nil and Distance is +Inf when no ground via shares a copper layer with the
// signal via; such vias always violate and must be surfaced, not skipped.
type Violation struct {
	Signal   board.Via
	Ground   *board.Via
	Distance float64
}

// Unreachable reports whether the violation has no ground partner at all.
func (v Violation) Unreachable() bool {
	return v.Ground == nil
}

// Partition splits vias into signal and ground-reference sets by net class.
func Partition(vias []board.Via, groundClasses []string) (signal, ground []board.Via) {
	isGround := make(map[string]bool, len(groundClasses))
	for _, c := range groundClasses {
		isGround[c] = true
	}
	for _, v := range vias {
		if isGround[v.NetClass] {
			ground = append(ground, v)
		} else {
			signal = append(signal, v)
		}
	}
	return signal, ground
}

// NearestGround returns the closest ground via sharing a copper layer with
// v, and the distance to it. Candidates are scanned in document order and
// ties keep the first hit, so results are stable across runs. Returns nil
// and +Inf when no candidate is layer-compatible.
func NearestGround(v board.Via, ground []board.Via) (*board.Via, float64) {
	best := math.Inf(1)
	var nearest *board.Via
	for i := range ground {
		g := &ground[i]
		if !v.Layers.Intersects(g.Layers) {
			continue
		}
		if d := geom.Dist(v.Position, g.Position); d < best {
			best = d
			nearest = g
		}
	}
	return nearest, best
}

// Analyze runs the full check and returns violations sorted by signal via
// position (x, then y, then ID) so that regenerated annotations come out
// identical between runs.
func Analyze(vias []board.Via, p Params) []Violation {
	if p.Threshold <= 0 {
		p.Threshold = DefaultThreshold
	}
	classes := p.GroundClasses
	if len(classes) == 0 {
		classes = DefaultGroundClasses
	}

	signal, ground := Partition(vias, classes)

	var violations []Violation
	for _, s := range signal {
		nearest, d := NearestGround(s, ground)
		if nearest == nil {
			violations = append(violations, Violation{Signal: s, Distance: math.Inf(1)})
			continue
		}
		if d > p.Threshold {
			g := *nearest
			violations = append(violations, Violation{Signal: s, Ground: &g, Distance: d})
		}
	}

	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i].Signal, violations[j].Signal
		if a.Position.X != b.Position.X {
			return a.Position.X < b.Position.X
		}
		if a.Position.Y != b.Position.Y {
			return a.Position.Y < b.Position.Y
		}
		return a.ID.String() < b.ID.String()
	})
	return violations
}
