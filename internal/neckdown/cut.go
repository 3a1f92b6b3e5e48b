// Package neckdown cuts copper tracks where they cross footprint courtyard
// boundaries. Each crossing is moved outward along the track by a configured
// offset, the track is split there, and the piece passing through the
// courtyard gets its width nudged by one routing-grid unit so the host
// editor cannot silently heal the split back together.
package neckdown

import (
	"log"
	"sort"

	"github.com/copperforge/copperline/internal/board"
	"github.com/copperforge/copperline/internal/geom"
	"github.com/copperforge/copperline/internal/units"
)

// DefaultOffset is the cut offset from the courtyard boundary in millimetres.
const DefaultOffset = 0.5

// Params configures the cutter.
type Params struct {
	// Offset is how far beyond each courtyard crossing, along the track,
	// the cut is placed. Clamped so cuts never pass a segment end or a
	// neighbouring crossing region.
	Offset float64
	// WidthNudge is added to the width of in-courtyard pieces. Defaults
	// to one routing-grid unit.
	WidthNudge float64
}

// Result lists the edits to stage on the document. Remove holds only
// original input tracks; intermediate pieces that were re-cut by a later
// footprint never reach the board.
type Result struct {
	Remove []board.ItemID
	Create []board.Track
	// SkippedCourtyards counts malformed courtyard outlines that were
	// ignored with a warning.
	SkippedCourtyards int
}

// Changed reports whether the cut produced any edits.
func (r Result) Changed() bool {
	return len(r.Remove) > 0 || len(r.Create) > 0
}

// Cut processes every footprint in order against the current track set.
// Replacement pieces from one footprint are candidate inputs to the next,
// so tracks running through several courtyards end up cut at each.
func Cut(tracks []board.Track, footprints []board.Footprint, p Params) Result {
	if p.WidthNudge == 0 {
		p.WidthNudge = units.GridUnit
	}
	if p.Offset < 0 {
		p.Offset = DefaultOffset
	}

	current := append([]board.Track(nil), tracks...)
	createdByUs := make(map[board.ItemID]bool)
	var res Result

	for _, fp := range footprints {
		for _, side := range []struct {
			layer board.Layer
			polys []geom.Polygon
		}{
			{board.LayerFrontCopper, fp.FrontCourtyard},
			{board.LayerBackCopper, fp.BackCourtyard},
		} {
			polys := validCourtyards(fp.Reference, side.polys, &res)
			if len(polys) == 0 {
				continue
			}
			current = cutLayer(current, polys, side.layer, p, createdByUs, &res)
		}
	}

	for _, t := range current {
		if createdByUs[t.ID] {
			res.Create = append(res.Create, t)
		}
	}
	return res
}

func validCourtyards(ref string, polys []geom.Polygon, res *Result) []geom.Polygon {
	valid := polys[:0:0]
	for _, poly := range polys {
		if err := poly.Validate(); err != nil {
			log.Printf("[neckdown] skipping courtyard of %s: %v", ref, err)
			res.SkippedCourtyards++
			continue
		}
		valid = append(valid, poly)
	}
	return valid
}

func cutLayer(current []board.Track, polys []geom.Polygon, layer board.Layer, p Params, createdByUs map[board.ItemID]bool, res *Result) []board.Track {
	out := make([]board.Track, 0, len(current))
	for _, tr := range current {
		if tr.Layer != layer {
			out = append(out, tr)
			continue
		}
		pieces := cutTrack(tr, polys, p)
		if pieces == nil {
			out = append(out, tr)
			continue
		}
		if createdByUs[tr.ID] {
			// An intermediate piece: replace it silently.
			delete(createdByUs, tr.ID)
		} else {
			res.Remove = append(res.Remove, tr.ID)
		}
		for _, pc := range pieces {
			createdByUs[pc.ID] = true
			out = append(out, pc)
		}
	}
	return out
}

// span is an interval of track parameters covering one pass through a
// courtyard, already widened by the offset.
type span struct {
	a, b float64
}

// cutTrack returns the replacement pieces for one track, or nil when the
// track needs no cut (no genuine boundary crossing, or every cut point
// clamps onto a segment end — which is what happens when the cutter is
// re-run over its own output).
func cutTrack(tr board.Track, polys []geom.Polygon, p Params) []board.Track {
	seg := tr.Segment()
	if seg.IsDegenerate() {
		log.Printf("[neckdown] skipping degenerate track %s", tr.ID)
		return nil
	}

	length := seg.Length()
	offT := p.Offset / length
	tol := units.Tolerance / length

	var spans []span
	for _, poly := range polys {
		for _, iv := range insideIntervals(poly, seg) {
			spans = append(spans, span{a: iv.a - offT, b: iv.b + offT})
		}
	}
	if len(spans) == 0 {
		return nil
	}
	spans = mergeSpans(spans)

	// Cut points are the span boundaries that land strictly inside the
	// segment. A boundary clamped to an end contributes no cut.
	var cuts []float64
	for _, s := range spans {
		if s.a > tol {
			cuts = append(cuts, s.a)
		}
		if s.b < 1-tol {
			cuts = append(cuts, s.b)
		}
	}
	if len(cuts) == 0 {
		return nil
	}
	sort.Float64s(cuts)

	bounds := append([]float64{0}, cuts...)
	bounds = append(bounds, 1)
	pieces := make([]board.Track, 0, len(bounds)-1)
	for i := 0; i < len(bounds)-1; i++ {
		mid := (bounds[i] + bounds[i+1]) / 2
		width := tr.Width
		if insideAnySpan(spans, mid) {
			width += p.WidthNudge
		}
		pieces = append(pieces, board.Track{
			ID:    board.NewItemID(),
			Start: seg.PointAt(bounds[i]),
			End:   seg.PointAt(bounds[i+1]),
			Width: width,
			Layer: tr.Layer,
			Net:   tr.Net,
		})
	}
	return pieces
}

// insideIntervals returns the parameter intervals of seg lying inside poly,
// derived from the genuine boundary crossings.
func insideIntervals(poly geom.Polygon, seg geom.Segment) []span {
	crossings := poly.Crossings(seg)
	if len(crossings) == 0 {
		return nil
	}
	bounds := append([]float64{0}, crossings...)
	bounds = append(bounds, 1)

	var out []span
	for i := 0; i < len(bounds)-1; i++ {
		mid := (bounds[i] + bounds[i+1]) / 2
		if poly.Contains(seg.PointAt(mid)) {
			out = append(out, span{a: bounds[i], b: bounds[i+1]})
		}
	}
	return out
}

// mergeSpans unions overlapping spans and clamps them to the segment. Two
// courtyard passes whose offset regions touch collapse into one, which is
// how a cut point is kept from walking across a neighbouring crossing.
func mergeSpans(spans []span) []span {
	for i := range spans {
		if spans[i].a < 0 {
			spans[i].a = 0
		}
		if spans[i].b > 1 {
			spans[i].b = 1
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].a < spans[j].a })

	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.a <= last.b {
			if s.b > last.b {
				last.b = s.b
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

func insideAnySpan(spans []span, t float64) bool {
	for _, s := range spans {
		if t >= s.a && t <= s.b {
			return true
		}
	}
	return false
}
