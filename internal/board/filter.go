package board

import (
	"errors"
	"fmt"
)

// Side selects which side(s) of the board an operation works on. Inner
// copper layers are never included: stitching and neckdown both work on
// the outer layers only.
type Side int

const (
	SideBoth Side = iota
	SideFront
	SideBack
)

// ParseSide resolves the CLI spelling of a side.
func ParseSide(s string) (Side, error) {
	switch s {
	case "both":
		return SideBoth, nil
	case "front":
		return SideFront, nil
	case "back":
		return SideBack, nil
	}
	return SideBoth, fmt.Errorf("invalid side %q (want front, back, or both)", s)
}

func (s Side) String() string {
	switch s {
	case SideFront:
		return "front"
	case SideBack:
		return "back"
	default:
		return "both"
	}
}

// ErrEmptySelection is returned when selection-only extraction finds nothing
// selected in the editor.
var ErrEmptySelection = errors.New("selection filter requested but nothing is selected")

// Filter narrows document extraction by side, net class, and selection.
type Filter struct {
	Side          Side
	NetClasses    []string // empty means all classes
	SelectionOnly bool
}

// Snapshot is the filtered read-only view of the document both pipelines
// compute from.
type Snapshot struct {
	Vias       []Via
	Tracks     []Track
	Footprints []Footprint
	// ClassByNet maps net names to net class names for the whole board,
	// unaffected by filtering.
	ClassByNet map[string]string
}

// Extract reads the document and applies the filter. Results keep document
// order, which the stitching analyzer relies on for stable tie-breaking.
func Extract(doc Document, f Filter) (*Snapshot, error) {
	vias, err := doc.Vias()
	if err != nil {
		return nil, fmt.Errorf("reading vias: %w", err)
	}
	tracks, err := doc.Tracks()
	if err != nil {
		return nil, fmt.Errorf("reading tracks: %w", err)
	}
	footprints, err := doc.Footprints()
	if err != nil {
		return nil, fmt.Errorf("reading footprints: %w", err)
	}
	nets, err := doc.Nets()
	if err != nil {
		return nil, fmt.Errorf("reading nets: %w", err)
	}

	classByNet := make(map[string]string, len(nets))
	for _, n := range nets {
		classByNet[n.Name] = n.Class
	}

	if f.SelectionOnly {
		sel, err := doc.Selection()
		if err != nil {
			return nil, fmt.Errorf("reading selection: %w", err)
		}
		if len(sel) == 0 {
			return nil, ErrEmptySelection
		}
		vias, tracks, footprints = applySelection(sel, vias, tracks, footprints)
	}

	vias, tracks, footprints = applySide(f.Side, vias, tracks, footprints)

	if len(f.NetClasses) > 0 {
		wanted := make(map[string]bool, len(f.NetClasses))
		for _, c := range f.NetClasses {
			wanted[c] = true
		}
		vias = filterSlice(vias, func(v Via) bool { return wanted[v.NetClass] })
		tracks = filterSlice(tracks, func(t Track) bool { return wanted[classByNet[t.Net]] })
	}

	return &Snapshot{
		Vias:       vias,
		Tracks:     tracks,
		Footprints: footprints,
		ClassByNet: classByNet,
	}, nil
}

// applySelection restricts each object class to the selected items. A class
// with no selected member falls back to the full set, so selecting only a
// few footprints still cuts against every track, and vice versa.
func applySelection(sel []ItemID, vias []Via, tracks []Track, footprints []Footprint) ([]Via, []Track, []Footprint) {
	selected := make(map[ItemID]bool, len(sel))
	for _, id := range sel {
		selected[id] = true
	}

	selVias := filterSlice(vias, func(v Via) bool { return selected[v.ID] })
	selTracks := filterSlice(tracks, func(t Track) bool { return selected[t.ID] })
	selFootprints := filterSlice(footprints, func(fp Footprint) bool { return selected[fp.ID] })

	if len(selVias) > 0 {
		vias = selVias
	}
	if len(selTracks) > 0 {
		tracks = selTracks
	}
	if len(selFootprints) > 0 {
		footprints = selFootprints
	}
	return vias, tracks, footprints
}

func applySide(side Side, vias []Via, tracks []Track, footprints []Footprint) ([]Via, []Track, []Footprint) {
	switch side {
	case SideFront:
		vias = filterSlice(vias, func(v Via) bool { return v.Layers.Contains(LayerFrontCopper) })
		tracks = filterSlice(tracks, func(t Track) bool { return t.Layer == LayerFrontCopper })
		footprints = filterSlice(footprints, func(fp Footprint) bool { return len(fp.FrontCourtyard) > 0 })
	case SideBack:
		vias = filterSlice(vias, func(v Via) bool { return v.Layers.Contains(LayerBackCopper) })
		tracks = filterSlice(tracks, func(t Track) bool { return t.Layer == LayerBackCopper })
		footprints = filterSlice(footprints, func(fp Footprint) bool { return len(fp.BackCourtyard) > 0 })
	default:
		// Both sides: drop inner-layer tracks, keep everything else.
		tracks = filterSlice(tracks, func(t Track) bool {
			return t.Layer == LayerFrontCopper || t.Layer == LayerBackCopper
		})
	}
	return vias, tracks, footprints
}

func filterSlice[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
