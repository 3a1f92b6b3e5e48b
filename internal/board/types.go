// Package board defines the document model copperline works on: vias,
// tracks, footprints with courtyard outlines, and the Document interface
// through which a live editor (or a synthetic test board) is read and
// written.
package board

import (
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/copperforge/copperline/internal/geom"
)

// ItemID identifies a board item. The host editor assigns every item a UUID;
// items created by copperline get fresh ones.
type ItemID uuid.UUID

// NewItemID returns a fresh random item ID.
func NewItemID() ItemID {
	return ItemID(uuid.New())
}

// ParseItemID parses the canonical UUID string form.
func ParseItemID(s string) (ItemID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ItemID{}, fmt.Errorf("invalid item id %q: %w", s, err)
	}
	return ItemID(u), nil
}

func (id ItemID) String() string {
	return uuid.UUID(id).String()
}

// Layer identifies a single board layer.
type Layer int

const (
	LayerUnknown Layer = iota
	LayerFrontCopper
	LayerInner1
	LayerInner2
	LayerInner3
	LayerInner4
	LayerBackCopper
	LayerFrontCourtyard
	LayerBackCourtyard
	// LayerAnnotations is the non-electrical drawing layer owned by the
	// stitching visualization. Its contents are cleared and regenerated
	// on every run.
	LayerAnnotations
)

var layerNames = map[Layer]string{
	LayerFrontCopper:    "F.Cu",
	LayerInner1:         "In1.Cu",
	LayerInner2:         "In2.Cu",
	LayerInner3:         "In3.Cu",
	LayerInner4:         "In4.Cu",
	LayerBackCopper:     "B.Cu",
	LayerFrontCourtyard: "F.CrtYd",
	LayerBackCourtyard:  "B.CrtYd",
	LayerAnnotations:    "User.Drawings",
}

func (l Layer) String() string {
	if s, ok := layerNames[l]; ok {
		return s
	}
	return fmt.Sprintf("Layer(%d)", int(l))
}

// ParseLayer resolves a layer by its canonical name.
func ParseLayer(s string) (Layer, error) {
	for l, name := range layerNames {
		if name == s {
			return l, nil
		}
	}
	return LayerUnknown, fmt.Errorf("unknown layer %q", s)
}

// IsCopper reports whether the layer carries copper.
func (l Layer) IsCopper() bool {
	return l >= LayerFrontCopper && l <= LayerBackCopper
}

// LayerSet is a set of layers, used for the span of a via.
type LayerSet uint16

// NewLayerSet builds a set from individual layers.
func NewLayerSet(layers ...Layer) LayerSet {
	var s LayerSet
	for _, l := range layers {
		s |= 1 << uint(l)
	}
	return s
}

// AllCopper spans every copper layer, the span of a through-hole via.
var AllCopper = NewLayerSet(
	LayerFrontCopper, LayerInner1, LayerInner2, LayerInner3, LayerInner4, LayerBackCopper,
)

// Contains reports whether the set includes the layer.
func (s LayerSet) Contains(l Layer) bool {
	return s&(1<<uint(l)) != 0
}

// Intersects reports whether two sets share a layer.
func (s LayerSet) Intersects(o LayerSet) bool {
	return s&o != 0
}

// Via is an immutable snapshot of a board via.
type Via struct {
	ID       ItemID
	Position r2.Vec // millimetres
	Drill    float64
	Diameter float64
	Net      string
	NetClass string
	Layers   LayerSet
}

// Track is a straight copper track segment. Tracks are the only objects
// copperline mutates: the neckdown cutter replaces one track with several.
type Track struct {
	ID    ItemID
	Start r2.Vec
	End   r2.Vec
	Width float64
	Layer Layer
	Net   string
}

// Segment returns the track's geometry.
func (t Track) Segment() geom.Segment {
	return geom.Segment{Start: t.Start, End: t.End}
}

// Length returns the track length in millimetres.
func (t Track) Length() float64 {
	return t.Segment().Length()
}

// Net associates a net name with its net class.
type Net struct {
	Name  string
	Class string
}

// Footprint is a placed component with its courtyard outlines. Courtyard
// polygons are read-only inputs; copperline never modifies footprints.
type Footprint struct {
	ID             ItemID
	Reference      string
	FrontCourtyard []geom.Polygon
	BackCourtyard  []geom.Polygon
}

// Annotation is a drawing segment on a non-electrical layer.
type Annotation struct {
	ID    ItemID
	Start r2.Vec
	End   r2.Vec
	Width float64
}
