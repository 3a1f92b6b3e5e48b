package board

import "errors"

// MemDocument is an in-memory Document used for tests and offline runs
// against synthetic boards. It mirrors the commit semantics of the live
// bridge: track edits are staged on an open commit and applied on Push.
type MemDocument struct {
	vias        []Via
	tracks      []Track
	footprints  []Footprint
	nets        []Net
	selection   []ItemID
	annotations map[Layer][]Annotation

	open *memCommit
}

// NewMemDocument returns an empty synthetic board.
func NewMemDocument() *MemDocument {
	return &MemDocument{annotations: make(map[Layer][]Annotation)}
}

// AddVia appends a via, assigning an ID when absent.
func (d *MemDocument) AddVia(v Via) Via {
	if v.ID == (ItemID{}) {
		v.ID = NewItemID()
	}
	d.vias = append(d.vias, v)
	return v
}

// AddTrack appends a track, assigning an ID when absent.
func (d *MemDocument) AddTrack(t Track) Track {
	if t.ID == (ItemID{}) {
		t.ID = NewItemID()
	}
	d.tracks = append(d.tracks, t)
	return t
}

// AddFootprint appends a footprint, assigning an ID when absent.
func (d *MemDocument) AddFootprint(fp Footprint) Footprint {
	if fp.ID == (ItemID{}) {
		fp.ID = NewItemID()
	}
	d.footprints = append(d.footprints, fp)
	return fp
}

// AddNet registers a net with its class.
func (d *MemDocument) AddNet(name, class string) {
	d.nets = append(d.nets, Net{Name: name, Class: class})
}

// Select marks items as selected.
func (d *MemDocument) Select(ids ...ItemID) {
	d.selection = append(d.selection, ids...)
}

func (d *MemDocument) Vias() ([]Via, error) {
	return append([]Via(nil), d.vias...), nil
}

func (d *MemDocument) Tracks() ([]Track, error) {
	return append([]Track(nil), d.tracks...), nil
}

func (d *MemDocument) Footprints() ([]Footprint, error) {
	return append([]Footprint(nil), d.footprints...), nil
}

func (d *MemDocument) Nets() ([]Net, error) {
	return append([]Net(nil), d.nets...), nil
}

func (d *MemDocument) Selection() ([]ItemID, error) {
	return append([]ItemID(nil), d.selection...), nil
}

var (
	errCommitOpen   = errors.New("a commit is already open")
	errNoCommit     = errors.New("no open commit")
	errCommitClosed = errors.New("commit already closed")
)

type memCommit struct {
	doc    *MemDocument
	remove []ItemID
	create []Track
	closed bool
}

func (d *MemDocument) Begin() (Commit, error) {
	if d.open != nil {
		return nil, errCommitOpen
	}
	d.open = &memCommit{doc: d}
	return d.open, nil
}

func (d *MemDocument) RemoveTracks(ids []ItemID) error {
	if d.open == nil {
		return errNoCommit
	}
	d.open.remove = append(d.open.remove, ids...)
	return nil
}

func (d *MemDocument) CreateTracks(tracks []Track) error {
	if d.open == nil {
		return errNoCommit
	}
	d.open.create = append(d.open.create, tracks...)
	return nil
}

func (c *memCommit) Push() error {
	if c.closed {
		return errCommitClosed
	}
	removed := make(map[ItemID]bool, len(c.remove))
	for _, id := range c.remove {
		removed[id] = true
	}
	kept := c.doc.tracks[:0]
	for _, t := range c.doc.tracks {
		if !removed[t.ID] {
			kept = append(kept, t)
		}
	}
	c.doc.tracks = append(kept, c.create...)
	c.closed = true
	c.doc.open = nil
	return nil
}

func (c *memCommit) Drop() error {
	if c.closed {
		return errCommitClosed
	}
	c.closed = true
	c.doc.open = nil
	return nil
}

func (d *MemDocument) ClearLayer(l Layer) error {
	d.annotations[l] = nil
	return nil
}

func (d *MemDocument) DrawAnnotations(l Layer, annotations []Annotation) error {
	d.annotations[l] = append(d.annotations[l], annotations...)
	return nil
}

// Annotations returns the current contents of a drawing layer.
func (d *MemDocument) Annotations(l Layer) []Annotation {
	return append([]Annotation(nil), d.annotations[l]...)
}
