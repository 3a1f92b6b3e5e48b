package board

// Document is the capability boundary to the open PCB design. The live
// implementation (hostbridge) talks to the editor's automation socket; tests
// use MemDocument. Copperline reads geometry through the accessors, computes,
// and writes results back; it never owns document state itself.
//
// Grouped items are a known host limitation: the editor omits members of a
// group from the listings unless the user has entered the group context, so
// they are silently invisible here rather than being an error.
type Document interface {
	// Read accessors. Listings come back in stable document order.
	Vias() ([]Via, error)
	Tracks() ([]Track, error)
	Footprints() ([]Footprint, error)
	Nets() ([]Net, error)
	// Selection returns the IDs of currently selected items, which may be
	// empty.
	Selection() ([]ItemID, error)

	// Begin opens a commit for track edits. Edits staged while a commit is
	// open take effect on Push and are discarded on Drop.
	Begin() (Commit, error)
	RemoveTracks(ids []ItemID) error
	CreateTracks(tracks []Track) error

	// Annotation layer writes. ClearLayer removes everything on the layer;
	// the stitching visualization owns its layer and fully regenerates it.
	ClearLayer(l Layer) error
	DrawAnnotations(l Layer, annotations []Annotation) error
}

// Commit represents an open editing transaction on the document.
type Commit interface {
	Push() error
	Drop() error
}
