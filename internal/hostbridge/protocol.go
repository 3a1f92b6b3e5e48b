package hostbridge

import "encoding/json"

// The automation socket speaks newline-delimited JSON. Every request carries
// a client-assigned id; the host answers each request with exactly one
// response carrying the same id, in order.
type request struct {
	ID     uint64      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

type response struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *wireError      `json:"error,omitempty"`
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Method names understood by the host.
const (
	methodGetVias         = "get_vias"
	methodGetTracks       = "get_tracks"
	methodGetFootprints   = "get_footprints"
	methodGetNets         = "get_nets"
	methodGetSelection    = "get_selection"
	methodBeginCommit     = "begin_commit"
	methodPushCommit      = "push_commit"
	methodDropCommit      = "drop_commit"
	methodRemoveTracks    = "remove_tracks"
	methodCreateTracks    = "create_tracks"
	methodClearLayer      = "clear_layer"
	methodDrawAnnotations = "draw_annotations"
)

// Error codes the host reports.
const codeNoDocument = "no_document"

// Wire geometry is integer nanometres with the Y axis pointing down, the
// host editor's native convention. Conversion to copperline's y-up
// millimetre frame happens in the client, nowhere else.
type wirePoint struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

type wireVia struct {
	ID       string    `json:"id"`
	At       wirePoint `json:"at"`
	Drill    int64     `json:"drill"`
	Diameter int64     `json:"diameter"`
	Net      string    `json:"net"`
	NetClass string    `json:"net_class"`
	Layers   []string  `json:"layers"`
}

type wireTrack struct {
	ID    string    `json:"id,omitempty"`
	Start wirePoint `json:"start"`
	End   wirePoint `json:"end"`
	Width int64     `json:"width"`
	Layer string    `json:"layer"`
	Net   string    `json:"net"`
}

type wireNet struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

// wireOutline is one primitive of a courtyard outline. Arcs carry a mid
// point on the arc; segments leave it zero.
type wireOutline struct {
	Shape string    `json:"shape"` // "segment" or "arc"
	Start wirePoint `json:"start"`
	Mid   wirePoint `json:"mid,omitempty"`
	End   wirePoint `json:"end"`
}

type wireFootprint struct {
	ID        string        `json:"id"`
	Reference string        `json:"reference"`
	Front     []wireOutline `json:"front_courtyard"`
	Back      []wireOutline `json:"back_courtyard"`
}

type wireAnnotation struct {
	Start wirePoint `json:"start"`
	End   wirePoint `json:"end"`
	Width int64     `json:"width"`
}

type idsParams struct {
	IDs []string `json:"ids"`
}

type tracksParams struct {
	Tracks []wireTrack `json:"tracks"`
}

type layerParams struct {
	Layer string `json:"layer"`
}

type annotationsParams struct {
	Layer string           `json:"layer"`
	Items []wireAnnotation `json:"items"`
}
