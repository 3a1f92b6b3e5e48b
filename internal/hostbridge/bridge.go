// Package hostbridge implements board.Document over the PCB editor's
// automation socket. The editor runs an automation server speaking
// newline-delimited JSON over a unix socket; this client translates between
// that wire form (integer nanometres, y-down) and copperline's internal
// model (float64 millimetres, y-up).
package hostbridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/copperforge/copperline/internal/board"
	"github.com/copperforge/copperline/internal/geom"
	"github.com/copperforge/copperline/internal/units"
)

// DefaultSocket is where the editor listens when automation is enabled.
const DefaultSocket = "/tmp/pcb-automation.sock"

// ErrNoDocument is returned when the editor is running but has no board open.
var ErrNoDocument = errors.New("no board document open in the editor")

// Client is a board.Document backed by a live editor session. Calls are
// serialized over a single connection; the host answers strictly in order.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
	next uint64
}

var _ board.Document = (*Client)(nil)

// Dial connects to the editor's automation socket.
func Dial(socket string) (*Client, error) {
	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil, fmt.Errorf("connecting to editor socket %s: %w", socket, err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an established connection. Tests use this with net.Pipe.
func NewClient(conn net.Conn) *Client {
	return &Client{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
	}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(method string, params, result interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.next++
	req := request{ID: c.next, Method: method, Params: params}
	if err := c.enc.Encode(req); err != nil {
		return fmt.Errorf("%s: sending request: %w", method, err)
	}

	var resp response
	if err := c.dec.Decode(&resp); err != nil {
		return fmt.Errorf("%s: reading response: %w", method, err)
	}
	if resp.ID != req.ID {
		return fmt.Errorf("%s: response id %d does not match request id %d", method, resp.ID, req.ID)
	}
	if resp.Error != nil {
		if resp.Error.Code == codeNoDocument {
			return ErrNoDocument
		}
		return fmt.Errorf("%s: host error %s: %s", method, resp.Error.Code, resp.Error.Message)
	}
	if result != nil {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("%s: decoding result: %w", method, err)
		}
	}
	return nil
}

// The wire frame is y-down nanometres; internally everything is y-up
// millimetres. Negating Y on both directions keeps angles and polygon
// winding consistent.

func fromWire(p wirePoint) r2.Vec {
	return r2.Vec{
		X: units.MillimetresFromNanometres(p.X),
		Y: -units.MillimetresFromNanometres(p.Y),
	}
}

func toWire(v r2.Vec) wirePoint {
	return wirePoint{
		X: units.NanometresFromMillimetres(v.X),
		Y: units.NanometresFromMillimetres(-v.Y),
	}
}

// Vias lists the board's vias in document order.
func (c *Client) Vias() ([]board.Via, error) {
	var wire []wireVia
	if err := c.call(methodGetVias, nil, &wire); err != nil {
		return nil, err
	}
	vias := make([]board.Via, 0, len(wire))
	for _, w := range wire {
		id, err := board.ParseItemID(w.ID)
		if err != nil {
			return nil, fmt.Errorf("via: %w", err)
		}
		var layers board.LayerSet
		for _, name := range w.Layers {
			l, err := board.ParseLayer(name)
			if err != nil {
				return nil, fmt.Errorf("via %s: %w", w.ID, err)
			}
			layers |= board.NewLayerSet(l)
		}
		vias = append(vias, board.Via{
			ID:       id,
			Position: fromWire(w.At),
			Drill:    units.MillimetresFromNanometres(w.Drill),
			Diameter: units.MillimetresFromNanometres(w.Diameter),
			Net:      w.Net,
			NetClass: w.NetClass,
			Layers:   layers,
		})
	}
	return vias, nil
}

// Tracks lists the board's straight track segments in document order.
func (c *Client) Tracks() ([]board.Track, error) {
	var wire []wireTrack
	if err := c.call(methodGetTracks, nil, &wire); err != nil {
		return nil, err
	}
	tracks := make([]board.Track, 0, len(wire))
	for _, w := range wire {
		t, err := trackFromWire(w)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

func trackFromWire(w wireTrack) (board.Track, error) {
	id, err := board.ParseItemID(w.ID)
	if err != nil {
		return board.Track{}, fmt.Errorf("track: %w", err)
	}
	layer, err := board.ParseLayer(w.Layer)
	if err != nil {
		return board.Track{}, fmt.Errorf("track %s: %w", w.ID, err)
	}
	return board.Track{
		ID:    id,
		Start: fromWire(w.Start),
		End:   fromWire(w.End),
		Width: units.MillimetresFromNanometres(w.Width),
		Layer: layer,
		Net:   w.Net,
	}, nil
}

func trackToWire(t board.Track) wireTrack {
	return wireTrack{
		Start: toWire(t.Start),
		End:   toWire(t.End),
		Width: units.NanometresFromMillimetres(t.Width),
		Layer: t.Layer.String(),
		Net:   t.Net,
	}
}

// Footprints lists footprints with their courtyard outlines chained into
// closed polygons. A courtyard whose primitives do not close is skipped
// with a warning; the footprint itself is still returned.
func (c *Client) Footprints() ([]board.Footprint, error) {
	var wire []wireFootprint
	if err := c.call(methodGetFootprints, nil, &wire); err != nil {
		return nil, err
	}
	fps := make([]board.Footprint, 0, len(wire))
	for _, w := range wire {
		id, err := board.ParseItemID(w.ID)
		if err != nil {
			return nil, fmt.Errorf("footprint: %w", err)
		}
		fps = append(fps, board.Footprint{
			ID:             id,
			Reference:      w.Reference,
			FrontCourtyard: chainCourtyard(w.Reference, "front", w.Front),
			BackCourtyard:  chainCourtyard(w.Reference, "back", w.Back),
		})
	}
	return fps, nil
}

func chainCourtyard(ref, side string, outlines []wireOutline) []geom.Polygon {
	if len(outlines) == 0 {
		return nil
	}
	prims := make([][]r2.Vec, 0, len(outlines))
	for _, o := range outlines {
		switch o.Shape {
		case "segment":
			prims = append(prims, []r2.Vec{fromWire(o.Start), fromWire(o.End)})
		case "arc":
			arc := geom.Arc{Start: fromWire(o.Start), Mid: fromWire(o.Mid), End: fromWire(o.End)}
			prims = append(prims, arc.Flatten())
		default:
			log.Printf("[hostbridge] %s %s courtyard: unknown outline shape %q, skipping courtyard", ref, side, o.Shape)
			return nil
		}
	}
	polys, err := geom.ChainOutlines(prims, units.Tolerance)
	if err != nil {
		log.Printf("[hostbridge] %s %s courtyard does not close: %v, skipping", ref, side, err)
		return nil
	}
	return polys
}

// Nets lists the board's nets with their net class assignment.
func (c *Client) Nets() ([]board.Net, error) {
	var wire []wireNet
	if err := c.call(methodGetNets, nil, &wire); err != nil {
		return nil, err
	}
	nets := make([]board.Net, 0, len(wire))
	for _, w := range wire {
		nets = append(nets, board.Net{Name: w.Name, Class: w.Class})
	}
	return nets, nil
}

// Selection returns the IDs of the items currently selected in the editor.
func (c *Client) Selection() ([]board.ItemID, error) {
	var raw []string
	if err := c.call(methodGetSelection, nil, &raw); err != nil {
		return nil, err
	}
	ids := make([]board.ItemID, 0, len(raw))
	for _, s := range raw {
		id, err := board.ParseItemID(s)
		if err != nil {
			return nil, fmt.Errorf("selection: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Begin opens an editing commit on the host. Staged edits take effect on
// Push and vanish on Drop; dropping is how --dry-run leaves the board
// untouched after staging everything.
func (c *Client) Begin() (board.Commit, error) {
	if err := c.call(methodBeginCommit, nil, nil); err != nil {
		return nil, err
	}
	return &commit{c: c}, nil
}

type commit struct {
	c *Client
}

func (cm *commit) Push() error {
	return cm.c.call(methodPushCommit, nil, nil)
}

func (cm *commit) Drop() error {
	return cm.c.call(methodDropCommit, nil, nil)
}

// RemoveTracks stages the removal of the given tracks.
func (c *Client) RemoveTracks(ids []board.ItemID) error {
	p := idsParams{IDs: make([]string, len(ids))}
	for i, id := range ids {
		p.IDs[i] = id.String()
	}
	return c.call(methodRemoveTracks, p, nil)
}

// CreateTracks stages new tracks. The host assigns their IDs; the IDs on
// the passed tracks are not sent.
func (c *Client) CreateTracks(tracks []board.Track) error {
	p := tracksParams{Tracks: make([]wireTrack, len(tracks))}
	for i, t := range tracks {
		p.Tracks[i] = trackToWire(t)
	}
	return c.call(methodCreateTracks, p, nil)
}

// ClearLayer removes every drawing on the given layer.
func (c *Client) ClearLayer(l board.Layer) error {
	return c.call(methodClearLayer, layerParams{Layer: l.String()}, nil)
}

// DrawAnnotations creates drawing segments on the given layer.
func (c *Client) DrawAnnotations(l board.Layer, annotations []board.Annotation) error {
	p := annotationsParams{Layer: l.String(), Items: make([]wireAnnotation, len(annotations))}
	for i, a := range annotations {
		p.Items[i] = wireAnnotation{
			Start: toWire(a.Start),
			End:   toWire(a.End),
			Width: units.NanometresFromMillimetres(a.Width),
		}
	}
	return c.call(methodDrawAnnotations, p, nil)
}
