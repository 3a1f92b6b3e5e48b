package hostbridge

import (
	"encoding/json"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/copperforge/copperline/internal/board"
)

// fakeHost serves one scripted automation session over an in-memory pipe.
type fakeHost struct {
	conn     net.Conn
	mu       sync.Mutex
	calls    []string
	handlers map[string]func(params json.RawMessage) (interface{}, *wireError)
}

func newFakeHost(t *testing.T) (*fakeHost, *Client) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	h := &fakeHost{
		conn:     serverConn,
		handlers: make(map[string]func(json.RawMessage) (interface{}, *wireError)),
	}
	go h.serve()
	c := NewClient(clientConn)
	t.Cleanup(func() {
		c.Close()
		serverConn.Close()
	})
	return h, c
}

func (h *fakeHost) handle(method string, fn func(json.RawMessage) (interface{}, *wireError)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[method] = fn
}

func (h *fakeHost) returns(method string, result interface{}) {
	h.handle(method, func(json.RawMessage) (interface{}, *wireError) {
		return result, nil
	})
}

func (h *fakeHost) called() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func (h *fakeHost) serve() {
	dec := json.NewDecoder(h.conn)
	enc := json.NewEncoder(h.conn)
	for {
		var req struct {
			ID     uint64          `json:"id"`
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		if err := dec.Decode(&req); err != nil {
			return
		}
		h.mu.Lock()
		h.calls = append(h.calls, req.Method)
		handler := h.handlers[req.Method]
		h.mu.Unlock()

		resp := response{ID: req.ID, Result: json.RawMessage("null")}
		if handler != nil {
			result, werr := handler(req.Params)
			if werr != nil {
				resp.Error = werr
				resp.Result = nil
			} else {
				b, err := json.Marshal(result)
				if err != nil {
					return
				}
				resp.Result = b
			}
		}
		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func point(xMM, yMMDown float64) wirePoint {
	return wirePoint{X: int64(xMM * 1e6), Y: int64(yMMDown * 1e6)}
}

func TestViasConvertUnitsAndAxis(t *testing.T) {
	t.Parallel()

	id := board.NewItemID()
	h, c := newFakeHost(t)
	h.returns(methodGetVias, []wireVia{{
		ID:       id.String(),
		At:       point(1.5, 2.5), // wire frame is y-down
		Drill:    300_000,
		Diameter: 600_000,
		Net:      "GND",
		NetClass: "GND",
		Layers:   []string{"F.Cu", "B.Cu"},
	}})

	vias, err := c.Vias()
	require.NoError(t, err)
	require.Len(t, vias, 1)

	v := vias[0]
	assert.Equal(t, id, v.ID)
	assert.Equal(t, r2.Vec{X: 1.5, Y: -2.5}, v.Position)
	assert.Equal(t, 0.3, v.Drill)
	assert.Equal(t, 0.6, v.Diameter)
	assert.True(t, v.Layers.Contains(board.LayerFrontCopper))
	assert.True(t, v.Layers.Contains(board.LayerBackCopper))
	assert.False(t, v.Layers.Contains(board.LayerInner1))
}

func TestTracks(t *testing.T) {
	t.Parallel()

	id := board.NewItemID()
	h, c := newFakeHost(t)
	h.returns(methodGetTracks, []wireTrack{{
		ID:    id.String(),
		Start: point(0, 0),
		End:   point(10, 0),
		Width: 200_000,
		Layer: "F.Cu",
		Net:   "DATA0",
	}})

	tracks, err := c.Tracks()
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, board.Track{
		ID:    id,
		Start: r2.Vec{X: 0, Y: 0},
		End:   r2.Vec{X: 10, Y: 0},
		Width: 0.2,
		Layer: board.LayerFrontCopper,
		Net:   "DATA0",
	}, tracks[0])
}

func TestCreateTracksEncodesWireFrame(t *testing.T) {
	t.Parallel()

	h, c := newFakeHost(t)
	var got tracksParams
	h.handle(methodCreateTracks, func(params json.RawMessage) (interface{}, *wireError) {
		if err := json.Unmarshal(params, &got); err != nil {
			return nil, &wireError{Code: "bad_params", Message: err.Error()}
		}
		return nil, nil
	})

	err := c.CreateTracks([]board.Track{{
		Start: r2.Vec{X: 1, Y: 2}, // y-up internal frame
		End:   r2.Vec{X: 3, Y: 4},
		Width: 0.25,
		Layer: board.LayerBackCopper,
		Net:   "DATA0",
	}})
	require.NoError(t, err)

	require.Len(t, got.Tracks, 1)
	w := got.Tracks[0]
	assert.Equal(t, wirePoint{X: 1_000_000, Y: -2_000_000}, w.Start)
	assert.Equal(t, wirePoint{X: 3_000_000, Y: -4_000_000}, w.End)
	assert.Equal(t, int64(250_000), w.Width)
	assert.Equal(t, "B.Cu", w.Layer)
	assert.Empty(t, w.ID, "host assigns ids for created tracks")
}

func courtyardSquare() []wireOutline {
	return []wireOutline{
		{Shape: "segment", Start: point(0, 0), End: point(2, 0)},
		{Shape: "segment", Start: point(2, 0), End: point(2, 2)},
		{Shape: "segment", Start: point(2, 2), End: point(0, 2)},
		{Shape: "segment", Start: point(0, 2), End: point(0, 0)},
	}
}

func TestFootprintCourtyardChained(t *testing.T) {
	t.Parallel()

	id := board.NewItemID()
	h, c := newFakeHost(t)
	h.returns(methodGetFootprints, []wireFootprint{{
		ID:        id.String(),
		Reference: "U1",
		Front:     courtyardSquare(),
	}})

	fps, err := c.Footprints()
	require.NoError(t, err)
	require.Len(t, fps, 1)
	assert.Equal(t, "U1", fps[0].Reference)
	require.Len(t, fps[0].FrontCourtyard, 1)
	assert.Len(t, fps[0].FrontCourtyard[0].Vertices, 4)
	assert.Empty(t, fps[0].BackCourtyard)
}

func TestFootprintOpenCourtyardSkipped(t *testing.T) {
	t.Parallel()

	id := board.NewItemID()
	h, c := newFakeHost(t)
	h.returns(methodGetFootprints, []wireFootprint{{
		ID:        id.String(),
		Reference: "U1",
		Front:     courtyardSquare()[:3], // outline does not close
	}})

	fps, err := c.Footprints()
	require.NoError(t, err)
	require.Len(t, fps, 1)
	assert.Empty(t, fps[0].FrontCourtyard, "unclosed courtyard is skipped, not fatal")
}

func TestNoDocument(t *testing.T) {
	t.Parallel()

	h, c := newFakeHost(t)
	h.handle(methodGetVias, func(json.RawMessage) (interface{}, *wireError) {
		return nil, &wireError{Code: codeNoDocument, Message: "no board open"}
	})

	_, err := c.Vias()
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestCommitLifecycle(t *testing.T) {
	t.Parallel()

	h, c := newFakeHost(t)

	cm, err := c.Begin()
	require.NoError(t, err)
	require.NoError(t, c.RemoveTracks([]board.ItemID{board.NewItemID()}))
	require.NoError(t, cm.Push())

	cm, err = c.Begin()
	require.NoError(t, err)
	require.NoError(t, cm.Drop())

	assert.Equal(t, []string{
		methodBeginCommit, methodRemoveTracks, methodPushCommit,
		methodBeginCommit, methodDropCommit,
	}, h.called())
}
