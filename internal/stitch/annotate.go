package stitch

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/copperforge/copperline/internal/board"
)

// AnnotationWidth is the line width of violation markers, in millimetres.
const AnnotationWidth = 0.05

// markerArm is the half-length of the X drawn at vias with no reachable
// ground partner.
const markerArm = 0.5

// Annotations converts violations into drawing segments: a line from the
// signal via to its nearest ground via, or an X marker over vias with no
// reachable partner. Item IDs are left zero; the document assigns them on
// creation. The output depends only on the (sorted) violation geometry, so
// two runs over the same board produce identical annotations.
func Annotations(violations []Violation) []board.Annotation {
	out := make([]board.Annotation, 0, len(violations))
	for _, v := range violations {
		if v.Unreachable() {
			p := v.Signal.Position
			out = append(out,
				board.Annotation{
					Start: r2.Vec{X: p.X - markerArm, Y: p.Y - markerArm},
					End:   r2.Vec{X: p.X + markerArm, Y: p.Y + markerArm},
					Width: AnnotationWidth,
				},
				board.Annotation{
					Start: r2.Vec{X: p.X - markerArm, Y: p.Y + markerArm},
					End:   r2.Vec{X: p.X + markerArm, Y: p.Y - markerArm},
					Width: AnnotationWidth,
				},
			)
			continue
		}
		out = append(out, board.Annotation{
			Start: v.Signal.Position,
			End:   v.Ground.Position,
			Width: AnnotationWidth,
		})
	}
	return out
}

// Render replaces the contents of the annotation layer with markers for the
// given violations. The layer is owned by this tool: every run clears it
// first so regeneration is idempotent and never appends.
func Render(doc board.Document, layer board.Layer, violations []Violation) error {
	for _, v := range violations {
		if v.Unreachable() {
			log.Printf("[stitch] via %s (%s) has no ground via on a shared layer", v.Signal.ID, v.Signal.Net)
		}
	}

	if err := doc.ClearLayer(layer); err != nil {
		return fmt.Errorf("clearing annotation layer: %w", err)
	}
	annotations := Annotations(violations)
	if len(annotations) == 0 {
		return nil
	}
	if err := doc.DrawAnnotations(layer, annotations); err != nil {
		return fmt.Errorf("drawing annotations: %w", err)
	}
	return nil
}
