package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/copperforge/copperline/internal/board"
	"github.com/copperforge/copperline/internal/stitch"
)

var (
	groundColor    = color.RGBA{R: 0x2a, G: 0x9d, B: 0x8f, A: 255}
	signalColor    = color.RGBA{R: 0x45, G: 0x4b, B: 0x9e, A: 255}
	violationColor = color.RGBA{R: 0xd7, G: 0x19, B: 0x1c, A: 255}
)

// WritePNG saves a static snapshot of the analysis: ground and signal vias
// as scatter points, with a red line from each violating via to its nearest
// ground partner. Unreachable vias have no partner and draw no line; they
// are still visible as signal points with no ground point nearby.
func WritePNG(path string, signal, ground []board.Via, violations []stitch.Violation, threshold float64) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Ground stitching coverage (threshold %.2f mm)", threshold)
	p.X.Label.Text = "X (mm)"
	p.Y.Label.Text = "Y (mm)"

	groundScatter, err := viaScatter(ground, groundColor, 2)
	if err != nil {
		return fmt.Errorf("ground series: %w", err)
	}
	p.Add(groundScatter)
	p.Legend.Add("ground", groundScatter)

	signalScatter, err := viaScatter(signal, signalColor, 2.5)
	if err != nil {
		return fmt.Errorf("signal series: %w", err)
	}
	p.Add(signalScatter)
	p.Legend.Add("signal", signalScatter)

	var legendLine *plotter.Line
	for _, v := range violations {
		if v.Unreachable() {
			continue
		}
		line, err := plotter.NewLine(plotter.XYs{
			{X: v.Signal.Position.X, Y: v.Signal.Position.Y},
			{X: v.Ground.Position.X, Y: v.Ground.Position.Y},
		})
		if err != nil {
			return fmt.Errorf("violation line: %w", err)
		}
		line.Color = violationColor
		line.Width = vg.Points(1)
		p.Add(line)
		legendLine = line
	}
	if legendLine != nil {
		p.Legend.Add("violation", legendLine)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

func viaScatter(vias []board.Via, c color.Color, radius float64) (*plotter.Scatter, error) {
	pts := make(plotter.XYs, len(vias))
	for i, v := range vias {
		pts[i] = plotter.XY{X: v.Position.X, Y: v.Position.Y}
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle = draw.GlyphStyle{Color: c, Radius: vg.Points(radius), Shape: draw.CircleGlyph{}}
	return s, nil
}
