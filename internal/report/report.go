// Package report renders optional artifacts for the stitching analysis: an
// HTML chart of via positions colored by violation distance, a PNG board
// snapshot, and a numeric summary. The annotation layer on the board stays
// the primary output; these exist for review away from the editor.
package report

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/copperforge/copperline/internal/board"
	"github.com/copperforge/copperline/internal/stitch"
)

// Stats summarises the violation distances of one analysis run.
type Stats struct {
	Signal      int
	Ground      int
	Violations  int
	Unreachable int // violations with no layer-compatible ground via

	// Distance statistics over the finite violations, in millimetres.
	MeanDistance   float64
	MedianDistance float64
	MaxDistance    float64
}

// Summarize computes distance statistics over the finite violations.
func Summarize(signal, ground []board.Via, violations []stitch.Violation) Stats {
	s := Stats{Signal: len(signal), Ground: len(ground), Violations: len(violations)}

	var ds []float64
	for _, v := range violations {
		if v.Unreachable() {
			s.Unreachable++
			continue
		}
		ds = append(ds, v.Distance)
	}
	if len(ds) == 0 {
		return s
	}
	sort.Float64s(ds)
	s.MeanDistance = stat.Mean(ds, nil)
	s.MedianDistance = stat.Quantile(0.5, stat.Empirical, ds, nil)
	s.MaxDistance = floats.Max(ds)
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("%d signal / %d ground vias, %d violations (%d unreachable), distance mean %.3f median %.3f max %.3f mm",
		s.Signal, s.Ground, s.Violations, s.Unreachable,
		s.MeanDistance, s.MedianDistance, s.MaxDistance)
}

// WriteHTML renders an interactive scatter of the board's vias. Ground vias
// form one series; signal vias carry their nearest-ground distance as a
// third dimension driving the color ramp, so starved regions stand out.
func WriteHTML(path string, signal, ground []board.Via, violations []stitch.Violation, threshold float64) error {
	distByID := make(map[board.ItemID]float64, len(violations))
	for _, v := range violations {
		distByID[v.Signal.ID] = v.Distance
	}

	groundData := make([]opts.ScatterData, 0, len(ground))
	for _, g := range ground {
		// Third dimension feeds the visual map; ground vias sit at zero.
		groundData = append(groundData, opts.ScatterData{Value: []interface{}{g.Position.X, g.Position.Y, 0.0}})
	}

	maxDist := threshold
	signalData := make([]opts.ScatterData, 0, len(signal))
	for _, v := range signal {
		d, violating := distByID[v.ID]
		if !violating {
			d = 0
		}
		if math.IsInf(d, 1) {
			d = threshold * 10 // render unreachable vias at the top of the ramp
		}
		if d > maxDist {
			maxDist = d
		}
		signalData = append(signalData, opts.ScatterData{Value: []interface{}{v.Position.X, v.Position.Y, d}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Stitching Via Check",
			Theme:     "dark",
			Width:     "900px",
			Height:    "900px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Ground stitching coverage",
			Subtitle: fmt.Sprintf("threshold %.2f mm, %d violations", threshold, len(violations)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X (mm)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y (mm)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxDist),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#1f9e89", "#b5de2b", "#fde725", "#fd9a44", "#d7191c"}},
		}),
	)

	scatter.AddSeries("ground", groundData, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	scatter.AddSeries("signal", signalData, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()
	if err := scatter.Render(f); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}
