package viz

import (
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/isingsim/internal/analysis"
	"github.com/san-kum/isingsim/internal/sweep"
)

const (
	plotHeight = 10
	plotWidth  = 80
)

// PlotSeries plots values against ladder position.
func PlotSeries(values []float64, caption string) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
}

// PlotSweep plots energy and RMS magnetization per spin over the ladder,
// plus the specific heat when the ladder is long enough to differentiate.
func PlotSweep(results []sweep.Result, size int) string {
	if len(results) == 0 || size <= 0 {
		return ""
	}

	spins := float64(size * size)
	energy := make([]float64, len(results))
	mag := make([]float64, len(results))
	for i, r := range results {
		energy[i] = r.Energy / spins
		mag[i] = r.MagnetizationRMS / spins
	}

	t0 := results[0].Temperature
	tf := results[len(results)-1].Temperature
	span := " (T " + formatT(t0) + " → " + formatT(tf) + ")"

	plots := []string{
		PlotSeries(energy, "U per spin"+span),
		PlotSeries(mag, "M_rms per spin"+span),
	}

	if heat, err := analysis.SpecificHeat(results, size); err == nil {
		c := make([]float64, len(heat))
		for i, p := range heat {
			c[i] = p.Value
		}
		plots = append(plots, PlotSeries(c, "C per spin"+span))
	}

	return strings.Join(plots, "\n\n")
}
