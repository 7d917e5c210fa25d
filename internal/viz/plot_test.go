package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/isingsim/internal/sweep"
)

func TestPlotSweep(t *testing.T) {
	var results []sweep.Result
	for i := 0; i < 10; i++ {
		results = append(results, sweep.Result{
			Index:            i,
			Temperature:      0.5 + 0.5*float64(i),
			Energy:           -32 + 3*float64(i),
			MagnetizationRMS: 16 - 1.5*float64(i),
		})
	}

	out := PlotSweep(results, 4)
	for _, caption := range []string{"U per spin", "M_rms per spin", "C per spin"} {
		if !strings.Contains(out, caption) {
			t.Errorf("plot missing %q", caption)
		}
	}
}

func TestPlotSweepEmpty(t *testing.T) {
	if PlotSweep(nil, 4) != "" {
		t.Error("empty results should render nothing")
	}
	if PlotSeries(nil, "x") != "" {
		t.Error("empty series should render nothing")
	}
}

func TestSparklineWidth(t *testing.T) {
	if got := Sparkline(nil, 5); got != "─────" {
		t.Errorf("empty sparkline = %q", got)
	}
	if !strings.Contains(KeyValues("run", [][2]string{{"size", "64"}}), "64") {
		t.Error("panel should contain the value")
	}
}
