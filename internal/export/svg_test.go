package export

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/indecision/internal/analysis"
)

func TestThetaToSVG(t *testing.T) {
	times := []float64{0, 1, 2, 3}
	thetas := []float64{0, 0.4, 0.5, 0.5}
	steady := 0.5

	svg := ThetaToSVG(times, thetas, &steady, 400, 200, "#00ccff")
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not an svg document:\n%s", svg)
	}
	if got := strings.Count(svg, " L"); got != 3 {
		t.Errorf("path has %d segments, want 3", got)
	}
	if !strings.Contains(svg, "stroke-dasharray") {
		t.Error("steady state line missing")
	}
	// theta 0 at x=0 sits at 95% of the height.
	if !strings.Contains(svg, "M0.0,190.0") {
		t.Errorf("unexpected first point:\n%s", svg)
	}

	if ThetaToSVG(times, thetas, nil, 400, 200, "#fff") == "" {
		t.Error("empty svg without steady state")
	}
	if ThetaToSVG(times[:1], thetas[:1], nil, 400, 200, "#fff") != "" {
		t.Error("single point should render nothing")
	}
}

func TestSweepToSVG(t *testing.T) {
	data := []analysis.SweepPoint{
		{Param: 0.5, Theta: 0.3, Analytic: 1.0 / 3},
		{Param: 1, Theta: 0.51, Analytic: 0.5},
		{Param: 2, Theta: 0.66, Analytic: 2.0 / 3},
	}
	svg := SweepToSVG(data, 300, 150, "#00ff88")
	if got := strings.Count(svg, "<circle"); got != 3 {
		t.Errorf("%d markers, want 3", got)
	}
	if got := strings.Count(svg, "<path"); got != 2 {
		t.Errorf("%d paths, want simulated and analytic", got)
	}

	for i := range data {
		data[i].Analytic = math.NaN()
	}
	if got := strings.Count(SweepToSVG(data, 300, 150, "#00ff88"), "<path"); got != 1 {
		t.Errorf("%d paths without closed form, want 1", got)
	}
}
