package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/indecision/internal/analysis"
)

const (
	background = "#0a0a0a"
	axisColor  = "#444466"
	refColor   = "#888899"
)

type point struct{ X, Y float64 }

// frame maps data coordinates onto a width x height canvas. Theta is always
// drawn on [0, 1] with a small margin.
type frame struct {
	minX, rangeX float64
	width        int
	height       int
}

func newFrame(xs []float64, width, height int) frame {
	minX, maxX := xs[0], xs[0]
	for _, x := range xs {
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
	}
	rangeX := maxX - minX
	if rangeX == 0 {
		rangeX = 1
	}
	return frame{minX: minX, rangeX: rangeX, width: width, height: height}
}

func (f frame) project(p point) (float64, float64) {
	x := (p.X - f.minX) / f.rangeX * float64(f.width)
	y := float64(f.height) * (0.95 - 0.9*p.Y)
	return x, y
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

func axes(sb *strings.Builder, f frame) {
	_, y0 := f.project(point{Y: 0})
	_, y1 := f.project(point{Y: 1})
	fmt.Fprintf(sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-width="1"/>
<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-width="1"/>
`, y0, f.width, y0, axisColor, y1, f.width, y1, axisColor)
}

func path(sb *strings.Builder, f frame, points []point, stroke string) {
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)
	for i, p := range points {
		x, y := f.project(p)
		if i == 0 {
			fmt.Fprintf(sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")
}

// ThetaToSVG draws a theta series against time. A non-nil steady draws the
// expected plateau as a dashed line.
func ThetaToSVG(times, thetas []float64, steady *float64, width, height int, stroke string) string {
	n := min(len(times), len(thetas))
	if n < 2 || width <= 0 || height <= 0 {
		return ""
	}

	points := make([]point, n)
	for i := range points {
		points[i] = point{X: times[i], Y: thetas[i]}
	}
	f := newFrame(times[:n], width, height)

	var sb strings.Builder
	header(&sb, width, height)
	axes(&sb, f)
	if steady != nil {
		_, y := f.project(point{Y: *steady})
		fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="6 4"/>
`, y, width, y, refColor)
	}
	path(&sb, f, points, stroke)
	sb.WriteString("</svg>")
	return sb.String()
}

// SweepToSVG draws plateau theta against the swept parameter, with the
// analytic curve dashed where one exists.
func SweepToSVG(data []analysis.SweepPoint, width, height int, stroke string) string {
	if len(data) < 2 || width <= 0 || height <= 0 {
		return ""
	}

	xs := make([]float64, len(data))
	simulated := make([]point, len(data))
	var exact []point
	for i, p := range data {
		xs[i] = p.Param
		simulated[i] = point{X: p.Param, Y: p.Theta}
		if !math.IsNaN(p.Analytic) {
			exact = append(exact, point{X: p.Param, Y: p.Analytic})
		}
	}
	f := newFrame(xs, width, height)

	var sb strings.Builder
	header(&sb, width, height)
	axes(&sb, f)
	if len(exact) >= 2 {
		sb.WriteString("<g stroke-dasharray=\"6 4\">\n")
		path(&sb, f, exact, refColor)
		sb.WriteString("</g>\n")
	}
	path(&sb, f, simulated, stroke)
	for _, p := range simulated {
		x, y := f.project(p)
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="2.5" fill="%s"/>
`, x, y, stroke)
	}
	sb.WriteString("</svg>")
	return sb.String()
}
