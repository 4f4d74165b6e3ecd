package analysis

import (
	"math"
	"strings"
)

// SweepPoint is the outcome of one parameter value in a sweep.
type SweepPoint struct {
	Param  float64 `json:"param"`
	Theta  float64 `json:"theta"`
	StdDev float64 `json:"stddev"`
	// Analytic is NaN when the model has no closed form.
	Analytic float64 `json:"-"`
}

// Linspace returns n evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	step := (stop - start) / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// Logspace returns n values from 10^minExp to 10^maxExp evenly spaced in
// log scale.
func Logspace(minExp, maxExp float64, n int) []float64 {
	out := Linspace(minExp, maxExp, n)
	for i, e := range out {
		out[i] = math.Pow(10, e)
	}
	return out
}

// SweepToASCII plots theta against the sweep index. Analytic values, when
// present, are drawn with a different marker.
func SweepToASCII(data []SweepPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	plot := func(col int, v float64, mark rune) {
		if math.IsNaN(v) {
			return
		}
		v = min(max(v, 0), 1)
		row := height - 1 - int(math.Round(v*float64(height-1)))
		canvas[row][col] = mark
	}

	for i, p := range data {
		col := i * width / len(data)
		plot(col, p.Analytic, '-')
		plot(col, p.Theta, '•')
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}
