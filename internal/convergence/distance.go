package convergence

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/indecision/internal/dynamo"
)

// Metric is a distance between two empirical distributions given as samples.
type Metric func(u, v []float64) float64

// Wasserstein is the first Wasserstein (earth mover's) distance between the
// empirical distributions of u and v: the area between their CDFs. An empty
// sample is infinitely far from anything.
func Wasserstein(u, v []float64) float64 {
	if len(u) == 0 || len(v) == 0 {
		return math.Inf(1)
	}

	ux, uw := empirical(u)
	vx, vw := empirical(v)
	breaks := append(slices.Clone(ux), vx...)
	slices.Sort(breaks)
	breaks = slices.Compact(breaks)

	dist := 0.0
	for i := 0; i < len(breaks)-1; i++ {
		fu := stat.CDF(breaks[i], stat.Empirical, ux, uw)
		fv := stat.CDF(breaks[i], stat.Empirical, vx, vw)
		dist += math.Abs(fu-fv) * (breaks[i+1] - breaks[i])
	}
	return dist
}

// KolmogorovSmirnov is the largest vertical gap between the empirical CDFs of
// u and v.
func KolmogorovSmirnov(u, v []float64) float64 {
	if len(u) == 0 || len(v) == 0 {
		return math.Inf(1)
	}

	ux, uw := empirical(u)
	vx, vw := empirical(v)
	return stat.KolmogorovSmirnov(ux, uw, vx, vw)
}

var metrics = map[string]Metric{
	"wasserstein":        Wasserstein,
	"emd":                Wasserstein,
	"kolmogorov_smirnov": KolmogorovSmirnov,
	"ks":                 KolmogorovSmirnov,
}

// MetricByName resolves a metric name. The empty name is Wasserstein.
func MetricByName(name string) (Metric, error) {
	if name == "" {
		return Wasserstein, nil
	}
	m, ok := metrics[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown metric %q", dynamo.ErrConvergenceConfig, name)
	}
	return m, nil
}

// MetricNames lists the accepted metric names.
func MetricNames() []string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// empirical sorts a copy of samples and folds repeated values into weights.
// Projected states take few distinct values, so this keeps the CDF lookups
// short.
func empirical(samples []float64) (xs, weights []float64) {
	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	for i, x := range sorted {
		if i > 0 && x == sorted[i-1] {
			weights[len(weights)-1]++
			continue
		}
		xs = append(xs, x)
		weights = append(weights, 1)
	}
	return xs, weights
}
