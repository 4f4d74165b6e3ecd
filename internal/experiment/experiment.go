package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/indecision/internal/config"
	"github.com/san-kum/indecision/internal/convergence"
	"github.com/san-kum/indecision/internal/logging"
	"github.com/san-kum/indecision/internal/particles"
	"github.com/san-kum/indecision/internal/sim"
)

// Result is the outcome of one run, ready to be stored or exported.
type Result struct {
	Particle  string               `json:"particle"`
	Params    map[string]float64   `json:"params,omitempty"`
	Rates     []particles.RatePair `json:"rates,omitempty"`
	Particles int                  `json:"particles"`
	Seed      uint64               `json:"seed"`
	Dt        float64              `json:"dt"`

	// Time is the simulated time reached, which is below the configured
	// duration when the run converged early.
	Time      float64   `json:"time"`
	Steps     int       `json:"steps"`
	Times     []float64 `json:"times"`
	Thetas    []float64 `json:"thetas"`
	LastTheta float64   `json:"last_theta"`
	// SteadyState is nil for models without a closed form.
	SteadyState *float64           `json:"steady_state,omitempty"`
	Converged   bool               `json:"converged"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	Occupancy   []StateCount       `json:"occupancy,omitempty"`
	Elapsed     time.Duration      `json:"elapsed"`
}

type Experiment struct {
	cfg     *config.Config
	model   Model
	metrics []sim.Metric
	logger  *slog.Logger
	trace   *logging.TraceLogger
	runID   string
}

func New(cfg *config.Config, logger *slog.Logger) *Experiment {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Experiment{
		cfg:    cfg,
		logger: logger,
	}
}

func (e *Experiment) Setup(m Model, metrics []sim.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	e.model = m
	e.metrics = metrics
	return nil
}

// SetTrace sends every recorded tick of the next run to tl under runID.
func (e *Experiment) SetTrace(tl *logging.TraceLogger, runID string) {
	e.trace = tl
	e.runID = runID
}

func (e *Experiment) Model() Model { return e.model }

// Run simulates the configured ensemble up to the configured duration, or
// until convergence when it is enabled.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.model == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	cfg := e.cfg
	start := time.Now()

	r, err := e.model.Simulate(cfg.Particles, sim.Options{Seed: cfg.Seed, Dt: cfg.Dt, Workers: cfg.Workers})
	if err != nil {
		return nil, err
	}
	for _, m := range e.metrics {
		r.AddMetric(m)
	}

	e.logger.Info("run started",
		"particle", e.model.Name(),
		"particles", cfg.Particles,
		"duration", cfg.Duration,
		"seed", cfg.Seed,
		"workers", cfg.Workers,
	)

	converged := false
	if cfg.Convergence.Enabled {
		converged, err = e.runUntilConverged(ctx, r)
	} else {
		err = r.AdvanceUntil(ctx, cfg.Duration)
	}
	if err != nil {
		e.logger.Error("run failed", "particle", e.model.Name(), "time", r.Time(), "error", err)
		return nil, err
	}

	res := e.collect(r)
	res.Converged = converged
	res.Elapsed = time.Since(start)

	e.logger.Info("run finished",
		"particle", e.model.Name(),
		"time", res.Time,
		"steps", res.Steps,
		"theta", res.LastTheta,
		"converged", res.Converged,
		"elapsed", res.Elapsed,
	)
	return res, nil
}

func (e *Experiment) runUntilConverged(ctx context.Context, r Run) (bool, error) {
	cc := e.cfg.Convergence
	metric, err := convergence.MetricByName(cc.Metric)
	if err != nil {
		return false, err
	}
	crit, err := convergence.New(convergence.Config{
		Metric:     metric,
		Tolerance:  cc.Tolerance,
		WindowSize: cc.WindowSize,
		SampleSize: cc.SampleSize,
	})
	if err != nil {
		return false, err
	}

	ok, err := r.AdvanceUntilConverged(ctx, crit, e.cfg.Duration)
	if err != nil {
		return false, err
	}
	if ok {
		e.logger.Debug("converged", "time", r.Time(), "distance", crit.Distance())
	} else {
		e.logger.Warn("did not converge", "max_time", e.cfg.Duration, "distance", crit.Distance())
	}
	return ok, nil
}

func (e *Experiment) collect(r Run) *Result {
	cfg := e.cfg
	res := &Result{
		Particle:  cfg.Particle,
		Params:    cfg.Params,
		Rates:     cfg.Rates,
		Particles: cfg.Particles,
		Seed:      cfg.Seed,
		Dt:        cfg.Dt,
		Time:      r.Time(),
		Steps:     r.Steps(),
		LastTheta: r.LastTheta(),
		Metrics:   r.Metrics(),
		Occupancy: r.Occupancy(),
	}

	res.Thetas = r.Thetas(cfg.Samples)
	res.Times = make([]float64, len(res.Thetas))
	for i := range res.Times {
		res.Times[i] = float64(i) * res.Time / float64(len(res.Times))
	}

	if ss, err := e.model.SteadyState(); err == nil {
		res.SteadyState = &ss
	}

	if e.trace != nil {
		times, thetas := r.History()
		for i := range times {
			e.trace.Log(logging.TickRecord{Run: e.runID, Step: i, Time: times[i], Theta: thetas[i]})
		}
	}
	return res
}
