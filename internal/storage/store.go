package storage

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/san-kum/indecision/internal/experiment"
	"github.com/san-kum/indecision/internal/particles"
)

// Store persists finished runs.
type Store interface {
	Init() error
	Save(res *experiment.Result) (string, error)
	List() ([]RunMetadata, error)
	Load(runID string) (*RunMetadata, error)
	LoadThetas(runID string) (times, thetas []float64, err error)
	Delete(runID string) error
	Close() error
}

type RunMetadata struct {
	ID          string               `json:"id"`
	Particle    string               `json:"particle"`
	Timestamp   time.Time            `json:"timestamp"`
	Params      map[string]float64   `json:"params,omitempty"`
	Rates       []particles.RatePair `json:"rates,omitempty"`
	Particles   int                  `json:"particles"`
	Seed        uint64               `json:"seed"`
	Dt          float64              `json:"dt"`
	Time        float64              `json:"time"`
	Steps       int                  `json:"steps"`
	LastTheta   float64              `json:"last_theta"`
	SteadyState *float64             `json:"steady_state,omitempty"`
	Converged   bool                 `json:"converged"`
	Metrics     map[string]float64   `json:"metrics"`
}

func newMetadata(res *experiment.Result) RunMetadata {
	now := time.Now()
	return RunMetadata{
		ID:          fmt.Sprintf("%s_%d", res.Particle, now.UnixNano()),
		Particle:    res.Particle,
		Timestamp:   now,
		Params:      res.Params,
		Rates:       res.Rates,
		Particles:   res.Particles,
		Seed:        res.Seed,
		Dt:          res.Dt,
		Time:        res.Time,
		Steps:       res.Steps,
		LastTheta:   res.LastTheta,
		SteadyState: res.SteadyState,
		Converged:   res.Converged,
		Metrics:     res.Metrics,
	}
}

// Open returns the store for backend rooted at dir: "file" keeps one
// directory per run, "sqlite" keeps every run in dir/runs.db.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", "file":
		return NewFileStore(dir), nil
	case "sqlite":
		return NewSQLiteStore(filepath.Join(dir, "runs.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}
