package metrics

import (
	"math"
	"testing"
)

func observeAll(m Metric, thetas ...float64) {
	for i, th := range thetas {
		m.Observe(float64(i), th)
	}
}

func TestMeanTheta(t *testing.T) {
	m := NewMeanTheta()
	if m.Value() != 0 {
		t.Errorf("empty mean = %v", m.Value())
	}

	observeAll(m, 0, 0.5, 1)
	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("expected mean 0.5, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero mean after reset")
	}
}

func TestPeakTheta(t *testing.T) {
	p := NewPeakTheta()
	observeAll(p, 0.1, 0.7, 0.3, 0.7)

	if p.Value() != 0.7 {
		t.Errorf("expected peak 0.7, got %f", p.Value())
	}
	if p.At() != 1 {
		t.Errorf("expected first peak at t=1, got %f", p.At())
	}
}

func TestThetaStdDev(t *testing.T) {
	tests := []struct {
		name   string
		thetas []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{0.4}, 0},
		{"constant", []float64{0.3, 0.3, 0.3}, 0},
		{"spread", []float64{2, 4, 4, 4, 5, 5, 7, 9}, math.Sqrt(32.0 / 7.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewThetaStdDev()
			observeAll(s, tt.thetas...)
			if math.Abs(s.Value()-tt.want) > 1e-9 {
				t.Errorf("Value() = %v, want %v", s.Value(), tt.want)
			}
		})
	}
}

func TestStability(t *testing.T) {
	s := NewStability(0.5, 0.05, 2)
	observeAll(s, 0, 0.1, 0.5, 0.52, 0.6, 0.47)

	if math.Abs(s.Value()-0.75) > 1e-12 {
		t.Errorf("expected 3 of 4 samples inside the band, got %f", s.Value())
	}

	s.Reset()
	if s.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		m, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if m.Name() != name {
			t.Errorf("New(%q).Name() = %q", name, m.Name())
		}
	}

	if _, err := New("energy"); err == nil {
		t.Error("expected error for unknown metric")
	}
	if len(Defaults()) != len(Names()) {
		t.Error("Defaults() and Names() disagree")
	}
}
