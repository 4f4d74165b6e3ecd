package particles

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/san-kum/indecision/internal/dynamo"
)

func testRates() []RatePair {
	return []RatePair{{On: 1.0, Off: 1.0}, {On: 0.5, Off: 0.5}, {On: 0.25, Off: 0.25}}
}

func TestMultiLigandBoundaryEvents(t *testing.T) {
	p := NewMultiLigand(testRates()...)
	k := p.TotalLigands()

	for _, s := range p.States() {
		var hasAttach, hasDetach bool
		for _, e := range p.Events(s) {
			switch e.Label {
			case "attach":
				hasAttach = true
				if e.Rate != p.Rates[s.Attached].On {
					t.Errorf("count %d: attach rate %v", s.Attached, e.Rate)
				}
			case "detach":
				hasDetach = true
				if e.Rate != p.Rates[s.Attached-1].Off {
					t.Errorf("count %d: detach rate %v", s.Attached, e.Rate)
				}
			}
		}
		if hasAttach != (s.Attached < k) {
			t.Errorf("count %d: attach present = %t", s.Attached, hasAttach)
		}
		if hasDetach != (s.Attached > 0) {
			t.Errorf("count %d: detach present = %t", s.Attached, hasDetach)
		}
	}
}

func TestMultiLigandStates(t *testing.T) {
	p := NewMultiLigand(testRates()...)
	states := p.States()
	if len(states) != 4 {
		t.Fatalf("expected 4 states, got %d", len(states))
	}
	for i, s := range states {
		if s.Attached != i {
			t.Errorf("states[%d] = %d", i, s.Attached)
		}
	}
}

func TestMultiLigandStaysInBounds(t *testing.T) {
	p := NewMultiLigand(testRates()...)
	k := p.TotalLigands()
	rng := rand.New(rand.NewPCG(2024, 1))

	for _, start := range p.States() {
		s := start
		for i := 0; i < 250000; i++ {
			before := s.Attached
			if _, err := dynamo.Advance[MultiLigandState](p, &s, rng); err != nil {
				t.Fatalf("start %d, step %d: %v", start.Attached, i, err)
			}
			if d := s.Attached - before; d != 1 && d != -1 {
				t.Fatalf("start %d, step %d: count changed by %d", start.Attached, i, d)
			}
			if s.Attached < 0 || s.Attached > k {
				t.Fatalf("start %d, step %d: count %d left [0, %d]", start.Attached, i, s.Attached, k)
			}
		}
	}
}

func TestMultiLigandProbabilitiesSumToOne(t *testing.T) {
	p := NewMultiLigand(RatePair{On: 3, Off: 0.1}, RatePair{On: 0.2, Off: 7})

	for _, s := range p.States() {
		probs, err := dynamo.EventProbabilities[MultiLigandState](p, s)
		if err != nil {
			t.Fatalf("state %d: %v", s.Attached, err)
		}
		sum := 0.0
		for _, ep := range probs {
			sum += ep.Probability
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("state %d: probabilities sum to %v", s.Attached, sum)
		}
	}
}

func TestNewMultiLigandFromSlices(t *testing.T) {
	p, err := NewMultiLigandFromSlices([]float64{1, 2}, []float64{3, 4})
	if err != nil {
		t.Fatal(err)
	}
	if p.Rates[1] != (RatePair{On: 2, Off: 4}) {
		t.Errorf("Rates = %v", p.Rates)
	}

	if _, err := NewMultiLigandFromSlices([]float64{1}, []float64{1, 2}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}

func TestMultiLigandValidate(t *testing.T) {
	tests := []struct {
		name    string
		rates   []RatePair
		wantErr bool
	}{
		{"valid", testRates(), false},
		{"empty", nil, true},
		{"negative off", []RatePair{{On: 1, Off: -1}}, true},
		{"NaN on", []RatePair{{On: math.NaN(), Off: 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewMultiLigand(tt.rates...).Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
