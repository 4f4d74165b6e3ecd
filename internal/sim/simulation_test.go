package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/indecision/internal/particles"
	"github.com/san-kum/indecision/internal/sim"
)

// runningMean is a small Metric used to check replay.
type runningMean struct {
	sum float64
	n   int
}

func (m *runningMean) Name() string            { return "mean" }
func (m *runningMean) Observe(_, theta float64) { m.sum += theta; m.n++ }
func (m *runningMean) Reset()                   { m.sum, m.n = 0, 0 }
func (m *runningMean) Value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

func monoThetas(p *particles.MonoLigand, n int, opts sim.Options, until float64, samples int) []float64 {
	s, err := sim.New[particles.MonoLigandState](p, n, opts)
	Expect(err).NotTo(HaveOccurred())
	Expect(s.AdvanceUntil(until)).To(Succeed())
	return s.Thetas(samples)
}

var _ = Describe("Simulation", func() {
	It("records theta at time zero", func() {
		s, err := sim.New[particles.MonoLigandState](particles.NewMonoLigand(1, 1, 1, 1), 10, sim.Options{Seed: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.LastTheta()).To(BeZero())
		Expect(s.Len()).To(Equal(10))

		times, thetas := s.History()
		Expect(times).To(Equal([]float64{0}))
		Expect(thetas).To(Equal([]float64{0}))
	})

	It("returns the requested number of theta samples", func() {
		thetas := monoThetas(particles.NewMonoLigand(1, 1, 1, 1), 100, sim.Options{Seed: 1}, 5, 37)
		Expect(thetas).To(HaveLen(37))
		Expect(thetas[0]).To(BeZero())
		for _, th := range thetas {
			Expect(th).To(BeNumerically(">=", 0))
			Expect(th).To(BeNumerically("<=", 1))
		}
	})

	It("is reproducible for a fixed seed", func() {
		p := particles.NewMonoLigand(1, 1, 2, 1)
		a := monoThetas(p, 5000, sim.Options{Seed: 7}, 10, 50)
		b := monoThetas(p, 5000, sim.Options{Seed: 7}, 10, 50)
		c := monoThetas(p, 5000, sim.Options{Seed: 8}, 10, 50)
		Expect(a).To(Equal(b))
		Expect(a).NotTo(Equal(c))
	})

	It("does not depend on the number of workers", func() {
		p := particles.NewMonoLigand(1, 1, 2, 1)
		a := monoThetas(p, 20000, sim.Options{Seed: 7, Workers: 1}, 5, 20)
		b := monoThetas(p, 20000, sim.Options{Seed: 7, Workers: 4}, 5, 20)
		Expect(a).To(Equal(b))
	})

	It("settles at one half for symmetric rates", func() {
		thetas := monoThetas(particles.NewMonoLigand(1, 1, 1, 1), 100000, sim.Options{Seed: 11, Dt: 1}, 100, 100)
		Expect(thetas[len(thetas)-1]).To(BeNumerically("~", 0.5, 0.01))
	})

	It("settles at on/(on+off) for asymmetric rates", func() {
		thetas := monoThetas(particles.NewMonoLigand(1, 1, 2, 1), 100000, sim.Options{Seed: 12, Dt: 1}, 50, 50)
		Expect(thetas[len(thetas)-1]).To(BeNumerically("~", 2.0/3.0, 0.01))
	})

	It("matches the mono-ligand model for a single rate pair", func() {
		opts := sim.Options{Seed: 3, Dt: 0.25}
		mono := monoThetas(particles.NewMonoLigand(1, 1, 1, 1), 2000, opts, 10, 40)

		multi, err := sim.New[particles.MultiLigandState](particles.NewMultiLigand(particles.RatePair{On: 1, Off: 1}), 2000, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(multi.AdvanceUntil(10)).To(Succeed())

		Expect(multi.Thetas(40)).To(Equal(mono))
	})

	It("binds more as ligands are added", func() {
		opts := sim.Options{Seed: 5, Dt: 1}
		one := particles.NewMultiLigand(particles.RatePair{On: 1, Off: 1})
		three := particles.NewMultiLigand(
			particles.RatePair{On: 1, Off: 1},
			particles.RatePair{On: 1, Off: 1},
			particles.RatePair{On: 1, Off: 1},
		)

		a, err := sim.New[particles.MultiLigandState](one, 20000, opts)
		Expect(err).NotTo(HaveOccurred())
		b, err := sim.New[particles.MultiLigandState](three, 20000, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.AdvanceUntil(30)).To(Succeed())
		Expect(b.AdvanceUntil(30)).To(Succeed())

		Expect(b.LastTheta()).To(BeNumerically(">", a.LastTheta()))
	})

	It("lands exactly on the requested time", func() {
		s, err := sim.New[particles.MonoLigandState](particles.NewMonoLigand(1, 1, 1, 1), 10, sim.Options{Seed: 1, Dt: 0.3})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.AdvanceUntil(1)).To(Succeed())
		Expect(s.Time()).To(Equal(1.0))
		Expect(s.Steps()).To(Equal(4))
	})

	It("stops when the context is cancelled", func() {
		s, err := sim.New[particles.MonoLigandState](particles.NewMonoLigand(1, 1, 1, 1), 10, sim.Options{Seed: 1})
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(s.AdvanceUntilContext(ctx, 100)).To(MatchError(context.Canceled))
		Expect(s.Time()).To(BeZero())
	})

	It("replays history into late metrics", func() {
		s, err := sim.New[particles.MonoLigandState](particles.NewMonoLigand(1, 1, 1, 1), 1000, sim.Options{Seed: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.AdvanceUntil(5)).To(Succeed())

		m := &runningMean{}
		s.AddMetric(m)
		_, thetas := s.History()
		Expect(m.n).To(Equal(len(thetas)))

		Expect(s.AdvanceUntil(6)).To(Succeed())
		_, thetas = s.History()
		Expect(m.n).To(Equal(len(thetas)))

		sum := 0.0
		for _, th := range thetas {
			sum += th
		}
		Expect(s.Metrics()).To(HaveKeyWithValue("mean", BeNumerically("~", sum/float64(len(thetas)), 1e-12)))
	})

	It("converges under a detector", func() {
		s, err := sim.New[particles.MonoLigandState](particles.NewMonoLigand(1, 1, 1, 1), 100, sim.Options{Seed: 1})
		Expect(err).NotTo(HaveOccurred())

		ok, err := s.AdvanceUntilConverged(context.Background(), &countdown{left: 3}, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(s.Steps()).To(Equal(2))
	})

	It("reports absorbed interfering particles as entered or exited", func() {
		p := &particles.Interfering{
			TotalLigands:      2,
			AttachmentRate:    1,
			DetachmentRate:    1,
			EnterRate:         2,
			ObstructionFactor: 1,
			ReceptorDensity:   1,
		}
		s, err := sim.New[particles.InterferingState](p, 2000, sim.Options{Seed: 4, Dt: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.AdvanceUntil(200)).To(Succeed())

		entered := s.LastTheta()
		Expect(entered).To(BeNumerically(">", 0))
		Expect(entered).To(BeNumerically("<", 1))
		Expect(math.IsNaN(entered)).To(BeFalse())
		for _, st := range s.States() {
			Expect(p.IsAbsorbing(st)).To(BeTrue())
		}
	})
})
