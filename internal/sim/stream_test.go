package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/indecision/internal/particles"
	"github.com/san-kum/indecision/internal/sim"
)

// countdown converges after a fixed number of snapshots.
type countdown struct{ left int }

func (c *countdown) HasConverged([]float64) bool {
	c.left--
	return c.left <= 0
}

var _ = Describe("Stream", func() {
	var (
		mono *particles.MonoLigand
		opts sim.Options
	)

	BeforeEach(func() {
		mono = particles.NewMonoLigand(1, 1, 1, 1)
		opts = sim.Options{Seed: 42, Dt: 0.5}
	})

	It("yields the ground state first", func() {
		s, err := sim.Snapshots[particles.MonoLigandState](mono, 100, opts)
		Expect(err).NotTo(HaveOccurred())

		first, err := s.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(first).To(HaveLen(100))
		Expect(first).To(HaveEach(particles.MonoLigandState{}))
		Expect(s.Time()).To(BeZero())

		_, err = s.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Time()).To(BeNumerically("~", 0.5, 1e-12))
	})

	It("keeps old snapshots intact after further steps", func() {
		s, err := sim.Snapshots[particles.MonoLigandState](mono, 1000, opts)
		Expect(err).NotTo(HaveOccurred())

		first, _ := s.Next()
		for i := 0; i < 10; i++ {
			_, err := s.Next()
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(first).To(HaveEach(particles.MonoLigandState{}))
	})

	It("takes and samples a fixed number of elements", func() {
		s, err := sim.Simulate[particles.MonoLigandState, float64](mono, 100, sim.Theta[particles.MonoLigandState], opts)
		Expect(err).NotTo(HaveOccurred())

		taken, err := sim.Take(s, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(taken).To(HaveLen(3))
		Expect(taken[0]).To(BeZero())
		Expect(s.Ensemble().Steps()).To(Equal(2))

		sampled, err := sim.Sample(s, 4, 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(sampled).To(HaveLen(4))
		Expect(s.Ensemble().Steps()).To(Equal(2 + 16))
	})

	It("ranges over All until the loop breaks", func() {
		s, err := sim.Simulate[particles.MonoLigandState, float64](mono, 10, sim.Theta[particles.MonoLigandState], opts)
		Expect(err).NotTo(HaveOccurred())

		seen := 0
		for theta, err := range s.All() {
			Expect(err).NotTo(HaveOccurred())
			Expect(theta).To(BeNumerically(">=", 0))
			Expect(theta).To(BeNumerically("<=", 1))
			seen++
			if seen == 7 {
				break
			}
		}
		Expect(seen).To(Equal(7))
		Expect(s.Time()).To(BeNumerically("~", 3.0, 1e-12))
	})

	It("advances until a target time", func() {
		s, err := sim.Snapshots[particles.MonoLigandState](mono, 50, opts)
		Expect(err).NotTo(HaveOccurred())

		states, err := sim.AdvanceUntil(s, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(states).To(HaveLen(50))
		Expect(s.Time()).To(BeNumerically(">=", 10))
	})

	It("returns the last extracted value", func() {
		s, err := sim.Simulate[particles.MonoLigandState, float64](mono, 10000, sim.Theta[particles.MonoLigandState], opts)
		Expect(err).NotTo(HaveOccurred())

		theta, err := sim.Last(s, 20)
		Expect(err).NotTo(HaveOccurred())
		Expect(theta).To(BeNumerically("~", 0.5, 0.05))
	})

	It("projects states to per-particle values", func() {
		s, err := sim.Simulate[particles.MonoLigandState, []float64](mono, 20, sim.Indicators[particles.MonoLigandState], opts)
		Expect(err).NotTo(HaveOccurred())

		_, err = sim.Take(s, 20)
		Expect(err).NotTo(HaveOccurred())
		snapshot, err := s.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(snapshot).To(HaveLen(20))
		for _, v := range snapshot {
			Expect(v).To(Or(Equal(0.0), Equal(1.0)))
		}
	})

	Describe("UntilConverged", func() {
		It("stops when the detector agrees", func() {
			s, err := sim.Simulate[particles.MonoLigandState, []float64](mono, 20, sim.Indicators[particles.MonoLigandState], opts)
			Expect(err).NotTo(HaveOccurred())

			res, err := sim.UntilConverged(s, &countdown{left: 5}, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Converged).To(BeTrue())
			Expect(res.Steps).To(Equal(5))
			Expect(res.Time).To(BeNumerically("~", 2.0, 1e-12))
			Expect(res.Last).To(HaveLen(20))
		})

		It("gives up after maxSteps", func() {
			s, err := sim.Simulate[particles.MonoLigandState, []float64](mono, 20, sim.Indicators[particles.MonoLigandState], opts)
			Expect(err).NotTo(HaveOccurred())

			res, err := sim.UntilConverged(s, &countdown{left: 1000}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Converged).To(BeFalse())
			Expect(res.Steps).To(Equal(10))
		})
	})
})
