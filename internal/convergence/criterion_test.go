package convergence_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/indecision/internal/convergence"
	"github.com/san-kum/indecision/internal/dynamo"
	"github.com/san-kum/indecision/internal/particles"
	"github.com/san-kum/indecision/internal/sim"
)

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

var _ = Describe("Criterion", func() {
	DescribeTable("rejects invalid configuration",
		func(cfg convergence.Config) {
			_, err := convergence.New(cfg)
			Expect(err).To(MatchError(dynamo.ErrConvergenceConfig))
		},
		Entry("zero tolerance", convergence.Config{Tolerance: 0, WindowSize: 2, SampleSize: 2}),
		Entry("negative tolerance", convergence.Config{Tolerance: -1, WindowSize: 2, SampleSize: 2}),
		Entry("NaN tolerance", convergence.Config{Tolerance: math.NaN(), WindowSize: 2, SampleSize: 2}),
		Entry("zero window", convergence.Config{Tolerance: 0.1, WindowSize: 0, SampleSize: 2}),
		Entry("zero sample size", convergence.Config{Tolerance: 0.1, WindowSize: 2, SampleSize: 0}),
	)

	It("waits for two full windows", func() {
		c, err := convergence.New(convergence.Config{Tolerance: 0.1, WindowSize: 3, SampleSize: 100})
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 5; i++ {
			Expect(c.HasConverged(constant(10, 1))).To(BeFalse())
		}
		Expect(math.IsNaN(c.Distance())).To(BeTrue())
		Expect(c.HasConverged(constant(10, 1))).To(BeTrue())
		Expect(c.Distance()).To(BeZero())
	})

	It("never converges while the distribution keeps moving", func() {
		c, err := convergence.New(convergence.Config{Tolerance: 0.5, WindowSize: 2, SampleSize: 100})
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 50; i++ {
			Expect(c.HasConverged(constant(10, float64(i)))).To(BeFalse())
		}
		Expect(c.Distance()).To(BeNumerically("~", 2, 1e-12))
	})

	It("keeps only the last two windows", func() {
		c, err := convergence.New(convergence.Config{Tolerance: 0.1, WindowSize: 4, SampleSize: 10})
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 20; i++ {
			c.HasConverged(constant(3, 0))
		}
		Expect(c.Len()).To(Equal(8))

		c.Reset()
		Expect(c.Len()).To(BeZero())
	})

	It("copies snapshots it is given", func() {
		c, err := convergence.New(convergence.Config{Tolerance: 0.1, WindowSize: 1, SampleSize: 10})
		Expect(err).NotTo(HaveOccurred())

		snap := constant(4, 0)
		c.HasConverged(snap)
		snap[0], snap[1], snap[2], snap[3] = 1, 1, 1, 1
		Expect(c.HasConverged(constant(4, 0))).To(BeTrue())
	})

	It("truncates each window to the sample size in order", func() {
		c, err := convergence.New(convergence.Config{Tolerance: 0.1, WindowSize: 2, SampleSize: 4})
		Expect(err).NotTo(HaveOccurred())

		// Only the first snapshot of each window fits in the sample.
		c.HasConverged(constant(4, 0))
		c.HasConverged(constant(4, 5))
		Expect(c.HasConverged(constant(4, 0))).To(BeFalse())
		Expect(c.HasConverged(constant(4, 9))).To(BeTrue())
	})

	It("uses the configured metric", func() {
		ks, err := convergence.MetricByName("ks")
		Expect(err).NotTo(HaveOccurred())
		c, err := convergence.New(convergence.Config{Metric: ks, Tolerance: 0.5, WindowSize: 1, SampleSize: 10})
		Expect(err).NotTo(HaveOccurred())

		c.HasConverged([]float64{0, 0, 0, 1})
		Expect(c.HasConverged([]float64{0, 0, 1, 1})).To(BeTrue())
		Expect(c.Distance()).To(BeNumerically("~", 0.25, 1e-12))
	})

	It("detects a mono-ligand ensemble settling", func() {
		s, err := sim.New[particles.MonoLigandState](particles.NewMonoLigand(1, 1, 1, 1), 20000, sim.Options{Seed: 9, Dt: 0.5})
		Expect(err).NotTo(HaveOccurred())
		c, err := convergence.New(convergence.Config{Tolerance: 0.02, WindowSize: 4, SampleSize: 80000})
		Expect(err).NotTo(HaveOccurred())

		ok, err := s.AdvanceUntilConverged(context.Background(), c, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(s.Time()).To(BeNumerically("<", 100))
		Expect(s.LastTheta()).To(BeNumerically("~", 0.5, 0.05))
	})
})
