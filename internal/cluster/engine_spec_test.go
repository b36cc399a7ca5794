package cluster_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/san-kum/cdsim/internal/cluster"
	"github.com/san-kum/cdsim/internal/dynamo"
)

var _ = Describe("Engine", func() {
	var (
		params cluster.Params
		engine *cluster.Engine
	)

	BeforeEach(func() {
		params = cluster.DefaultParams()
	})

	JustBeforeEach(func() {
		var err error
		engine, err = cluster.New(params, cluster.WithLogger(zap.L()))
		Expect(err).NotTo(HaveOccurred())
		engine.Init()
	})

	It("implements the run-loop model contract", func() {
		var m dynamo.Model = engine
		Expect(m.Labels()).To(HaveLen(2 * params.MaxSize))
		Expect(m.Snapshot()).To(HaveLen(2 * params.MaxSize))
		Expect(m.StateDim()).To(Equal(2*params.MaxSize + 1))

		_, ok := m.(dynamo.Weighted)
		Expect(ok).To(BeTrue())
	})

	Context("with the default irradiation case", func() {
		It("builds interstitial clusters within a millisecond", func() {
			for k := 0; k < 1000; k++ {
				Expect(engine.Step(1e-6)).To(Succeed())
			}
			Expect(engine.Time()).To(BeNumerically("~", 1e-3, 1e-12))
			Expect(engine.Concentration(1)).To(BeNumerically(">", 0))
			Expect(engine.Concentration(3)).To(BeNumerically(">", 0))
			Expect(engine.Snapshot().IsValid()).To(BeTrue())
		})

		It("keeps the derivative zero in the unused slot", func() {
			x := make(dynamo.State, engine.StateDim())
			x[params.MaxSize+1] = 0.01
			dx := engine.Derive(x, 0)
			Expect(dx[params.MaxSize]).To(BeZero())
			Expect(dx[params.MaxSize+1]).To(BeNumerically("<", params.InterstitialGeneration))
		})
	})

	Context("when closed to sources and sinks", func() {
		BeforeEach(func() {
			params.InterstitialGeneration = 0
			params.VacancyGeneration = 0
			params.SinkConcentration = 0
		})

		It("conserves the signed defect balance", func() {
			engine.SetConcentration(1, 0.04)
			engine.SetConcentration(-1, 0.06)
			engine.SetConcentration(-2, 0.01)
			before := engine.Balance()

			for k := 0; k < 100; k++ {
				Expect(engine.Step(1e-6)).To(Succeed())
			}
			Expect(engine.Balance()).To(BeNumerically("~", before, math.Abs(before)*1e-9))
		})
	})

	Context("when the step is far too large", func() {
		It("reports instability and keeps the last good state", func() {
			engine.SetConcentration(1, 1)
			var err error
			for k := 0; k < 100 && err == nil; k++ {
				err = engine.Step(1)
			}
			Expect(err).To(MatchError(dynamo.ErrUnstable))
			Expect(engine.Snapshot().IsValid()).To(BeTrue())
		})
	})
})
