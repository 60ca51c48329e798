package metrics_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/llcsim/llcsim/metrics"
	"github.com/llcsim/llcsim/simcache"
)

func gaugeValue(c *metrics.Collector, name string) float64 {
	families, err := c.Registry().Gather()
	Expect(err).To(BeNil())

	for _, mf := range families {
		if mf.GetName() == name {
			Expect(mf.GetMetric()).To(HaveLen(1))
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	Fail("gauge not found: " + name)
	return 0
}

var _ = Describe("Collector", func() {
	var (
		collector *metrics.Collector
		cache     *simcache.Cache
	)

	BeforeEach(func() {
		collector = metrics.NewCollector("llcsim")

		var err error
		cache, err = simcache.New(simcache.Config{
			Size:          64 * 1024,
			Associativity: 8,
			BlockSize:     64,
			HitLatency:    1,
			MissLatency:   10,
			Seed:          1,
		})
		Expect(err).To(BeNil())
	})

	It("should register every gauge under the namespace", func() {
		families, err := collector.Registry().Gather()
		Expect(err).To(BeNil())

		names := make([]string, 0, len(families))
		for _, mf := range families {
			names = append(names, mf.GetName())
		}

		Expect(names).To(ContainElements(
			"llcsim_accesses",
			"llcsim_hits",
			"llcsim_misses",
			"llcsim_evictions",
			"llcsim_bypasses",
			"llcsim_streaming_sets",
			"llcsim_dead_line_fraction",
			"llcsim_psel",
		))
	})

	It("should snapshot cache statistics on Observe", func() {
		cache.Access(0x401000, 0x1000, false)
		cache.Access(0x401000, 0x1000, false)
		cache.Access(0x401000, 0x2000, false)

		collector.Observe(cache)

		Expect(gaugeValue(collector, "llcsim_accesses")).To(Equal(3.0))
		Expect(gaugeValue(collector, "llcsim_hits")).To(Equal(1.0))
		Expect(gaugeValue(collector, "llcsim_misses")).To(Equal(2.0))
		Expect(gaugeValue(collector, "llcsim_evictions")).To(Equal(0.0))
	})

	It("should reflect the latest snapshot, not an accumulation", func() {
		cache.Access(0x401000, 0x1000, false)
		collector.Observe(cache)
		collector.Observe(cache)

		Expect(gaugeValue(collector, "llcsim_accesses")).To(Equal(1.0))
	})

	It("should export the current policy-selection counter", func() {
		collector.Observe(cache)

		psel := gaugeValue(collector, "llcsim_psel")
		Expect(psel).To(Equal(float64(cache.Engine().PSEL())))
	})

	It("should shut down cleanly when no server was started", func() {
		Expect(collector.Shutdown(context.Background())).To(BeNil())
	})
})
