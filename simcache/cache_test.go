package simcache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/llcsim/llcsim/replacement"
	"github.com/llcsim/llcsim/simcache"
)

var _ = Describe("Cache", func() {
	var c *simcache.Cache

	// Small cache for testing: 4KB, 4-way, 64B lines (16 sets).
	newCache := func(bypass bool) *simcache.Cache {
		config := simcache.Config{
			Size:          4 * 1024,
			Associativity: 4,
			BlockSize:     64,
			HitLatency:    1,
			MissLatency:   10,
			BypassEnabled: bypass,
			Seed:          1,
		}
		cache, err := simcache.New(config)
		Expect(err).NotTo(HaveOccurred())
		return cache
	}

	Describe("Basic accesses", func() {
		BeforeEach(func() {
			c = newCache(false)
		})

		It("should miss on cold cache", func() {
			result := c.Access(0x400000, 0x1000, false)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Latency).To(Equal(uint64(10)))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(0)))
		})

		It("should hit on cached data", func() {
			c.Access(0x400000, 0x1000, false)

			result := c.Access(0x400000, 0x1000, false)
			Expect(result.Hit).To(BeTrue())
			Expect(result.Latency).To(Equal(uint64(1)))

			stats := c.Stats()
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(1)))
		})

		It("should hit on different addresses in the same cache line", func() {
			c.Access(0x400000, 0x1000, false)

			result := c.Access(0x400004, 0x1004, false)
			Expect(result.Hit).To(BeTrue())
		})

		It("should count writes separately", func() {
			c.Access(0x400000, 0x1000, true)
			c.Access(0x400000, 0x2000, false)

			stats := c.Stats()
			Expect(stats.Writes).To(Equal(uint64(1)))
			Expect(stats.Reads).To(Equal(uint64(1)))
		})
	})

	Describe("Eviction", func() {
		BeforeEach(func() {
			c = newCache(false)
		})

		It("should evict when a set is full", func() {
			// 16 sets, so addresses 0x400 apart map to set 0.
			c.Access(0x400000, 0x0000, false)
			c.Access(0x400004, 0x0400, false)
			c.Access(0x400008, 0x0800, false)
			c.Access(0x40000C, 0x0C00, false)

			// All resident now.
			Expect(c.Access(0x400000, 0x0000, false).Hit).To(BeTrue())
			Expect(c.Access(0x400004, 0x0400, false).Hit).To(BeTrue())
			Expect(c.Access(0x400008, 0x0800, false).Hit).To(BeTrue())
			Expect(c.Access(0x40000C, 0x0C00, false).Hit).To(BeTrue())

			// Fifth line in the same set must evict.
			result := c.Access(0x400010, 0x1000, false)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Evicted).To(BeTrue())

			Expect(c.Stats().Evictions).To(Equal(uint64(1)))
		})
	})

	Describe("Bypass", func() {
		BeforeEach(func() {
			c = newCache(true)
		})

		It("should bypass a streaming scan and keep the set unpolluted", func() {
			// Constant-stride scan through set 0.
			addr := uint64(0x10000)
			sawBypass := false
			for i := 0; i < 12; i++ {
				result := c.Access(0x400100, addr, false)
				if result.Bypassed {
					sawBypass = true
					Expect(result.Hit).To(BeFalse())
					Expect(result.Evicted).To(BeFalse())
				}
				addr += 0x400
			}

			Expect(sawBypass).To(BeTrue())
			Expect(c.Stats().Bypasses).To(BeNumerically(">", 0))
			Expect(c.Engine().StreamingSetCount()).To(BeNumerically(">=", 1))
		})

		It("should not allocate bypassed lines", func() {
			addr := uint64(0x10000)
			var bypassed uint64
			for i := 0; i < 12; i++ {
				if c.Access(0x400100, addr, false).Bypassed {
					bypassed = addr
				}
				addr += 0x400
			}
			Expect(bypassed).NotTo(BeZero())

			// A bypassed address was never cached.
			Expect(c.Access(0x400200, bypassed, false).Hit).To(BeFalse())
		})
	})

	Describe("Reset", func() {
		It("should invalidate all lines and clear statistics", func() {
			c = newCache(false)
			c.Access(0x400000, 0x1000, false)
			Expect(c.Access(0x400000, 0x1000, false).Hit).To(BeTrue())

			c.Reset()

			Expect(c.Stats().Hits).To(Equal(uint64(0)))
			Expect(c.Access(0x400000, 0x1000, false).Hit).To(BeFalse())
		})
	})

	Describe("Configuration", func() {
		It("should create the default LLC geometry", func() {
			config := simcache.DefaultLLCConfig()
			Expect(config.Size).To(Equal(2 * 1024 * 1024))
			Expect(config.Associativity).To(Equal(16))
			Expect(config.BlockSize).To(Equal(64))

			cache, err := simcache.New(config)
			Expect(err).NotTo(HaveOccurred())
			Expect(cache.NumSets()).To(Equal(2048))
		})

		It("should reject a policy whose geometry disagrees", func() {
			config := simcache.DefaultLLCConfig()
			policy := replacement.DefaultConfig()
			policy.NumSets = 64

			_, err := simcache.NewWithPolicy(config, policy)
			Expect(err).To(HaveOccurred())
		})

		It("should reject a size too small for one set", func() {
			_, err := simcache.New(simcache.Config{
				Size:          64,
				Associativity: 4,
				BlockSize:     64,
			})
			Expect(err).To(HaveOccurred())
		})
	})
})
