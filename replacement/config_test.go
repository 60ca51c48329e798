package replacement_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/llcsim/llcsim/replacement"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

var _ = Describe("Config", func() {
	It("should validate the defaults", func() {
		Expect(replacement.DefaultConfig().Validate()).To(Succeed())
	})

	DescribeTable("rejecting invalid configurations",
		func(mutate func(*replacement.Config)) {
			cfg := replacement.DefaultConfig()
			mutate(&cfg)
			Expect(cfg.Validate()).NotTo(Succeed())
		},
		Entry("zero sets", func(c *replacement.Config) { c.NumSets = 0 }),
		Entry("zero ways", func(c *replacement.Config) { c.NumWays = 0 }),
		Entry("RRPV too wide", func(c *replacement.Config) { c.RRPVBits = 5 }),
		Entry("signature too narrow", func(c *replacement.Config) { c.SignatureBits = 4 }),
		Entry("signature too wide", func(c *replacement.Config) { c.SignatureBits = 13 }),
		Entry("stream threshold above window", func(c *replacement.Config) {
			c.StreamWindow = 4
			c.StreamThreshold = 5
		}),
		Entry("leader sets exceed sets", func(c *replacement.Config) {
			c.NumSets = 32
			c.LeaderSetsPerPolicy = 32
		}),
		Entry("zero decay epoch", func(c *replacement.Config) { c.DecayEpoch = 0 }),
		Entry("zero BRRIP chance", func(c *replacement.Config) { c.BRRIPLongChance = 0 }),
	)

	It("should clone without sharing mutations", func() {
		cfg := replacement.DefaultConfig()
		clone := cfg.Clone()
		clone.NumSets = 64

		Expect(cfg.NumSets).To(Equal(2048))
		Expect(clone.NumSets).To(Equal(64))
	})

	It("should round-trip through a JSON file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "policy.json")

		cfg := replacement.DefaultConfig()
		cfg.NumSets = 512
		cfg.DecayEpoch = 4096
		Expect(cfg.SaveConfig(path)).To(Succeed())

		loaded, err := replacement.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(cfg))
	})

	It("should fail to load a missing file", func() {
		_, err := replacement.LoadConfig("/nonexistent/policy.json")
		Expect(err).To(HaveOccurred())
	})

	It("should keep defaults for fields absent from the file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "partial.json")
		Expect(writeFile(path, `{"num_sets": 128}`)).To(Succeed())

		loaded, err := replacement.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.NumSets).To(Equal(128))
		Expect(loaded.NumWays).To(Equal(replacement.DefaultConfig().NumWays))
	})
})
