package cavity_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cavitylab/internal/cavity"
	"github.com/san-kum/cavitylab/internal/optics"
)

var _ = Describe("Analyze", func() {
	build := func(r1, r2, rc1, rc2, length float64) *optics.Model {
		host, attach := hostModel()
		m, err := cavity.AddBasicCavity(host, attach,
			cavity.NewMirrorProps(r1, 1-r1, rc1, r2, 1-r2, rc2),
			cavity.NewDistances(0, length))
		Expect(err).NotTo(HaveOccurred())
		return m
	}

	It("computes free spectral range and finesse", func() {
		m := build(0.99, 0.99, -1, math.Inf(1), 0.15)
		p, err := cavity.Analyze(m, cavity.Name)
		Expect(err).NotTo(HaveOccurred())

		Expect(p.FSR).To(BeNumerically("~", optics.SpeedOfLight/0.3, 1))
		rr := 0.99
		Expect(p.Finesse).To(BeNumerically("~", math.Pi*math.Sqrt(rr)/(1-rr), 1e-9))
		Expect(p.Finesse).To(BeNumerically("~", 312.6, 0.1))
		Expect(p.FWHM).To(BeNumerically("~", p.FSR/p.Finesse, 1e-6))
		Expect(p.Pole).To(BeNumerically("~", p.FWHM/2, 1e-6))
	})

	It("derives g-factors from the mirror curvature seen inside the cavity", func() {
		m := build(0.99, 0.99, -1, math.Inf(1), 0.15)
		p, err := cavity.Analyze(m, cavity.Name)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.G1).To(BeNumerically("~", 0.85, 1e-12))
		Expect(p.G2).To(Equal(1.0))
		Expect(p.Stable).To(BeTrue())
	})

	It("flags a convex-convex cavity as unstable", func() {
		m := build(0.9, 0.9, 1, -1, 0.5)
		p, err := cavity.Analyze(m, cavity.Name)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.G()).To(BeNumerically(">", 1))
		Expect(p.Stable).To(BeFalse())
	})

	It("reports an infinite FSR for a zero-length cavity", func() {
		m := build(0.9, 0.9, -1, 1, 0)
		p, err := cavity.Analyze(m, cavity.Name)
		Expect(err).NotTo(HaveOccurred())
		Expect(math.IsInf(p.FSR, 1)).To(BeTrue())
	})

	It("rejects unknown cavities", func() {
		m := build(0.9, 0.9, -1, 1, 0.1)
		_, err := cavity.Analyze(m, "ring")
		Expect(err).To(MatchError(optics.ErrUnknownComponent))
	})
})

var _ = Describe("thick optics", func() {
	It("adds a thick mirror with a substrate space", func() {
		host, attach := hostModel()
		tm := cavity.ThickMirror{
			Front:     cavity.Surface{Name: "ar", R: 0.001, T: 0.999, Rc: 1},
			Substrate: cavity.Substrate{Name: "fused_silica", Tc: 6.35e-3, Nr: 1.444},
			Back:      cavity.Surface{Name: "hr", R: 0.999, T: 0.001, Rc: 1},
		}
		m, err := cavity.AddThickMirror(host, attach, tm, 0.1)
		Expect(err).NotTo(HaveOccurred())

		front, ok := m.Mirror("ar_frontface")
		Expect(ok).To(BeTrue())
		Expect(front.Misaligned).To(BeTrue())
		Expect(front.Rc).To(Equal(-1.0))

		s, ok := m.Space("s_fused_silica_substrate")
		Expect(ok).To(BeTrue())
		Expect(s.Nr).To(Equal(1.444))
		Expect(s.L).To(Equal(6.35e-3))

		_, ok = m.Space("s_source_fused_silica")
		Expect(ok).To(BeTrue())
		Expect(host.Counts().Elements).To(Equal(1))
	})

	It("adds a fully transmissive lens", func() {
		host, attach := hostModel()
		m, err := cavity.AddThickLens(host, attach, cavity.Lens{Name: "l1", Rc1: 0.05, Rc2: 0.05, Tc: 3e-3, Nr: 1.5}, 0.2)
		Expect(err).NotTo(HaveOccurred())

		front, _ := m.Mirror("l1_frontface")
		Expect(front.R).To(BeZero())
		Expect(front.T).To(Equal(1.0))
		Expect(front.Rc).To(Equal(-0.05))
		_, ok := m.Space("l1_space")
		Expect(ok).To(BeTrue())
	})

	It("rejects a substrate without a refractive index", func() {
		host, attach := hostModel()
		_, err := cavity.AddThickLens(host, attach, cavity.Lens{Name: "l1", Tc: 3e-3}, 0)
		Expect(err).To(MatchError(optics.ErrConfiguration))
	})
})

var _ = DescribeTable("CentreThickness",
	func(edge, diameter, rc, want float64, ok bool) {
		got, err := cavity.CentreThickness(edge, diameter, rc)
		if !ok {
			Expect(err).To(MatchError(optics.ErrConfiguration))
			return
		}
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeNumerically("~", want, 1e-9))
	},
	Entry("flat surface", 6.35, 25.4, math.Inf(1), 6.35, true),
	Entry("hemisphere edge", 10.0, 10.0, 5.0, 5.0, true),
	Entry("one metre radius", 6.35, 25.4, 1000.0, 6.35-(1000-math.Sqrt(1000*1000-12.7*12.7)), true),
	Entry("diameter too large", 6.35, 30.0, 10.0, 0.0, false),
	Entry("sagitta exceeds edge", 1.0, 10.0, 5.0, 0.0, false),
)
