package cavity_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cavitylab/internal/cavity"
	"github.com/san-kum/cavitylab/internal/optics"
)

func hostModel() (*optics.Model, optics.Port) {
	host := optics.NewModel()
	laser := optics.NewLaser("source", 1, optics.SpeedOfLight/1550e-9)
	Expect(host.Add(laser)).To(Succeed())
	return host, laser.P1()
}

var _ = Describe("AddBasicCavity", func() {
	var (
		host   *optics.Model
		attach optics.Port
		props  cavity.MirrorProps
		dist   cavity.Distances
	)

	BeforeEach(func() {
		host, attach = hostModel()
		props = cavity.NewMirrorProps(0.99, 0.01, -1, 0.99, 0.01, math.Inf(1))
		dist = cavity.NewDistances(0, 0.15)
	})

	It("adds two mirrors, two spaces, one cavity and three detectors", func() {
		before := host.Counts()

		m, err := cavity.AddBasicCavity(host, attach, props, dist)
		Expect(err).NotTo(HaveOccurred())

		after := m.Counts()
		Expect(after.Elements - before.Elements).To(Equal(2))
		Expect(after.Spaces - before.Spaces).To(Equal(2))
		Expect(after.Cavities - before.Cavities).To(Equal(1))
		Expect(after.Detectors - before.Detectors).To(Equal(3))

		Expect(host.Counts()).To(Equal(before))
	})

	It("exposes the named taps and the swept space", func() {
		m, err := cavity.AddBasicCavity(host, attach, props, dist)
		Expect(err).NotTo(HaveOccurred())

		var names []string
		for _, d := range m.Detectors() {
			names = append(names, d.Name())
		}
		Expect(names).To(ConsistOf("cav_refl", "cav_circ", "cav_tran"))

		s, ok := m.Space(cavity.CavitySpace)
		Expect(ok).To(BeTrue())
		Expect(s.L).To(Equal(0.15))
		Expect(s.A).To(Equal(optics.Port{Element: cavity.InputMirror, Index: 2}))
		Expect(s.B).To(Equal(optics.Port{Element: cavity.OutputMirror, Index: 1}))

		_, ok = m.Space("s_source_mi")
		Expect(ok).To(BeTrue())

		refl, _ := m.Detector(cavity.Reflected)
		Expect(refl.Node.FullName()).To(Equal("m_input.p1.o"))
		circ, _ := m.Detector(cavity.Circulating)
		Expect(circ.Node.FullName()).To(Equal("m_output.p1.i"))
		tran, _ := m.Detector(cavity.Transmitted)
		Expect(tran.Node.FullName()).To(Equal("m_output.p2.o"))

		cav, ok := m.Cavity(cavity.Name)
		Expect(ok).To(BeTrue())
		Expect(cav.Source.FullName()).To(Equal("m_input.p2"))
	})

	It("copies the mirror properties verbatim", func() {
		m, err := cavity.AddBasicCavity(host, attach, props, dist)
		Expect(err).NotTo(HaveOccurred())

		mi, ok := m.Mirror(cavity.InputMirror)
		Expect(ok).To(BeTrue())
		Expect(mi.R).To(Equal(0.99))
		Expect(mi.T).To(Equal(0.01))
		Expect(mi.Rc).To(Equal(-1.0))

		mo, _ := m.Mirror(cavity.OutputMirror)
		Expect(math.IsInf(mo.Rc, 1)).To(BeTrue())
	})

	It("leaves the host mode basis alone and inherits it in the copy", func() {
		Expect(host.SetModes(optics.ModesEven, 4)).To(Succeed())

		m, err := cavity.AddBasicCavity(host, attach, props, dist)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Modes()).To(Equal(optics.ModeBasis{Parity: optics.ModesEven, MaxOrder: 4}))
		Expect(host.Modes()).To(Equal(optics.ModeBasis{Parity: optics.ModesEven, MaxOrder: 4}))

		fresh, port := hostModel()
		m, err = cavity.AddBasicCavity(fresh, port, props, dist)
		Expect(err).NotTo(HaveOccurred())
		Expect(fresh.Modes().Parity).To(Equal(optics.ModesOff))
		Expect(m.Modes().Parity).To(Equal(optics.ModesOff))
	})

	It("builds independent models from independent copies", func() {
		a, err := cavity.AddBasicCavity(host.DeepCopy(), attach, props, dist)
		Expect(err).NotTo(HaveOccurred())
		b, err := cavity.AddBasicCavity(host.DeepCopy(), attach, props, dist)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Counts()).To(Equal(b.Counts()))

		Expect(a.SetParam("s_mi_mo.L", 0.3)).To(Succeed())
		l, err := b.Param("s_mi_mo.L")
		Expect(err).NotTo(HaveOccurred())
		Expect(l).To(Equal(0.15))
	})

	It("accepts a zero-length cavity", func() {
		m, err := cavity.AddBasicCavity(host, attach, props, cavity.NewDistances(0, 0))
		Expect(err).NotTo(HaveOccurred())
		s, _ := m.Space(cavity.CavitySpace)
		Expect(s.L).To(BeZero())
	})

	It("fails to resolve a port that is already connected", func() {
		m, err := cavity.AddBasicCavity(host, attach, props, dist)
		Expect(err).NotTo(HaveOccurred())

		_, err = cavity.AddBasicCavity(m, attach, props, dist)
		Expect(err).To(MatchError(optics.ErrPortResolution))
	})

	It("fails to resolve a port the host does not have", func() {
		_, err := cavity.AddBasicCavity(host, optics.Port{Element: "nowhere", Index: 1}, props, dist)
		var pre *optics.PortResolutionError
		Expect(err).To(BeAssignableToTypeOf(pre))
	})

	DescribeTable("rejects invalid configuration before building",
		func(mutate func(*cavity.MirrorProps, *cavity.Distances), field string) {
			mutate(&props, &dist)
			m, err := cavity.AddBasicCavity(host, attach, props, dist)
			Expect(m).To(BeNil())
			Expect(err).To(MatchError(optics.ErrConfiguration))

			var cerr *optics.ConfigurationError
			Expect(errorsAs(err, &cerr)).To(BeTrue())
			Expect(cerr.Field).To(Equal(field))
		},
		Entry("missing input_r", func(p *cavity.MirrorProps, _ *cavity.Distances) { p.InputR = nil }, "input_r"),
		Entry("missing output_Rc", func(p *cavity.MirrorProps, _ *cavity.Distances) { p.OutputRc = nil }, "output_Rc"),
		Entry("reflectivity above one", func(p *cavity.MirrorProps, _ *cavity.Distances) { p.OutputR = cavity.Float(1.2) }, "output_r"),
		Entry("negative transmissivity", func(p *cavity.MirrorProps, _ *cavity.Distances) { p.InputT = cavity.Float(-0.1) }, "input_t"),
		Entry("NaN curvature", func(p *cavity.MirrorProps, _ *cavity.Distances) { p.InputRc = cavity.Float(math.NaN()) }, "input_Rc"),
		Entry("missing mi_mo", func(_ *cavity.MirrorProps, d *cavity.Distances) { d.MiMo = nil }, "mi_mo"),
		Entry("negative to_mirror", func(_ *cavity.MirrorProps, d *cavity.Distances) { d.ToMirror = cavity.Float(-1) }, "to_mirror"),
	)
})
