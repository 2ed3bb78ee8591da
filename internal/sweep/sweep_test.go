package sweep_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cavitylab/internal/cavity"
	"github.com/san-kum/cavitylab/internal/optics"
	"github.com/san-kum/cavitylab/internal/solver"
	"github.com/san-kum/cavitylab/internal/sweep"
)

const lambda = 1550e-9

// echoSolver reports the current value of one parameter as detector "echo".
type echoSolver struct {
	ref    string
	calls  int
	failAt int
}

func (e *echoSolver) Solve(_ context.Context, m *optics.Model) (*solver.Solution, error) {
	e.calls++
	if e.failAt > 0 && e.calls == e.failAt {
		return nil, errors.New("boom")
	}
	v, err := m.Param(e.ref)
	if err != nil {
		return nil, err
	}
	sol := solver.NewSolution()
	sol.Set("echo", v)
	return sol, nil
}

func cavityModel(length float64) *optics.Model {
	host := optics.NewModel()
	laser := optics.NewLaser("source", 1, optics.SpeedOfLight/lambda)
	Expect(host.Add(laser)).To(Succeed())
	m, err := cavity.AddBasicCavity(host, laser.P1(),
		cavity.NewMirrorProps(0.99, 0.01, -1, 0.99, 0.01, math.Inf(1)),
		cavity.NewDistances(0, length))
	Expect(err).NotTo(HaveOccurred())
	return m
}

var _ = Describe("Xaxis", func() {
	It("visits every value in order, endpoints included", func() {
		m := cavityModel(0.15)
		s := &echoSolver{ref: "s_mi_mo.L"}
		ax := sweep.Xaxis{Target: "s_mi_mo.L", Start: 0.1, Stop: 0.2, Steps: 11}

		res, err := ax.Run(context.Background(), m, s)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Len()).To(Equal(11))
		Expect(res.XAt(0)).To(Equal(0.1))
		Expect(res.XAt(10)).To(Equal(0.2))

		echo, err := res.Detector("echo")
		Expect(err).NotTo(HaveOccurred())
		Expect(echo).To(Equal(res.X))
		Expect(res.Name).To(Equal("xaxis"))
	})

	It("leaves the caller's model untouched", func() {
		m := cavityModel(0.15)
		ax := sweep.Xaxis{Target: "s_mi_mo.L", Start: 0, Stop: 1, Steps: 3}
		_, err := ax.Run(context.Background(), m, &echoSolver{ref: "s_mi_mo.L"})
		Expect(err).NotTo(HaveOccurred())

		l, _ := m.Param("s_mi_mo.L")
		Expect(l).To(Equal(0.15))
	})

	DescribeTable("rejects invalid axes",
		func(ax sweep.Xaxis, field string) {
			_, err := ax.Run(context.Background(), cavityModel(0.15), &echoSolver{ref: "s_mi_mo.L"})
			var ce *optics.ConfigurationError
			Expect(errors.As(err, &ce)).To(BeTrue())
			Expect(ce.Field).To(Equal(field))
		},
		Entry("single step", sweep.Xaxis{Target: "s_mi_mo.L", Stop: 1, Steps: 1}, "steps"),
		Entry("infinite start", sweep.Xaxis{Target: "s_mi_mo.L", Start: math.Inf(-1), Stop: 1, Steps: 5}, "start"),
		Entry("NaN stop", sweep.Xaxis{Target: "s_mi_mo.L", Stop: math.NaN(), Steps: 5}, "stop"),
		Entry("unknown component", sweep.Xaxis{Target: "s_nope.L", Stop: 1, Steps: 5}, "target"),
		Entry("unknown parameter", sweep.Xaxis{Target: "s_mi_mo.Q", Stop: 1, Steps: 5}, "target"),
	)

	It("reports the failing sample of a solver error", func() {
		ax := sweep.Xaxis{Target: "s_mi_mo.L", Stop: 1, Steps: 10}
		_, err := ax.Run(context.Background(), cavityModel(0.15), &echoSolver{ref: "s_mi_mo.L", failAt: 4})

		Expect(err).To(MatchError(optics.ErrSolver))
		var se *optics.SolverError
		Expect(errors.As(err, &se)).To(BeTrue())
		Expect(se.Sample).To(Equal(3))
	})

	It("stops when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := &echoSolver{ref: "s_mi_mo.L"}
		_, err := sweep.Xaxis{Target: "s_mi_mo.L", Stop: 1, Steps: 10}.Run(ctx, cavityModel(0.15), s)
		Expect(err).To(MatchError(context.Canceled))
		Expect(s.calls).To(BeZero())
	})

	It("sweeps a zero-length cavity through the plane-wave solver", func() {
		m := cavityModel(0)
		res, err := sweep.SweepOneFSR(cavity.OutputMirror).Run(context.Background(), m, solver.NewPlaneWave())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Detectors()).To(Equal([]string{cavity.Reflected, cavity.Circulating, cavity.Transmitted}))

		_, peak, err := res.Peak(cavity.Transmitted)
		Expect(err).NotTo(HaveOccurred())
		Expect(peak).To(BeNumerically("~", 1, 1e-2))
	})

	It("finds a resonance every 180 degrees of mirror tuning", func() {
		res, err := sweep.SweepOneFSR(cavity.OutputMirror).Run(context.Background(), cavityModel(0), solver.NewPlaneWave())
		Expect(err).NotTo(HaveOccurred())
		tran, err := res.Detector(cavity.Transmitted)
		Expect(err).NotTo(HaveOccurred())

		var centres []float64
		start := -1
		for i, p := range tran {
			switch {
			case p > 0.5 && start < 0:
				start = i
			case p <= 0.5 && start >= 0:
				centres = append(centres, (res.XAt(start)+res.XAt(i-1))/2)
				start = -1
			}
		}
		Expect(start).To(Equal(-1), "scan ends off resonance")
		Expect(centres).To(HaveLen(2))
		Expect(centres[0]).To(BeNumerically("~", 0, 0.1))
		Expect(centres[1]).To(BeNumerically("~", 180, 0.1))
	})
})

var _ = Describe("canned scans", func() {
	It("moves the piezo from the current length", func() {
		m := cavityModel(0.15)
		ax, err := sweep.MovePiezo(m, cavity.CavitySpace, 1e-6)
		Expect(err).NotTo(HaveOccurred())
		Expect(ax).To(Equal(sweep.Xaxis{Name: "piezo", Target: "s_mi_mo.L", Start: 0.15, Stop: 0.15 + 1e-6, Steps: 10000}))
	})

	It("rejects an unknown piezo space", func() {
		_, err := sweep.MovePiezo(cavityModel(0.15), "s_missing", 1e-6)
		Expect(err).To(MatchError(optics.ErrUnknownComponent))
	})

	It("tunes one mirror through 360 degrees", func() {
		ax := sweep.SweepOneFSR("m_input")
		Expect(ax.Target).To(Equal("m_input.phi"))
		Expect(ax.Stop - ax.Start).To(Equal(360.0))
		Expect(ax.Steps).To(Equal(10000))
		Expect(ax.ActionName()).To(Equal("fsr"))
	})
})

var _ = Describe("Series", func() {
	It("runs actions in order and names the failing one", func() {
		m := cavityModel(0.15)
		series := sweep.Series{
			sweep.Xaxis{Name: "first", Target: "s_mi_mo.L", Stop: 1, Steps: 2},
			sweep.Xaxis{Name: "second", Target: "m_input.phi", Stop: 90, Steps: 3},
			sweep.Xaxis{Name: "broken", Target: "m_input.phi", Steps: 0},
		}
		results, err := series.Run(context.Background(), m, &echoSolver{ref: "m_input.phi"})
		Expect(err).To(MatchError(ContainSubstring("action 3 (broken)")))
		Expect(err).To(MatchError(optics.ErrConfiguration))
		Expect(results).To(HaveLen(2))
		Expect(results[1].Name).To(Equal("second"))
	})
})
