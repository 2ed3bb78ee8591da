package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/cavitylab/internal/cavity"
	"github.com/san-kum/cavitylab/internal/config"
	"github.com/san-kum/cavitylab/internal/inventory"
	"github.com/san-kum/cavitylab/internal/optics"
	"github.com/san-kum/cavitylab/internal/solver"
	"github.com/san-kum/cavitylab/internal/sweep"
)

func TestBuildPresets(t *testing.T) {
	tests := []struct {
		preset string
		action string
		target string
		counts optics.Counts
	}{
		{"supermirror_1550", "piezo", "s_mi_mo.L", optics.Counts{Elements: 3, Spaces: 2, Cavities: 1, Detectors: 3}},
		{"newport_775", "piezo", "s_mi_mo.L", optics.Counts{Elements: 3, Spaces: 2, Cavities: 1, Detectors: 3}},
		{"demo_30cm", "xaxis", "m_input.phi", optics.Counts{Elements: 7, Spaces: 6, Cavities: 1, Detectors: 5}},
		{"lens_window_1550", "piezo", "s_mi_mo.L", optics.Counts{Elements: 7, Spaces: 6, Cavities: 1, Detectors: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			exp, err := Build(config.GetPreset(tt.preset), nil)
			require.NoError(t, err)

			ax, ok := exp.Action().(sweep.Xaxis)
			require.True(t, ok)
			assert.Equal(t, tt.action, ax.ActionName())
			assert.Equal(t, tt.target, ax.Target)
			assert.Equal(t, tt.counts, exp.Model().Counts())
		})
	}
}

func TestBuildDemoTopology(t *testing.T) {
	exp, err := Build(config.GetPreset("demo_30cm"), nil)
	require.NoError(t, err)
	m := exp.Model()

	s, ok := m.Space("s_bs2_mi")
	require.True(t, ok)
	assert.Equal(t, 1.0, s.L)
	assert.Len(t, m.Frequencies(), 2)

	sol, err := solver.NewPlaneWave().Solve(context.Background(), m)
	require.NoError(t, err)
	// the eom passes only the carrier; bs1 and bs2 split what is left
	carrier := 100e-6 * 0.5 * math.Pow(math.J0(10), 2)
	init, err := sol.Power("init")
	require.NoError(t, err)
	assert.InDelta(t, 0.1*carrier, init, 1e-15)
	assert.Equal(t, []string{"init", "refl", cavity.Reflected, cavity.Circulating, cavity.Transmitted}, sol.Detectors())
}

func TestBuildThickOptics(t *testing.T) {
	exp, err := Build(config.GetPreset("lens_window_1550"), nil)
	require.NoError(t, err)
	m := exp.Model()

	sub, ok := m.Space("s_window_substrate")
	require.True(t, ok)
	assert.InDelta(t, 6.35e-3-(1-math.Sqrt(1-12.7e-3*12.7e-3)), sub.L, 1e-12)
	assert.Equal(t, 1.444, sub.Nr)

	_, ok = m.Space("s_ml_backface_window")
	require.True(t, ok, "window follows the lens")
	_, ok = m.Space("s_win_s2_backface_mi")
	require.True(t, ok, "cavity follows the window")

	res, err := exp.WithSolver(solver.NewPlaneWave()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sweep.DefaultSteps, res.Len())
}

func TestBuildHostErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Host.Lenses = []config.LensConfig{{
		After: "nowhere.p1",
		Lens:  cavity.Lens{Name: "l1", Tc: 1e-3, Nr: 1.5},
	}}
	_, err := Build(cfg, nil)
	assert.ErrorIs(t, err, optics.ErrUnknownComponent)

	cfg = config.DefaultConfig()
	cfg.Host.Beamsplitters = []config.SplitterConfig{{Name: "bs", R: 0.5, T: 0.5}}
	cfg.Host.Spaces = []config.SpaceConfig{
		{Name: "a", From: "source.p1", To: "bs.p1", L: 1},
		{Name: "b", From: "bs.p1", To: "bs.p3", L: 1},
	}
	_, err = Build(cfg, nil)
	assert.ErrorIs(t, err, optics.ErrPortInUse)

	cfg = config.DefaultConfig()
	cfg.Host.Detectors = []config.DetectorConfig{{Name: "tap", Node: "ghost.p1.o"}}
	_, err = Build(cfg, nil)
	assert.ErrorIs(t, err, optics.ErrUnknownComponent)
}

func TestBuildCarriesModes(t *testing.T) {
	exp, err := Build(config.GetPreset("demo_30cm"), nil)
	require.NoError(t, err)
	assert.Equal(t, optics.ModeBasis{Parity: optics.ModesEven, MaxOrder: 4}, exp.Model().Modes())
	assert.Equal(t, cavity.Transmitted, exp.Detector())
}

func TestBuildPiezoRange(t *testing.T) {
	exp, err := Build(config.GetPreset("newport_775"), nil)
	require.NoError(t, err)
	ax := exp.Action().(sweep.Xaxis)
	assert.Equal(t, 25e-3, ax.Start)
	assert.InDelta(t, 25e-3+2.5e-6, ax.Stop, 1e-15)
	assert.Equal(t, sweep.DefaultSteps, ax.Steps)
}

func TestBuildInventoryRefs(t *testing.T) {
	cfg := config.GetPreset("thorlabs_775")

	_, err := Build(cfg, nil)
	require.ErrorIs(t, err, inventory.ErrNotFound)

	inv := inventory.New(
		inventory.Entry{Vendor: "newport", Wavelength: "775", Surface: "SR", R: 0.7352, T: 0.2648},
		inventory.Entry{Vendor: "thorlabs", Wavelength: "775", Surface: "P01", R: 0.97, T: 0.03},
	)
	exp, err := Build(cfg, inv)
	require.NoError(t, err)

	mi, ok := exp.Model().Mirror(cavity.InputMirror)
	require.True(t, ok)
	assert.Equal(t, 0.7352, mi.R)
	mo, _ := exp.Model().Mirror(cavity.OutputMirror)
	assert.True(t, math.IsInf(mo.Rc, 1))
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Distances.MiMo = -1
	_, err := Build(cfg, nil)
	require.ErrorIs(t, err, optics.ErrConfiguration)
}

func TestRegistryFSRMirror(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sweep = config.SweepConfig{Kind: config.SweepFSR, Mirror: "m_input", Steps: 50}
	exp, err := Build(cfg, nil)
	require.NoError(t, err)
	ax := exp.Action().(sweep.Xaxis)
	assert.Equal(t, "m_input.phi", ax.Target)
	assert.Equal(t, 50, ax.Steps)

	cfg.Sweep.Mirror = "m_missing"
	_, err = Build(cfg, nil)
	require.ErrorIs(t, err, optics.ErrUnknownComponent)
}

func TestRegistryUnknownKind(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"fsr", "piezo", "xaxis"}, r.ListActions())

	cfg := config.DefaultConfig()
	cfg.Sweep.Kind = "spiral"
	_, err := r.GetAction(cfg, optics.NewModel())
	require.ErrorIs(t, err, optics.ErrConfiguration)
}

func TestRunSmallSweep(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sweep = config.SweepConfig{Kind: config.SweepXaxis, Target: "s_mi_mo.L", Start: 0.1, Stop: 0.2, Steps: 5}
	exp, err := Build(cfg, nil)
	require.NoError(t, err)

	res, err := exp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, res.Len())

	refl, err := res.Detector(cavity.Reflected)
	require.NoError(t, err)
	tran, err := res.Detector(cavity.Transmitted)
	require.NoError(t, err)
	for i := range refl {
		assert.InDelta(t, cfg.Laser.Power, refl[i]+tran[i], 1e-9)
	}
}

func TestFindResonance(t *testing.T) {
	exp, err := Build(config.GetPreset("demo_30cm"), nil)
	require.NoError(t, err)
	m := exp.Model()

	phi, power, err := FindResonance(context.Background(), m, solver.NewPlaneWave(),
		"m_input.phi", cavity.Transmitted, -90, 90, 201)
	require.NoError(t, err)
	// impedance matched: everything reaching the input mirror is transmitted
	incident := 100e-6 * 0.5 * math.Pow(math.J0(10), 2) * 0.9
	assert.InDelta(t, incident, power, 1e-3*incident)
	assert.GreaterOrEqual(t, phi, -90.0)
	assert.LessOrEqual(t, phi, 90.0)

	before, _ := m.Param("m_input.phi")
	assert.Zero(t, before)
}

func TestFindResonanceAtRangeEdge(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Distances.MiMo = 0
	exp, err := Build(cfg, nil)
	require.NoError(t, err)

	for _, r := range [][2]float64{{0, 1e-6}, {1e-6, 0}} {
		length, power, err := FindResonance(context.Background(), exp.Model(), solver.NewPlaneWave(),
			"s_mi_mo.L", cavity.Transmitted, r[0], r[1], 101)
		require.NoError(t, err, "range %v", r)
		assert.Zero(t, length, "range %v", r)
		assert.InDelta(t, cfg.Laser.Power, power, 1e-9, "range %v", r)
	}
}

func TestGridSearchErrors(t *testing.T) {
	exp, err := Build(config.DefaultConfig(), nil)
	require.NoError(t, err)
	m := exp.Model()

	_, _, err = NewGridSearch([]string{"m_input.phi"}, nil).Search(context.Background(), m, solver.NewPlaneWave(), cavity.Transmitted)
	assert.Error(t, err)

	_, _, err = NewGridSearch([]string{"m_nope.phi"}, [][]float64{{0}}).Search(context.Background(), m, solver.NewPlaneWave(), cavity.Transmitted)
	assert.ErrorIs(t, err, optics.ErrUnknownComponent)

	_, _, err = FindResonance(context.Background(), m, solver.NewPlaneWave(), "m_input.phi", cavity.Transmitted, 0, 1, 1)
	assert.ErrorIs(t, err, optics.ErrConfiguration)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = NewGridSearch([]string{"m_input.phi"}, [][]float64{{0, 1}}).Search(ctx, m, solver.NewPlaneWave(), cavity.Transmitted)
	assert.ErrorIs(t, err, context.Canceled)
}
