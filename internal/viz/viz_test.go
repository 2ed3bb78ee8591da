package viz_test

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/cavitylab/internal/analysis"
	"github.com/san-kum/cavitylab/internal/cavity"
	"github.com/san-kum/cavitylab/internal/optics"
	"github.com/san-kum/cavitylab/internal/solver"
	"github.com/san-kum/cavitylab/internal/viz"
)

func TestCanvasSetAndClear(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.Set(3, 3)
	assert.True(t, c.IsSet(3, 3))
	assert.False(t, c.IsSet(0, 0))
	assert.Equal(t, "⠀⢀\n", c.String())

	c.Set(-1, 0)
	c.Set(100, 0)
	c.Clear()
	assert.False(t, c.IsSet(3, 3))
}

func TestCanvasDrawLine(t *testing.T) {
	c := viz.NewCanvas(4, 2)
	c.DrawLine(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		assert.True(t, c.IsSet(i, i), "dot %d", i)
	}
}

func TestCanvasPlotSeriesAutoscale(t *testing.T) {
	c := viz.NewCanvas(5, 2)
	c.PlotSeries([]float64{0, 1}, 0, 0)
	assert.True(t, c.IsSet(0, 7), "low value sits on the bottom row")
	assert.True(t, c.IsSet(9, 0), "high value sits on the top row")
}

func TestDecimate(t *testing.T) {
	v := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	assert.Equal(t, []float64{0, 3, 6, 9}, viz.Decimate(v, 4))
	assert.Equal(t, v, viz.Decimate(v, 20))
	assert.Equal(t, []float64{9}, viz.Decimate(v, 1))
}

func TestLog10Floors(t *testing.T) {
	out := viz.Log10([]float64{100, 0, -1})
	assert.Equal(t, 2.0, out[0])
	assert.InDelta(t, -30.0, out[1], 1e-12)
	assert.InDelta(t, -30.0, out[2], 1e-12)
}

func TestPlot(t *testing.T) {
	assert.Empty(t, viz.Plot(nil, viz.PlotOptions{}))
	out := viz.Plot([]float64{1, 2, 3, 2, 1}, viz.PlotOptions{Width: 20, Height: 5, Caption: "cav_refl"})
	assert.Contains(t, out, "cav_refl")
}

func TestBraille(t *testing.T) {
	c := viz.Braille([]float64{0, 1, 0}, viz.PlotOptions{Width: 3, Height: 2})
	assert.Equal(t, 3, c.Width)
	assert.True(t, c.IsSet(0, 7))
	assert.True(t, c.IsSet(5, 7))
	assert.True(t, c.IsSet(2, 0) || c.IsSet(3, 0), "middle sample reaches the top row")

	svg := viz.CanvasToSVG(c, 4)
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "<circle")
}

func TestSeriesToSVG(t *testing.T) {
	assert.Empty(t, viz.SeriesToSVG([]float64{1}, []float64{1}, 100, 100, "#fff"))
	svg := viz.SeriesToSVG([]float64{0, 1, 2}, []float64{0, 1, 0}, 200, 100, "#00ffff")
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "#00ffff")
}

func TestFormatSI(t *testing.T) {
	assert.Equal(t, "1.500 GHz", viz.FormatSI(1.5e9, "Hz"))
	assert.Equal(t, "25.000 mm", viz.FormatSI(25e-3, "m"))
	assert.Equal(t, "0 W", viz.FormatSI(0, "W"))
	assert.Equal(t, "+Inf Hz", viz.FormatSI(math.Inf(1), "Hz"))
}

func TestReports(t *testing.T) {
	p := &cavity.Properties{Name: "cavity", Length: 0.15, FSR: 1e9, Finesse: 312.6, Stable: true}
	assert.Contains(t, viz.CavityReport(p), "stable")

	r := &analysis.FinesseResult{Finesse: 50, Distance: 500, Troughs: []analysis.Trough{{Index: 10}}}
	assert.Contains(t, viz.FinesseReport(r), "#1")
}

func TestSparklineChart(t *testing.T) {
	assert.Equal(t, "───", viz.SparklineChart(nil, 3))
	assert.NotEmpty(t, viz.SparklineChart([]float64{0, 1, 0.5}, 3))
}

func scanModel(t *testing.T) *viz.ScanModel {
	t.Helper()
	host := optics.NewModel()
	laser := optics.NewLaser("source", 1, optics.SpeedOfLight/1550e-9)
	require.NoError(t, host.Add(laser))
	m, err := cavity.AddBasicCavity(host, laser.P1(),
		cavity.NewMirrorProps(0.9, 0.1, -1, 0.9, 0.1, math.Inf(1)),
		cavity.NewDistances(0, 0.1))
	require.NoError(t, err)

	sm, err := viz.NewScanModel(m, solver.NewPlaneWave(), "m_input.phi", -90, 90)
	require.NoError(t, err)
	return sm
}

func TestScanModelKeys(t *testing.T) {
	sm := scanModel(t)
	require.NoError(t, sm.Err())
	assert.Equal(t, viz.LiveSteps, sm.Result().Len())

	sm.Update(tea.KeyMsg{Type: tea.KeyRight})
	start, stop := sm.Window()
	assert.InDelta(t, -72, start, 1e-9)
	assert.InDelta(t, 108, stop, 1e-9)

	sm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	start, stop = sm.Window()
	assert.InDelta(t, 90, stop-start, 1e-9)

	first := sm.Detector()
	sm.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.NotEqual(t, first, sm.Detector())

	sm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	start, stop = sm.Window()
	assert.InDelta(t, -90, start, 1e-9)
	assert.InDelta(t, 90, stop, 1e-9)
	assert.Equal(t, first, sm.Detector())

	assert.Contains(t, sm.View(), "m_input.phi")

	_, cmd := sm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
}

func TestScanModelRejects(t *testing.T) {
	sm := scanModel(t)
	assert.True(t, sm.SelectDetector(cavity.Transmitted))
	assert.False(t, sm.SelectDetector("nope"))

	m := optics.NewModel()
	_, err := viz.NewScanModel(m, solver.NewPlaneWave(), "m_input.phi", 0, 1)
	assert.ErrorIs(t, err, optics.ErrUnknownComponent)
}
