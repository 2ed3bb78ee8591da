package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cavitylab/internal/optics"
	"github.com/san-kum/cavitylab/internal/solver"
	"github.com/san-kum/cavitylab/internal/sweep"
)

// LiveSteps is the number of samples recomputed on every keypress.
const LiveSteps = 200

var (
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	statsStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2).
			Width(36)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

// ScanModel is an interactive sweep of one model parameter. The window is
// shifted and zoomed from the keyboard and the sweep is recomputed on every
// change.
type ScanModel struct {
	model     *optics.Model
	solver    solver.Solver
	target    string
	detectors []string
	selected  int

	centre, span         float64
	initCentre, initSpan float64

	log    bool
	width  int
	height int

	result *sweep.Result
	err    error
}

// NewScanModel prepares a scan of target over [start, stop]. Detector
// names are cycled with tab; the first one is shown initially.
func NewScanModel(m *optics.Model, s solver.Solver, target string, start, stop float64) (*ScanModel, error) {
	if _, err := m.Param(target); err != nil {
		return nil, err
	}
	if start >= stop {
		return nil, optics.Configf("stop", "must exceed start (%g >= %g)", start, stop)
	}
	var names []string
	for _, d := range m.Detectors() {
		names = append(names, d.Name())
	}
	if len(names) == 0 {
		return nil, optics.Configf("detector", "model has no detectors")
	}
	sm := &ScanModel{
		model:      m,
		solver:     s,
		target:     target,
		detectors:  names,
		centre:     (start + stop) / 2,
		span:       stop - start,
		initCentre: (start + stop) / 2,
		initSpan:   stop - start,
		width:      70,
		height:     16,
	}
	sm.recompute()
	return sm, nil
}

// SelectDetector makes name the plotted detector.
func (sm *ScanModel) SelectDetector(name string) bool {
	for i, d := range sm.detectors {
		if d == name {
			sm.selected = i
			return true
		}
	}
	return false
}

// Window returns the current sweep bounds.
func (sm *ScanModel) Window() (start, stop float64) {
	return sm.centre - sm.span/2, sm.centre + sm.span/2
}

func (sm *ScanModel) Detector() string { return sm.detectors[sm.selected] }

func (sm *ScanModel) Result() *sweep.Result { return sm.result }

func (sm *ScanModel) Err() error { return sm.err }

func (sm *ScanModel) recompute() {
	start, stop := sm.Window()
	x := sweep.Xaxis{Name: "live", Target: sm.target, Start: start, Stop: stop, Steps: LiveSteps}
	sm.result, sm.err = x.Run(context.Background(), sm.model, sm.solver)
}

func (sm *ScanModel) reset() {
	sm.centre, sm.span = sm.initCentre, sm.initSpan
	sm.log = false
	sm.selected = 0
}

func (sm *ScanModel) Init() tea.Cmd { return nil }

func (sm *ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		sm.width = max(msg.Width-44, 20)
		sm.height = max(msg.Height-10, 6)
		return sm, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return sm, tea.Quit
		case "left":
			sm.centre -= sm.span / 10
		case "right":
			sm.centre += sm.span / 10
		case "+", "=":
			sm.span /= 2
		case "-", "_":
			sm.span *= 2
		case "tab":
			sm.selected = (sm.selected + 1) % len(sm.detectors)
			return sm, nil
		case "l":
			sm.log = !sm.log
			return sm, nil
		case "r":
			sm.reset()
		default:
			return sm, nil
		}
		sm.recompute()
	}
	return sm, nil
}

func (sm *ScanModel) View() string {
	start, stop := sm.Window()

	var graph string
	switch {
	case sm.err != nil:
		graph = StatusBad.Render(sm.err.Error())
	default:
		values, err := sm.result.Detector(sm.Detector())
		if err != nil {
			graph = StatusBad.Render(err.Error())
			break
		}
		if sm.log {
			values = Log10(values)
		}
		graph = asciigraph.Plot(values,
			asciigraph.Width(sm.width),
			asciigraph.Height(sm.height),
			asciigraph.Caption(fmt.Sprintf("%s vs %s", sm.Detector(), sm.target)))
	}

	var stats strings.Builder
	stats.WriteString(Title.Render("cavity scan") + "\n\n")
	stats.WriteString(metric("target", sm.target))
	stats.WriteString(metric("start", fmt.Sprintf("%.6g", start)))
	stats.WriteString(metric("stop", fmt.Sprintf("%.6g", stop)))
	stats.WriteString(MetricLabel.Render("detector") + activeStyle.Render(sm.Detector()) + "\n")
	if sm.err == nil {
		if i, p, err := sm.result.Peak(sm.Detector()); err == nil {
			stats.WriteString(metric("peak", FormatSI(p, "W")))
			stats.WriteString(metric("at", fmt.Sprintf("%.6g", sm.result.XAt(i))))
		}
		if values, err := sm.result.Detector(sm.Detector()); err == nil {
			stats.WriteString("\n" + SparklineChart(values, 30) + "\n")
		}
	}
	scale := "linear"
	if sm.log {
		scale = "log10"
	}
	stats.WriteString(metric("scale", scale))

	body := lipgloss.JoinHorizontal(lipgloss.Top, graphStyle.Render(graph), statsStyle.Render(stats.String()))
	help := KeyHint.Render("←/→ shift · +/- zoom · tab detector · l log · r reset · q quit")
	return body + "\n" + help
}

// RunLive starts the interactive scan on the terminal.
func RunLive(sm *ScanModel) error {
	_, err := tea.NewProgram(sm, tea.WithAltScreen()).Run()
	return err
}
