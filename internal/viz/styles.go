package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/cavitylab/internal/analysis"
	"github.com/san-kum/cavitylab/internal/cavity"
	"github.com/san-kum/cavitylab/internal/inventory"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusGood = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusBad = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(14)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

func metric(label, value string) string {
	return MetricLabel.Render(label) + MetricValue.Render(value) + "\n"
}

// CavityReport renders the figures of merit of an analysed cavity.
func CavityReport(p *cavity.Properties) string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render(p.Name) + "\n")
	s.WriteString(metric("length", FormatSI(p.Length, "m")))
	s.WriteString(metric("FSR", FormatSI(p.FSR, "Hz")))
	s.WriteString(metric("finesse", fmt.Sprintf("%.1f", p.Finesse)))
	s.WriteString(metric("linewidth", FormatSI(p.FWHM, "Hz")))
	s.WriteString(metric("pole", FormatSI(p.Pole, "Hz")))
	s.WriteString(metric("loss", fmt.Sprintf("%.3g", p.Loss)))
	s.WriteString(metric("g1 g2", fmt.Sprintf("%.4f %.4f", p.G1, p.G2)))
	stable := StatusGood.Render("stable")
	if !p.Stable {
		stable = StatusBad.Render("unstable")
	}
	s.WriteString(MetricLabel.Render("geometry") + stable)
	return Panel.Render(s.String())
}

// FinesseReport renders a finesse measurement with one line per trough.
func FinesseReport(r *analysis.FinesseResult) string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render("finesse measurement") + "\n")
	s.WriteString(metric("finesse", fmt.Sprintf("%.2f", r.Finesse)))
	s.WriteString(metric("spacing", FormatSI(r.Spacing, "s")))
	s.WriteString(metric("mean width", FormatSI(r.MeanWidth, "s")))
	s.WriteString(metric("distance", fmt.Sprintf("%d samples", r.Distance)))
	for i, tr := range r.Troughs {
		s.WriteString(Subtle.Render(fmt.Sprintf("  #%d  t=%s  width=%s  depth=%.3g",
			i+1, FormatSI(tr.Time, "s"), FormatSI(tr.Fit.Width, "s"), tr.Fit.Depth())) + "\n")
	}
	return Panel.Render(strings.TrimRight(s.String(), "\n"))
}

// InventoryTable renders inventory entries one per line.
func InventoryTable(entries []inventory.Entry) string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render(fmt.Sprintf("%-12s %-8s %-10s %10s %10s", "VENDOR", "λ (nm)", "SURFACE", "R", "T")) + "\n")
	for _, e := range entries {
		s.WriteString(fmt.Sprintf("%-12s %-8s %-10s %10.6f %10.6f\n", e.Vendor, e.Wavelength, e.Surface, e.R, e.T))
	}
	return s.String()
}

// SparklineChart renders a mini sparkline from values
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := bounds(values)
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var result strings.Builder
	for _, v := range Decimate(values, width) {
		norm := (v - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = min(max(idx, 0), len(chars)-1)

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(SparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(SparkMid.Render(c))
		default:
			result.WriteString(SparkLow.Render(c))
		}
	}
	return result.String()
}

var siPrefixes = []struct {
	exp    int
	prefix string
}{
	{12, "T"}, {9, "G"}, {6, "M"}, {3, "k"}, {0, ""}, {-3, "m"}, {-6, "µ"}, {-9, "n"}, {-12, "p"},
}

// FormatSI formats v with an SI prefix, e.g. 1.5e9 Hz -> "1.500 GHz".
func FormatSI(v float64, unit string) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Sprintf("%v %s", v, unit)
	}
	if v == 0 {
		return "0 " + unit
	}
	mag := math.Abs(v)
	for _, p := range siPrefixes {
		if mag >= math.Pow10(p.exp) {
			return fmt.Sprintf("%.3f %s%s", v/math.Pow10(p.exp), p.prefix, unit)
		}
	}
	last := siPrefixes[len(siPrefixes)-1]
	return fmt.Sprintf("%.3f %s%s", v/math.Pow10(last.exp), last.prefix, unit)
}
