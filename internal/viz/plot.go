package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

// logFloor keeps log10 finite for dark fringes.
const logFloor = 1e-30

type PlotOptions struct {
	Width, Height int
	Caption       string
	Log10         bool
}

// Plot renders a detector series as an ASCII graph.
func Plot(values []float64, opts PlotOptions) string {
	if len(values) == 0 {
		return ""
	}
	if opts.Width == 0 {
		opts.Width = 80
	}
	if opts.Height == 0 {
		opts.Height = 12
	}
	data := values
	if opts.Log10 {
		data = Log10(values)
	}
	return asciigraph.Plot(data,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(opts.Caption),
	)
}

// Braille draws values on a canvas of opts.Width x opts.Height cells,
// each cell holding 2x4 dots.
func Braille(values []float64, opts PlotOptions) *Canvas {
	if opts.Width == 0 {
		opts.Width = 80
	}
	if opts.Height == 0 {
		opts.Height = 12
	}
	data := values
	if opts.Log10 {
		data = Log10(values)
	}
	c := NewCanvas(opts.Width, opts.Height)
	c.PlotSeries(data, 0, 0)
	return c
}

// Log10 returns log10 of every value, clamped below at logFloor.
func Log10(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Log10(math.Max(v, logFloor))
	}
	return out
}

// Decimate keeps at most n evenly spaced samples, always including the
// last one.
func Decimate(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	if n == 1 {
		return values[len(values)-1:]
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = values[i*(len(values)-1)/(n-1)]
	}
	return out
}
