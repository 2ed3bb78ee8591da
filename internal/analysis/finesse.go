package analysis

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/cavitylab/internal/scope"
)

var ErrInsufficientTroughs = errors.New("analysis: fewer than two troughs found")

type FinesseOptions struct {
	// Distance is the minimum trough separation in samples; 0 estimates it
	// from the dominant period of the trace.
	Distance int
}

type Trough struct {
	Index int     `json:"index"`
	Time  float64 `json:"time"`
	Fit   Lorentz `json:"fit"`
}

type FinesseResult struct {
	Finesse   float64  `json:"finesse"`
	Spacing   float64  `json:"spacing"`
	MeanWidth float64  `json:"mean_width"`
	Distance  int      `json:"distance"`
	Troughs   []Trough `json:"troughs"`
}

// MeasureFinesse locates the resonance dips of a cavity scan, fits each
// with a Lorentzian over one trough spacing and returns the ratio of the
// mean spacing to the mean fitted width.
func MeasureFinesse(tr *scope.Trace, opts FinesseOptions) (*FinesseResult, error) {
	if tr.Len() < 3 {
		return nil, ErrInsufficientTroughs
	}
	distance := opts.Distance
	if distance <= 0 {
		period, err := DominantPeriod(tr.Voltage)
		if err != nil {
			return nil, err
		}
		distance = int(period / 2)
	}

	idx := FindPeaks(tr.Negate().Voltage, distance)
	if len(idx) < 2 {
		return nil, ErrInsufficientTroughs
	}

	gaps := make([]float64, len(idx)-1)
	for i := 1; i < len(idx); i++ {
		gaps[i-1] = tr.Time[idx[i]] - tr.Time[idx[i-1]]
	}
	spacing := stat.Mean(gaps, nil)

	res := &FinesseResult{Spacing: spacing, Distance: distance}
	widths := make([]float64, 0, len(idx))
	for _, i := range idx {
		t := tr.Time[i]
		win := tr.Slice(t-spacing/2, t+spacing/2)
		fit, err := FitLorentzian(win.Time, win.Voltage, GuessLorentz(win.Time, win.Voltage))
		if err != nil {
			return nil, fmt.Errorf("trough at %g s: %w", t, err)
		}
		res.Troughs = append(res.Troughs, Trough{Index: i, Time: t, Fit: fit})
		widths = append(widths, fit.Width)
	}
	res.MeanWidth = stat.Mean(widths, nil)
	res.Finesse = spacing / res.MeanWidth
	return res, nil
}
