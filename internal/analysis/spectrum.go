package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

var ErrNoPeriod = errors.New("analysis: no periodic component")

// PowerSpectrum returns the magnitude of the positive-frequency bins of
// data after removing its mean.
func PowerSpectrum(data []float64) []float64 {
	mean := stat.Mean(data, nil)
	centred := make([]float64, len(data))
	for i, v := range data {
		centred[i] = v - mean
	}
	spec := fft.FFTReal(centred)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantPeriod returns the period, in samples, of the strongest non-DC
// spectral component.
func DominantPeriod(data []float64) (float64, error) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0, ErrNoPeriod
	}
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	if ps[best] == 0 {
		return 0, ErrNoPeriod
	}
	return float64(len(data)) / float64(best), nil
}
