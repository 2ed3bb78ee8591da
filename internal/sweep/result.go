package sweep

import (
	"fmt"

	"github.com/san-kum/cavitylab/internal/optics"
	"github.com/san-kum/cavitylab/internal/solver"
)

// Result holds the swept values and the detector powers recorded at each.
type Result struct {
	Name   string
	Target string
	X      []float64

	powers map[string][]float64
	order  []string
}

func newResult(name, target string, x []float64) *Result {
	return &Result{Name: name, Target: target, X: x, powers: make(map[string][]float64)}
}

// NewResult assembles a result from stored series, e.g. when reloading a run.
func NewResult(name, target string, x []float64, detectors []string, powers [][]float64) (*Result, error) {
	if len(detectors) != len(powers) {
		return nil, fmt.Errorf("sweep: %d detectors but %d series", len(detectors), len(powers))
	}
	r := newResult(name, target, x)
	for i, d := range detectors {
		if len(powers[i]) != len(x) {
			return nil, fmt.Errorf("sweep: detector %s has %d samples, want %d", d, len(powers[i]), len(x))
		}
		r.order = append(r.order, d)
		r.powers[d] = powers[i]
	}
	return r, nil
}

func (r *Result) record(sol *solver.Solution) {
	for _, d := range sol.Detectors() {
		p, _ := sol.Power(d)
		if _, ok := r.powers[d]; !ok {
			r.order = append(r.order, d)
		}
		r.powers[d] = append(r.powers[d], p)
	}
}

func (r *Result) Len() int { return len(r.X) }

func (r *Result) XAt(i int) float64 { return r.X[i] }

// Detector returns the power series of one detector.
func (r *Result) Detector(name string) ([]float64, error) {
	p, ok := r.powers[name]
	if !ok {
		return nil, fmt.Errorf("%w: detector %s", optics.ErrUnknownComponent, name)
	}
	return p, nil
}

func (r *Result) Detectors() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Peak returns the sample index and value of a detector's maximum.
func (r *Result) Peak(name string) (int, float64, error) {
	p, err := r.Detector(name)
	if err != nil {
		return 0, 0, err
	}
	if len(p) == 0 {
		return 0, 0, nil
	}
	best := 0
	for i, v := range p {
		if v > p[best] {
			best = i
		}
	}
	return best, p[best], nil
}
