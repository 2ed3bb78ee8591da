// Package metrics reduces a sweep to scalar figures that are stored with a
// run.
package metrics

import (
	"fmt"

	"github.com/san-kum/cavitylab/internal/sweep"
)

// Metric accumulates one figure over the samples of a sweep.
type Metric interface {
	Name() string
	Observe(x float64, power func(detector string) float64)
	Value() float64
	Reset()
}

// Evaluate feeds every sample of res to each metric and returns their
// values by name. Metrics are reset first.
func Evaluate(res *sweep.Result, ms ...Metric) (map[string]float64, error) {
	series := make(map[string][]float64)
	for _, name := range res.Detectors() {
		v, err := res.Detector(name)
		if err != nil {
			return nil, err
		}
		series[name] = v
	}
	for _, m := range ms {
		m.Reset()
	}
	for i := 0; i < res.Len(); i++ {
		power := func(d string) float64 {
			if v, ok := series[d]; ok {
				return v[i]
			}
			return 0
		}
		for _, m := range ms {
			m.Observe(res.XAt(i), power)
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		if _, dup := out[m.Name()]; dup {
			return nil, fmt.Errorf("metrics: duplicate metric %s", m.Name())
		}
		out[m.Name()] = m.Value()
	}
	return out, nil
}
