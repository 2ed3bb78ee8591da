package solver

import (
	"context"
	"fmt"

	"github.com/san-kum/cavitylab/internal/optics"
)

// Solver evaluates a model and reports the power at every detector.
type Solver interface {
	Solve(ctx context.Context, m *optics.Model) (*Solution, error)
}

type Solution struct {
	powers map[string]float64
	order  []string
}

func NewSolution() *Solution {
	return &Solution{powers: make(map[string]float64)}
}

// Set records the power at a detector; first-set order is preserved.
func (s *Solution) Set(name string, p float64) {
	if _, ok := s.powers[name]; !ok {
		s.order = append(s.order, name)
	}
	s.powers[name] = p
}

// Power returns the detected power in watts.
func (s *Solution) Power(detector string) (float64, error) {
	p, ok := s.powers[detector]
	if !ok {
		return 0, fmt.Errorf("%w: detector %s", optics.ErrUnknownComponent, detector)
	}
	return p, nil
}

// Detectors lists detector names in model order.
func (s *Solution) Detectors() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
