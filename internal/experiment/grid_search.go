package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/cavitylab/internal/optics"
	"github.com/san-kum/cavitylab/internal/solver"
	"github.com/san-kum/cavitylab/internal/sweep"
)

// GridSearch evaluates a detector over the cartesian product of parameter
// values and keeps the point with the highest power.
type GridSearch struct {
	params []string
	ranges [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{params: params, ranges: ranges}
}

func (g *GridSearch) Search(ctx context.Context, m *optics.Model, s solver.Solver, detector string) (map[string]float64, float64, error) {
	if len(g.params) != len(g.ranges) {
		return nil, 0, fmt.Errorf("grid search: %d params but %d ranges", len(g.params), len(g.ranges))
	}
	for _, p := range g.params {
		if _, err := m.Param(p); err != nil {
			return nil, 0, err
		}
	}

	work := m.DeepCopy()
	best := math.Inf(-1)
	var bestParams map[string]float64
	err := g.searchRecursive(ctx, 0, make(map[string]float64), work, s, detector, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	m *optics.Model,
	s solver.Solver,
	detector string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.params) {
		for k, v := range current {
			if err := m.SetParam(k, v); err != nil {
				return err
			}
		}
		sol, err := s.Solve(ctx, m)
		if err != nil {
			return err
		}
		val, err := sol.Power(detector)
		if err != nil {
			return err
		}
		if val > *best {
			*best = val
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	name := g.params[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val
		if err := g.searchRecursive(ctx, depth+1, next, m, s, detector, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// FindResonance scans target over [start, stop] in steps samples and
// returns the value maximising detector, refined by a second pass over the
// neighbouring interval clipped to the scan range.
func FindResonance(ctx context.Context, m *optics.Model, s solver.Solver, target, detector string, start, stop float64, steps int) (float64, float64, error) {
	if steps < 2 {
		return 0, 0, optics.Configf("steps", "need at least 2 samples, got %d", steps)
	}
	grid := sweep.Linspace(start, stop, steps)
	params, power, err := NewGridSearch([]string{target}, [][]float64{grid}).Search(ctx, m, s, detector)
	if err != nil {
		return 0, 0, err
	}

	step := math.Abs(stop-start) / float64(steps-1)
	centre := params[target]
	lo, hi := math.Min(start, stop), math.Max(start, stop)
	params, power, err = NewGridSearch([]string{target}, [][]float64{
		sweep.Linspace(math.Max(centre-step, lo), math.Min(centre+step, hi), steps),
	}).Search(ctx, m, s, detector)
	if err != nil {
		return 0, 0, err
	}
	return params[target], power, nil
}
