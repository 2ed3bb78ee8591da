package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/cavitylab/internal/optics"
	"github.com/san-kum/cavitylab/internal/solver"
)

// Default resolution of the canned scans.
const DefaultSteps = 10000

// Action is anything that can be run against a model to produce a Result.
type Action interface {
	ActionName() string
	Run(ctx context.Context, m *optics.Model, s solver.Solver) (*Result, error)
}

// Xaxis sweeps one scalar parameter linearly from Start to Stop. Steps is
// the number of samples, both endpoints included.
type Xaxis struct {
	Name   string  `yaml:"name" json:"name"`
	Target string  `yaml:"target" json:"target"`
	Start  float64 `yaml:"start" json:"start"`
	Stop   float64 `yaml:"stop" json:"stop"`
	Steps  int     `yaml:"steps" json:"steps"`
}

func (x Xaxis) ActionName() string {
	if x.Name == "" {
		return "xaxis"
	}
	return x.Name
}

func (x Xaxis) validate(m *optics.Model) error {
	if x.Steps < 2 {
		return optics.Configf("steps", "need at least 2 samples, got %d", x.Steps)
	}
	if math.IsNaN(x.Start) || math.IsInf(x.Start, 0) {
		return optics.Configf("start", "must be finite")
	}
	if math.IsNaN(x.Stop) || math.IsInf(x.Stop, 0) {
		return optics.Configf("stop", "must be finite")
	}
	if _, err := m.Param(x.Target); err != nil {
		return &optics.ConfigurationError{Field: "target", Reason: err.Error()}
	}
	return nil
}

// Run sweeps a private copy of m; the caller's model is left untouched.
func (x Xaxis) Run(ctx context.Context, m *optics.Model, s solver.Solver) (*Result, error) {
	if err := x.validate(m); err != nil {
		return nil, err
	}
	work := m.DeepCopy()
	res := newResult(x.ActionName(), x.Target, Linspace(x.Start, x.Stop, x.Steps))

	log.Debug("sweep started", "action", res.Name, "target", x.Target, "steps", x.Steps)
	for i, v := range res.X {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := work.SetParam(x.Target, v); err != nil {
			return nil, &optics.ConfigurationError{Field: "target", Reason: err.Error()}
		}
		sol, err := s.Solve(ctx, work)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, atSample(err, i)
		}
		res.record(sol)
	}
	log.Debug("sweep finished", "action", res.Name, "samples", res.Len())
	return res, nil
}

func atSample(err error, i int) error {
	var se *optics.SolverError
	if errors.As(err, &se) {
		return &optics.SolverError{Sample: i, Wrapped: se.Wrapped}
	}
	return &optics.SolverError{Sample: i, Wrapped: err}
}

// Series runs actions in order against the same model.
type Series []Action

func (s Series) Run(ctx context.Context, m *optics.Model, sv solver.Solver) ([]*Result, error) {
	out := make([]*Result, 0, len(s))
	for i, a := range s {
		res, err := a.Run(ctx, m, sv)
		if err != nil {
			return out, fmt.Errorf("action %d (%s): %w", i+1, a.ActionName(), err)
		}
		out = append(out, res)
	}
	return out, nil
}

// Linspace returns n evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// MovePiezo displaces a space by moveBy metres from its current length.
func MovePiezo(m *optics.Model, space string, moveBy float64) (Xaxis, error) {
	s, ok := m.Space(space)
	if !ok {
		return Xaxis{}, fmt.Errorf("%w: space %s", optics.ErrUnknownComponent, space)
	}
	return Xaxis{
		Name:   "piezo",
		Target: space + ".L",
		Start:  s.L,
		Stop:   s.L + moveBy,
		Steps:  DefaultSteps,
	}, nil
}

// SweepOneFSR tunes a mirror through 360 degrees. Reflection doubles the
// tuning phase, so resonances repeat every 180 degrees and the scan spans
// two free spectral ranges.
func SweepOneFSR(mirror string) Xaxis {
	return Xaxis{
		Name:   "fsr",
		Target: mirror + ".phi",
		Start:  -175,
		Stop:   185,
		Steps:  DefaultSteps,
	}
}
