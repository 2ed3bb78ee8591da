package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/cavitylab/internal/cavity"
	"github.com/san-kum/cavitylab/internal/config"
	"github.com/san-kum/cavitylab/internal/optics"
	"github.com/san-kum/cavitylab/internal/sweep"
)

// ActionFactory turns the sweep section of a config into an action on m.
type ActionFactory func(sc config.SweepConfig, m *optics.Model) (sweep.Action, error)

type Registry struct {
	actions map[string]ActionFactory
}

func NewRegistry() *Registry {
	r := &Registry{actions: make(map[string]ActionFactory)}

	r.actions[config.SweepPiezo] = func(sc config.SweepConfig, m *optics.Model) (sweep.Action, error) {
		moveBy := sc.MoveBy
		if moveBy == 0 {
			moveBy = config.DefaultMoveBy
		}
		ax, err := sweep.MovePiezo(m, cavity.CavitySpace, moveBy)
		if err != nil {
			return nil, err
		}
		if sc.Steps > 0 {
			ax.Steps = sc.Steps
		}
		return ax, nil
	}
	r.actions[config.SweepFSR] = func(sc config.SweepConfig, m *optics.Model) (sweep.Action, error) {
		mirror := sc.Mirror
		if mirror == "" {
			mirror = cavity.OutputMirror
		}
		if _, ok := m.Mirror(mirror); !ok {
			return nil, fmt.Errorf("%w: mirror %s", optics.ErrUnknownComponent, mirror)
		}
		ax := sweep.SweepOneFSR(mirror)
		if sc.Steps > 0 {
			ax.Steps = sc.Steps
		}
		return ax, nil
	}
	r.actions[config.SweepXaxis] = func(sc config.SweepConfig, m *optics.Model) (sweep.Action, error) {
		steps := sc.Steps
		if steps == 0 {
			steps = config.DefaultSteps
		}
		return sweep.Xaxis{Name: config.SweepXaxis, Target: sc.Target, Start: sc.Start, Stop: sc.Stop, Steps: steps}, nil
	}

	return r
}

// Register adds or replaces an action kind.
func (r *Registry) Register(kind string, f ActionFactory) {
	r.actions[kind] = f
}

func (r *Registry) GetAction(cfg *config.Config, m *optics.Model) (sweep.Action, error) {
	fn, ok := r.actions[cfg.Sweep.Kind]
	if !ok {
		return nil, optics.Configf("sweep.kind", "unknown sweep kind %q", cfg.Sweep.Kind)
	}
	return fn(cfg.Sweep, m)
}

func (r *Registry) ListActions() []string {
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
