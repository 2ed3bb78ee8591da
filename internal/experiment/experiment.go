package experiment

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/san-kum/cavitylab/internal/cavity"
	"github.com/san-kum/cavitylab/internal/config"
	"github.com/san-kum/cavitylab/internal/inventory"
	"github.com/san-kum/cavitylab/internal/optics"
	"github.com/san-kum/cavitylab/internal/solver"
	"github.com/san-kum/cavitylab/internal/sweep"
)

// SourceName is the laser every experiment model starts from.
const SourceName = "source"

type Experiment struct {
	cfg    *config.Config
	model  *optics.Model
	action sweep.Action
	solver solver.Solver
}

// Build assembles the host model, attaches the cavity and prepares the
// configured sweep. inv may be nil when no mirror uses an inventory ref.
func Build(cfg *config.Config, inv *inventory.Inventory) (*Experiment, error) {
	return NewRegistry().Build(cfg, inv)
}

func (r *Registry) Build(cfg *config.Config, inv *inventory.Inventory) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m, err := buildModel(cfg, inv)
	if err != nil {
		return nil, err
	}
	action, err := r.GetAction(cfg, m)
	if err != nil {
		return nil, err
	}
	log.Debug("experiment built", "name", cfg.Name, "action", action.ActionName(), "elements", m.Counts().Elements)
	return &Experiment{cfg: cfg, model: m, action: action, solver: solver.NewPlaneWave()}, nil
}

// buildModel lays out the host optics and attaches the cavity. The mode
// basis is set on the host first so every copy made below inherits it.
func buildModel(cfg *config.Config, inv *inventory.Inventory) (*optics.Model, error) {
	host := optics.NewModel()
	laser := optics.NewLaser(SourceName, cfg.Laser.Power, cfg.Laser.Frequency())
	if err := host.Add(laser); err != nil {
		return nil, err
	}
	parity, err := optics.ParseParity(cfg.Modes.Parity)
	if err != nil {
		return nil, err
	}
	if err := host.SetModes(parity, cfg.Modes.MaxOrder); err != nil {
		return nil, err
	}

	host, err = buildHost(host, cfg.Host)
	if err != nil {
		return nil, err
	}
	attach, err := optics.ParsePort(cfg.Host.AttachPort())
	if err != nil {
		return nil, err
	}

	inR, inT, err := cfg.Input.Resolve(inv)
	if err != nil {
		return nil, fmt.Errorf("input mirror: %w", err)
	}
	outR, outT, err := cfg.Output.Resolve(inv)
	if err != nil {
		return nil, fmt.Errorf("output mirror: %w", err)
	}

	return cavity.AddBasicCavity(host, attach,
		cavity.NewMirrorProps(inR, inT, cfg.Input.Rc, outR, outT, cfg.Output.Rc),
		cavity.NewDistances(cfg.Distances.ToMirror, cfg.Distances.MiMo))
}

// WithSolver swaps the solver used by Run.
func (e *Experiment) WithSolver(s solver.Solver) *Experiment {
	e.solver = s
	return e
}

func (e *Experiment) Run(ctx context.Context) (*sweep.Result, error) {
	if e.model == nil || e.action == nil {
		return nil, fmt.Errorf("experiment not built")
	}
	return e.action.Run(ctx, e.model, e.solver)
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Model() *optics.Model { return e.model }

func (e *Experiment) Action() sweep.Action { return e.action }

func (e *Experiment) Solver() solver.Solver { return e.solver }

// Detector is the configured default detector, falling back to the
// cavity's reflected tap.
func (e *Experiment) Detector() string {
	if e.cfg.Detector != "" {
		return e.cfg.Detector
	}
	return cavity.Reflected
}
