package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/cavitylab/internal/inventory"
	"github.com/san-kum/cavitylab/internal/optics"
)

const (
	DefaultPower      = 1.0
	DefaultWavelength = 1550e-9
	DefaultMiMo       = 0.15
	DefaultMoveBy     = 2.5e-6
	DefaultSteps      = 10000
)

const (
	SweepPiezo = "piezo"
	SweepFSR   = "fsr"
	SweepXaxis = "xaxis"
)

type Config struct {
	Name      string         `yaml:"name" validate:"required"`
	Laser     LaserConfig    `yaml:"laser"`
	Host      HostConfig     `yaml:"host,omitempty"`
	Input     MirrorConfig   `yaml:"input"`
	Output    MirrorConfig   `yaml:"output"`
	Distances DistanceConfig `yaml:"distances"`
	Modes     ModesConfig    `yaml:"modes"`
	Sweep     SweepConfig    `yaml:"sweep"`
	Detector  string         `yaml:"detector,omitempty"`
}

type LaserConfig struct {
	Power      float64 `yaml:"power" validate:"gte=0"`
	Wavelength float64 `yaml:"wavelength" validate:"gt=0"`
}

func (l LaserConfig) Frequency() float64 {
	return optics.SpeedOfLight / l.Wavelength
}

// MirrorConfig describes a cavity mirror either by inventory reference
// ("vendor/wavelength/surface") or by literal coating values.
type MirrorConfig struct {
	Ref               string  `yaml:"ref,omitempty"`
	inventory.Coating `yaml:",inline"`
	Rc                float64 `yaml:"rc" validate:"ne=0"`
}

type DistanceConfig struct {
	ToMirror float64 `yaml:"to_mirror" validate:"gte=0"`
	MiMo     float64 `yaml:"mi_mo" validate:"gte=0"`
}

type ModesConfig struct {
	Parity   string `yaml:"parity,omitempty" validate:"omitempty,oneof=off even odd x y"`
	MaxOrder int    `yaml:"max_order,omitempty" validate:"gte=0"`
}

type SweepConfig struct {
	Kind   string  `yaml:"kind" validate:"required,oneof=piezo fsr xaxis"`
	MoveBy float64 `yaml:"move_by,omitempty"`
	Mirror string  `yaml:"mirror,omitempty"`
	Target string  `yaml:"target,omitempty" validate:"required_if=Kind xaxis"`
	Start  float64 `yaml:"start,omitempty"`
	Stop   float64 `yaml:"stop,omitempty"`
	Steps  int     `yaml:"steps,omitempty" validate:"omitempty,min=2"`
}

var validate = validator.New()

func DefaultConfig() *Config {
	return &Config{
		Name:  "cavity",
		Laser: LaserConfig{Power: DefaultPower, Wavelength: DefaultWavelength},
		Input: MirrorConfig{
			Coating: coating(0.99, 0.01),
			Rc:      -1,
		},
		Output: MirrorConfig{
			Coating: coating(0.99, 0.01),
			Rc:      math.Inf(1),
		},
		Distances: DistanceConfig{MiMo: DefaultMiMo},
		Sweep:     SweepConfig{Kind: SweepPiezo, MoveBy: DefaultMoveBy},
		Detector:  "cav_refl",
	}
}

func coating(r, t float64) inventory.Coating {
	return inventory.Coating{R: &r, T: &t}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	// mirrors are replaced wholesale so a file's ref is not shadowed by the
	// default coating
	cfg.Input, cfg.Output = MirrorConfig{}, MirrorConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks field ranges and the mirror description rules. Failures
// are reported as *optics.ConfigurationError.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return optics.Configf(fieldPath(fe.Namespace()), "failed %q check", fe.Tag())
		}
		return &optics.ConfigurationError{Field: "config", Reason: err.Error()}
	}
	if strings.ContainsAny(c.Name, "/\\ ") {
		return optics.Configf("name", "%q may not contain path separators or spaces", c.Name)
	}
	if err := c.Host.check(); err != nil {
		return err
	}
	for _, m := range []struct {
		field string
		cfg   MirrorConfig
	}{{"input", c.Input}, {"output", c.Output}} {
		if err := m.cfg.check(); err != nil {
			return optics.Configf(m.field, "%v", err)
		}
	}
	return nil
}

func (m MirrorConfig) check() error {
	if math.IsNaN(m.Rc) {
		return errors.New("rc is NaN")
	}
	literal := m.R != nil || m.T != nil || len(m.RMeasured) > 0 || len(m.TMeasured) > 0
	switch {
	case m.Ref != "" && literal:
		return errors.New("give either ref or coating values, not both")
	case m.Ref != "":
		if len(strings.Split(m.Ref, "/")) != 3 {
			return fmt.Errorf("ref %q is not vendor/wavelength/surface", m.Ref)
		}
		return nil
	default:
		_, _, err := m.Coating.Resolve()
		return err
	}
}

// Resolve returns the mirror's r and t, consulting inv for references.
func (m MirrorConfig) Resolve(inv *inventory.Inventory) (r, t float64, err error) {
	if m.Ref == "" {
		return m.Coating.Resolve()
	}
	if inv == nil {
		return 0, 0, fmt.Errorf("mirror %s: %w (no inventory loaded)", m.Ref, inventory.ErrNotFound)
	}
	parts := strings.Split(m.Ref, "/")
	if len(parts) != 3 {
		return 0, 0, optics.Configf("ref", "%q is not vendor/wavelength/surface", m.Ref)
	}
	e, err := inv.Lookup(parts[0], parts[1], parts[2])
	if err != nil {
		return 0, 0, err
	}
	return e.R, e.T, nil
}

// fieldPath turns "Config.Sweep.Kind" into "sweep.kind".
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.ToLower(strings.Join(parts, "."))
}
