package config

import (
	"fmt"

	"github.com/san-kum/cavitylab/internal/cavity"
	"github.com/san-kum/cavitylab/internal/optics"
)

// DefaultAttach is the port the cavity hangs off when a config names none.
const DefaultAttach = "source.p1"

// HostConfig describes the optics ahead of the cavity: extra sources,
// splitters, modulators, thick optics and the spaces joining them. Ports
// are written "element.pN" and detector nodes "element.pN.i|o".
type HostConfig struct {
	Lasers        []SourceConfig      `yaml:"lasers,omitempty" validate:"dive"`
	Beamsplitters []SplitterConfig    `yaml:"beamsplitters,omitempty" validate:"dive"`
	Modulators    []ModulatorConfig   `yaml:"modulators,omitempty" validate:"dive"`
	Spaces        []SpaceConfig       `yaml:"spaces,omitempty" validate:"dive"`
	ThickMirrors  []ThickMirrorConfig `yaml:"thick_mirrors,omitempty" validate:"dive"`
	Lenses        []LensConfig        `yaml:"lenses,omitempty" validate:"dive"`
	Detectors     []DetectorConfig    `yaml:"detectors,omitempty" validate:"dive"`
	Attach        string              `yaml:"attach,omitempty"`
}

type SourceConfig struct {
	Name       string  `yaml:"name" validate:"required"`
	Power      float64 `yaml:"power" validate:"gte=0"`
	Wavelength float64 `yaml:"wavelength" validate:"gt=0"`
	Phase      float64 `yaml:"phase,omitempty"`
}

type SplitterConfig struct {
	Name string  `yaml:"name" validate:"required"`
	R    float64 `yaml:"r" validate:"gte=0,lte=1"`
	T    float64 `yaml:"t" validate:"gte=0,lte=1"`
}

type ModulatorConfig struct {
	Name      string  `yaml:"name" validate:"required"`
	Frequency float64 `yaml:"frequency" validate:"gt=0"`
	Midx      float64 `yaml:"midx" validate:"gte=0"`
}

type SpaceConfig struct {
	Name string  `yaml:"name" validate:"required"`
	From string  `yaml:"from" validate:"required"`
	To   string  `yaml:"to" validate:"required"`
	L    float64 `yaml:"L" validate:"gte=0"`
	Nr   float64 `yaml:"nr,omitempty" validate:"gte=0"`
}

// ThickMirrorConfig places a thick mirror Distance metres after the port
// After. A positive EdgeThickness replaces the substrate's centre thickness
// with the one derived from the back surface sagitta over Diameter.
type ThickMirrorConfig struct {
	After              string  `yaml:"after" validate:"required"`
	Distance           float64 `yaml:"distance" validate:"gte=0"`
	EdgeThickness      float64 `yaml:"edge_thickness,omitempty" validate:"gte=0"`
	Diameter           float64 `yaml:"diameter,omitempty" validate:"gte=0"`
	cavity.ThickMirror `yaml:",inline"`
}

// CentreThickness returns the substrate thickness used for the mirror.
func (tm ThickMirrorConfig) CentreThickness() (float64, error) {
	if tm.EdgeThickness == 0 {
		return tm.Substrate.Tc, nil
	}
	return cavity.CentreThickness(tm.EdgeThickness, tm.Diameter, tm.Back.Rc)
}

type LensConfig struct {
	After       string  `yaml:"after" validate:"required"`
	Distance    float64 `yaml:"distance" validate:"gte=0"`
	cavity.Lens `yaml:",inline"`
}

type DetectorConfig struct {
	Name string `yaml:"name" validate:"required"`
	Node string `yaml:"node" validate:"required"`
}

// AttachPort is the port the cavity's input mirror connects to.
func (h HostConfig) AttachPort() string {
	if h.Attach == "" {
		return DefaultAttach
	}
	return h.Attach
}

func (h HostConfig) clone() HostConfig {
	c := h
	c.Lasers = append([]SourceConfig(nil), h.Lasers...)
	c.Beamsplitters = append([]SplitterConfig(nil), h.Beamsplitters...)
	c.Modulators = append([]ModulatorConfig(nil), h.Modulators...)
	c.Spaces = append([]SpaceConfig(nil), h.Spaces...)
	c.ThickMirrors = append([]ThickMirrorConfig(nil), h.ThickMirrors...)
	c.Lenses = append([]LensConfig(nil), h.Lenses...)
	c.Detectors = append([]DetectorConfig(nil), h.Detectors...)
	return c
}

// check verifies that every port and node reference is well formed.
// Whether the named elements exist is left to the model builder.
func (h HostConfig) check() error {
	for i, sp := range h.Spaces {
		if _, err := optics.ParsePort(sp.From); err != nil {
			return optics.Configf(fmt.Sprintf("host.spaces[%d].from", i), "%q is not element.pN", sp.From)
		}
		if _, err := optics.ParsePort(sp.To); err != nil {
			return optics.Configf(fmt.Sprintf("host.spaces[%d].to", i), "%q is not element.pN", sp.To)
		}
	}
	for i, tm := range h.ThickMirrors {
		if _, err := optics.ParsePort(tm.After); err != nil {
			return optics.Configf(fmt.Sprintf("host.thick_mirrors[%d].after", i), "%q is not element.pN", tm.After)
		}
	}
	for i, l := range h.Lenses {
		if _, err := optics.ParsePort(l.After); err != nil {
			return optics.Configf(fmt.Sprintf("host.lenses[%d].after", i), "%q is not element.pN", l.After)
		}
	}
	for i, d := range h.Detectors {
		if _, err := optics.ParseNode(d.Node); err != nil {
			return optics.Configf(fmt.Sprintf("host.detectors[%d].node", i), "%q is not element.pN.i or element.pN.o", d.Node)
		}
	}
	if _, err := optics.ParsePort(h.AttachPort()); err != nil {
		return optics.Configf("host.attach", "%q is not element.pN", h.Attach)
	}
	return nil
}
