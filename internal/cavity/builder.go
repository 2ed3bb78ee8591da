package cavity

import (
	"fmt"

	"github.com/san-kum/cavitylab/internal/optics"
)

// Names of the components added by AddBasicCavity.
const (
	InputMirror  = "m_input"
	OutputMirror = "m_output"
	CavitySpace  = "s_mi_mo"
	Name         = "fabry_perot"
	Reflected    = "cav_refl"
	Circulating  = "cav_circ"
	Transmitted  = "cav_tran"
)

// AddBasicCavity returns a copy of host with a two-mirror Fabry-Perot cavity
// attached at the given port, plus reflected, circulating and transmitted
// power detectors. host is not modified. The mode basis must be set on
// host beforehand; the copy inherits it.
func AddBasicCavity(host *optics.Model, attach optics.Port, props MirrorProps, dist Distances) (*optics.Model, error) {
	if err := props.Validate(); err != nil {
		return nil, err
	}
	if err := dist.Validate(); err != nil {
		return nil, err
	}

	m, from, err := copyAt(host, attach)
	if err != nil {
		return nil, err
	}

	mi := optics.NewMirror(InputMirror, *props.InputR, *props.InputT, *props.InputRc)
	mo := optics.NewMirror(OutputMirror, *props.OutputR, *props.OutputT, *props.OutputRc)
	if err := m.Add(mi, mo); err != nil {
		return nil, err
	}

	if _, err := m.Connect(fmt.Sprintf("s_%s_mi", attach.Element), from, mi.P1(), *dist.ToMirror, 1); err != nil {
		return nil, err
	}
	if _, err := m.Connect(CavitySpace, mi.P2(), mo.P1(), *dist.MiMo, 1); err != nil {
		return nil, err
	}

	if _, err := m.AddCavity(Name, mi.P2()); err != nil {
		return nil, err
	}

	taps := []struct {
		name string
		node optics.Node
	}{
		{Reflected, mi.P1().Out()},
		{Circulating, mo.P1().In()},
		{Transmitted, mo.P2().Out()},
	}
	for _, tap := range taps {
		if _, err := m.AddDetector(tap.name, tap.node); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// copyAt deep-copies host and re-resolves attach inside the copy.
func copyAt(host *optics.Model, attach optics.Port) (*optics.Model, optics.Port, error) {
	m := host.DeepCopy()
	p, err := m.ResolvePort(attach.FullName())
	if err != nil {
		return nil, optics.Port{}, err
	}
	return m, p, nil
}
