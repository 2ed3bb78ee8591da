package experiment

import (
	"fmt"

	"github.com/san-kum/cavitylab/internal/cavity"
	"github.com/san-kum/cavitylab/internal/config"
	"github.com/san-kum/cavitylab/internal/optics"
)

// buildHost adds the configured optics around the source laser. Thick
// optics are placed once the port they follow exists, so a lens may sit
// behind a thick mirror and vice versa.
func buildHost(host *optics.Model, hc config.HostConfig) (*optics.Model, error) {
	for _, l := range hc.Lasers {
		laser := optics.NewLaser(l.Name, l.Power, optics.SpeedOfLight/l.Wavelength)
		laser.Phase = l.Phase
		if err := host.Add(laser); err != nil {
			return nil, err
		}
	}
	for _, b := range hc.Beamsplitters {
		if err := host.Add(optics.NewBeamsplitter(b.Name, b.R, b.T)); err != nil {
			return nil, err
		}
	}
	for _, mod := range hc.Modulators {
		if err := host.Add(optics.NewModulator(mod.Name, mod.Frequency, mod.Midx)); err != nil {
			return nil, err
		}
	}

	for _, sp := range hc.Spaces {
		from, err := optics.ParsePort(sp.From)
		if err != nil {
			return nil, err
		}
		to, err := optics.ParsePort(sp.To)
		if err != nil {
			return nil, err
		}
		if _, err := host.Connect(sp.Name, from, to, sp.L, sp.Nr); err != nil {
			return nil, fmt.Errorf("space %s: %w", sp.Name, err)
		}
	}

	host, err := placeThickOptics(host, hc.ThickMirrors, hc.Lenses)
	if err != nil {
		return nil, err
	}

	for _, d := range hc.Detectors {
		node, err := optics.ParseNode(d.Node)
		if err != nil {
			return nil, err
		}
		if _, err := host.AddDetector(d.Name, node); err != nil {
			return nil, fmt.Errorf("detector %s: %w", d.Name, err)
		}
	}
	return host, nil
}

type thickOptic struct {
	name  string
	after string
	place func(m *optics.Model, at optics.Port) (*optics.Model, error)
}

func placeThickOptics(host *optics.Model, mirrors []config.ThickMirrorConfig, lenses []config.LensConfig) (*optics.Model, error) {
	var pending []thickOptic
	for _, tm := range mirrors {
		tm := tm
		pending = append(pending, thickOptic{
			name:  tm.Substrate.Name,
			after: tm.After,
			place: func(m *optics.Model, at optics.Port) (*optics.Model, error) {
				tc, err := tm.CentreThickness()
				if err != nil {
					return nil, err
				}
				mirror := tm.ThickMirror
				mirror.Substrate.Tc = tc
				return cavity.AddThickMirror(m, at, mirror, tm.Distance)
			},
		})
	}
	for _, l := range lenses {
		l := l
		pending = append(pending, thickOptic{
			name:  l.Name,
			after: l.After,
			place: func(m *optics.Model, at optics.Port) (*optics.Model, error) {
				return cavity.AddThickLens(m, at, l.Lens, l.Distance)
			},
		})
	}

	for len(pending) > 0 {
		var rest []thickOptic
		for _, op := range pending {
			at, err := optics.ParsePort(op.after)
			if err != nil {
				return nil, err
			}
			if _, ok := host.Element(at.Element); !ok {
				rest = append(rest, op)
				continue
			}
			if host, err = op.place(host, at); err != nil {
				return nil, fmt.Errorf("%s: %w", op.name, err)
			}
		}
		if len(rest) == len(pending) {
			return nil, fmt.Errorf("%w: %s follows unknown port %s", optics.ErrUnknownComponent, rest[0].name, rest[0].after)
		}
		pending = rest
	}
	return host, nil
}
