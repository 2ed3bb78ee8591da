package cavity

import (
	"fmt"
	"math"

	"github.com/san-kum/cavitylab/internal/optics"
)

// Properties are the plane-wave figures of merit of a linear cavity.
type Properties struct {
	Name      string  `json:"name"`
	Length    float64 `json:"length"`     // physical mirror separation, m
	RoundTrip float64 `json:"round_trip"` // optical round-trip path, m
	FSR       float64 `json:"fsr"`        // Hz
	Finesse   float64 `json:"finesse"`
	FWHM      float64 `json:"fwhm"` // Hz
	Pole      float64 `json:"pole"` // Hz
	Loss      float64 `json:"loss"` // round-trip power loss
	G1        float64 `json:"g1"`
	G2        float64 `json:"g2"`
	Stable    bool    `json:"stable"`
}

// G is the product g1*g2.
func (p *Properties) G() float64 { return p.G1 * p.G2 }

// Analyze traces the cavity declared as name. Only two-mirror linear
// cavities are supported: the source port must belong to a mirror whose
// space ends on another mirror.
func Analyze(m *optics.Model, name string) (*Properties, error) {
	cav, ok := m.Cavity(name)
	if !ok {
		return nil, fmt.Errorf("%w: cavity %s", optics.ErrUnknownComponent, name)
	}
	src := cav.Source
	m1, ok := m.Mirror(src.Element)
	if !ok {
		return nil, optics.Configf(name, "source %s is not a mirror", src)
	}
	space, ok := m.Link(src)
	if !ok {
		return nil, optics.Configf(name, "source %s is not connected", src)
	}
	far, _ := space.Other(src)
	m2, ok := m.Mirror(far.Element)
	if !ok {
		return nil, optics.Configf(name, "%s does not end on a mirror; only linear two-mirror cavities are supported", space.Name())
	}

	r1 := amplitudeReflectivity(m1)
	r2 := amplitudeReflectivity(m2)
	rr := r1 * r2

	p := &Properties{
		Name:      name,
		Length:    space.L,
		RoundTrip: 2 * space.Nr * space.L,
		Loss:      1 - rr*rr,
	}

	switch {
	case p.RoundTrip == 0:
		p.FSR = math.Inf(1)
	default:
		p.FSR = optics.SpeedOfLight / p.RoundTrip
	}

	switch {
	case rr >= 1:
		p.Finesse = math.Inf(1)
	default:
		p.Finesse = math.Pi * math.Sqrt(rr) / (1 - rr)
	}

	switch {
	case p.Finesse == 0:
		p.FWHM = math.Inf(1)
	case math.IsInf(p.FSR, 1) && math.IsInf(p.Finesse, 1):
		p.FWHM = math.NaN()
	default:
		p.FWHM = p.FSR / p.Finesse
	}
	p.Pole = p.FWHM / 2

	reduced := space.L / space.Nr
	p.G1 = gFactor(reduced, concaveRadius(m1.Rc, src))
	p.G2 = gFactor(reduced, concaveRadius(m2.Rc, far))
	g := p.G()
	p.Stable = g >= 0 && g <= 1

	return p, nil
}

func amplitudeReflectivity(m *optics.Mirror) float64 {
	if m.Misaligned {
		return 0
	}
	return math.Sqrt(m.R)
}

// concaveRadius is the radius of curvature as seen by light arriving at p:
// positive when the surface is concave towards it.
func concaveRadius(rc float64, p optics.Port) float64 {
	if p.Index == 2 {
		return -rc
	}
	return rc
}

func gFactor(length, radius float64) float64 {
	if math.IsInf(radius, 0) {
		return 1
	}
	return 1 - length/radius
}
