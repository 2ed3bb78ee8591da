package cavity

import (
	"fmt"
	"math"

	"github.com/san-kum/cavitylab/internal/optics"
)

// Surface is one coated face of a thick optic.
type Surface struct {
	Name string  `yaml:"name" validate:"required"`
	R    float64 `yaml:"refl" validate:"gte=0,lte=1"`
	T    float64 `yaml:"trans" validate:"gte=0,lte=1"`
	Rc   float64 `yaml:"Rc"`
}

type Substrate struct {
	Name string  `yaml:"name" validate:"required"`
	Tc   float64 `yaml:"t_c" validate:"gte=0"`
	Nr   float64 `yaml:"nr" validate:"gt=0"`
}

// ThickMirror is a front and back surface separated by a substrate.
type ThickMirror struct {
	Front     Surface   `yaml:"front"`
	Substrate Substrate `yaml:"substrate"`
	Back      Surface   `yaml:"back"`
}

// Lens is a transmissive optic of centre thickness Tc. Rc1 and Rc2 are the
// absolute radii of the first and second surface.
type Lens struct {
	Name string  `yaml:"name" validate:"required"`
	Rc1  float64 `yaml:"Rc1"`
	Rc2  float64 `yaml:"Rc2"`
	Tc   float64 `yaml:"t_c" validate:"gte=0"`
	Nr   float64 `yaml:"nr" validate:"gt=0"`
}

// AddThickMirror returns a copy of host with a thick mirror placed distance
// metres after attach. The front face is misaligned so it only transmits.
func AddThickMirror(host *optics.Model, attach optics.Port, tm ThickMirror, distance float64) (*optics.Model, error) {
	if err := validate.Struct(tm); err != nil {
		return nil, configError(err)
	}
	m, from, err := copyAt(host, attach)
	if err != nil {
		return nil, err
	}

	front := optics.NewMirror(tm.Front.Name+"_frontface", tm.Front.R, tm.Front.T, -tm.Front.Rc)
	front.Misaligned = true
	back := optics.NewMirror(tm.Back.Name+"_backface", tm.Back.R, tm.Back.T, tm.Back.Rc)
	if err := m.Add(front, back); err != nil {
		return nil, err
	}

	if _, err := m.Connect(fmt.Sprintf("s_%s_%s", attach.Element, tm.Substrate.Name), from, front.P1(), distance, 1); err != nil {
		return nil, err
	}
	if _, err := m.Connect(fmt.Sprintf("s_%s_substrate", tm.Substrate.Name), front.P2(), back.P1(), tm.Substrate.Tc, tm.Substrate.Nr); err != nil {
		return nil, err
	}
	return m, nil
}

// AddThickLens returns a copy of host with a lens placed distance metres
// after attach.
func AddThickLens(host *optics.Model, attach optics.Port, lens Lens, distance float64) (*optics.Model, error) {
	if err := validate.Struct(lens); err != nil {
		return nil, configError(err)
	}
	m, from, err := copyAt(host, attach)
	if err != nil {
		return nil, err
	}

	front := optics.NewMirror(lens.Name+"_frontface", 0, 1, -lens.Rc1)
	back := optics.NewMirror(lens.Name+"_backface", 0, 1, lens.Rc2)
	if err := m.Add(front, back); err != nil {
		return nil, err
	}

	if _, err := m.Connect(fmt.Sprintf("s_%s_%s", attach.Element, lens.Name), from, front.P1(), distance, 1); err != nil {
		return nil, err
	}
	if _, err := m.Connect(lens.Name+"_space", front.P2(), back.P1(), lens.Tc, lens.Nr); err != nil {
		return nil, err
	}
	return m, nil
}

// CentreThickness subtracts the sagitta of a spherical surface of radius rc
// and clear diameter from the edge thickness. All lengths share one unit.
func CentreThickness(edge, diameter, rc float64) (float64, error) {
	if math.IsInf(rc, 0) {
		return edge, nil
	}
	r := math.Abs(rc)
	half := diameter / 2
	if diameter < 0 || half > r {
		return 0, optics.Configf("diameter", "%g exceeds the surface diameter 2|Rc| = %g", diameter, 2*r)
	}
	sag := r - math.Sqrt(r*r-half*half)
	ct := edge - sag
	if ct <= 0 {
		return 0, optics.Configf("edge_thickness", "sagitta %g consumes edge thickness %g", sag, edge)
	}
	return ct, nil
}
