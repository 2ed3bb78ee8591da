package optics

import (
	"math"
	"strings"
)

// Configurable exposes the scalar parameters a sweep may vary.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Element interface {
	Configurable
	Name() string
	Kind() string
	NumPorts() int
	Clone() Element
}

// Laser is a single-frequency source emitting from p1.
type Laser struct {
	name  string
	P     float64 // W
	F     float64 // Hz
	Phase float64 // degrees
}

func NewLaser(name string, power, freq float64) *Laser {
	return &Laser{name: name, P: power, F: freq}
}

func (l *Laser) Name() string   { return l.name }
func (l *Laser) Kind() string   { return "laser" }
func (l *Laser) NumPorts() int  { return 1 }
func (l *Laser) Clone() Element { c := *l; return &c }
func (l *Laser) P1() Port       { return Port{Element: l.name, Index: 1} }

func (l *Laser) GetParams() map[string]float64 {
	return map[string]float64{"P": l.P, "f": l.F, "phase": l.Phase}
}

func (l *Laser) SetParam(name string, value float64) error {
	switch name {
	case "P":
		if value < 0 || math.IsNaN(value) {
			return Configf(l.name+".P", "power must be non-negative, got %g", value)
		}
		l.P = value
	case "f":
		if value <= 0 || math.IsNaN(value) {
			return Configf(l.name+".f", "frequency must be positive, got %g", value)
		}
		l.F = value
	case "phase":
		l.Phase = value
	default:
		return unknownParam(l.name, name)
	}
	return nil
}

// Mirror is a two-port partially reflective surface. Rc is signed; a
// negative value puts the centre of curvature on the p2 side. Phi is the
// microscopic tuning in degrees.
type Mirror struct {
	name       string
	R          float64
	T          float64
	Rc         float64
	Phi        float64
	Misaligned bool
}

func NewMirror(name string, r, t, rc float64) *Mirror {
	return &Mirror{name: name, R: r, T: t, Rc: rc}
}

func (m *Mirror) Name() string   { return m.name }
func (m *Mirror) Kind() string   { return "mirror" }
func (m *Mirror) NumPorts() int  { return 2 }
func (m *Mirror) Clone() Element { c := *m; return &c }
func (m *Mirror) P1() Port       { return Port{Element: m.name, Index: 1} }
func (m *Mirror) P2() Port       { return Port{Element: m.name, Index: 2} }

func (m *Mirror) GetParams() map[string]float64 {
	mis := 0.0
	if m.Misaligned {
		mis = 1
	}
	return map[string]float64{"R": m.R, "T": m.T, "Rc": m.Rc, "phi": m.Phi, "misaligned": mis}
}

func (m *Mirror) SetParam(name string, value float64) error {
	switch name {
	case "R":
		if err := checkUnit(m.name+".R", value); err != nil {
			return err
		}
		m.R = value
	case "T":
		if err := checkUnit(m.name+".T", value); err != nil {
			return err
		}
		m.T = value
	case "Rc":
		if math.IsNaN(value) {
			return Configf(m.name+".Rc", "radius of curvature is NaN")
		}
		m.Rc = value
	case "phi":
		m.Phi = value
	case "misaligned":
		m.Misaligned = value != 0
	default:
		return unknownParam(m.name, name)
	}
	return nil
}

// Beamsplitter is a four-port splitter: p1/p2 face one side and p3/p4 the other.
type Beamsplitter struct {
	name string
	R    float64
	T    float64
	Phi  float64
}

func NewBeamsplitter(name string, r, t float64) *Beamsplitter {
	return &Beamsplitter{name: name, R: r, T: t}
}

func (b *Beamsplitter) Name() string   { return b.name }
func (b *Beamsplitter) Kind() string   { return "beamsplitter" }
func (b *Beamsplitter) NumPorts() int  { return 4 }
func (b *Beamsplitter) Clone() Element { c := *b; return &c }
func (b *Beamsplitter) Port(i int) Port {
	return Port{Element: b.name, Index: i}
}

func (b *Beamsplitter) GetParams() map[string]float64 {
	return map[string]float64{"R": b.R, "T": b.T, "phi": b.Phi}
}

func (b *Beamsplitter) SetParam(name string, value float64) error {
	switch name {
	case "R":
		if err := checkUnit(b.name+".R", value); err != nil {
			return err
		}
		b.R = value
	case "T":
		if err := checkUnit(b.name+".T", value); err != nil {
			return err
		}
		b.T = value
	case "phi":
		b.Phi = value
	default:
		return unknownParam(b.name, name)
	}
	return nil
}

// Modulator is a two-port phase modulator at frequency F with index Midx.
type Modulator struct {
	name string
	F    float64
	Midx float64
}

func NewModulator(name string, freq, midx float64) *Modulator {
	return &Modulator{name: name, F: freq, Midx: midx}
}

func (m *Modulator) Name() string   { return m.name }
func (m *Modulator) Kind() string   { return "modulator" }
func (m *Modulator) NumPorts() int  { return 2 }
func (m *Modulator) Clone() Element { c := *m; return &c }
func (m *Modulator) P1() Port       { return Port{Element: m.name, Index: 1} }
func (m *Modulator) P2() Port       { return Port{Element: m.name, Index: 2} }

func (m *Modulator) GetParams() map[string]float64 {
	return map[string]float64{"f": m.F, "midx": m.Midx}
}

func (m *Modulator) SetParam(name string, value float64) error {
	switch name {
	case "f":
		m.F = value
	case "midx":
		if value < 0 || math.IsNaN(value) {
			return Configf(m.name+".midx", "modulation index must be non-negative, got %g", value)
		}
		m.Midx = value
	default:
		return unknownParam(m.name, name)
	}
	return nil
}

// Space connects two ports over a length L with refractive index Nr.
type Space struct {
	name string
	A    Port
	B    Port
	L    float64
	Nr   float64
}

func (s *Space) Name() string { return s.name }

func (s *Space) GetParams() map[string]float64 {
	return map[string]float64{"L": s.L, "nr": s.Nr}
}

func (s *Space) SetParam(name string, value float64) error {
	switch name {
	case "L":
		if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
			return Configf(s.name+".L", "length must be finite and non-negative, got %g", value)
		}
		s.L = value
	case "nr":
		if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
			return Configf(s.name+".nr", "refractive index must be positive, got %g", value)
		}
		s.Nr = value
	default:
		return unknownParam(s.name, name)
	}
	return nil
}

// Other returns the port at the opposite end of the space from p.
func (s *Space) Other(p Port) (Port, bool) {
	switch p {
	case s.A:
		return s.B, true
	case s.B:
		return s.A, true
	}
	return Port{}, false
}

// Cavity marks a resonant region starting at Source.
type Cavity struct {
	name   string
	Source Port
}

func (c *Cavity) Name() string { return c.name }

// Detector reads the power at a node.
type Detector struct {
	name string
	Node Node
}

func (d *Detector) Name() string { return d.name }

func checkUnit(field string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return Configf(field, "must lie in [0, 1], got %g", v)
	}
	return nil
}

func unknownParam(component, name string) error {
	return &paramError{component: component, param: name}
}

type paramError struct {
	component string
	param     string
}

func (e *paramError) Error() string {
	return "optics: " + e.component + " has no parameter " + strings.TrimSpace(e.param)
}

func (e *paramError) Unwrap() error { return ErrUnknownParam }
