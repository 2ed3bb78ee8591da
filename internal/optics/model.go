package optics

import (
	"fmt"
	"math"
	"strings"
)

// SpeedOfLight in vacuum, m/s.
const SpeedOfLight = 299792458.0

// Model is a topology of named elements joined by spaces, plus the cavities
// and detectors declared on it. Names share a single namespace.
type Model struct {
	elements  []Element
	spaces    []*Space
	cavities  []*Cavity
	detectors []*Detector

	names map[string]struct{}
	links map[Port]*Space
	modes ModeBasis
}

func NewModel() *Model {
	return &Model{
		names: make(map[string]struct{}),
		links: make(map[Port]*Space),
		modes: ModeBasis{Parity: ModesOff},
	}
}

func (m *Model) claim(name string) error {
	if name == "" {
		return Configf("name", "component name is empty")
	}
	if strings.ContainsAny(name, ". ") {
		return Configf("name", "component name %q contains '.' or whitespace", name)
	}
	if _, ok := m.names[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	m.names[name] = struct{}{}
	return nil
}

func (m *Model) Add(elems ...Element) error {
	for _, e := range elems {
		if err := m.claim(e.Name()); err != nil {
			return err
		}
		m.elements = append(m.elements, e)
	}
	return nil
}

// Connect adds a space between two open ports. nr defaults to 1 when zero.
func (m *Model) Connect(name string, a, b Port, length, nr float64) (*Space, error) {
	if nr == 0 {
		nr = 1
	}
	s := &Space{name: name, A: a, B: b, Nr: 1}
	if err := s.SetParam("L", length); err != nil {
		return nil, err
	}
	if err := s.SetParam("nr", nr); err != nil {
		return nil, err
	}
	if a == b {
		return nil, Configf(name, "space cannot loop a port onto itself")
	}
	for _, p := range []Port{a, b} {
		if !m.hasPort(p) {
			return nil, fmt.Errorf("%w: port %s", ErrUnknownComponent, p)
		}
		if other, ok := m.links[p]; ok {
			return nil, fmt.Errorf("%w: %s is used by %s", ErrPortInUse, p, other.name)
		}
	}
	if err := m.claim(name); err != nil {
		return nil, err
	}
	m.spaces = append(m.spaces, s)
	m.links[a] = s
	m.links[b] = s
	return s, nil
}

func (m *Model) AddCavity(name string, source Port) (*Cavity, error) {
	if !m.hasPort(source) {
		return nil, fmt.Errorf("%w: port %s", ErrUnknownComponent, source)
	}
	if err := m.claim(name); err != nil {
		return nil, err
	}
	c := &Cavity{name: name, Source: source}
	m.cavities = append(m.cavities, c)
	return c, nil
}

func (m *Model) AddDetector(name string, node Node) (*Detector, error) {
	if !m.hasPort(node.Port) {
		return nil, fmt.Errorf("%w: node %s", ErrUnknownComponent, node)
	}
	if err := m.claim(name); err != nil {
		return nil, err
	}
	d := &Detector{name: name, Node: node}
	m.detectors = append(m.detectors, d)
	return d, nil
}

// SetModes records the transverse mode basis used by the solver.
// It must be called before the model is copied by a builder.
func (m *Model) SetModes(parity Parity, maxOrder int) error {
	if _, err := ParseParity(string(parity)); err != nil {
		return err
	}
	if maxOrder < 0 {
		return Configf("modes.max_order", "must be non-negative, got %d", maxOrder)
	}
	m.modes = ModeBasis{Parity: parity, MaxOrder: maxOrder}
	return nil
}

func (m *Model) Modes() ModeBasis { return m.modes }

func (m *Model) Elements() []Element {
	out := make([]Element, len(m.elements))
	copy(out, m.elements)
	return out
}

func (m *Model) Spaces() []*Space {
	out := make([]*Space, len(m.spaces))
	copy(out, m.spaces)
	return out
}

func (m *Model) Cavities() []*Cavity {
	out := make([]*Cavity, len(m.cavities))
	copy(out, m.cavities)
	return out
}

func (m *Model) Detectors() []*Detector {
	out := make([]*Detector, len(m.detectors))
	copy(out, m.detectors)
	return out
}

func (m *Model) Element(name string) (Element, bool) {
	for _, e := range m.elements {
		if e.Name() == name {
			return e, true
		}
	}
	return nil, false
}

func (m *Model) Mirror(name string) (*Mirror, bool) {
	e, ok := m.Element(name)
	if !ok {
		return nil, false
	}
	mir, ok := e.(*Mirror)
	return mir, ok
}

func (m *Model) Space(name string) (*Space, bool) {
	for _, s := range m.spaces {
		if s.name == name {
			return s, true
		}
	}
	return nil, false
}

func (m *Model) Cavity(name string) (*Cavity, bool) {
	for _, c := range m.cavities {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

func (m *Model) Detector(name string) (*Detector, bool) {
	for _, d := range m.detectors {
		if d.name == name {
			return d, true
		}
	}
	return nil, false
}

// Link returns the space attached to p, if any.
func (m *Model) Link(p Port) (*Space, bool) {
	s, ok := m.links[p]
	return s, ok
}

func (m *Model) hasPort(p Port) bool {
	e, ok := m.Element(p.Element)
	return ok && p.Index >= 1 && p.Index <= e.NumPorts()
}

// OpenPorts lists every element port not consumed by a space, in
// element insertion order.
func (m *Model) OpenPorts() []Port {
	var open []Port
	for _, e := range m.elements {
		for i := 1; i <= e.NumPorts(); i++ {
			p := Port{Element: e.Name(), Index: i}
			if _, used := m.links[p]; !used {
				open = append(open, p)
			}
		}
	}
	return open
}

// ResolvePort finds the open port whose full name matches exactly.
func (m *Model) ResolvePort(fullName string) (Port, error) {
	var matches []Port
	for _, p := range m.OpenPorts() {
		if p.FullName() == fullName {
			matches = append(matches, p)
		}
	}
	if len(matches) != 1 {
		return Port{}, &PortResolutionError{Port: fullName, Matches: len(matches)}
	}
	return matches[0], nil
}

// DeepCopy returns an independent model; no element, space, cavity or
// detector is shared with the receiver.
func (m *Model) DeepCopy() *Model {
	c := NewModel()
	c.modes = m.modes
	for name := range m.names {
		c.names[name] = struct{}{}
	}
	c.elements = make([]Element, len(m.elements))
	for i, e := range m.elements {
		c.elements[i] = e.Clone()
	}
	c.spaces = make([]*Space, len(m.spaces))
	for i, s := range m.spaces {
		ns := *s
		c.spaces[i] = &ns
		c.links[ns.A] = &ns
		c.links[ns.B] = &ns
	}
	c.cavities = make([]*Cavity, len(m.cavities))
	for i, cav := range m.cavities {
		nc := *cav
		c.cavities[i] = &nc
	}
	c.detectors = make([]*Detector, len(m.detectors))
	for i, d := range m.detectors {
		nd := *d
		c.detectors[i] = &nd
	}
	return c
}

// component returns the configurable registered under name.
func (m *Model) component(name string) (Configurable, bool) {
	if e, ok := m.Element(name); ok {
		return e, true
	}
	if s, ok := m.Space(name); ok {
		return s, true
	}
	return nil, false
}

// Param reads a parameter by reference "component.param", e.g. "s_mi_mo.L".
func (m *Model) Param(ref string) (float64, error) {
	comp, param, err := m.splitRef(ref)
	if err != nil {
		return 0, err
	}
	v, ok := comp.GetParams()[param]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownParam, ref)
	}
	return v, nil
}

func (m *Model) SetParam(ref string, value float64) error {
	comp, param, err := m.splitRef(ref)
	if err != nil {
		return err
	}
	return comp.SetParam(param, value)
}

func (m *Model) splitRef(ref string) (Configurable, string, error) {
	idx := strings.LastIndex(ref, ".")
	if idx <= 0 || idx == len(ref)-1 {
		return nil, "", Configf("parameter", "malformed reference %q", ref)
	}
	comp, ok := m.component(ref[:idx])
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownComponent, ref[:idx])
	}
	return comp, ref[idx+1:], nil
}

// Frequencies lists the distinct laser frequencies in the model.
func (m *Model) Frequencies() []float64 {
	var out []float64
	seen := make(map[float64]bool)
	for _, e := range m.elements {
		if l, ok := e.(*Laser); ok && !seen[l.F] {
			seen[l.F] = true
			out = append(out, l.F)
		}
	}
	return out
}

// Counts summarises the model size; handy for before/after comparisons.
type Counts struct {
	Elements, Spaces, Cavities, Detectors int
}

func (m *Model) Counts() Counts {
	return Counts{
		Elements:  len(m.elements),
		Spaces:    len(m.spaces),
		Cavities:  len(m.cavities),
		Detectors: len(m.detectors),
	}
}

func isFlat(rc float64) bool { return math.IsInf(rc, 0) }
