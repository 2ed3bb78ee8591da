package optics

import (
	"fmt"
	"strings"
)

// Tree renders the elements reachable from each laser as an indented
// tree, following spaces outward. Detectors are listed under their element
// when withDetectors is set.
func (m *Model) Tree(withDetectors bool) string {
	var sb strings.Builder
	visited := make(map[string]bool)

	var walk func(name, via string, depth int)
	walk = func(name, via string, depth int) {
		if visited[name] {
			return
		}
		visited[name] = true
		e, ok := m.Element(name)
		if !ok {
			return
		}
		indent := strings.Repeat("  ", depth)
		if via != "" {
			fmt.Fprintf(&sb, "%s└─ %s (%s) via %s\n", indent, name, e.Kind(), via)
		} else {
			fmt.Fprintf(&sb, "%s%s (%s)\n", indent, name, e.Kind())
		}
		if mir, ok := e.(*Mirror); ok && isFlat(mir.Rc) {
			fmt.Fprintf(&sb, "%s   · flat\n", indent)
		}
		if withDetectors {
			for _, d := range m.detectors {
				if d.Node.Port.Element == name {
					fmt.Fprintf(&sb, "%s   ◦ %s @ %s\n", indent, d.name, d.Node)
				}
			}
		}
		for i := 1; i <= e.NumPorts(); i++ {
			p := Port{Element: name, Index: i}
			s, ok := m.links[p]
			if !ok {
				continue
			}
			next, _ := s.Other(p)
			walk(next.Element, fmt.Sprintf("%s (L=%g)", s.name, s.L), depth+1)
		}
	}

	for _, e := range m.elements {
		if _, ok := e.(*Laser); ok {
			walk(e.Name(), "", 0)
		}
	}
	for _, e := range m.elements {
		walk(e.Name(), "", 0)
	}
	return sb.String()
}
