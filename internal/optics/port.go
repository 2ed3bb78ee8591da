package optics

import (
	"fmt"
	"strconv"
	"strings"
)

// Port is a structural reference to a connection slot of an element.
// It stays valid across DeepCopy because it carries no pointers.
type Port struct {
	Element string
	Index   int // 1-based, rendered as p1, p2, ...
}

func (p Port) Name() string {
	return "p" + strconv.Itoa(p.Index)
}

func (p Port) FullName() string {
	return p.Element + "." + p.Name()
}

func (p Port) String() string { return p.FullName() }

// In is the node carrying light into the element through p.
func (p Port) In() Node { return Node{Port: p, Dir: In} }

// Out is the node carrying light out of the element through p.
func (p Port) Out() Node { return Node{Port: p, Dir: Out} }

type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == In {
		return "i"
	}
	return "o"
}

// Node is one propagation direction at a port.
type Node struct {
	Port Port
	Dir  Direction
}

func (n Node) FullName() string {
	return n.Port.FullName() + "." + n.Dir.String()
}

func (n Node) String() string { return n.FullName() }

// ParsePort parses "element.pN".
func ParsePort(s string) (Port, error) {
	idx := strings.LastIndex(s, ".")
	if idx <= 0 || idx == len(s)-1 {
		return Port{}, Configf("port", "malformed port name %q", s)
	}
	n, err := parsePortIndex(s[idx+1:])
	if err != nil {
		return Port{}, Configf("port", "malformed port name %q", s)
	}
	return Port{Element: s[:idx], Index: n}, nil
}

// ParseNode parses "element.pN.i" or "element.pN.o".
func ParseNode(s string) (Node, error) {
	idx := strings.LastIndex(s, ".")
	if idx <= 0 {
		return Node{}, Configf("node", "malformed node name %q", s)
	}
	var dir Direction
	switch s[idx+1:] {
	case "i":
		dir = In
	case "o":
		dir = Out
	default:
		return Node{}, Configf("node", "malformed node name %q", s)
	}
	p, err := ParsePort(s[:idx])
	if err != nil {
		return Node{}, err
	}
	return Node{Port: p, Dir: dir}, nil
}

func parsePortIndex(s string) (int, error) {
	if !strings.HasPrefix(s, "p") {
		return 0, fmt.Errorf("missing p prefix")
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("port index %d", n)
	}
	return n, nil
}
