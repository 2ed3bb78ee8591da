package solver

import (
	"context"
	"errors"
	"math"
	"math/cmplx"

	"github.com/charmbracelet/log"
	"github.com/san-kum/cavitylab/internal/optics"
)

var errSingular = errors.New("solver: interferometer matrix is singular")

// singularTol is the pivot magnitude below which the system is treated as
// singular. All coefficients are O(1), so an absolute bound suffices.
const singularTol = 1e-12

// PlaneWave solves the steady-state carrier field of a model in the
// plane-wave approximation. Each distinct laser frequency is solved on its
// own and detector powers are summed, since different carriers do not
// interfere at DC.
type PlaneWave struct {
	logger *log.Logger
}

func NewPlaneWave() *PlaneWave {
	return &PlaneWave{logger: log.Default()}
}

func (pw *PlaneWave) WithLogger(l *log.Logger) *PlaneWave {
	pw.logger = l
	return pw
}

func (pw *PlaneWave) Solve(ctx context.Context, m *optics.Model) (*Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if basis := m.Modes(); basis.Parity != optics.ModesOff && basis.Parity != "" {
		pw.logger.Debug("plane-wave solve ignores higher-order modes", "modes", basis.String())
	}

	net := newNetwork(m)
	detectors := m.Detectors()
	totals := make([]float64, len(detectors))

	for _, f := range m.Frequencies() {
		amps, err := net.solve(f)
		if err != nil {
			return nil, &optics.SolverError{Sample: -1, Wrapped: err}
		}
		for i, d := range detectors {
			a := amps[net.unknown(d.Node)]
			totals[i] += real(a)*real(a) + imag(a)*imag(a)
		}
	}

	sol := NewSolution()
	for i, d := range detectors {
		sol.Set(d.Name(), totals[i])
	}
	return sol, nil
}

// network indexes every port of a model; port k owns unknowns 2k (in) and
// 2k+1 (out).
type network struct {
	model *optics.Model
	ports map[optics.Port]int
	elems []optics.Element
}

func newNetwork(m *optics.Model) *network {
	n := &network{model: m, ports: make(map[optics.Port]int), elems: m.Elements()}
	k := 0
	for _, e := range n.elems {
		for i := 1; i <= e.NumPorts(); i++ {
			n.ports[optics.Port{Element: e.Name(), Index: i}] = k
			k++
		}
	}
	return n
}

func (n *network) unknown(node optics.Node) int {
	k := n.ports[node.Port]
	if node.Dir == optics.Out {
		return 2*k + 1
	}
	return 2 * k
}

func (n *network) solve(freq float64) ([]complex128, error) {
	size := 2 * len(n.ports)
	a := make([][]complex128, size)
	for i := range a {
		a[i] = make([]complex128, size)
	}
	b := make([]complex128, size)

	k := 2 * math.Pi * freq / optics.SpeedOfLight

	for p, idx := range n.ports {
		row := 2 * idx
		a[row][row] = 1
		if s, ok := n.model.Link(p); ok {
			q, _ := s.Other(p)
			phase := k * s.Nr * s.L
			a[row][2*n.ports[q]+1] -= cmplx.Exp(complex(0, -phase))
		}
	}

	for _, e := range n.elems {
		s, src := scatter(e, freq)
		for out := 0; out < e.NumPorts(); out++ {
			row := 2*n.ports[optics.Port{Element: e.Name(), Index: out + 1}] + 1
			a[row][row] = 1
			b[row] = src[out]
			for in := 0; in < e.NumPorts(); in++ {
				if s[out][in] == 0 {
					continue
				}
				col := 2 * n.ports[optics.Port{Element: e.Name(), Index: in + 1}]
				a[row][col] -= s[out][in]
			}
		}
	}

	return solveLinear(a, b)
}

// scatter returns the element's coupling matrix (out x in) and its source
// terms at the given carrier frequency.
func scatter(e optics.Element, freq float64) ([][]complex128, []complex128) {
	n := e.NumPorts()
	s := make([][]complex128, n)
	for i := range s {
		s[i] = make([]complex128, n)
	}
	src := make([]complex128, n)

	switch el := e.(type) {
	case *optics.Laser:
		if el.F == freq {
			src[0] = cmplx.Rect(math.Sqrt(el.P), el.Phase*math.Pi/180)
		}
	case *optics.Mirror:
		r, t := math.Sqrt(el.R), math.Sqrt(el.T)
		if el.Misaligned {
			r = 0
		}
		phi := el.Phi * math.Pi / 180
		s[0][0] = complex(r, 0) * cmplx.Exp(complex(0, 2*phi))
		s[1][1] = complex(r, 0) * cmplx.Exp(complex(0, -2*phi))
		s[0][1] = complex(0, t)
		s[1][0] = complex(0, t)
	case *optics.Beamsplitter:
		r, t := math.Sqrt(el.R), math.Sqrt(el.T)
		phi := el.Phi * math.Pi / 180
		front := complex(r, 0) * cmplx.Exp(complex(0, 2*phi))
		back := complex(r, 0) * cmplx.Exp(complex(0, -2*phi))
		s[0][1], s[1][0] = front, front
		s[2][3], s[3][2] = back, back
		s[0][2], s[2][0] = complex(0, t), complex(0, t)
		s[1][3], s[3][1] = complex(0, t), complex(0, t)
	case *optics.Modulator:
		j0 := complex(math.J0(el.Midx), 0)
		s[0][1], s[1][0] = j0, j0
	}
	return s, src
}

// solveLinear performs Gaussian elimination with partial pivoting. a and b
// are overwritten.
func solveLinear(a [][]complex128, b []complex128) ([]complex128, error) {
	n := len(b)
	for col := 0; col < n; col++ {
		piv, best := col, cmplx.Abs(a[col][col])
		for r := col + 1; r < n; r++ {
			if v := cmplx.Abs(a[r][col]); v > best {
				piv, best = r, v
			}
		}
		if best < singularTol {
			return nil, errSingular
		}
		a[col], a[piv] = a[piv], a[col]
		b[col], b[piv] = b[piv], b[col]

		for r := col + 1; r < n; r++ {
			f := a[r][col] / a[col][col]
			if f == 0 {
				continue
			}
			for c := col; c < n; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r] -= f * b[col]
		}
	}

	x := make([]complex128, n)
	for r := n - 1; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < n; c++ {
			sum -= a[r][c] * x[c]
		}
		x[r] = sum / a[r][r]
	}
	return x, nil
}
