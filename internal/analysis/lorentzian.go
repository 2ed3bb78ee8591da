package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

var ErrFitFailed = errors.New("analysis: lorentzian fit failed")

// Lorentz holds the parameters of an inverted Lorentzian lineshape.
// Width is the full width at half depth.
type Lorentz struct {
	Offset float64 `json:"offset"`
	Centre float64 `json:"centre"`
	Width  float64 `json:"width"`
	Area   float64 `json:"area"`
}

// Lorentzian evaluates offset - 2π·area·width / (4(x-centre)² + width²).
func Lorentzian(x, offset, centre, width, area float64) float64 {
	d := x - centre
	return offset - 2*math.Pi*area*width/(4*d*d+width*width)
}

func (p Lorentz) At(x float64) float64 {
	return Lorentzian(x, p.Offset, p.Centre, p.Width, p.Area)
}

// Depth is the dip below the offset at the centre.
func (p Lorentz) Depth() float64 {
	if p.Width == 0 {
		return 0
	}
	return 2 * math.Pi * p.Area / p.Width
}

// GuessLorentz estimates starting parameters for a single trough: offset
// from the maximum, centre from the minimum, width from the half-depth
// crossings.
func GuessLorentz(x, y []float64) Lorentz {
	if len(x) == 0 {
		return Lorentz{}
	}
	lo, hi := floats.MinIdx(y), floats.MaxIdx(y)
	offset, depth := y[hi], y[hi]-y[lo]
	half := offset - depth/2

	left, right := x[0], x[len(x)-1]
	for i := lo; i > 0; i-- {
		if y[i-1] >= half {
			left = crossing(x[i-1], y[i-1], x[i], y[i], half)
			break
		}
	}
	for i := lo; i < len(y)-1; i++ {
		if y[i+1] >= half {
			right = crossing(x[i], y[i], x[i+1], y[i+1], half)
			break
		}
	}
	w := right - left
	if w <= 0 {
		w = (x[len(x)-1] - x[0]) / 10
	}
	return Lorentz{Offset: offset, Centre: x[lo], Width: w, Area: depth * w / (2 * math.Pi)}
}

func crossing(x0, y0, x1, y1, level float64) float64 {
	if y1 == y0 {
		return x0
	}
	return x0 + (level-y0)*(x1-x0)/(y1-y0)
}

// FitLorentzian least-squares fits a Lorentzian to (x, y) starting from
// guess. The fit runs on coordinates scaled by the guessed width and the
// signal amplitude, and on depth rather than area, so every free parameter
// is of order one.
func FitLorentzian(x, y []float64, guess Lorentz) (Lorentz, error) {
	if len(x) != len(y) || len(x) < 4 {
		return Lorentz{}, ErrFitFailed
	}
	sx := math.Abs(guess.Width)
	if sx == 0 || math.IsNaN(sx) || math.IsInf(sx, 0) {
		sx = (x[len(x)-1] - x[0]) / 10
	}
	sy := math.Max(math.Abs(floats.Max(y)), math.Abs(floats.Min(y)))
	if sx <= 0 || sy == 0 {
		return Lorentz{}, ErrFitFailed
	}
	x0 := guess.Centre

	xn := make([]float64, len(x))
	yn := make([]float64, len(y))
	for i := range x {
		xn[i] = (x[i] - x0) / sx
		yn[i] = y[i] / sy
	}

	// p = offset, centre, width, depth
	init := []float64{guess.Offset / sy, 0, guess.Width / sx, guess.Depth() / sy}
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			w2 := p[2] * p[2]
			var sum float64
			for i, xi := range xn {
				d := xi - p[1]
				r := yn[i] - (p[0] - p[3]*w2/(4*d*d+w2))
				sum += r * r
			}
			return sum
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: 40000,
		Converger:       &optimize.FunctionConverge{Absolute: 1e-15, Iterations: 200},
	}
	res, err := optimize.Minimize(problem, init, settings, &optimize.NelderMead{})
	if res == nil {
		return Lorentz{}, errors.Join(ErrFitFailed, err)
	}
	p := res.X
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Lorentz{}, ErrFitFailed
		}
	}

	width := math.Abs(p[2]) * sx
	if width == 0 {
		return Lorentz{}, ErrFitFailed
	}
	depth := p[3] * sy
	return Lorentz{
		Offset: p[0] * sy,
		Centre: p[1]*sx + x0,
		Width:  width,
		Area:   depth * width / (2 * math.Pi),
	}, nil
}
