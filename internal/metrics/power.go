package metrics

import "math"

// Peak tracks the maximum power seen by a detector.
type Peak struct {
	detector string
	max      float64
	at       float64
	samples  int
}

func NewPeak(detector string) *Peak {
	return &Peak{detector: detector}
}

func (p *Peak) Name() string { return "peak_" + p.detector }

func (p *Peak) Observe(x float64, power func(string) float64) {
	v := power(p.detector)
	if p.samples == 0 || v > p.max {
		p.max, p.at = v, x
	}
	p.samples++
}

func (p *Peak) Value() float64 { return p.max }

// At is the swept value where the maximum occurred.
func (p *Peak) At() float64 { return p.at }

func (p *Peak) Reset() {
	p.max, p.at = 0, 0
	p.samples = 0
}

// Visibility is the fringe contrast (max-min)/(max+min) of a detector.
type Visibility struct {
	detector string
	min, max float64
}

func NewVisibility(detector string) *Visibility {
	v := &Visibility{detector: detector}
	v.Reset()
	return v
}

func (v *Visibility) Name() string { return "visibility_" + v.detector }

func (v *Visibility) Observe(x float64, power func(string) float64) {
	p := power(v.detector)
	v.min = math.Min(v.min, p)
	v.max = math.Max(v.max, p)
}

func (v *Visibility) Value() float64 {
	if math.IsInf(v.min, 1) || v.max+v.min == 0 {
		return 0
	}
	return (v.max - v.min) / (v.max + v.min)
}

func (v *Visibility) Reset() {
	v.min, v.max = math.Inf(1), math.Inf(-1)
}

// EnergyBalance is the largest relative deviation of the summed output
// detectors from the input power. Zero for a lossless interferometer.
type EnergyBalance struct {
	input    float64
	outputs  []string
	maxDrift float64
}

func NewEnergyBalance(input float64, outputs ...string) *EnergyBalance {
	return &EnergyBalance{input: input, outputs: outputs}
}

func (e *EnergyBalance) Name() string { return "energy_balance" }

func (e *EnergyBalance) Observe(x float64, power func(string) float64) {
	if e.input == 0 {
		return
	}
	var sum float64
	for _, d := range e.outputs {
		sum += power(d)
	}
	e.maxDrift = math.Max(e.maxDrift, math.Abs(sum-e.input)/e.input)
}

func (e *EnergyBalance) Value() float64 { return e.maxDrift }

func (e *EnergyBalance) Reset() { e.maxDrift = 0 }
