package cavity

import (
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/san-kum/cavitylab/internal/optics"
)

var validate = validator.New()

// MirrorProps describes the two cavity mirrors. Every field is required;
// pointers distinguish a missing field from an explicit zero.
type MirrorProps struct {
	InputR   *float64 `yaml:"input_r" json:"input_r" validate:"required,gte=0,lte=1"`
	InputT   *float64 `yaml:"input_t" json:"input_t" validate:"required,gte=0,lte=1"`
	InputRc  *float64 `yaml:"input_Rc" json:"input_Rc" validate:"required"`
	OutputR  *float64 `yaml:"output_r" json:"output_r" validate:"required,gte=0,lte=1"`
	OutputT  *float64 `yaml:"output_t" json:"output_t" validate:"required,gte=0,lte=1"`
	OutputRc *float64 `yaml:"output_Rc" json:"output_Rc" validate:"required"`
}

// Distances places the cavity: ToMirror from the attachment port to the
// input mirror, MiMo between the mirrors.
type Distances struct {
	ToMirror *float64 `yaml:"to_mirror" json:"to_mirror" validate:"required,gte=0"`
	MiMo     *float64 `yaml:"mi_mo" json:"mi_mo" validate:"required,gte=0"`
}

// Float returns a pointer to v for literal props.
func Float(v float64) *float64 { return &v }

func NewMirrorProps(inR, inT, inRc, outR, outT, outRc float64) MirrorProps {
	return MirrorProps{
		InputR: Float(inR), InputT: Float(inT), InputRc: Float(inRc),
		OutputR: Float(outR), OutputT: Float(outT), OutputRc: Float(outRc),
	}
}

func NewDistances(toMirror, miMo float64) Distances {
	return Distances{ToMirror: Float(toMirror), MiMo: Float(miMo)}
}

func (p MirrorProps) Validate() error {
	if err := validate.Struct(p); err != nil {
		return configError(err)
	}
	for field, rc := range map[string]*float64{"input_Rc": p.InputRc, "output_Rc": p.OutputRc} {
		if math.IsNaN(*rc) {
			return optics.Configf(field, "radius of curvature is NaN")
		}
	}
	return nil
}

func (d Distances) Validate() error {
	if err := validate.Struct(d); err != nil {
		return configError(err)
	}
	for field, v := range map[string]*float64{"to_mirror": d.ToMirror, "mi_mo": d.MiMo} {
		if math.IsInf(*v, 0) {
			return optics.Configf(field, "length must be finite")
		}
	}
	return nil
}

var fieldNames = map[string]string{
	"InputR": "input_r", "InputT": "input_t", "InputRc": "input_Rc",
	"OutputR": "output_r", "OutputT": "output_t", "OutputRc": "output_Rc",
	"ToMirror": "to_mirror", "MiMo": "mi_mo",
}

// configError converts the first validator failure into a ConfigurationError.
func configError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &optics.ConfigurationError{Field: "props", Reason: err.Error()}
	}
	fe := verrs[0]
	name := fieldNames[fe.Field()]
	if name == "" {
		name = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return optics.Configf(name, "missing")
	case "gte":
		return optics.Configf(name, "must be >= %s", fe.Param())
	case "lte":
		return optics.Configf(name, "must be <= %s", fe.Param())
	}
	return optics.Configf(name, "failed %s validation", fe.Tag())
}
