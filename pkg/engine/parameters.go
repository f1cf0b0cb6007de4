package engine

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/philipparndt/gomesh/pkg/shape"
)

// Granularity names a predefined set of global meshing settings
type Granularity string

const (
	VeryCoarse Granularity = "very_coarse"
	Coarse     Granularity = "coarse"
	Moderate   Granularity = "moderate"
	Fine       Granularity = "fine"
	VeryFine   Granularity = "very_fine"
)

type preset struct {
	curvatureSafety float64
	segmentsPerEdge float64
	grading         float64
}

var presets = map[Granularity]preset{
	VeryCoarse: {curvatureSafety: 1, segmentsPerEdge: 0.3, grading: 0.7},
	Coarse:     {curvatureSafety: 1.5, segmentsPerEdge: 0.5, grading: 0.5},
	Moderate:   {curvatureSafety: 2, segmentsPerEdge: 1, grading: 0.3},
	Fine:       {curvatureSafety: 3, segmentsPerEdge: 2, grading: 0.3},
	VeryFine:   {curvatureSafety: 5, segmentsPerEdge: 3, grading: 0.1},
}

// Granularities lists the presets from coarsest to finest
var Granularities = []Granularity{VeryCoarse, Coarse, Moderate, Fine, VeryFine}

// Label returns the preset name as shown in selectors
func (g Granularity) Label() string {
	return strings.ReplaceAll(string(g), "_", " ")
}

// ExteriorShape selects the optional domain enclosing the geometry
type ExteriorShape string

const (
	ExteriorNone   ExteriorShape = "none"
	ExteriorBox    ExteriorShape = "box"
	ExteriorSphere ExteriorShape = "sphere"
)

// ExteriorDomain adds an enclosing box or sphere around the geometry
type ExteriorDomain struct {
	Shape ExteriorShape `koanf:"shape" json:"shape" validate:"omitempty,oneof=none box sphere"`
	// Factor is the diameter in multiples of the geometry size
	Factor float64 `koanf:"factor" json:"factor" validate:"gte=0"`
}

// Enabled reports whether an exterior domain is requested
func (d ExteriorDomain) Enabled() bool {
	return d.Shape == ExteriorBox || d.Shape == ExteriorSphere
}

// MeshParameters are the global meshing settings. MaxH uses shape.Unbounded
// for "no limit"; SegmentsPerEdge and CloseEdgeFac are disabled at zero.
type MeshParameters struct {
	MaxH            float64        `koanf:"maxh" json:"maxh" validate:"gt=0"`
	CurvatureSafety float64        `koanf:"curvaturesafety" json:"curvaturesafety" validate:"gt=0"`
	SegmentsPerEdge float64        `koanf:"segmentsperedge" json:"segmentsperedge" validate:"gte=0"`
	Grading         float64        `koanf:"grading" json:"grading" validate:"gt=0,lt=1"`
	CloseEdgeFac    float64        `koanf:"closeedgefac" json:"closeedgefac" validate:"gte=0"`
	Dim             int            `koanf:"dim" json:"dim" validate:"oneof=2 3"`
	Granularity     Granularity    `koanf:"granularity" json:"granularity" validate:"omitempty,oneof=very_coarse coarse moderate fine very_fine"`
	Exterior        ExteriorDomain `koanf:"exterior" json:"exterior"`
}

// DefaultParameters returns the settings a fresh session starts with
func DefaultParameters() MeshParameters {
	return MeshParameters{
		MaxH:            shape.Unbounded,
		CurvatureSafety: 2.0,
		Grading:         0.3,
		Dim:             3,
		Granularity:     Moderate,
		Exterior:        ExteriorDomain{Shape: ExteriorNone, Factor: 3},
	}
}

// WithGranularity selects a preset, overwriting curvature safety, segments
// per edge and grading
func (p MeshParameters) WithGranularity(g Granularity) (MeshParameters, error) {
	ps, ok := presets[g]
	if !ok {
		return p, fmt.Errorf("%w: unknown granularity %q", ErrInvalidParameters, g)
	}
	p.Granularity = g
	p.CurvatureSafety = ps.curvatureSafety
	p.SegmentsPerEdge = ps.segmentsPerEdge
	p.Grading = ps.grading
	return p, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("koanf"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate checks the parameter ranges
func (p MeshParameters) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s (got %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidParameters, strings.Join(msgs, "; "))
}

// Options returns the keyword arguments for the mesher. Unset and disabled
// settings are left out so the mesher applies its own defaults.
func (p MeshParameters) Options() map[string]any {
	opts := map[string]any{
		"curvaturesafety": p.CurvatureSafety,
		"grading":         p.Grading,
	}
	if !shape.IsUnbounded(p.MaxH) {
		opts["maxh"] = p.MaxH
	}
	if p.SegmentsPerEdge > 0 {
		opts["segmentsperedge"] = p.SegmentsPerEdge
	}
	if p.CloseEdgeFac > 0 {
		opts["closeedgefac"] = p.CloseEdgeFac
	}
	return opts
}
