// Package params defines parameter sets for visuals.
//
// A parameter set is an immutable [Values] map checked against a list of
// [Definition]s. Sets are compared by deep value equality, never by
// identity: two independently built sets with equal content are equal, and
// that is what lets the visual engine skip redundant updates.
//
// Every definition carries a [Tier] that tells the engine how expensive a
// change of that parameter is to apply.
package params

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/gogpu/gputypes"
)

var (
	// ErrInvalid is returned when a parameter value is outside its domain.
	ErrInvalid = errors.New("params: invalid parameters")

	// ErrUnknown is returned for parameter names without a definition.
	ErrUnknown = errors.New("params: unknown parameter")
)

// Tier classifies the cost of applying a parameter change.
type Tier uint8

// Update tiers, cheapest first.
const (
	// TierValues parameters are written directly into render object values
	// or state (alpha, toggles, uniform scale factors).
	TierValues Tier = iota

	// TierSize parameters require recomputing the per-group size buffer.
	TierSize

	// TierColor parameters require recomputing the per-group color buffer.
	TierColor

	// TierTopology parameters change the primitive groups themselves and
	// can only be applied by rebuilding the geometry.
	TierTopology
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierValues:
		return "values"
	case TierSize:
		return "size"
	case TierColor:
		return "color"
	case TierTopology:
		return "topology"
	default:
		return fmt.Sprintf("Tier(%d)", t)
	}
}

// Definition declares one named parameter.
type Definition struct {
	Name        string
	Description string
	Tier        Tier
	Default     any

	validate func(any) error
	decode   decoder
}

// Validate checks v against the parameter domain.
func (d Definition) Validate(v any) error {
	if d.validate == nil {
		return nil
	}
	if err := d.validate(v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, d.Name, err)
	}
	return nil
}

// WithTier returns a copy of d with a different tier. Builders use it to
// reclassify a shared parameter, e.g. sizeFactor is topological for meshes
// but a plain value for sphere impostors.
func (d Definition) WithTier(t Tier) Definition {
	d.Tier = t
	return d
}

// WithDescription returns a copy of d with a description.
func (d Definition) WithDescription(s string) Definition {
	d.Description = s
	return d
}

// Numeric declares a float64 parameter in [lo, hi]. NaN is rejected.
func Numeric(name string, def, lo, hi float64, tier Tier) Definition {
	return Definition{
		Name:    name,
		Tier:    tier,
		Default: def,
		validate: func(v any) error {
			f, ok := v.(float64)
			if !ok {
				return fmt.Errorf("got %T, want float64", v)
			}
			if math.IsNaN(f) || f < lo || f > hi {
				return fmt.Errorf("%v outside [%v, %v]", f, lo, hi)
			}
			return nil
		},
		decode: decodeAs[float64],
	}
}

// Integer declares an int parameter in [lo, hi].
func Integer(name string, def, lo, hi int, tier Tier) Definition {
	return Definition{
		Name:    name,
		Tier:    tier,
		Default: def,
		validate: func(v any) error {
			i, ok := v.(int)
			if !ok {
				return fmt.Errorf("got %T, want int", v)
			}
			if i < lo || i > hi {
				return fmt.Errorf("%d outside [%d, %d]", i, lo, hi)
			}
			return nil
		},
		decode: decodeAs[int],
	}
}

// Boolean declares a bool parameter.
func Boolean(name string, def bool, tier Tier) Definition {
	return Definition{
		Name:    name,
		Tier:    tier,
		Default: def,
		validate: func(v any) error {
			if _, ok := v.(bool); !ok {
				return fmt.Errorf("got %T, want bool", v)
			}
			return nil
		},
		decode: decodeAs[bool],
	}
}

// Select declares a string parameter restricted to options.
func Select(name, def string, tier Tier, options ...string) Definition {
	return Definition{
		Name:    name,
		Tier:    tier,
		Default: def,
		validate: func(v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("got %T, want string", v)
			}
			if !slices.Contains(options, s) {
				return fmt.Errorf("%q not one of %v", s, options)
			}
			return nil
		},
		decode: decodeAs[string],
	}
}

// MultiSelect declares a []string parameter whose entries are restricted to
// options.
func MultiSelect(name string, def []string, tier Tier, options ...string) Definition {
	return Definition{
		Name:    name,
		Tier:    tier,
		Default: slices.Clone(def),
		validate: func(v any) error {
			ss, ok := v.([]string)
			if !ok {
				return fmt.Errorf("got %T, want []string", v)
			}
			for _, s := range ss {
				if !slices.Contains(options, s) {
					return fmt.Errorf("%q not one of %v", s, options)
				}
			}
			return nil
		},
		decode: decodeAs[[]string],
	}
}

// Color declares an RGBA color parameter with components in [0, 1].
func Color(name string, def gputypes.Color, tier Tier) Definition {
	return Definition{
		Name:    name,
		Tier:    tier,
		Default: def,
		validate: func(v any) error {
			c, ok := v.(gputypes.Color)
			if !ok {
				return fmt.Errorf("got %T, want gputypes.Color", v)
			}
			for _, x := range []float64{c.R, c.G, c.B, c.A} {
				if math.IsNaN(x) || x < 0 || x > 1 {
					return fmt.Errorf("component %v outside [0, 1]", x)
				}
			}
			return nil
		},
		decode: decodeColor,
	}
}

// Text declares a free-form string parameter.
func Text(name, def string, tier Tier) Definition {
	return Definition{
		Name:    name,
		Tier:    tier,
		Default: def,
		validate: func(v any) error {
			if _, ok := v.(string); !ok {
				return fmt.Errorf("got %T, want string", v)
			}
			return nil
		},
		decode: decodeAs[string],
	}
}

// Value declares a parameter holding an arbitrary value type, such as a
// theme descriptor. validate may be nil.
func Value[T any](name string, def T, tier Tier, validate func(T) error) Definition {
	return Definition{
		Name:    name,
		Tier:    tier,
		Default: def,
		validate: func(v any) error {
			t, ok := v.(T)
			if !ok {
				return fmt.Errorf("got %T, want %T", v, def)
			}
			if validate != nil {
				return validate(t)
			}
			return nil
		},
		decode: decodeAs[T],
	}
}
