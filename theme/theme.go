// Package theme assigns colors and sizes to structural locations.
//
// Themes are described by plain values ([ColorTheme], [SizeTheme]) that
// live in parameter sets and are compared by deep equality. A description
// is turned into a [Colorer] or [Sizer] bound to one structure, which then
// fills per-group attribute buffers in [location.Iterator] order.
package theme

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/molvis/location"
	"github.com/gogpu/molvis/params"
	"github.com/gogpu/molvis/structure"
)

// Color theme names.
const (
	Uniform       = "uniform"
	ChainIDName   = "chain-id"
	ElementSymbol = "element-symbol"
	ResidueName   = "residue-name"
	UnitIndex     = "unit-index"
	SequenceID    = "sequence-id"
)

// Size theme names.
const (
	UniformSize = "uniform"
	Physical    = "physical"
)

// ColorNames lists the known color themes.
var ColorNames = []string{Uniform, ChainIDName, ElementSymbol, ResidueName, UnitIndex, SequenceID}

// SizeNames lists the known size themes.
var SizeNames = []string{UniformSize, Physical}

// ColorTheme describes a color theme. Value is the color of the uniform
// theme; Palette overrides the default palette of categorical themes.
type ColorTheme struct {
	Name    string           `yaml:"name"`
	Value   gputypes.Color   `yaml:"value"`
	Palette []gputypes.Color `yaml:"palette,omitempty"`
}

// SizeTheme describes a size theme. Value is the size of the uniform
// theme; Factor scales every size and defaults to 1 when zero.
type SizeTheme struct {
	Name   string  `yaml:"name"`
	Value  float64 `yaml:"value"`
	Factor float64 `yaml:"factor,omitempty"`
}

// UniformColor returns a theme coloring everything c.
func UniformColor(c gputypes.Color) ColorTheme {
	return ColorTheme{Name: Uniform, Value: c}
}

// ChainID returns a theme coloring by chain.
func ChainID() ColorTheme { return ColorTheme{Name: ChainIDName} }

// ByElement returns the CPK element theme.
func ByElement() ColorTheme { return ColorTheme{Name: ElementSymbol} }

// ByResidue returns a theme coloring by residue name.
func ByResidue() ColorTheme { return ColorTheme{Name: ResidueName} }

// ByUnit returns a theme coloring every unit differently.
func ByUnit() ColorTheme { return ColorTheme{Name: UnitIndex} }

// BySequence returns a blue to red gradient over each chain's sequence.
func BySequence() ColorTheme { return ColorTheme{Name: SequenceID} }

// UniformSizeTheme returns a theme giving everything size v.
func UniformSizeTheme(v float64) SizeTheme {
	return SizeTheme{Name: UniformSize, Value: v}
}

// PhysicalSize returns the van der Waals radius theme.
func PhysicalSize() SizeTheme { return SizeTheme{Name: Physical} }

// ColorType tells the renderer how the color buffer is indexed.
type ColorType uint8

// Color types.
const (
	// ColorTypeUniform is a single RGB triple.
	ColorTypeUniform ColorType = iota

	// ColorTypeGroup is one RGB triple per group.
	ColorTypeGroup

	// ColorTypeInstance is one RGB triple per instance.
	ColorTypeInstance
)

// String returns the color type name.
func (t ColorType) String() string {
	switch t {
	case ColorTypeUniform:
		return "uniform"
	case ColorTypeGroup:
		return "group"
	case ColorTypeInstance:
		return "instance"
	default:
		return fmt.Sprintf("ColorType(%d)", t)
	}
}

// Colorer colors locations of one structure.
type Colorer interface {
	Color(l location.Location) gputypes.Color
	Type() ColorType
}

// Sizer sizes locations of one structure.
type Sizer interface {
	Size(l location.Location) float32
}

// ValidateColor reports whether t names a known color theme with color
// components in [0, 1].
func ValidateColor(t ColorTheme) error {
	for _, n := range ColorNames {
		if n != t.Name {
			continue
		}
		for _, c := range append([]gputypes.Color{t.Value}, t.Palette...) {
			if !inUnit(c.R) || !inUnit(c.G) || !inUnit(c.B) || !inUnit(c.A) {
				return fmt.Errorf("color %v out of range in theme %q", c, t.Name)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown color theme %q", t.Name)
}

func inUnit(x float64) bool { return x >= 0 && x <= 1 }

// ValidateSize reports whether t names a known size theme.
func ValidateSize(t SizeTheme) error {
	for _, n := range SizeNames {
		if n == t.Name {
			if math.IsNaN(t.Factor) || math.IsNaN(t.Value) || t.Factor < 0 || t.Value < 0 {
				return fmt.Errorf("invalid size in theme %q", t.Name)
			}
			return nil
		}
	}
	return fmt.Errorf("unknown size theme %q", t.Name)
}

// ColorParam declares the colorTheme parameter.
func ColorParam(def ColorTheme) params.Definition {
	return params.Value("colorTheme", def, params.TierColor, ValidateColor).
		WithDescription("Per-group color assignment.")
}

// SizeParam declares the sizeTheme parameter with the given tier.
func SizeParam(def SizeTheme, tier params.Tier) params.Definition {
	return params.Value("sizeTheme", def, tier, ValidateSize).
		WithDescription("Per-group size assignment.")
}

// ColorOf returns the colorTheme parameter of v, or the chain-id theme.
func ColorOf(v params.Values) ColorTheme {
	if t, ok := params.Get[ColorTheme](v, "colorTheme"); ok {
		return t
	}
	return ChainID()
}

// SizeOf returns the sizeTheme parameter of v, or the physical theme.
func SizeOf(v params.Values) SizeTheme {
	if t, ok := params.Get[SizeTheme](v, "sizeTheme"); ok {
		return t
	}
	return PhysicalSize()
}

// NewColorer binds t to s.
func NewColorer(t ColorTheme, s *structure.Structure) (Colorer, error) {
	switch t.Name {
	case Uniform:
		return uniformColorer(t.Value), nil
	case ChainIDName:
		return paletteColorer{palette: paletteOr(t.Palette), key: func(l location.Location) int { return l.Unit.Chain }}, nil
	case UnitIndex:
		return paletteColorer{palette: paletteOr(t.Palette), key: func(l location.Location) int { return l.Unit.ID }, typ: ColorTypeInstance}, nil
	case ElementSymbol:
		return elementColorer{}, nil
	case ResidueName:
		return residueColorer{}, nil
	case SequenceID:
		return newSequenceColorer(s), nil
	default:
		return nil, fmt.Errorf("%w: unknown color theme %q", params.ErrInvalid, t.Name)
	}
}

// NewSizer binds t to s.
func NewSizer(t SizeTheme, _ *structure.Structure) (Sizer, error) {
	factor := float32(t.Factor)
	if factor == 0 {
		factor = 1
	}
	switch t.Name {
	case UniformSize:
		return uniformSizer(float32(t.Value) * factor), nil
	case Physical:
		return physicalSizer(factor), nil
	default:
		return nil, fmt.Errorf("%w: unknown size theme %q", params.ErrInvalid, t.Name)
	}
}

// WriteColors fills dst with colors for the groups of it and returns the
// buffer with its color type. dst is reused when large enough.
//
// Uniform themes write a single triple. Instance themes write one triple
// per instance when the iterator has more than one; otherwise colors are
// written per group in iterator order.
func WriteColors(it *location.Iterator, c Colorer, dst []float32) ([]float32, ColorType) {
	dst = dst[:0]
	switch {
	case c.Type() == ColorTypeUniform:
		return appendColor(dst, c.Color(location.Location{})), ColorTypeUniform
	case c.Type() == ColorTypeInstance && it.InstanceCount() > 1:
		for i := 0; i < it.InstanceCount(); i++ {
			dst = appendColor(dst, c.Color(it.LocationAt(0, i)))
		}
		return dst, ColorTypeInstance
	}
	it.Reset()
	for it.HasNext() {
		l := it.Move()
		if it.InstanceIndex > 0 {
			break
		}
		dst = appendColor(dst, c.Color(l))
	}
	it.Reset()
	return dst, ColorTypeGroup
}

// WriteSizes fills dst with one size per group of it.
func WriteSizes(it *location.Iterator, s Sizer, dst []float32) []float32 {
	dst = dst[:0]
	it.Reset()
	for it.HasNext() {
		l := it.Move()
		if it.InstanceIndex > 0 {
			break
		}
		dst = append(dst, s.Size(l))
	}
	it.Reset()
	return dst
}

func appendColor(dst []float32, c gputypes.Color) []float32 {
	return append(dst, float32(c.R), float32(c.G), float32(c.B))
}
