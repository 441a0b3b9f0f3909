package params

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
)

type descriptor struct {
	Name    string    `yaml:"name"`
	Palette []float64 `yaml:"palette"`
}

func testDefinitions() Definitions {
	return Definitions{
		Integer("detail", 1, 0, 3, TierTopology),
		Numeric("alpha", 1, 0, 1, TierValues),
		Boolean("doubleSided", false, TierValues),
		Select("labelCase", "upper", TierTopology, "upper", "lower", "title"),
		MultiSelect("unitKinds", []string{"atomic"}, TierTopology, "atomic", "spheres", "gaussians"),
		Color("highlight", gputypes.Color{R: 1, G: 0, B: 1, A: 1}, TierValues),
		Value("colorTheme", descriptor{Name: "uniform"}, TierColor, func(d descriptor) error {
			if d.Name == "" {
				return errors.New("empty theme name")
			}
			return nil
		}),
		Numeric("sizeFactor", 1, 0.1, 10, TierSize),
	}
}

// =============================================================================
// Definitions
// =============================================================================

func TestDefinitions_Validate(t *testing.T) {
	defs := testDefinitions()
	if err := defs.Validate(defs.Defaults()); err != nil {
		t.Fatalf("Validate(defaults) = %v", err)
	}

	tests := []struct {
		name string
		v    Values
	}{
		{"integer out of range", Values{"detail": 9}},
		{"integer wrong type", Values{"detail": 1.5}},
		{"numeric out of range", Values{"alpha": 1.5}},
		{"numeric NaN", Values{"alpha": math.NaN()}},
		{"select unknown option", Values{"labelCase": "camel"}},
		{"multi select unknown option", Values{"unitKinds": []string{"atomic", "cartoon"}}},
		{"color component", Values{"highlight": gputypes.Color{R: 2}}},
		{"color component NaN", Values{"highlight": gputypes.Color{G: math.NaN(), A: 1}}},
		{"value validator", Values{"colorTheme": descriptor{}}},
		{"value wrong type", Values{"colorTheme": "chain-id"}},
		{"unknown name", Values{"radius": 1.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := defs.Validate(tt.v); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
	if err := defs.Validate(Values{"radius": 1.0}); !errors.Is(err, ErrUnknown) {
		t.Errorf("Validate(unknown) = %v, want ErrUnknown", err)
	}
}

func TestDefinitions_WithAndMerge(t *testing.T) {
	defs := testDefinitions()
	over := defs.With(Numeric("sizeFactor", 2, 0.1, 10, TierTopology), Boolean("flatShaded", false, TierValues))
	if over.Tier("sizeFactor") != TierTopology {
		t.Errorf("Tier(sizeFactor) = %v, want topology", over.Tier("sizeFactor"))
	}
	if defs.Tier("sizeFactor") != TierSize {
		t.Error("With() must not modify the receiver")
	}
	if len(over) != len(defs)+1 {
		t.Errorf("len(With()) = %d, want %d", len(over), len(defs)+1)
	}
	merged := Merge(Definitions{Boolean("visible", true, TierValues)}, defs)
	if merged.Names()[0] != "visible" {
		t.Errorf("Merge() order = %v", merged.Names())
	}
	if defs.Tier("nope") != TierTopology {
		t.Error("unknown names should be treated as topological")
	}
	if d := defs[0].WithTier(TierValues); d.Tier != TierValues || defs[0].Tier != TierTopology {
		t.Error("WithTier() mismatch")
	}
}

// =============================================================================
// Values
// =============================================================================

func TestValues_MergeIsCopy(t *testing.T) {
	base := Values{"alpha": 1.0, "detail": 1}
	merged := base.Merge(Values{"alpha": 0.5})
	if base.Float("alpha") != 1 {
		t.Error("Merge() modified the receiver")
	}
	if merged.Float("alpha") != 0.5 || merged.Int("detail") != 1 {
		t.Errorf("Merge() = %v", merged)
	}
}

func TestValues_DeepEquality(t *testing.T) {
	a := Values{"colorTheme": descriptor{Name: "chain-id", Palette: []float64{1, 2}}}
	b := Values{"colorTheme": descriptor{Name: "chain-id", Palette: []float64{1, 2}}}
	if !a.Equal(b) {
		t.Error("independently built equal values should compare equal")
	}
	c := Values{"colorTheme": descriptor{Name: "chain-id", Palette: []float64{1, 3}}}
	if a.Equal(c) {
		t.Error("different palettes should not compare equal")
	}
	if got := a.Changed(c); !reflect.DeepEqual(got, []string{"colorTheme"}) {
		t.Errorf("Changed() = %v", got)
	}
	if got := a.Changed(a.Merge(Values{"alpha": 0.3})); !reflect.DeepEqual(got, []string{"alpha"}) {
		t.Errorf("Changed(added key) = %v", got)
	}
}

func TestValues_Getters(t *testing.T) {
	v := Values{
		"f": 2.5, "i": 3, "b": true, "s": "x",
		"ss": []string{"a"}, "c": gputypes.Color{R: 1, A: 1},
	}
	if v.Float("f") != 2.5 || v.Float32("f") != 2.5 || v.Int("i") != 3 || !v.Bool("b") || v.String("s") != "x" {
		t.Error("scalar getters mismatch")
	}
	if len(v.Strings("ss")) != 1 || v.Color("c").R != 1 {
		t.Error("composite getters mismatch")
	}
	if v.Float("missing") != 0 || v.Int("f") != 0 {
		t.Error("missing or mistyped values should return zero")
	}
}

func TestDiff(t *testing.T) {
	defs := testDefinitions()
	old := defs.Defaults()
	next := old.Merge(Values{
		"detail":     2,
		"colorTheme": descriptor{Name: "chain-id"},
		"alpha":      0.5,
		"sizeFactor": 2.0,
	})
	c := Diff(defs, old, next)
	if !reflect.DeepEqual(c.Topology, []string{"detail"}) ||
		!reflect.DeepEqual(c.Color, []string{"colorTheme"}) ||
		!reflect.DeepEqual(c.Size, []string{"sizeFactor"}) ||
		!reflect.DeepEqual(c.Values, []string{"alpha"}) {
		t.Errorf("Diff() = %+v", c)
	}
	if tier, ok := c.Highest(); !ok || tier != TierTopology {
		t.Errorf("Highest() = %v, %v", tier, ok)
	}
	if !Diff(defs, old, old.Merge(nil)).Empty() {
		t.Error("Diff of equal sets should be empty")
	}
}

// =============================================================================
// Presets
// =============================================================================

func TestLoadPresets(t *testing.T) {
	src := `
presets:
  ghost:
    alpha: 0.25
    doubleSided: true
    highlight: "#ff000080"
  chains:
    colorTheme: {name: chain-id, palette: [0.5, 1]}
    unitKinds: [atomic, spheres]
    detail: 2
  rgb:
    highlight: [0, 1, 0]
`
	presets, err := LoadPresets(strings.NewReader(src), testDefinitions())
	if err != nil {
		t.Fatalf("LoadPresets() = %v", err)
	}
	if len(presets) != 3 {
		t.Fatalf("len(presets) = %d, want 3", len(presets))
	}
	ghost := presets["ghost"]
	if ghost.Float("alpha") != 0.25 || !ghost.Bool("doubleSided") {
		t.Errorf("ghost = %v", ghost)
	}
	if c := ghost.Color("highlight"); c.R != 1 || c.G != 0 || c.A < 0.5 || c.A > 0.51 {
		t.Errorf("ghost highlight = %+v", c)
	}
	chains := presets["chains"]
	want := descriptor{Name: "chain-id", Palette: []float64{0.5, 1}}
	if got, _ := Get[descriptor](chains, "colorTheme"); !reflect.DeepEqual(got, want) {
		t.Errorf("chains colorTheme = %+v, want %+v", got, want)
	}
	if chains.Int("detail") != 2 || len(chains.Strings("unitKinds")) != 2 {
		t.Errorf("chains = %v", chains)
	}
	if c := presets["rgb"].Color("highlight"); c.G != 1 || c.A != 1 {
		t.Errorf("rgb highlight = %+v", c)
	}
}

func TestLoadPresets_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown key", "presets:\n  p:\n    radius: 2\n"},
		{"out of range", "presets:\n  p:\n    alpha: 3\n"},
		{"bad color", "presets:\n  p:\n    highlight: \"#zz\"\n"},
		{"bad type", "presets:\n  p:\n    detail: many\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadPresets(strings.NewReader(tt.src), testDefinitions()); !errors.Is(err, ErrInvalid) {
				t.Errorf("LoadPresets() = %v, want ErrInvalid", err)
			}
		})
	}
	presets, err := LoadPresets(strings.NewReader(""), testDefinitions())
	if err != nil || len(presets) != 0 {
		t.Errorf("LoadPresets(empty) = %v, %v", presets, err)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#3366ff")
	if err != nil {
		t.Fatal(err)
	}
	if c.B != 1 || c.A != 1 || c.R != 0.2 {
		t.Errorf("ParseColor() = %+v", c)
	}
	if _, err := ParseColor("blue"); !errors.Is(err, ErrInvalid) {
		t.Errorf("ParseColor(blue) = %v, want ErrInvalid", err)
	}
}
