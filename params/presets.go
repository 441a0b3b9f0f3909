package params

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
	"gopkg.in/yaml.v3"
)

// decoder converts a YAML node to the Go type a definition expects.
type decoder func(n *yaml.Node) (any, error)

func decodeAs[T any](n *yaml.Node) (any, error) {
	var v T
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// decodeColor accepts "#rrggbb", "#rrggbbaa", a sequence [r, g, b(, a)] or
// a mapping {r, g, b, a}.
func decodeColor(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return ParseColor(n.Value)
	case yaml.SequenceNode:
		var rgba []float64
		if err := n.Decode(&rgba); err != nil {
			return nil, err
		}
		if len(rgba) != 3 && len(rgba) != 4 {
			return nil, fmt.Errorf("color needs 3 or 4 components, got %d", len(rgba))
		}
		c := gputypes.Color{R: rgba[0], G: rgba[1], B: rgba[2], A: 1}
		if len(rgba) == 4 {
			c.A = rgba[3]
		}
		return c, nil
	default:
		var m struct {
			R, G, B float64
			A       *float64
		}
		if err := n.Decode(&m); err != nil {
			return nil, err
		}
		c := gputypes.Color{R: m.R, G: m.G, B: m.B, A: 1}
		if m.A != nil {
			c.A = *m.A
		}
		return c, nil
	}
}

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (gputypes.Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return gputypes.Color{}, fmt.Errorf("%w: color %q", ErrInvalid, s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	u, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return gputypes.Color{}, fmt.Errorf("%w: color %q", ErrInvalid, s)
	}
	return gputypes.Color{
		R: float64(u>>24&0xff) / 255,
		G: float64(u>>16&0xff) / 255,
		B: float64(u>>8&0xff) / 255,
		A: float64(u&0xff) / 255,
	}, nil
}

// presetFile is the YAML layout read by LoadPresets:
//
//	presets:
//	  chains:
//	    colorTheme: {name: chain-id}
//	    alpha: 0.8
type presetFile struct {
	Presets map[string]map[string]yaml.Node `yaml:"presets"`
}

// LoadPresets reads named parameter presets from YAML. Each preset is a
// partial parameter set; every entry is decoded to the type of its
// definition and validated.
func LoadPresets(r io.Reader, defs Definitions) (map[string]Values, error) {
	var f presetFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if err == io.EOF {
			return map[string]Values{}, nil
		}
		return nil, fmt.Errorf("params: decode presets: %w", err)
	}
	out := make(map[string]Values, len(f.Presets))
	for name, entries := range f.Presets {
		v := make(Values, len(entries))
		for key, node := range entries {
			def, ok := defs.Lookup(key)
			if !ok {
				return nil, fmt.Errorf("%w: preset %q: %w: %q", ErrInvalid, name, ErrUnknown, key)
			}
			if def.decode == nil {
				return nil, fmt.Errorf("%w: preset %q: %q cannot be loaded from YAML", ErrInvalid, name, key)
			}
			val, err := def.decode(&node)
			if err != nil {
				return nil, fmt.Errorf("%w: preset %q: %s: %w", ErrInvalid, name, key, err)
			}
			v[key] = val
		}
		if err := defs.Validate(v); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}
