package params

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sort"

	"github.com/gogpu/gputypes"
)

// Values is a parameter set. Treat it as immutable: Merge returns a new
// set instead of modifying the receiver.
type Values map[string]any

// Merge returns a copy of v with the entries of partial applied on top.
func (v Values) Merge(partial Values) Values {
	out := make(Values, len(v)+len(partial))
	maps.Copy(out, v)
	maps.Copy(out, partial)
	return out
}

// Equal reports whether v and o hold deeply equal values for the same keys.
func (v Values) Equal(o Values) bool {
	if len(v) != len(o) {
		return false
	}
	for k, a := range v {
		b, ok := o[k]
		if !ok || !reflect.DeepEqual(a, b) {
			return false
		}
	}
	return true
}

// Changed returns the sorted names whose values differ between v and o,
// including names present in only one of them.
func (v Values) Changed(o Values) []string {
	var names []string
	for k, a := range v {
		if b, ok := o[k]; !ok || !reflect.DeepEqual(a, b) {
			names = append(names, k)
		}
	}
	for k := range o {
		if _, ok := v[k]; !ok {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// Get returns the value of name as T.
func Get[T any](v Values, name string) (T, bool) {
	t, ok := v[name].(T)
	return t, ok
}

// Float returns a float64 parameter, or 0.
func (v Values) Float(name string) float64 {
	f, _ := Get[float64](v, name)
	return f
}

// Float32 returns a float64 parameter converted to float32, or 0.
func (v Values) Float32(name string) float32 {
	return float32(v.Float(name))
}

// Int returns an int parameter, or 0.
func (v Values) Int(name string) int {
	i, _ := Get[int](v, name)
	return i
}

// Bool returns a bool parameter, or false.
func (v Values) Bool(name string) bool {
	b, _ := Get[bool](v, name)
	return b
}

// String returns a string parameter, or "".
func (v Values) String(name string) string {
	s, _ := Get[string](v, name)
	return s
}

// Strings returns a []string parameter, or nil.
func (v Values) Strings(name string) []string {
	s, _ := Get[[]string](v, name)
	return s
}

// Color returns a color parameter, or transparent black.
func (v Values) Color(name string) gputypes.Color {
	c, _ := Get[gputypes.Color](v, name)
	return c
}

// Definitions is an ordered list of parameter definitions.
type Definitions []Definition

// Lookup returns the definition with the given name.
func (d Definitions) Lookup(name string) (Definition, bool) {
	for _, def := range d {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}

// Names returns the parameter names in declaration order.
func (d Definitions) Names() []string {
	names := make([]string, len(d))
	for i, def := range d {
		names[i] = def.Name
	}
	return names
}

// Defaults returns a set holding every default value.
func (d Definitions) Defaults() Values {
	v := make(Values, len(d))
	for _, def := range d {
		if ss, ok := def.Default.([]string); ok {
			v[def.Name] = slices.Clone(ss)
			continue
		}
		v[def.Name] = def.Default
	}
	return v
}

// Validate checks every entry of v. Names without a definition are
// rejected.
func (d Definitions) Validate(v Values) error {
	names := make([]string, 0, len(v))
	for k := range v {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		def, ok := d.Lookup(k)
		if !ok {
			return fmt.Errorf("%w: %w: %q", ErrInvalid, ErrUnknown, k)
		}
		if err := def.Validate(v[k]); err != nil {
			return err
		}
	}
	return nil
}

// Tier returns the tier of name. Unknown names are treated as topological
// so they never take a cheap path by accident.
func (d Definitions) Tier(name string) Tier {
	if def, ok := d.Lookup(name); ok {
		return def.Tier
	}
	return TierTopology
}

// With returns a copy of d in which defs replace definitions of the same
// name; new names are appended.
func (d Definitions) With(defs ...Definition) Definitions {
	out := slices.Clone(d)
	for _, def := range defs {
		if i := slices.IndexFunc(out, func(x Definition) bool { return x.Name == def.Name }); i >= 0 {
			out[i] = def
			continue
		}
		out = append(out, def)
	}
	return out
}

// Merge concatenates definition lists; later lists override earlier ones.
func Merge(lists ...Definitions) Definitions {
	var out Definitions
	for _, l := range lists {
		out = out.With(l...)
	}
	return out
}
