// Package builders provides the geometry builders of the standard visuals
// and a registry to look them up by name.
//
// Complex builders draw a whole structure into one render object. Units
// builders draw the leader of a unit group once and repeat it per unit
// through instance transforms.
package builders

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/molvis/location"
	"github.com/gogpu/molvis/loci"
	"github.com/gogpu/molvis/params"
	"github.com/gogpu/molvis/structure"
	"github.com/gogpu/molvis/theme"
	"github.com/gogpu/molvis/visual"
)

// ErrUnknown is returned for builder names that were never registered.
var ErrUnknown = errors.New("builders: unknown builder")

// Builder names.
const (
	ElementSphereName   = "element-sphere"
	ResidueSphereName   = "residue-sphere"
	ElementSpheresName  = "element-spheres"
	ElementPointName    = "element-point"
	PolymerTraceName    = "polymer-trace"
	PolymerTubeName     = "polymer-tube"
	ResidueLabelName    = "residue-label"
	GaussianSurfaceName = "gaussian-surface"
	GaussianVolumeName  = "gaussian-volume"
)

// order is the canonical listing order of the standard builders.
var order = []string{
	ElementSphereName,
	ResidueSphereName,
	ElementSpheresName,
	ElementPointName,
	PolymerTraceName,
	PolymerTubeName,
	ResidueLabelName,
	GaussianSurfaceName,
	GaussianVolumeName,
}

var registry = gpucontext.NewRegistry[visual.Builder](gpucontext.WithPriority(order...))

func init() {
	Register(ElementSphereName, func() visual.Builder { return ElementSphere{} })
	Register(ResidueSphereName, func() visual.Builder { return ResidueSphere{} })
	Register(ElementSpheresName, func() visual.Builder { return ElementSpheres{} })
	Register(ElementPointName, func() visual.Builder { return ElementPoint{} })
	Register(PolymerTraceName, func() visual.Builder { return PolymerTrace{} })
	Register(PolymerTubeName, func() visual.Builder { return PolymerTube{} })
	Register(ResidueLabelName, func() visual.Builder { return NewResidueLabel() })
	Register(GaussianSurfaceName, func() visual.Builder { return GaussianSurface{} })
	Register(GaussianVolumeName, func() visual.Builder { return GaussianVolume{} })
}

// Register makes a builder available under name, replacing any builder
// registered under the same name.
func Register(name string, factory func() visual.Builder) {
	registry.Register(name, factory)
}

// Get returns a new builder registered under name.
func Get(name string) (visual.Builder, error) {
	if !registry.Has(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return registry.Get(name), nil
}

// Names returns the registered builder names: the standard builders in
// canonical order followed by any others sorted by name.
func Names() []string {
	avail := registry.Available()
	names := make([]string, 0, len(avail))
	for _, n := range order {
		if slices.Contains(avail, n) {
			names = append(names, n)
		}
	}
	var extra []string
	for _, n := range avail {
		if !slices.Contains(order, n) {
			extra = append(extra, n)
		}
	}
	slices.Sort(extra)
	return append(names, extra...)
}

// IsUnits reports whether the named builder draws unit groups.
func IsUnits(name string) bool {
	switch name {
	case ResidueSphereName, ResidueLabelName:
		return false
	default:
		return true
	}
}

// =============================================================================
// Parameters
// =============================================================================

// baseParams are understood by every builder.
func baseParams() params.Definitions {
	return params.Definitions{
		theme.ColorParam(theme.ChainID()),
		params.Numeric("alpha", 1, 0, 1, params.TierValues).WithDescription("Opacity."),
		params.Boolean("visible", true, params.TierValues),
		params.Boolean("pickable", true, params.TierValues),
		params.Boolean("xrayShaded", false, params.TierValues),
		params.Boolean("clip", false, params.TierValues).WithDescription("Clip against the scene clip objects."),
	}
}

// meshParams are understood by builders producing triangle meshes.
func meshParams() params.Definitions {
	return baseParams().With(
		params.Boolean("doubleSided", false, params.TierValues),
		params.Boolean("flatShaded", false, params.TierValues),
		params.Boolean("ignoreLight", false, params.TierValues),
	)
}

// sizeParams declares sizeFactor and sizeTheme. Kinds that bake sizes into
// vertices need a rebuild to resize; impostor kinds scale a size buffer.
func sizeParams(baked bool, def theme.SizeTheme) params.Definitions {
	factor, size := params.TierValues, params.TierSize
	if baked {
		factor, size = params.TierTopology, params.TierTopology
	}
	return params.Definitions{
		params.Numeric("sizeFactor", 1, 0, 10, factor),
		theme.SizeParam(def, size),
	}
}

func ignoreHydrogensParam() params.Definition {
	return params.Boolean("ignoreHydrogens", false, params.TierTopology)
}

// sizer returns the size function of p scaled by sizeFactor when baked.
func sizer(t visual.Target, p params.Values, baked bool) (func(location.Location) float32, error) {
	s, err := theme.NewSizer(theme.SizeOf(p), t.Structure)
	if err != nil {
		return nil, err
	}
	factor := float32(1)
	if baked {
		factor = p.Float32("sizeFactor")
	}
	return func(l location.Location) float32 { return s.Size(l) * factor }, nil
}

// =============================================================================
// Shared iteration and picking
// =============================================================================

func isHydrogen(s *structure.Structure, a int32) bool {
	e := s.Atom(a).Element
	return e == "H" || e == "D"
}

// elementIterator returns the atom iterator of a units target.
func elementIterator(t visual.Target) *location.Iterator {
	return location.UnitElementIterator(t.Structure, t.Group)
}

// residueIterator returns the residue iterator of either variant.
func residueIterator(t visual.Target) *location.Iterator {
	if t.IsUnits() {
		return location.UnitResidueIterator(t.Structure, t.Group)
	}
	return location.ResidueIterator(t.Structure)
}

// elementLoci maps an atom group of a units target to loci.
func elementLoci(id location.PickingID, t visual.Target) loci.Loci {
	return elementIterator(t).Loci(id.InstanceID, id.GroupID)
}

// residueLoci maps a residue group of either variant to loci.
func residueLoci(id location.PickingID, t visual.Target) loci.Loci {
	return residueIterator(t).Loci(id.InstanceID, id.GroupID)
}
