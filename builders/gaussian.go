package builders

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/molvis/geometry"
	"github.com/gogpu/molvis/location"
	"github.com/gogpu/molvis/loci"
	"github.com/gogpu/molvis/params"
	"github.com/gogpu/molvis/task"
	"github.com/gogpu/molvis/theme"
	"github.com/gogpu/molvis/visual"
)

// densityParams are shared by the gaussian builders. All of them change
// the grid and therefore need a rebuild.
func densityParams() params.Definitions {
	def := geometry.DefaultDensityOptions()
	return params.Definitions{
		params.Numeric("resolution", float64(def.Resolution), 0.1, 20, params.TierTopology).
			WithDescription("Grid spacing in Angstrom."),
		params.Numeric("radiusOffset", float64(def.RadiusOffset), 0, 10, params.TierTopology),
		params.Numeric("smoothness", float64(def.Smoothness), 0.5, 2.5, params.TierTopology),
		ignoreHydrogensParam(),
	}
}

func densityOptions(p params.Values) geometry.DensityOptions {
	return geometry.DensityOptions{
		Resolution:   p.Float32("resolution"),
		RadiusOffset: p.Float32("radiusOffset"),
		Smoothness:   p.Float32("smoothness"),
	}
}

// density computes the gaussian density of the group leader's atoms in the
// untransformed frame. Every grid point carries the element index of its
// strongest contribution as group.
func density(ctx *task.Context, t visual.Target, p params.Values, prev *geometry.Grid) (*geometry.Grid, error) {
	size, err := sizer(t, p, true)
	if err != nil {
		return nil, err
	}
	s, leader := t.Structure, t.Group.Leader()
	noH := p.Bool("ignoreHydrogens")
	it := elementIterator(t)

	n := leader.ElementCount()
	centers := make([]mgl32.Vec3, 0, n)
	radii := make([]float32, 0, n)
	groups := make([]int, 0, n)
	for i, el := range leader.Elements {
		if noH && isHydrogen(s, el) {
			continue
		}
		centers = append(centers, s.Atom(el).Position)
		radii = append(radii, size(it.LocationAt(i, 0)))
		groups = append(groups, i)
	}
	return geometry.GaussianDensity(ctx, centers, radii, groups, densityOptions(p), prev)
}

// =============================================================================
// gaussian-surface
// =============================================================================

// GaussianSurface draws the isosurface of the gaussian density of a unit
// group as a texture mesh.
type GaussianSurface struct{}

// Name implements visual.Builder.
func (GaussianSurface) Name() string { return GaussianSurfaceName }

// Kind implements visual.Builder.
func (GaussianSurface) Kind() geometry.Kind { return geometry.KindTextureMesh }

// Params implements visual.Builder.
func (GaussianSurface) Params() params.Definitions {
	return params.Merge(meshParams(), sizeParams(true, theme.PhysicalSize()), densityParams(), params.Definitions{
		params.Numeric("isoValue", 0.25, 0.01, 10, params.TierTopology),
	})
}

// CreateGeometry implements visual.Builder.
func (GaussianSurface) CreateGeometry(ctx *task.Context, t visual.Target, p params.Values, prev geometry.Geometry) (geometry.Geometry, error) {
	grid, err := density(ctx, t, p, nil)
	if err != nil {
		return nil, err
	}
	m, err := geometry.Isosurface(ctx, grid, p.Float32("isoValue"), nil)
	if err != nil {
		return nil, err
	}
	tm := geometry.NewTextureMesh(m, prev)
	tm.SetGroupCount(t.Group.Leader().ElementCount())
	return tm, nil
}

// CreateLocationIterator implements visual.Builder.
func (GaussianSurface) CreateLocationIterator(t visual.Target) *location.Iterator {
	return elementIterator(t)
}

// GetLoci implements visual.Builder.
func (GaussianSurface) GetLoci(id location.PickingID, t visual.Target) loci.Loci {
	return elementLoci(id, t)
}

// Attributes implements visual.Builder.
func (GaussianSurface) Attributes() visual.Attribute { return 0 }

// =============================================================================
// gaussian-volume
// =============================================================================

// GaussianVolume draws the gaussian density of a unit group as a ray
// marched volume.
type GaussianVolume struct{}

// Name implements visual.Builder.
func (GaussianVolume) Name() string { return GaussianVolumeName }

// Kind implements visual.Builder.
func (GaussianVolume) Kind() geometry.Kind { return geometry.KindDirectVolume }

// Params implements visual.Builder.
func (GaussianVolume) Params() params.Definitions {
	return params.Merge(baseParams(), sizeParams(true, theme.PhysicalSize()), densityParams())
}

// CreateGeometry implements visual.Builder.
func (GaussianVolume) CreateGeometry(ctx *task.Context, t visual.Target, p params.Values, prev geometry.Geometry) (geometry.Geometry, error) {
	var old *geometry.Grid
	if v, ok := prev.(*geometry.DirectVolume); ok {
		old = &geometry.Grid{Data: v.Grid, Groups: v.GroupGrid}
	}
	grid, err := density(ctx, t, p, old)
	if err != nil {
		return nil, err
	}
	v := geometry.NewDirectVolume(grid)
	v.SetGroupCount(t.Group.Leader().ElementCount())
	return v, nil
}

// CreateLocationIterator implements visual.Builder.
func (GaussianVolume) CreateLocationIterator(t visual.Target) *location.Iterator {
	return elementIterator(t)
}

// GetLoci implements visual.Builder.
func (GaussianVolume) GetLoci(id location.PickingID, t visual.Target) loci.Loci {
	return elementLoci(id, t)
}

// Attributes implements visual.Builder.
func (GaussianVolume) Attributes() visual.Attribute { return 0 }
