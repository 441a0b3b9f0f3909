package builders

import (
	"github.com/gogpu/molvis/geometry"
	"github.com/gogpu/molvis/location"
	"github.com/gogpu/molvis/loci"
	"github.com/gogpu/molvis/params"
	"github.com/gogpu/molvis/task"
	"github.com/gogpu/molvis/theme"
	"github.com/gogpu/molvis/visual"
)

func detailParam() params.Definition {
	return params.Integer("detail", 1, 0, geometry.MaxDetail, params.TierTopology).
		WithDescription("Icosphere subdivision level.")
}

// =============================================================================
// element-sphere
// =============================================================================

// ElementSphere draws every atom of a unit group as a triangulated sphere.
type ElementSphere struct{}

// Name implements visual.Builder.
func (ElementSphere) Name() string { return ElementSphereName }

// Kind implements visual.Builder.
func (ElementSphere) Kind() geometry.Kind { return geometry.KindMesh }

// Params implements visual.Builder.
func (ElementSphere) Params() params.Definitions {
	return params.Merge(meshParams(), sizeParams(true, theme.PhysicalSize()), params.Definitions{
		detailParam(),
		ignoreHydrogensParam(),
	})
}

// CreateGeometry implements visual.Builder.
func (ElementSphere) CreateGeometry(ctx *task.Context, t visual.Target, p params.Values, prev geometry.Geometry) (geometry.Geometry, error) {
	size, err := sizer(t, p, true)
	if err != nil {
		return nil, err
	}
	s, leader := t.Structure, t.Group.Leader()
	detail := p.Int("detail")
	noH := p.Bool("ignoreHydrogens")

	n := leader.ElementCount()
	tpl := geometry.Icosphere(detail)
	b := geometry.NewMeshBuilder(n*tpl.VertexCount(), n*len(tpl.Indices), prev)
	it := elementIterator(t)
	for i, el := range leader.Elements {
		if err := ctx.Step("element spheres", i, n); err != nil {
			return nil, err
		}
		if noH && isHydrogen(s, el) {
			continue
		}
		b.SetGroup(i)
		geometry.AddSphere(b, s.Atom(el).Position, size(it.LocationAt(i, 0)), detail)
	}
	b.SetGroupCount(n)
	return b.Mesh(), nil
}

// CreateLocationIterator implements visual.Builder.
func (ElementSphere) CreateLocationIterator(t visual.Target) *location.Iterator {
	return elementIterator(t)
}

// GetLoci implements visual.Builder.
func (ElementSphere) GetLoci(id location.PickingID, t visual.Target) loci.Loci {
	return elementLoci(id, t)
}

// Attributes implements visual.Builder.
func (ElementSphere) Attributes() visual.Attribute { return 0 }

// =============================================================================
// residue-sphere
// =============================================================================

// ResidueSphere draws one sphere per residue of a whole structure, centered
// on the residue trace atom.
type ResidueSphere struct{}

// Name implements visual.Builder.
func (ResidueSphere) Name() string { return ResidueSphereName }

// Kind implements visual.Builder.
func (ResidueSphere) Kind() geometry.Kind { return geometry.KindMesh }

// Params implements visual.Builder.
func (ResidueSphere) Params() params.Definitions {
	return params.Merge(meshParams(), sizeParams(true, theme.UniformSizeTheme(2)), params.Definitions{
		detailParam(),
	})
}

// CreateGeometry implements visual.Builder.
func (ResidueSphere) CreateGeometry(ctx *task.Context, t visual.Target, p params.Values, prev geometry.Geometry) (geometry.Geometry, error) {
	size, err := sizer(t, p, true)
	if err != nil {
		return nil, err
	}
	detail := p.Int("detail")
	it := residueIterator(t)
	n := it.GroupCount()
	tpl := geometry.Icosphere(detail)
	b := geometry.NewMeshBuilder(n*tpl.VertexCount(), n*len(tpl.Indices), prev)
	for g := 0; g < n; g++ {
		if err := ctx.Step("residue spheres", g, n); err != nil {
			return nil, err
		}
		l := it.LocationAt(g, 0)
		b.SetGroup(g)
		geometry.AddSphere(b, t.Structure.Position(l.Unit, l.Element), size(l), detail)
	}
	b.SetGroupCount(n)
	return b.Mesh(), nil
}

// CreateLocationIterator implements visual.Builder.
func (ResidueSphere) CreateLocationIterator(t visual.Target) *location.Iterator {
	return residueIterator(t)
}

// GetLoci implements visual.Builder.
func (ResidueSphere) GetLoci(id location.PickingID, t visual.Target) loci.Loci {
	return residueLoci(id, t)
}

// Attributes implements visual.Builder.
func (ResidueSphere) Attributes() visual.Attribute { return 0 }

// =============================================================================
// element-spheres
// =============================================================================

// ElementSpheres draws every atom of a unit group as a ray-cast sphere
// impostor sized by the size buffer.
type ElementSpheres struct{}

// Name implements visual.Builder.
func (ElementSpheres) Name() string { return ElementSpheresName }

// Kind implements visual.Builder.
func (ElementSpheres) Kind() geometry.Kind { return geometry.KindSpheres }

// Params implements visual.Builder.
func (ElementSpheres) Params() params.Definitions {
	return params.Merge(meshParams(), sizeParams(false, theme.PhysicalSize()), params.Definitions{
		ignoreHydrogensParam(),
	})
}

// CreateGeometry implements visual.Builder.
func (ElementSpheres) CreateGeometry(ctx *task.Context, t visual.Target, p params.Values, prev geometry.Geometry) (geometry.Geometry, error) {
	s, leader := t.Structure, t.Group.Leader()
	noH := p.Bool("ignoreHydrogens")
	n := leader.ElementCount()
	b := geometry.NewSpheresBuilder(n, prev)
	for i, el := range leader.Elements {
		if err := ctx.Step("sphere impostors", i, n); err != nil {
			return nil, err
		}
		if noH && isHydrogen(s, el) {
			continue
		}
		b.Add(s.Atom(el).Position, i)
	}
	b.SetGroupCount(n)
	return b.Spheres(), nil
}

// CreateLocationIterator implements visual.Builder.
func (ElementSpheres) CreateLocationIterator(t visual.Target) *location.Iterator {
	return elementIterator(t)
}

// GetLoci implements visual.Builder.
func (ElementSpheres) GetLoci(id location.PickingID, t visual.Target) loci.Loci {
	return elementLoci(id, t)
}

// Attributes implements visual.Builder.
func (ElementSpheres) Attributes() visual.Attribute { return visual.AttributeSize }

// =============================================================================
// element-point
// =============================================================================

// ElementPoint draws every atom of a unit group as a screen-space point.
type ElementPoint struct{}

// Name implements visual.Builder.
func (ElementPoint) Name() string { return ElementPointName }

// Kind implements visual.Builder.
func (ElementPoint) Kind() geometry.Kind { return geometry.KindPoints }

// Params implements visual.Builder.
func (ElementPoint) Params() params.Definitions {
	return params.Merge(baseParams(), sizeParams(false, theme.UniformSizeTheme(3)), params.Definitions{
		ignoreHydrogensParam(),
	})
}

// CreateGeometry implements visual.Builder.
func (ElementPoint) CreateGeometry(ctx *task.Context, t visual.Target, p params.Values, prev geometry.Geometry) (geometry.Geometry, error) {
	s, leader := t.Structure, t.Group.Leader()
	noH := p.Bool("ignoreHydrogens")
	n := leader.ElementCount()
	b := geometry.NewPointsBuilder(n, prev)
	for i, el := range leader.Elements {
		if err := ctx.Step("points", i, n); err != nil {
			return nil, err
		}
		if noH && isHydrogen(s, el) {
			continue
		}
		b.Add(s.Atom(el).Position, i)
	}
	b.SetGroupCount(n)
	return b.Points(), nil
}

// CreateLocationIterator implements visual.Builder.
func (ElementPoint) CreateLocationIterator(t visual.Target) *location.Iterator {
	return elementIterator(t)
}

// GetLoci implements visual.Builder.
func (ElementPoint) GetLoci(id location.PickingID, t visual.Target) loci.Loci {
	return elementLoci(id, t)
}

// Attributes implements visual.Builder.
func (ElementPoint) Attributes() visual.Attribute { return visual.AttributeSize }
