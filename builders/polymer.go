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

// traceSegment is the part of a polymer trace owned by one residue: from
// the midpoint to the previous trace atom, through the residue's own trace
// atom, to the midpoint to the next one.
type traceSegment struct {
	from, at, to mgl32.Vec3
}

// traceSegments returns one segment per residue of the group leader, in
// the untransformed frame.
func traceSegments(t visual.Target) []traceSegment {
	s := t.Structure
	start, end := s.UnitResidues(t.Group.Leader())
	pts := make([]mgl32.Vec3, 0, end-start)
	for r := start; r < end; r++ {
		pts = append(pts, s.Atom(s.TraceAtom(r)).Position)
	}
	segs := make([]traceSegment, len(pts))
	for i, p := range pts {
		seg := traceSegment{from: p, at: p, to: p}
		if i > 0 {
			seg.from = pts[i-1].Add(p).Mul(0.5)
		}
		if i < len(pts)-1 {
			seg.to = p.Add(pts[i+1]).Mul(0.5)
		}
		segs[i] = seg
	}
	return segs
}

// =============================================================================
// polymer-trace
// =============================================================================

// PolymerTrace draws the backbone of a unit group as wide lines through
// the residue trace atoms. Line width comes from the size buffer.
type PolymerTrace struct{}

// Name implements visual.Builder.
func (PolymerTrace) Name() string { return PolymerTraceName }

// Kind implements visual.Builder.
func (PolymerTrace) Kind() geometry.Kind { return geometry.KindLines }

// Params implements visual.Builder.
func (PolymerTrace) Params() params.Definitions {
	return params.Merge(baseParams(), sizeParams(false, theme.UniformSizeTheme(2)))
}

// CreateGeometry implements visual.Builder.
func (PolymerTrace) CreateGeometry(ctx *task.Context, t visual.Target, _ params.Values, prev geometry.Geometry) (geometry.Geometry, error) {
	segs := traceSegments(t)
	b := geometry.NewLinesBuilder(2*len(segs), prev)
	for g, seg := range segs {
		if err := ctx.Step("polymer trace", g, len(segs)); err != nil {
			return nil, err
		}
		if seg.from != seg.at {
			b.Add(seg.from, seg.at, g)
		}
		if seg.at != seg.to {
			b.Add(seg.at, seg.to, g)
		}
	}
	b.SetGroupCount(len(segs))
	return b.Lines(), nil
}

// CreateLocationIterator implements visual.Builder.
func (PolymerTrace) CreateLocationIterator(t visual.Target) *location.Iterator {
	return residueIterator(t)
}

// GetLoci implements visual.Builder.
func (PolymerTrace) GetLoci(id location.PickingID, t visual.Target) loci.Loci {
	return residueLoci(id, t)
}

// Attributes implements visual.Builder.
func (PolymerTrace) Attributes() visual.Attribute { return visual.AttributeSize }

// =============================================================================
// polymer-tube
// =============================================================================

// PolymerTube draws the backbone of a unit group as a tube of cylinders
// joined by spheres.
type PolymerTube struct{}

// Name implements visual.Builder.
func (PolymerTube) Name() string { return PolymerTubeName }

// Kind implements visual.Builder.
func (PolymerTube) Kind() geometry.Kind { return geometry.KindMesh }

// Params implements visual.Builder.
func (PolymerTube) Params() params.Definitions {
	return params.Merge(meshParams(), sizeParams(true, theme.UniformSizeTheme(0.3)), params.Definitions{
		params.Integer("radialSegments", 8, 3, 56, params.TierTopology),
	})
}

// CreateGeometry implements visual.Builder.
func (PolymerTube) CreateGeometry(ctx *task.Context, t visual.Target, p params.Values, prev geometry.Geometry) (geometry.Geometry, error) {
	size, err := sizer(t, p, true)
	if err != nil {
		return nil, err
	}
	segments := p.Int("radialSegments")
	segs := traceSegments(t)
	it := residueIterator(t)

	joint := geometry.Icosphere(0)
	perResidue := 4*segments + joint.VertexCount()
	b := geometry.NewMeshBuilder(len(segs)*perResidue, len(segs)*(12*segments+len(joint.Indices)), prev)
	for g, seg := range segs {
		if err := ctx.Step("polymer tube", g, len(segs)); err != nil {
			return nil, err
		}
		radius := size(it.LocationAt(g, 0))
		b.SetGroup(g)
		geometry.AddCylinder(b, seg.from, seg.at, radius, segments, false)
		geometry.AddCylinder(b, seg.at, seg.to, radius, segments, false)
		geometry.AddSphere(b, seg.at, radius, 0)
	}
	b.SetGroupCount(len(segs))
	return b.Mesh(), nil
}

// CreateLocationIterator implements visual.Builder.
func (PolymerTube) CreateLocationIterator(t visual.Target) *location.Iterator {
	return residueIterator(t)
}

// GetLoci implements visual.Builder.
func (PolymerTube) GetLoci(id location.PickingID, t visual.Target) loci.Loci {
	return residueLoci(id, t)
}

// Attributes implements visual.Builder.
func (PolymerTube) Attributes() visual.Attribute { return 0 }
