package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// sphereMapping holds the quad corners of a sphere impostor.
var sphereMapping = [8]float32{-1, 1, -1, -1, 1, 1, 1, -1}

// Spheres is a set of ray-cast sphere impostors. Each sphere is a quad of
// four vertices sharing its center; the shader expands the quad by the
// per-group size.
type Spheres struct {
	Centers  []float32 // xyz per vertex
	Mappings []float32 // quad corner per vertex
	Groups   []float32 // group id per vertex
	Indices  []uint32

	groupCount int
}

// Kind implements Geometry.
func (s *Spheres) Kind() Kind { return KindSpheres }

// GroupCount implements Geometry.
func (s *Spheres) GroupCount() int { return s.groupCount }

// SphereCount returns the number of spheres.
func (s *Spheres) SphereCount() int { return len(s.Centers) / 12 }

// VertexCount implements Geometry.
func (s *Spheres) VertexCount() int { return len(s.Centers) / 3 }

// DrawCount implements Geometry.
func (s *Spheres) DrawCount() int { return len(s.Indices) }

// Topology implements Geometry.
func (s *Spheres) Topology() gputypes.PrimitiveTopology {
	return gputypes.PrimitiveTopologyTriangleList
}

// VertexLayout implements Geometry.
func (s *Spheres) VertexLayout() []gputypes.VertexBufferLayout {
	return layout(vec3Attr, vec2Attr, floatAttr)
}

// Buffers implements Geometry.
func (s *Spheres) Buffers() []Buffer {
	return []Buffer{
		vertexBuffer("centers", s.Centers),
		vertexBuffer("mappings", s.Mappings),
		vertexBuffer("groups", s.Groups),
		indexBuffer(s.Indices),
	}
}

// BoundingSphere implements Geometry. Sizes are not known to the geometry,
// so the sphere encloses the centers only.
func (s *Spheres) BoundingSphere() Sphere { return boundingSphere(s.Centers, 12) }

// SpheresBuilder appends sphere impostors.
type SpheresBuilder struct {
	s *Spheres
}

// NewSpheresBuilder starts a set sized for count spheres, reusing prev when
// it is a *Spheres.
func NewSpheresBuilder(count int, prev Geometry) *SpheresBuilder {
	old, _ := prev.(*Spheres)
	if old == nil {
		old = &Spheres{}
	}
	return &SpheresBuilder{s: &Spheres{
		Centers:  reuse(old.Centers, count*12),
		Mappings: reuse(old.Mappings, count*8),
		Groups:   reuse(old.Groups, count*4),
		Indices:  reuse(old.Indices, count*6),
	}}
}

// Add appends a sphere for group.
func (b *SpheresBuilder) Add(center mgl32.Vec3, group int) {
	base := uint32(len(b.s.Centers) / 3)
	g := float32(group)
	for range 4 {
		b.s.Centers = append(b.s.Centers, center[0], center[1], center[2])
		b.s.Groups = append(b.s.Groups, g)
	}
	b.s.Mappings = append(b.s.Mappings, sphereMapping[:]...)
	b.s.Indices = append(b.s.Indices, base, base+1, base+2, base+2, base+1, base+3)
	b.s.groupCount = max(b.s.groupCount, group+1)
}

// SetGroupCount overrides the group count, e.g. when filtered groups have
// no sphere.
func (b *SpheresBuilder) SetGroupCount(n int) { b.s.groupCount = n }

// Spheres returns the built set.
func (b *SpheresBuilder) Spheres() *Spheres { return b.s }

// Points is one point primitive per group.
type Points struct {
	Centers []float32 // xyz per point
	Groups  []float32 // group id per point

	groupCount int
}

// Kind implements Geometry.
func (p *Points) Kind() Kind { return KindPoints }

// GroupCount implements Geometry.
func (p *Points) GroupCount() int { return p.groupCount }

// VertexCount implements Geometry.
func (p *Points) VertexCount() int { return len(p.Centers) / 3 }

// DrawCount implements Geometry.
func (p *Points) DrawCount() int { return p.VertexCount() }

// Topology implements Geometry.
func (p *Points) Topology() gputypes.PrimitiveTopology { return gputypes.PrimitiveTopologyPointList }

// VertexLayout implements Geometry.
func (p *Points) VertexLayout() []gputypes.VertexBufferLayout {
	return layout(vec3Attr, floatAttr)
}

// Buffers implements Geometry.
func (p *Points) Buffers() []Buffer {
	return []Buffer{
		vertexBuffer("centers", p.Centers),
		vertexBuffer("groups", p.Groups),
	}
}

// BoundingSphere implements Geometry.
func (p *Points) BoundingSphere() Sphere { return boundingSphere(p.Centers, 3) }

// PointsBuilder appends points.
type PointsBuilder struct {
	p *Points
}

// NewPointsBuilder starts a set sized for count points, reusing prev when
// it is a *Points.
func NewPointsBuilder(count int, prev Geometry) *PointsBuilder {
	old, _ := prev.(*Points)
	if old == nil {
		old = &Points{}
	}
	return &PointsBuilder{p: &Points{
		Centers: reuse(old.Centers, count*3),
		Groups:  reuse(old.Groups, count),
	}}
}

// Add appends a point for group.
func (b *PointsBuilder) Add(center mgl32.Vec3, group int) {
	b.p.Centers = append(b.p.Centers, center[0], center[1], center[2])
	b.p.Groups = append(b.p.Groups, float32(group))
	b.p.groupCount = max(b.p.groupCount, group+1)
}

// SetGroupCount overrides the group count.
func (b *PointsBuilder) SetGroupCount(n int) { b.p.groupCount = n }

// Points returns the built set.
func (b *PointsBuilder) Points() *Points { return b.p }
