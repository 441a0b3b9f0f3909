package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// Mesh is an indexed triangle list.
type Mesh struct {
	Positions []float32 // xyz per vertex
	Normals   []float32 // xyz per vertex
	Groups    []float32 // group id per vertex
	Indices   []uint32

	groupCount int
}

// Kind implements Geometry.
func (m *Mesh) Kind() Kind { return KindMesh }

// GroupCount implements Geometry.
func (m *Mesh) GroupCount() int { return m.groupCount }

// VertexCount implements Geometry.
func (m *Mesh) VertexCount() int { return len(m.Positions) / 3 }

// DrawCount implements Geometry.
func (m *Mesh) DrawCount() int { return len(m.Indices) }

// Topology implements Geometry.
func (m *Mesh) Topology() gputypes.PrimitiveTopology { return gputypes.PrimitiveTopologyTriangleList }

// VertexLayout implements Geometry.
func (m *Mesh) VertexLayout() []gputypes.VertexBufferLayout {
	return layout(vec3Attr, vec3Attr, floatAttr)
}

// Buffers implements Geometry.
func (m *Mesh) Buffers() []Buffer {
	return []Buffer{
		vertexBuffer("positions", m.Positions),
		vertexBuffer("normals", m.Normals),
		vertexBuffer("groups", m.Groups),
		indexBuffer(m.Indices),
	}
}

// BoundingSphere implements Geometry.
func (m *Mesh) BoundingSphere() Sphere { return boundingSphere(m.Positions, 3) }

// MeshBuilder appends triangles to a mesh.
type MeshBuilder struct {
	m     *Mesh
	group float32
}

// NewMeshBuilder starts a mesh sized for about vertexCount vertices and
// indexCount indices. prev is reused when it is a *Mesh.
func NewMeshBuilder(vertexCount, indexCount int, prev Geometry) *MeshBuilder {
	old, _ := prev.(*Mesh)
	if old == nil {
		old = &Mesh{}
	}
	return &MeshBuilder{m: &Mesh{
		Positions: reuse(old.Positions, vertexCount*3),
		Normals:   reuse(old.Normals, vertexCount*3),
		Groups:    reuse(old.Groups, vertexCount),
		Indices:   reuse(old.Indices, indexCount),
	}}
}

// SetGroup sets the group id of subsequently added vertices.
func (b *MeshBuilder) SetGroup(group int) {
	b.group = float32(group)
	b.m.groupCount = max(b.m.groupCount, group+1)
}

// VertexCount returns the number of vertices added so far.
func (b *MeshBuilder) VertexCount() int { return len(b.m.Positions) / 3 }

// AddVertex appends a vertex and returns its index.
func (b *MeshBuilder) AddVertex(p, n mgl32.Vec3) uint32 {
	i := uint32(b.VertexCount())
	b.m.Positions = append(b.m.Positions, p[0], p[1], p[2])
	b.m.Normals = append(b.m.Normals, n[0], n[1], n[2])
	b.m.Groups = append(b.m.Groups, b.group)
	return i
}

// AddTriangle appends a triangle of previously added vertices.
func (b *MeshBuilder) AddTriangle(a, c, d uint32) {
	b.m.Indices = append(b.m.Indices, a, c, d)
}

// AddTemplate appends a unit shape scaled by scale and moved to center.
func (b *MeshBuilder) AddTemplate(t *Template, center mgl32.Vec3, scale float32) {
	base := uint32(b.VertexCount())
	for i := 0; i < len(t.Positions); i += 3 {
		p := mgl32.Vec3{t.Positions[i], t.Positions[i+1], t.Positions[i+2]}
		n := mgl32.Vec3{t.Normals[i], t.Normals[i+1], t.Normals[i+2]}
		b.AddVertex(center.Add(p.Mul(scale)), n)
	}
	for _, idx := range t.Indices {
		b.m.Indices = append(b.m.Indices, base+idx)
	}
}

// SetGroupCount overrides the group count, e.g. when trailing groups have
// no primitives.
func (b *MeshBuilder) SetGroupCount(n int) { b.m.groupCount = n }

// Mesh returns the built mesh.
func (b *MeshBuilder) Mesh() *Mesh { return b.m }
