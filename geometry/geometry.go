// Package geometry defines the buffer sets produced by geometry builders.
//
// There is one concrete type per primitive kind:
//
//   - [Mesh]: indexed triangles with normals
//   - [Spheres]: ray-cast sphere impostors, one quad per sphere
//   - [Points]: one point per group
//   - [Lines]: screen-space wide lines, one quad per segment
//   - [Text]: billboarded glyph quads
//   - [TextureMesh]: triangles pulled from float textures
//   - [DirectVolume]: a density grid rendered by ray marching
//
// Every vertex (or voxel) stores the group id it belongs to. Group ids are
// dense, start at 0 and follow the order of the [location.Iterator] the
// builder pairs the geometry with.
//
// Builders accept the previous geometry of the same kind. When its slices
// have enough capacity they are truncated and refilled instead of
// reallocated; the result is identical either way. Callers must not pass
// geometry that is still referenced by a live render object.
//
// [location.Iterator]: github.com/gogpu/molvis/location.Iterator
package geometry

import (
	"fmt"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// Kind is the primitive kind of a geometry.
type Kind uint8

// Geometry kinds.
const (
	KindMesh Kind = iota
	KindSpheres
	KindPoints
	KindLines
	KindText
	KindTextureMesh
	KindDirectVolume
)

var kindNames = [...]string{"mesh", "spheres", "points", "lines", "text", "texture-mesh", "direct-volume"}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Geometry is a set of GPU buffers describing one kind of primitive.
type Geometry interface {
	Kind() Kind

	// GroupCount is the number of distinct group ids.
	GroupCount() int

	// VertexCount is the number of vertices (voxels for volumes).
	VertexCount() int

	// DrawCount is the number of indices, or vertices for non-indexed kinds.
	DrawCount() int

	Topology() gputypes.PrimitiveTopology
	VertexLayout() []gputypes.VertexBufferLayout
	Buffers() []Buffer
	BoundingSphere() Sphere
}

// Buffer is one named data array of a geometry. Data is []float32 or
// []uint32.
type Buffer struct {
	Name  string
	Data  any
	Usage gputypes.BufferUsage
}

// Size returns the size of the buffer data in bytes.
func (b Buffer) Size() uint64 {
	switch d := b.Data.(type) {
	case []float32:
		return uint64(len(d)) * uint64(unsafe.Sizeof(float32(0)))
	case []uint32:
		return uint64(len(d)) * uint64(unsafe.Sizeof(uint32(0)))
	default:
		return 0
	}
}

// Buffer usages.
const (
	vertexUsage  = gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	indexUsage   = gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
	storageUsage = gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
)

func vertexBuffer(name string, data []float32) Buffer {
	return Buffer{Name: name, Data: data, Usage: vertexUsage}
}

func indexBuffer(data []uint32) Buffer {
	return Buffer{Name: "indices", Data: data, Usage: indexUsage}
}

// attribute describes one non-interleaved per-vertex buffer.
type attribute struct {
	format gputypes.VertexFormat
	step   gputypes.VertexStepMode
}

// layout returns one buffer layout per attribute with consecutive shader
// locations.
func layout(attrs ...attribute) []gputypes.VertexBufferLayout {
	out := make([]gputypes.VertexBufferLayout, len(attrs))
	for i, a := range attrs {
		out[i] = gputypes.VertexBufferLayout{
			ArrayStride: a.format.Size(),
			StepMode:    a.step,
			Attributes: []gputypes.VertexAttribute{{
				Format:         a.format,
				Offset:         0,
				ShaderLocation: uint32(i),
			}},
		}
	}
	return out
}

var (
	vec3Attr  = attribute{gputypes.VertexFormatFloat32x3, gputypes.VertexStepModeVertex}
	vec2Attr  = attribute{gputypes.VertexFormatFloat32x2, gputypes.VertexStepModeVertex}
	floatAttr = attribute{gputypes.VertexFormatFloat32, gputypes.VertexStepModeVertex}
)

// Sphere is a bounding sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// boundingSphere returns a sphere around the xyz triples in positions,
// spaced stride floats apart.
func boundingSphere(positions []float32, stride int) Sphere {
	n := len(positions) / stride
	if n == 0 {
		return Sphere{}
	}
	var c mgl32.Vec3
	for i := 0; i < n; i++ {
		c = c.Add(mgl32.Vec3{positions[i*stride], positions[i*stride+1], positions[i*stride+2]})
	}
	c = c.Mul(1 / float32(n))
	var r2 float32
	for i := 0; i < n; i++ {
		d := mgl32.Vec3{positions[i*stride], positions[i*stride+1], positions[i*stride+2]}.Sub(c)
		r2 = max(r2, d.Dot(d))
	}
	return Sphere{Center: c, Radius: math32.Sqrt(r2)}
}

// reuse returns s truncated to length 0 when it can hold n elements, or a
// new slice with capacity n.
func reuse[T any](s []T, n int) []T {
	if cap(s) >= n {
		return s[:0]
	}
	return make([]T, 0, n)
}
