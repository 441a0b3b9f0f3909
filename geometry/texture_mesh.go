package geometry

import (
	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
)

// TextureMesh is a non-indexed triangle list stored in two RGBA32F
// textures of Width x Height texels. Texel i of VertexTexture holds the
// position and group id of vertex i; texel i of NormalTexture holds its
// normal. The vertex shader pulls vertex data by vertex index, which lets a
// compute pass produce surfaces without a CPU round trip.
type TextureMesh struct {
	VertexTexture []float32
	NormalTexture []float32
	Width, Height int

	vertexCount int
	groupCount  int
	bounds      Sphere
}

// Kind implements Geometry.
func (t *TextureMesh) Kind() Kind { return KindTextureMesh }

// GroupCount implements Geometry.
func (t *TextureMesh) GroupCount() int { return t.groupCount }

// VertexCount implements Geometry.
func (t *TextureMesh) VertexCount() int { return t.vertexCount }

// DrawCount implements Geometry.
func (t *TextureMesh) DrawCount() int { return t.vertexCount }

// Topology implements Geometry.
func (t *TextureMesh) Topology() gputypes.PrimitiveTopology {
	return gputypes.PrimitiveTopologyTriangleList
}

// VertexLayout implements Geometry. Vertex data comes from textures, so
// there are no vertex buffers.
func (t *TextureMesh) VertexLayout() []gputypes.VertexBufferLayout { return nil }

// Buffers implements Geometry.
func (t *TextureMesh) Buffers() []Buffer {
	return []Buffer{
		{Name: "vertexTexture", Data: t.VertexTexture, Usage: storageUsage},
		{Name: "normalTexture", Data: t.NormalTexture, Usage: storageUsage},
	}
}

// Textures returns the descriptors of the vertex and normal textures.
func (t *TextureMesh) Textures() []gputypes.TextureDescriptor {
	desc := func(label string) gputypes.TextureDescriptor {
		return gputypes.TextureDescriptor{
			Label:         label,
			Size:          gputypes.NewExtent2D(uint32(max(t.Width, 1)), uint32(max(t.Height, 1))),
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        gputypes.TextureFormatRGBA32Float,
			Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
		}
	}
	return []gputypes.TextureDescriptor{desc("vertexTexture"), desc("normalTexture")}
}

// BoundingSphere implements Geometry.
func (t *TextureMesh) BoundingSphere() Sphere { return t.bounds }

// SetGroupCount overrides the group count, e.g. when trailing groups are
// not hit by the surface.
func (t *TextureMesh) SetGroupCount(n int) { t.groupCount = n }

// NewTextureMesh expands the indexed mesh m into vertex and normal
// textures. prev is reused when it is a *TextureMesh.
func NewTextureMesh(m *Mesh, prev Geometry) *TextureMesh {
	old, _ := prev.(*TextureMesh)
	if old == nil {
		old = &TextureMesh{}
	}
	n := len(m.Indices)
	w := int(math32.Ceil(math32.Sqrt(float32(n))))
	h := 0
	if w > 0 {
		h = (n + w - 1) / w
	}
	texels := w * h * 4
	t := &TextureMesh{
		VertexTexture: reuse(old.VertexTexture, texels),
		NormalTexture: reuse(old.NormalTexture, texels),
		Width:         w,
		Height:        h,
		vertexCount:   n,
		groupCount:    m.GroupCount(),
		bounds:        m.BoundingSphere(),
	}
	for _, i := range m.Indices {
		p, nm := m.Positions[i*3:i*3+3], m.Normals[i*3:i*3+3]
		t.VertexTexture = append(t.VertexTexture, p[0], p[1], p[2], m.Groups[i])
		t.NormalTexture = append(t.NormalTexture, nm[0], nm[1], nm[2], 0)
	}
	for len(t.VertexTexture) < texels {
		t.VertexTexture = append(t.VertexTexture, 0)
		t.NormalTexture = append(t.NormalTexture, 0)
	}
	return t
}
