package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// Glyph is one positioned glyph quad of a label. X and Y are offsets from
// the label anchor in world units; U and V are atlas coordinates.
type Glyph struct {
	X0, Y0, X1, Y1 float32
	U0, V0, U1, V1 float32
}

// Text is a set of billboarded labels. Every glyph is a quad whose four
// vertices share the label anchor and carry their corner offset.
type Text struct {
	Positions []float32 // anchor xyz per vertex
	Mappings  []float32 // corner offset per vertex
	Depths    []float32 // depth offset per vertex
	TexCoords []float32 // atlas uv per vertex
	Groups    []float32 // group id per vertex
	Indices   []uint32

	groupCount int
}

// Kind implements Geometry.
func (t *Text) Kind() Kind { return KindText }

// GroupCount implements Geometry.
func (t *Text) GroupCount() int { return t.groupCount }

// GlyphCount returns the number of glyph quads.
func (t *Text) GlyphCount() int { return len(t.Positions) / 12 }

// VertexCount implements Geometry.
func (t *Text) VertexCount() int { return len(t.Positions) / 3 }

// DrawCount implements Geometry.
func (t *Text) DrawCount() int { return len(t.Indices) }

// Topology implements Geometry.
func (t *Text) Topology() gputypes.PrimitiveTopology { return gputypes.PrimitiveTopologyTriangleList }

// VertexLayout implements Geometry.
func (t *Text) VertexLayout() []gputypes.VertexBufferLayout {
	return layout(vec3Attr, vec2Attr, floatAttr, vec2Attr, floatAttr)
}

// Buffers implements Geometry.
func (t *Text) Buffers() []Buffer {
	return []Buffer{
		vertexBuffer("positions", t.Positions),
		vertexBuffer("mappings", t.Mappings),
		vertexBuffer("depths", t.Depths),
		vertexBuffer("texCoords", t.TexCoords),
		vertexBuffer("groups", t.Groups),
		indexBuffer(t.Indices),
	}
}

// BoundingSphere implements Geometry.
func (t *Text) BoundingSphere() Sphere { return boundingSphere(t.Positions, 12) }

// TextBuilder appends labels.
type TextBuilder struct {
	t *Text
}

// NewTextBuilder starts a set sized for glyphCount glyphs, reusing prev
// when it is a *Text.
func NewTextBuilder(glyphCount int, prev Geometry) *TextBuilder {
	old, _ := prev.(*Text)
	if old == nil {
		old = &Text{}
	}
	return &TextBuilder{t: &Text{
		Positions: reuse(old.Positions, glyphCount*12),
		Mappings:  reuse(old.Mappings, glyphCount*8),
		Depths:    reuse(old.Depths, glyphCount*4),
		TexCoords: reuse(old.TexCoords, glyphCount*8),
		Groups:    reuse(old.Groups, glyphCount*4),
		Indices:   reuse(old.Indices, glyphCount*6),
	}}
}

// Add appends a label anchored at anchor for group.
func (b *TextBuilder) Add(anchor mgl32.Vec3, depth float32, glyphs []Glyph, group int) {
	g := float32(group)
	for _, gl := range glyphs {
		base := uint32(len(b.t.Positions) / 3)
		for range 4 {
			b.t.Positions = append(b.t.Positions, anchor[0], anchor[1], anchor[2])
			b.t.Depths = append(b.t.Depths, depth)
			b.t.Groups = append(b.t.Groups, g)
		}
		b.t.Mappings = append(b.t.Mappings, gl.X0, gl.Y1, gl.X0, gl.Y0, gl.X1, gl.Y1, gl.X1, gl.Y0)
		b.t.TexCoords = append(b.t.TexCoords, gl.U0, gl.V0, gl.U0, gl.V1, gl.U1, gl.V0, gl.U1, gl.V1)
		b.t.Indices = append(b.t.Indices, base, base+1, base+2, base+2, base+1, base+3)
	}
	b.t.groupCount = max(b.t.groupCount, group+1)
}

// SetGroupCount overrides the group count.
func (b *TextBuilder) SetGroupCount(n int) { b.t.groupCount = n }

// Text returns the built set.
func (b *TextBuilder) Text() *Text { return b.t }
