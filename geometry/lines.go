package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// lineMapping holds the quad corners of a line segment: x selects the
// start (0) or end (1), y the side.
var lineMapping = [8]float32{0, -1, 0, 1, 1, -1, 1, 1}

// Lines is a set of screen-space wide line segments. Each segment is a quad
// whose four vertices carry both end points.
type Lines struct {
	Starts   []float32 // xyz per vertex
	Ends     []float32 // xyz per vertex
	Mappings []float32 // quad corner per vertex
	Groups   []float32 // group id per vertex
	Indices  []uint32

	groupCount int
}

// Kind implements Geometry.
func (l *Lines) Kind() Kind { return KindLines }

// GroupCount implements Geometry.
func (l *Lines) GroupCount() int { return l.groupCount }

// SegmentCount returns the number of segments.
func (l *Lines) SegmentCount() int { return len(l.Starts) / 12 }

// VertexCount implements Geometry.
func (l *Lines) VertexCount() int { return len(l.Starts) / 3 }

// DrawCount implements Geometry.
func (l *Lines) DrawCount() int { return len(l.Indices) }

// Topology implements Geometry.
func (l *Lines) Topology() gputypes.PrimitiveTopology { return gputypes.PrimitiveTopologyTriangleList }

// VertexLayout implements Geometry.
func (l *Lines) VertexLayout() []gputypes.VertexBufferLayout {
	return layout(vec3Attr, vec3Attr, vec2Attr, floatAttr)
}

// Buffers implements Geometry.
func (l *Lines) Buffers() []Buffer {
	return []Buffer{
		vertexBuffer("starts", l.Starts),
		vertexBuffer("ends", l.Ends),
		vertexBuffer("mappings", l.Mappings),
		vertexBuffer("groups", l.Groups),
		indexBuffer(l.Indices),
	}
}

// BoundingSphere implements Geometry.
func (l *Lines) BoundingSphere() Sphere {
	pts := make([]float32, 0, len(l.Starts)/2)
	for i := 0; i+12 <= len(l.Starts); i += 12 {
		pts = append(pts, l.Starts[i:i+3]...)
		pts = append(pts, l.Ends[i:i+3]...)
	}
	return boundingSphere(pts, 3)
}

// LinesBuilder appends line segments.
type LinesBuilder struct {
	l *Lines
}

// NewLinesBuilder starts a set sized for count segments, reusing prev when
// it is a *Lines.
func NewLinesBuilder(count int, prev Geometry) *LinesBuilder {
	old, _ := prev.(*Lines)
	if old == nil {
		old = &Lines{}
	}
	return &LinesBuilder{l: &Lines{
		Starts:   reuse(old.Starts, count*12),
		Ends:     reuse(old.Ends, count*12),
		Mappings: reuse(old.Mappings, count*8),
		Groups:   reuse(old.Groups, count*4),
		Indices:  reuse(old.Indices, count*6),
	}}
}

// Add appends a segment for group.
func (b *LinesBuilder) Add(start, end mgl32.Vec3, group int) {
	base := uint32(len(b.l.Starts) / 3)
	g := float32(group)
	for range 4 {
		b.l.Starts = append(b.l.Starts, start[0], start[1], start[2])
		b.l.Ends = append(b.l.Ends, end[0], end[1], end[2])
		b.l.Groups = append(b.l.Groups, g)
	}
	b.l.Mappings = append(b.l.Mappings, lineMapping[:]...)
	b.l.Indices = append(b.l.Indices, base, base+1, base+2, base+1, base+3, base+2)
	b.l.groupCount = max(b.l.groupCount, group+1)
}

// SetGroupCount overrides the group count, e.g. when trailing groups have
// no segments.
func (b *LinesBuilder) SetGroupCount(n int) { b.l.groupCount = n }

// Lines returns the built set.
func (b *LinesBuilder) Lines() *Lines { return b.l }
