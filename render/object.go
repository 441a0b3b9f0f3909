package render

import (
	"slices"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/molvis/geometry"
	"github.com/gogpu/molvis/location"
	"github.com/gogpu/molvis/params"
	"github.com/gogpu/molvis/theme"
)

var nextID atomic.Int64

// Attributes are the per-group and per-instance arrays computed by the
// visual before a render object is created.
type Attributes struct {
	Color     []float32
	ColorType theme.ColorType
	Size      []float32 // nil for kinds without a size buffer
	Transform []float32 // 16 floats per instance, column-major
}

// Values holds the versioned data of a render object.
type Values struct {
	// Buffers holds the geometry float buffers by name.
	Buffers map[string]*Cell[[]float32]
	Indices *Cell[[]uint32]
	usages  map[string]gputypes.BufferUsage

	// Textures is set for kinds that pull their data from textures.
	Textures []gputypes.TextureDescriptor

	Topology     gputypes.PrimitiveTopology
	VertexLayout []gputypes.VertexBufferLayout

	BoundingSphere *Cell[geometry.Sphere]

	Color     *Cell[[]float32]
	ColorType *Cell[theme.ColorType]
	Size      *Cell[[]float32]
	Marker    *Cell[[]uint8]
	Transform *Cell[[]float32]

	Alpha       *Cell[float32]
	SizeFactor  *Cell[float32]
	DoubleSided *Cell[bool]
	FlatShaded  *Cell[bool]
	IgnoreLight *Cell[bool]
	XrayShaded  *Cell[bool]
	ClipObjects *Cell[bool]

	GroupCount    *Cell[int]
	InstanceCount *Cell[int]
	DrawCount     *Cell[int]
}

// State holds the pipeline switches of a render object.
type State struct {
	Visible    bool
	Pickable   bool
	Opaque     bool
	WriteDepth bool
	ColorOnly  bool
}

// RenderObject is everything a renderer needs to draw one visual.
type RenderObject struct {
	ID     int
	Kind   geometry.Kind
	Values *Values
	State  *Cell[State]
}

// New creates a render object for g. The marker array is sized for every
// group of every instance of it.
func New(g geometry.Geometry, it *location.Iterator, a Attributes, p params.Values) *RenderObject {
	v := &Values{
		Buffers:      make(map[string]*Cell[[]float32]),
		usages:       make(map[string]gputypes.BufferUsage),
		Indices:      NewCell[[]uint32](nil),
		Topology:     g.Topology(),
		VertexLayout: g.VertexLayout(),

		BoundingSphere: NewCell(g.BoundingSphere()),

		Color:     NewCell(a.Color),
		ColorType: NewCell(a.ColorType),
		Size:      NewCell(a.Size),
		Marker:    NewCell(make([]uint8, it.Count())),
		Transform: NewCell(a.Transform),

		Alpha:       NewCell(float32(1)),
		SizeFactor:  NewCell(float32(1)),
		DoubleSided: NewCell(false),
		FlatShaded:  NewCell(false),
		IgnoreLight: NewCell(false),
		XrayShaded:  NewCell(false),
		ClipObjects: NewCell(false),

		GroupCount:    NewCell(g.GroupCount()),
		InstanceCount: NewCell(it.InstanceCount()),
		DrawCount:     NewCell(g.DrawCount()),
	}
	for _, b := range g.Buffers() {
		switch d := b.Data.(type) {
		case []float32:
			v.Buffers[b.Name] = NewCell(d)
		case []uint32:
			v.Indices = NewCell(d)
		}
		v.usages[b.Name] = b.Usage
	}
	if t, ok := g.(interface {
		Textures() []gputypes.TextureDescriptor
	}); ok {
		v.Textures = t.Textures()
	}
	ro := &RenderObject{
		ID:     int(nextID.Add(1) - 1),
		Kind:   g.Kind(),
		Values: v,
		State:  NewCell(State{Visible: true, Pickable: true, Opaque: true, WriteDepth: true}),
	}
	UpdateValues(v, p)
	UpdateState(ro.State, p)
	return ro
}

// UpdateValues writes the value-tier parameters present in p into v and
// reports whether any cell changed. Cells whose value is unchanged keep
// their version.
func UpdateValues(v *Values, p params.Values) bool {
	changed := false
	setFloat := func(c *Cell[float32], name string) {
		if x, ok := params.Get[float64](p, name); ok {
			changed = c.Update(float32(x)) || changed
		}
	}
	setBool := func(c *Cell[bool], name string) {
		if x, ok := params.Get[bool](p, name); ok {
			changed = c.Update(x) || changed
		}
	}
	setFloat(v.Alpha, "alpha")
	setFloat(v.SizeFactor, "sizeFactor")
	setBool(v.DoubleSided, "doubleSided")
	setBool(v.FlatShaded, "flatShaded")
	setBool(v.IgnoreLight, "ignoreLight")
	setBool(v.XrayShaded, "xrayShaded")
	setBool(v.ClipObjects, "clip")
	return changed
}

// UpdateState derives the pipeline state from p and reports whether it
// changed. A render object is opaque only when fully opaque and not x-ray
// shaded; only opaque objects write depth.
func UpdateState(s *Cell[State], p params.Values) bool {
	st := s.Ref()
	if x, ok := params.Get[bool](p, "visible"); ok {
		st.Visible = x
	}
	if x, ok := params.Get[bool](p, "pickable"); ok {
		st.Pickable = x
	}
	alpha, hasAlpha := params.Get[float64](p, "alpha")
	xray, hasXray := params.Get[bool](p, "xrayShaded")
	if hasAlpha || hasXray {
		st.Opaque = (!hasAlpha || alpha >= 1) && !xray
		st.WriteDepth = st.Opaque
	}
	return s.Update(st)
}

// BufferDescriptor describes one upload.
type BufferDescriptor struct {
	Name    string
	Usage   gputypes.BufferUsage
	Size    uint64
	Version int
}

const (
	vertexUsage  = gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	storageUsage = gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
)

// BufferDescriptors lists every buffer of the render object in a stable
// order: geometry buffers sorted by name, indices, then attributes.
func (o *RenderObject) BufferDescriptors() []BufferDescriptor {
	v := o.Values
	names := make([]string, 0, len(v.Buffers))
	for name := range v.Buffers {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]BufferDescriptor, 0, len(names)+5)
	for _, name := range names {
		c := v.Buffers[name]
		out = append(out, BufferDescriptor{Name: name, Usage: v.usages[name], Size: floatBytes(c.Ref()), Version: c.Version()})
	}
	if idx := v.Indices.Ref(); len(idx) > 0 {
		out = append(out, BufferDescriptor{Name: "indices", Usage: v.usages["indices"], Size: uint64(len(idx)) * 4, Version: v.Indices.Version()})
	}
	out = append(out,
		BufferDescriptor{Name: "color", Usage: storageUsage, Size: floatBytes(v.Color.Ref()), Version: v.Color.Version()},
		BufferDescriptor{Name: "marker", Usage: storageUsage, Size: uint64(len(v.Marker.Ref())), Version: v.Marker.Version()},
		BufferDescriptor{Name: "transform", Usage: vertexUsage, Size: floatBytes(v.Transform.Ref()), Version: v.Transform.Version()},
	)
	if size := v.Size.Ref(); size != nil {
		out = append(out, BufferDescriptor{Name: "size", Usage: storageUsage, Size: floatBytes(size), Version: v.Size.Version()})
	}
	return out
}

// PrimitiveState returns the primitive state for the render pipeline.
// Double sided objects are not culled.
func (o *RenderObject) PrimitiveState() gputypes.PrimitiveState {
	cull := gputypes.CullModeBack
	if o.Values.DoubleSided.Ref() || o.Kind != geometry.KindMesh && o.Kind != geometry.KindTextureMesh {
		cull = gputypes.CullModeNone
	}
	return gputypes.PrimitiveState{
		Topology:  o.Values.Topology,
		FrontFace: gputypes.FrontFaceCCW,
		CullMode:  cull,
	}
}

// BlendState returns replace blending for opaque objects and alpha
// blending otherwise.
func (o *RenderObject) BlendState() gputypes.BlendState {
	if o.State.Ref().Opaque {
		return gputypes.BlendStateReplace()
	}
	return gputypes.BlendStateAlpha()
}

// Mark applies action to the marker ranges of o and bumps the marker
// version if any entry changed. Ranges are [start, end) pairs.
func (o *RenderObject) Mark(ranges [][2]int, action MarkerAction) bool {
	markers := slices.Clone(o.Values.Marker.Ref())
	changed := false
	for _, r := range ranges {
		changed = ApplyMarkerAction(markers, r[0], r[1], action) || changed
	}
	if changed {
		o.Values.Marker.Set(markers)
	}
	return changed
}

func floatBytes(f []float32) uint64 { return uint64(len(f)) * 4 }
