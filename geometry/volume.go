package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// unitCube holds the corners and triangles of the volume bounding box.
var (
	unitCube = []float32{
		0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0,
		0, 0, 1, 1, 0, 1, 0, 1, 1, 1, 1, 1,
	}
	unitCubeIndices = []uint32{
		0, 2, 1, 1, 2, 3, // -z
		4, 5, 6, 5, 7, 6, // +z
		0, 1, 4, 1, 5, 4, // -y
		2, 6, 3, 3, 6, 7, // +y
		0, 4, 2, 2, 4, 6, // -x
		1, 3, 5, 3, 7, 5, // +x
	}
)

// DirectVolume is a density grid drawn by ray marching its bounding box.
type DirectVolume struct {
	Grid      []float32 // density per voxel, x fastest
	GroupGrid []float32 // group id per voxel, -1 for empty space
	Dims      [3]int
	Min, Max  mgl32.Vec3

	groupCount int
}

// Kind implements Geometry.
func (v *DirectVolume) Kind() Kind { return KindDirectVolume }

// GroupCount implements Geometry.
func (v *DirectVolume) GroupCount() int { return v.groupCount }

// VertexCount implements Geometry and returns the number of voxels.
func (v *DirectVolume) VertexCount() int { return len(v.Grid) }

// DrawCount implements Geometry. The box is always 12 triangles.
func (v *DirectVolume) DrawCount() int { return len(unitCubeIndices) }

// Topology implements Geometry.
func (v *DirectVolume) Topology() gputypes.PrimitiveTopology {
	return gputypes.PrimitiveTopologyTriangleList
}

// VertexLayout implements Geometry.
func (v *DirectVolume) VertexLayout() []gputypes.VertexBufferLayout {
	return layout(vec3Attr)
}

// Buffers implements Geometry.
func (v *DirectVolume) Buffers() []Buffer {
	return []Buffer{
		vertexBuffer("boxPositions", unitCube),
		indexBuffer(unitCubeIndices),
		{Name: "grid", Data: v.Grid, Usage: storageUsage},
		{Name: "groupGrid", Data: v.GroupGrid, Usage: storageUsage},
	}
}

// Textures returns the descriptor of the 3D density texture.
func (v *DirectVolume) Textures() []gputypes.TextureDescriptor {
	return []gputypes.TextureDescriptor{{
		Label:         "grid",
		Size:          gputypes.NewExtent3D(uint32(max(v.Dims[0], 1)), uint32(max(v.Dims[1], 1)), uint32(max(v.Dims[2], 1))),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension3D,
		Format:        gputypes.TextureFormatR32Float,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	}}
}

// BoundingSphere implements Geometry.
func (v *DirectVolume) BoundingSphere() Sphere {
	c := v.Min.Add(v.Max).Mul(0.5)
	return Sphere{Center: c, Radius: v.Max.Sub(c).Len()}
}

// NewDirectVolume wraps a density grid. The grid slices are shared, not
// copied.
func NewDirectVolume(g *Grid) *DirectVolume {
	v := &DirectVolume{
		Grid:      g.Data,
		GroupGrid: g.Groups,
		Dims:      g.Dims,
		Min:       g.Min,
	}
	if len(g.Data) > 0 {
		v.Max = g.Max()
	}
	for _, gr := range g.Groups {
		v.groupCount = max(v.groupCount, int(gr)+1)
	}
	return v
}

// SetGroupCount overrides the group count.
func (v *DirectVolume) SetGroupCount(n int) { v.groupCount = n }
