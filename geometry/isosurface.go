package geometry

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/molvis/task"
)

// cubeCorners lists the corner offsets of a grid cell; bit i of a corner
// mask refers to cubeCorners[i].
var cubeCorners = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
}

// cubeEdges lists the 12 cell edges as corner pairs.
var cubeEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Isosurface extracts the surface where g crosses iso with surface nets:
// one vertex per cell that straddles the surface, placed at the mean of its
// edge crossings, and one quad per grid edge crossing the surface. Vertex
// normals point away from higher density; each vertex takes the group of
// the nearest grid point. prev is reused when it is a *Mesh.
//
// The extraction checks ctx once per z slice.
func Isosurface(ctx *task.Context, g *Grid, iso float32, prev Geometry) (*Mesh, error) {
	nx, ny, nz := g.Dims[0], g.Dims[1], g.Dims[2]
	if nx < 2 || ny < 2 || nz < 2 {
		return NewMeshBuilder(0, 0, prev).Mesh(), nil
	}
	cx, cy := nx-1, ny-1
	cells := make([]int32, cx*cy*(nz-1))
	for i := range cells {
		cells[i] = -1
	}
	cell := func(x, y, z int) int { return x + cx*(y+cy*z) }

	b := NewMeshBuilder(len(g.Data)/8, len(g.Data)/4, prev)
	groupCount := 0
	for _, gr := range g.Groups {
		groupCount = max(groupCount, int(gr)+1)
	}

	// Vertices.
	for z := 0; z < nz-1; z++ {
		if err := ctx.Step("isosurface vertices", z, nz-1); err != nil {
			return nil, err
		}
		for y := 0; y < ny-1; y++ {
			for x := 0; x < nx-1; x++ {
				var vals [8]float32
				mask := 0
				for i, o := range cubeCorners {
					vals[i] = g.Data[g.Index(x+o[0], y+o[1], z+o[2])]
					if vals[i] > iso {
						mask |= 1 << i
					}
				}
				if mask == 0 || mask == 0xff {
					continue
				}
				var sum mgl32.Vec3
				crossings := 0
				for _, e := range cubeEdges {
					a, c := e[0], e[1]
					if (mask>>a)&1 == (mask>>c)&1 {
						continue
					}
					t := (iso - vals[a]) / (vals[c] - vals[a])
					pa := mgl32.Vec3{float32(cubeCorners[a][0]), float32(cubeCorners[a][1]), float32(cubeCorners[a][2])}
					pc := mgl32.Vec3{float32(cubeCorners[c][0]), float32(cubeCorners[c][1]), float32(cubeCorners[c][2])}
					sum = sum.Add(pa.Add(pc.Sub(pa).Mul(t)))
					crossings++
				}
				local := sum.Mul(1 / float32(crossings))

				// Density gradient from the cell corners.
				grad := mgl32.Vec3{
					(vals[1] + vals[3] + vals[5] + vals[7]) - (vals[0] + vals[2] + vals[4] + vals[6]),
					(vals[2] + vals[3] + vals[6] + vals[7]) - (vals[0] + vals[1] + vals[4] + vals[5]),
					(vals[4] + vals[5] + vals[6] + vals[7]) - (vals[0] + vals[1] + vals[2] + vals[3]),
				}
				normal := mgl32.Vec3{0, 0, 1}
				if l := grad.Len(); l > 0 {
					normal = grad.Mul(-1 / l)
				}

				gx := x + int(math32.Round(local[0]))
				gy := y + int(math32.Round(local[1]))
				gz := z + int(math32.Round(local[2]))
				b.SetGroup(max(0, int(g.Groups[g.Index(gx, gy, gz)])))

				pos := g.Min.Add(mgl32.Vec3{float32(x), float32(y), float32(z)}.Add(local).Mul(g.Spacing))
				cells[cell(x, y, z)] = int32(b.AddVertex(pos, normal))
			}
		}
	}

	// Faces: every grid edge with a sign change is shared by four cells.
	for z := 0; z < nz; z++ {
		if err := ctx.Step("isosurface faces", z, nz); err != nil {
			return nil, err
		}
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				inside := g.Data[g.Index(x, y, z)] > iso
				// Edge along x: cells vary in y and z.
				if x < nx-1 && y > 0 && z > 0 && y < ny-1 && z < nz-1 &&
					inside != (g.Data[g.Index(x+1, y, z)] > iso) {
					quad(b, cells, inside,
						cell(x, y-1, z-1), cell(x, y, z-1), cell(x, y, z), cell(x, y-1, z))
				}
				// Edge along y: cells vary in z and x.
				if y < ny-1 && x > 0 && z > 0 && x < nx-1 && z < nz-1 &&
					inside != (g.Data[g.Index(x, y+1, z)] > iso) {
					quad(b, cells, inside,
						cell(x-1, y, z-1), cell(x-1, y, z), cell(x, y, z), cell(x, y, z-1))
				}
				// Edge along z: cells vary in x and y.
				if z < nz-1 && x > 0 && y > 0 && x < nx-1 && y < ny-1 &&
					inside != (g.Data[g.Index(x, y, z+1)] > iso) {
					quad(b, cells, inside,
						cell(x-1, y-1, z), cell(x, y-1, z), cell(x, y, z), cell(x-1, y, z))
				}
			}
		}
	}
	b.SetGroupCount(groupCount)
	return b.Mesh(), nil
}

// quad emits two triangles between four cell vertices, flipping the winding
// when the edge starts outside.
func quad(b *MeshBuilder, cells []int32, inside bool, c0, c1, c2, c3 int) {
	v0, v1, v2, v3 := cells[c0], cells[c1], cells[c2], cells[c3]
	if v0 < 0 || v1 < 0 || v2 < 0 || v3 < 0 {
		return
	}
	a, bb, c, d := uint32(v0), uint32(v1), uint32(v2), uint32(v3)
	if inside {
		b.AddTriangle(a, bb, c)
		b.AddTriangle(a, c, d)
	} else {
		b.AddTriangle(a, c, bb)
		b.AddTriangle(a, d, c)
	}
}
