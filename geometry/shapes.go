package geometry

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/molvis/internal/cache"
)

// Template is a unit shape centered at the origin.
type Template struct {
	Positions []float32
	Normals   []float32
	Indices   []uint32
}

// VertexCount returns the number of template vertices.
func (t *Template) VertexCount() int { return len(t.Positions) / 3 }

// MaxDetail is the highest icosphere subdivision level.
const MaxDetail = 4

var icospheres = cache.New[int, *Template](MaxDetail + 1)

// Icosphere returns a unit icosphere subdivided detail times. Results are
// cached and shared; callers must not modify them.
func Icosphere(detail int) *Template {
	detail = min(max(detail, 0), MaxDetail)
	return icospheres.GetOrCreate(detail, func() *Template { return newIcosphere(detail) })
}

func newIcosphere(detail int) *Template {
	const t = 1.618034 // golden ratio
	verts := []mgl32.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	for i := range verts {
		verts[i] = verts[i].Normalize()
	}
	faces := []uint32{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}
	for range detail {
		mid := make(map[[2]uint32]uint32)
		midpoint := func(a, b uint32) uint32 {
			key := [2]uint32{min(a, b), max(a, b)}
			if i, ok := mid[key]; ok {
				return i
			}
			verts = append(verts, verts[a].Add(verts[b]).Normalize())
			i := uint32(len(verts) - 1)
			mid[key] = i
			return i
		}
		next := make([]uint32, 0, len(faces)*4)
		for i := 0; i < len(faces); i += 3 {
			a, b, c := faces[i], faces[i+1], faces[i+2]
			ab, bc, ca := midpoint(a, b), midpoint(b, c), midpoint(c, a)
			next = append(next, a, ab, ca, b, bc, ab, c, ca, bc, ab, bc, ca)
		}
		faces = next
	}
	tpl := &Template{
		Positions: make([]float32, 0, len(verts)*3),
		Indices:   faces,
	}
	for _, v := range verts {
		tpl.Positions = append(tpl.Positions, v[0], v[1], v[2])
	}
	tpl.Normals = tpl.Positions
	return tpl
}

// IcosphereCacheStats reports hits and misses of the icosphere cache.
func IcosphereCacheStats() cache.Stats { return icospheres.Stats() }

// AddSphere appends an icosphere of the given radius.
func AddSphere(b *MeshBuilder, center mgl32.Vec3, radius float32, detail int) {
	b.AddTemplate(Icosphere(detail), center, radius)
}

// AddCylinder appends an open cylinder from start to end with the given
// number of radial segments. Caps close both ends when capped is set.
func AddCylinder(b *MeshBuilder, start, end mgl32.Vec3, radius float32, segments int, capped bool) {
	segments = max(segments, 3)
	axis := end.Sub(start)
	length := axis.Len()
	if length == 0 {
		return
	}
	dir := axis.Mul(1 / length)
	u := perpendicular(dir)
	v := dir.Cross(u)

	base := uint32(b.VertexCount())
	for i := range segments {
		a := 2 * math32.Pi * float32(i) / float32(segments)
		n := u.Mul(math32.Cos(a)).Add(v.Mul(math32.Sin(a)))
		b.AddVertex(start.Add(n.Mul(radius)), n)
		b.AddVertex(end.Add(n.Mul(radius)), n)
	}
	for i := range uint32(segments) {
		j := (i + 1) % uint32(segments)
		s0, e0 := base+2*i, base+2*i+1
		s1, e1 := base+2*j, base+2*j+1
		b.AddTriangle(s0, s1, e1)
		b.AddTriangle(s0, e1, e0)
	}
	if !capped {
		return
	}
	for _, c := range []struct {
		center mgl32.Vec3
		normal mgl32.Vec3
		flip   bool
	}{{start, dir.Mul(-1), true}, {end, dir, false}} {
		hub := b.AddVertex(c.center, c.normal)
		ring := uint32(b.VertexCount())
		for i := range segments {
			a := 2 * math32.Pi * float32(i) / float32(segments)
			n := u.Mul(math32.Cos(a)).Add(v.Mul(math32.Sin(a)))
			b.AddVertex(c.center.Add(n.Mul(radius)), c.normal)
		}
		for i := range uint32(segments) {
			j := (i + 1) % uint32(segments)
			if c.flip {
				b.AddTriangle(hub, ring+j, ring+i)
			} else {
				b.AddTriangle(hub, ring+i, ring+j)
			}
		}
	}
}

// perpendicular returns a unit vector orthogonal to d.
func perpendicular(d mgl32.Vec3) mgl32.Vec3 {
	ref := mgl32.Vec3{1, 0, 0}
	if math32.Abs(d[0]) > 0.9 {
		ref = mgl32.Vec3{0, 1, 0}
	}
	return d.Cross(ref).Normalize()
}
