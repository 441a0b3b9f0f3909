package geometry

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/molvis/task"
)

// DensityOptions configures GaussianDensity.
type DensityOptions struct {
	// Resolution is the grid spacing in Angstrom.
	Resolution float32

	// RadiusOffset is added to every radius.
	RadiusOffset float32

	// Smoothness controls the falloff: density = exp(-smoothness * d²/r²).
	Smoothness float32
}

// DefaultDensityOptions returns the options used by the surface and volume
// builders.
func DefaultDensityOptions() DensityOptions {
	return DensityOptions{Resolution: 1, RadiusOffset: 0, Smoothness: 1.5}
}

// densityCutoff is the radius multiple beyond which contributions are
// ignored.
const densityCutoff = 3

// maxGridPoints bounds the grid size so a tiny resolution cannot exhaust
// memory.
const maxGridPoints = 1 << 26

// Grid is a regular density grid.
type Grid struct {
	Dims    [3]int
	Min     mgl32.Vec3
	Spacing float32

	// Data holds the density per grid point, x fastest.
	Data []float32

	// Groups holds, per grid point, the group id of the strongest
	// contribution, or -1.
	Groups []float32
}

// Index returns the offset of grid point (x, y, z).
func (g *Grid) Index(x, y, z int) int {
	return x + g.Dims[0]*(y+g.Dims[1]*z)
}

// Point returns the position of grid point (x, y, z).
func (g *Grid) Point(x, y, z int) mgl32.Vec3 {
	return g.Min.Add(mgl32.Vec3{float32(x), float32(y), float32(z)}.Mul(g.Spacing))
}

// Max returns the position of the last grid point.
func (g *Grid) Max() mgl32.Vec3 {
	return g.Point(g.Dims[0]-1, g.Dims[1]-1, g.Dims[2]-1)
}

// GaussianDensity sums a gaussian per center onto a grid enclosing all
// centers. groups assigns a group id to each center. prev is reused when
// its buffers are large enough.
//
// The build checks ctx once per center and returns task.ErrCancelled when
// cancelled.
func GaussianDensity(ctx *task.Context, centers []mgl32.Vec3, radii []float32, groups []int, opts DensityOptions, prev *Grid) (*Grid, error) {
	if len(centers) != len(radii) || len(centers) != len(groups) {
		return nil, fmt.Errorf("geometry: %d centers, %d radii, %d groups", len(centers), len(radii), len(groups))
	}
	if opts.Resolution <= 0 {
		return nil, fmt.Errorf("geometry: resolution %v must be positive", opts.Resolution)
	}
	if len(centers) == 0 {
		return &Grid{Spacing: opts.Resolution}, nil
	}

	maxR := float32(0)
	lo := centers[0]
	hi := centers[0]
	for i, c := range centers {
		maxR = max(maxR, radii[i]+opts.RadiusOffset)
		for k := range 3 {
			lo[k] = min(lo[k], c[k])
			hi[k] = max(hi[k], c[k])
		}
	}
	pad := maxR*densityCutoff + opts.Resolution
	lo = lo.Sub(mgl32.Vec3{pad, pad, pad})
	hi = hi.Add(mgl32.Vec3{pad, pad, pad})

	g := &Grid{Min: lo, Spacing: opts.Resolution}
	n := 1
	for k := range 3 {
		g.Dims[k] = int(math32.Ceil((hi[k]-lo[k])/opts.Resolution)) + 1
		n *= g.Dims[k]
	}
	if n > maxGridPoints {
		return nil, fmt.Errorf("geometry: density grid of %d points exceeds %d", n, maxGridPoints)
	}
	var old Grid
	if prev != nil {
		old = *prev
	}
	g.Data = reuse(old.Data, n)[:n]
	g.Groups = reuse(old.Groups, n)[:n]
	strongest := make([]float32, n)
	for i := range g.Data {
		g.Data[i] = 0
		g.Groups[i] = -1
	}

	inv := 1 / opts.Resolution
	for i, c := range centers {
		if err := ctx.Step("gaussian density", i, len(centers)); err != nil {
			return nil, err
		}
		r := radii[i] + opts.RadiusOffset
		if r <= 0 {
			continue
		}
		alpha := opts.Smoothness / (r * r)
		cut := r * densityCutoff
		cut2 := cut * cut
		local := c.Sub(lo).Mul(inv)
		var from, to [3]int
		for k := range 3 {
			from[k] = max(0, int(math32.Floor(local[k]-cut*inv)))
			to[k] = min(g.Dims[k]-1, int(math32.Ceil(local[k]+cut*inv)))
		}
		for z := from[2]; z <= to[2]; z++ {
			for y := from[1]; y <= to[1]; y++ {
				for x := from[0]; x <= to[0]; x++ {
					d := g.Point(x, y, z).Sub(c)
					d2 := d.Dot(d)
					if d2 > cut2 {
						continue
					}
					v := math32.Exp(-alpha * d2)
					idx := g.Index(x, y, z)
					g.Data[idx] += v
					if v > strongest[idx] {
						strongest[idx] = v
						g.Groups[idx] = float32(groups[i])
					}
				}
			}
		}
	}
	return g, nil
}
