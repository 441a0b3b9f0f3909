package structure

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// backbone lists the atoms generated for every synthetic residue, with
// their element and offset from the residue's helix point.
var backbone = []struct {
	name, element string
	offset        mgl32.Vec3
}{
	{"N", "N", mgl32.Vec3{-0.6, 0.9, 0}},
	{"CA", "C", mgl32.Vec3{0, 0, 0}},
	{"C", "C", mgl32.Vec3{1.3, 0.4, 0.2}},
	{"O", "O", mgl32.Vec3{1.9, 1.3, 0.6}},
}

var residueNames = []string{"ALA", "GLY", "SER", "LYS", "GLU", "LEU", "VAL", "THR", "ASP", "ARG"}

// SyntheticOptions configures Synthetic.
type SyntheticOptions struct {
	Chains   int
	Residues int

	// Operators adds symmetry copies of every chain.
	Operators []mgl32.Mat4

	// Kind is the unit kind of all chains.
	Kind UnitKind
}

// Synthetic builds an alpha-helical polypeptide assembly with four backbone
// atoms per residue. Chains are laid side by side along the x axis. It is
// meant for demos and tests.
func Synthetic(opts SyntheticOptions) (*Structure, error) {
	if opts.Chains <= 0 || opts.Residues <= 0 {
		return nil, fmt.Errorf("%w: %d chains of %d residues", ErrEmpty, opts.Chains, opts.Residues)
	}
	b := NewBuilder()
	for c := 0; c < opts.Chains; c++ {
		id := string(rune('A' + c%26))
		b.AddChainKind(id, "1", opts.Kind)
		for r := 0; r < opts.Residues; r++ {
			b.AddResidue(residueNames[r%len(residueNames)], r+1)
			// 3.6 residues per turn, 1.5 A rise, 2.3 A radius.
			angle := float32(r) * 2 * math32.Pi / 3.6
			center := mgl32.Vec3{
				float32(c)*20 + 2.3*math32.Cos(angle),
				2.3 * math32.Sin(angle),
				float32(r) * 1.5,
			}
			for _, a := range backbone {
				b.AddAtom(a.name, a.element, center.Add(a.offset))
			}
		}
	}
	for _, m := range opts.Operators {
		b.AddOperator(m)
	}
	return b.Build()
}
