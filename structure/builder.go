package structure

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Builder assembles a Structure chain by chain.
//
//	b := structure.NewBuilder()
//	b.AddChain("A", "1")
//	b.AddResidue("ALA", 1)
//	b.AddAtom("CA", "C", mgl32.Vec3{0, 0, 0})
//	s, err := b.Build()
//
// The first error is sticky and reported by Build.
type Builder struct {
	atoms     []Atom
	residues  []Residue
	chains    []Chain
	operators []mgl32.Mat4
	err       error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddChain starts a new atomic chain and returns its index.
func (b *Builder) AddChain(id, entityID string) int {
	return b.AddChainKind(id, entityID, UnitAtomic)
}

// AddChainKind starts a new chain of the given unit kind and returns its
// index.
func (b *Builder) AddChainKind(id, entityID string, kind UnitKind) int {
	b.chains = append(b.chains, Chain{
		ID:           id,
		EntityID:     entityID,
		Kind:         kind,
		ResidueStart: len(b.residues),
		ResidueEnd:   len(b.residues),
	})
	return len(b.chains) - 1
}

// AddResidue starts a new residue in the current chain and returns its index.
func (b *Builder) AddResidue(name string, seqID int) int {
	if len(b.chains) == 0 {
		b.fail(ErrNoChain)
		return -1
	}
	b.residues = append(b.residues, Residue{
		Name:      name,
		SeqID:     seqID,
		Chain:     len(b.chains) - 1,
		AtomStart: len(b.atoms),
		AtomEnd:   len(b.atoms),
	})
	b.chains[len(b.chains)-1].ResidueEnd = len(b.residues)
	return len(b.residues) - 1
}

// AddAtom appends an atom to the current residue and returns its index.
func (b *Builder) AddAtom(name, element string, pos mgl32.Vec3) int {
	if len(b.chains) == 0 {
		b.fail(ErrNoChain)
		return -1
	}
	if len(b.residues) == 0 || b.residues[len(b.residues)-1].Chain != len(b.chains)-1 {
		b.fail(ErrNoResidue)
		return -1
	}
	b.atoms = append(b.atoms, Atom{
		Name:     name,
		Element:  element,
		Position: pos,
		Residue:  len(b.residues) - 1,
	})
	b.residues[len(b.residues)-1].AtomEnd = len(b.atoms)
	return len(b.atoms) - 1
}

// AddOperator adds a symmetry operator. Every chain yields one unit per
// operator; the identity operator is always present and comes first.
func (b *Builder) AddOperator(m mgl32.Mat4) {
	b.operators = append(b.operators, m)
}

// Build validates the accumulated data and returns the snapshot.
func (b *Builder) Build() (*Structure, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.atoms) == 0 {
		return nil, ErrEmpty
	}
	for i, r := range b.residues {
		if r.AtomCount() == 0 {
			return nil, fmt.Errorf("%w: residue %d (%s %d)", ErrEmptyResidue, i, r.Name, r.SeqID)
		}
	}

	s := &Structure{
		version:  versionCounter.Add(1),
		atoms:    b.atoms,
		residues: b.residues,
		chains:   b.chains,
		unitByID: make(map[int]*Unit),
		trace:    traceAtoms(b.atoms, b.residues),
	}

	operators := append([]mgl32.Mat4{mgl32.Ident4()}, b.operators...)
	groups := make([]*UnitGroup, len(b.chains))
	for op, m := range operators {
		for ci, c := range b.chains {
			if c.ResidueStart == c.ResidueEnd {
				continue
			}
			start := b.residues[c.ResidueStart].AtomStart
			end := b.residues[c.ResidueEnd-1].AtomEnd
			elements := make([]int32, 0, end-start)
			for a := start; a < end; a++ {
				elements = append(elements, int32(a))
			}
			u := &Unit{
				ID:          len(s.units),
				Kind:        c.Kind,
				Chain:       ci,
				InvariantID: ci,
				Elements:    elements,
				Operator:    m,
				identity:    op == 0 || m.ApproxEqual(mgl32.Ident4()),
			}
			s.units = append(s.units, u)
			s.unitByID[u.ID] = u
			if groups[ci] == nil {
				groups[ci] = &UnitGroup{InvariantID: ci}
			}
			groups[ci].Units = append(groups[ci].Units, u)
		}
	}
	for _, g := range groups {
		if g != nil {
			s.groups = append(s.groups, g)
		}
	}
	return s, nil
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func traceAtoms(atoms []Atom, residues []Residue) []int32 {
	trace := make([]int32, len(residues))
	for i, r := range residues {
		trace[i] = int32(r.AtomStart)
		for a := r.AtomStart; a < r.AtomEnd; a++ {
			if n := atoms[a].Name; n == "CA" || n == "P" {
				trace[i] = int32(a)
				break
			}
		}
	}
	return trace
}
