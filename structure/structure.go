package structure

import (
	"errors"
	"hash/fnv"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// Errors returned by Builder.Build.
var (
	// ErrEmpty is returned when a structure has no atoms.
	ErrEmpty = errors.New("structure: no atoms")

	// ErrNoChain is returned when a residue or atom is added before any chain.
	ErrNoChain = errors.New("structure: residue or atom added before a chain")

	// ErrNoResidue is returned when an atom is added before any residue.
	ErrNoResidue = errors.New("structure: atom added before a residue")

	// ErrEmptyResidue is returned when a residue ends up without atoms.
	ErrEmptyResidue = errors.New("structure: residue without atoms")
)

// versionCounter hands out snapshot versions. Versions are unique across
// all snapshots built by this process.
var versionCounter atomic.Uint64

// Atom is a single atom of a structure.
type Atom struct {
	Name     string
	Element  string
	Position mgl32.Vec3
	Residue  int
}

// Residue is a contiguous range of atoms [AtomStart, AtomEnd).
type Residue struct {
	Name      string
	SeqID     int
	Chain     int
	AtomStart int
	AtomEnd   int
}

// AtomCount returns the number of atoms in the residue.
func (r Residue) AtomCount() int { return r.AtomEnd - r.AtomStart }

// Chain is a contiguous range of residues [ResidueStart, ResidueEnd).
type Chain struct {
	ID           string
	EntityID     string
	Kind         UnitKind
	ResidueStart int
	ResidueEnd   int
}

// Structure is an immutable snapshot of a biomolecular assembly.
//
// All accessors return shared data that must be treated as read-only.
// Structure is safe for concurrent use by any number of readers.
type Structure struct {
	version  uint64
	atoms    []Atom
	residues []Residue
	chains   []Chain
	units    []*Unit
	groups   []*UnitGroup
	unitByID map[int]*Unit
	trace    []int32
}

// Version returns the snapshot version. A new snapshot always has a
// greater version than any snapshot built before it.
func (s *Structure) Version() uint64 { return s.version }

// Atoms returns all atoms.
func (s *Structure) Atoms() []Atom { return s.atoms }

// Atom returns the atom at index i.
func (s *Structure) Atom(i int32) Atom { return s.atoms[i] }

// AtomCount returns the number of atoms.
func (s *Structure) AtomCount() int { return len(s.atoms) }

// Residues returns all residues.
func (s *Structure) Residues() []Residue { return s.residues }

// Residue returns the residue at index i.
func (s *Structure) Residue(i int) Residue { return s.residues[i] }

// ResidueCount returns the number of residues.
func (s *Structure) ResidueCount() int { return len(s.residues) }

// Chains returns all chains.
func (s *Structure) Chains() []Chain { return s.chains }

// Chain returns the chain at index i.
func (s *Structure) Chain(i int) Chain { return s.chains[i] }

// Units returns all units ordered by ID.
func (s *Structure) Units() []*Unit { return s.units }

// Unit returns the unit with the given ID.
func (s *Structure) Unit(id int) (*Unit, bool) {
	u, ok := s.unitByID[id]
	return u, ok
}

// UnitGroups returns the units grouped by invariant ID, ordered by the
// ID of each group's first unit.
func (s *Structure) UnitGroups() []*UnitGroup { return s.groups }

// TraceAtom returns the representative atom of a residue: CA for amino
// acids, P for nucleotides and the first atom otherwise.
func (s *Structure) TraceAtom(residue int) int32 { return s.trace[residue] }

// Position returns the position of atom i in the frame of unit u.
func (s *Structure) Position(u *Unit, i int32) mgl32.Vec3 {
	p := s.atoms[i].Position
	if u == nil || u.identity {
		return p
	}
	return u.Operator.Mul4x1(p.Vec4(1)).Vec3()
}

// UnitResidues returns the residue range [start, end) covered by unit u.
func (s *Structure) UnitResidues(u *Unit) (start, end int) {
	c := s.chains[u.Chain]
	return c.ResidueStart, c.ResidueEnd
}

// Hash returns a hash identifying the snapshot content layout: the number
// of atoms, residues and units together with the version.
func (s *Structure) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range []uint64{s.version, uint64(len(s.atoms)), uint64(len(s.residues)), uint64(len(s.units))} {
		for i := range buf {
			buf[i] = byte(v >> (8 * i))
		}
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// Container holds the latest snapshot of a structure. Producers call Update
// when a new timestep arrives; any number of consumers call Get without
// further coordination.
type Container struct {
	latest atomic.Pointer[Structure]
}

// Update stores s as the latest snapshot.
func (c *Container) Update(s *Structure) {
	c.latest.Store(s)
}

// Get returns the latest snapshot, or nil if none was stored.
func (c *Container) Get() *Structure {
	return c.latest.Load()
}
