package structure

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// UnitKind classifies the atoms of a unit.
type UnitKind uint8

// Unit kinds.
const (
	// UnitAtomic units have all-atom coordinates.
	UnitAtomic UnitKind = iota

	// UnitSpheres units are coarse grained with one sphere per element.
	UnitSpheres

	// UnitGaussians units are coarse grained with gaussian densities.
	UnitGaussians
)

// String returns the kind name as used in parameter sets.
func (k UnitKind) String() string {
	switch k {
	case UnitAtomic:
		return "atomic"
	case UnitSpheres:
		return "spheres"
	case UnitGaussians:
		return "gaussians"
	default:
		return "unknown"
	}
}

// UnitKindNames lists the names accepted by ParseUnitKind.
var UnitKindNames = []string{"atomic", "spheres", "gaussians"}

// ParseUnitKind returns the kind with the given name.
func ParseUnitKind(name string) (UnitKind, bool) {
	for i, n := range UnitKindNames {
		if n == name {
			return UnitKind(i), true
		}
	}
	return 0, false
}

// Unit is one chain of a structure placed by a symmetry operator.
type Unit struct {
	ID          int
	Kind        UnitKind
	Chain       int
	InvariantID int

	// Elements holds the sorted global atom indices of the unit.
	Elements []int32

	Operator mgl32.Mat4
	identity bool
}

// ElementCount returns the number of atoms in the unit.
func (u *Unit) ElementCount() int { return len(u.Elements) }

// IsIdentity reports whether the unit operator is the identity.
func (u *Unit) IsIdentity() bool { return u.identity }

// IndexOf returns the position of atom a in u.Elements, or -1.
func (u *Unit) IndexOf(a int32) int {
	i := sort.Search(len(u.Elements), func(i int) bool { return u.Elements[i] >= a })
	if i < len(u.Elements) && u.Elements[i] == a {
		return i
	}
	return -1
}

// UnitGroup is a set of units sharing the same elements. The first unit is
// the group leader whose elements define the group's geometry.
type UnitGroup struct {
	InvariantID int
	Units       []*Unit
}

// Leader returns the first unit of the group.
func (g *UnitGroup) Leader() *Unit { return g.Units[0] }

// Kind returns the kind of the group's units.
func (g *UnitGroup) Kind() UnitKind { return g.Units[0].Kind }

// Transforms returns the column-major operator of every unit, 16 floats per
// unit, in unit order.
func (g *UnitGroup) Transforms(dst []float32) []float32 {
	dst = dst[:0]
	for _, u := range g.Units {
		dst = append(dst, u.Operator[:]...)
	}
	return dst
}
