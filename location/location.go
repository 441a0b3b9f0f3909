// Package location maps primitive groups of a geometry to structural
// elements.
//
// Every geometry stores a group id per primitive. An [Iterator] enumerates
// the [Location] behind each group id in the same order the geometry
// builder assigned them, so themes can fill per-group buffers and picking
// can turn a group id back into loci.
package location

import (
	"github.com/gogpu/molvis/loci"
	"github.com/gogpu/molvis/structure"
)

// Granularity is the kind of element a group stands for.
type Granularity uint8

// Granularities.
const (
	// Element groups map to single atoms.
	Element Granularity = iota

	// Residue groups map to whole residues.
	Residue
)

// String returns the granularity name.
func (g Granularity) String() string {
	if g == Residue {
		return "residue"
	}
	return "element"
}

// Location is one structural element as seen through a unit.
type Location struct {
	Structure   *structure.Structure
	Unit        *structure.Unit
	Element     int32 // global atom index; the trace atom for residues
	Residue     int32
	Granularity Granularity
}

// IsValid reports whether l points at an element.
func (l Location) IsValid() bool {
	return l.Structure != nil && l.Unit != nil
}

// Atom returns the atom at l.
func (l Location) Atom() structure.Atom {
	return l.Structure.Atom(l.Element)
}

// ResidueInfo returns the residue at l.
func (l Location) ResidueInfo() structure.Residue {
	return l.Structure.Residue(int(l.Residue))
}

// Chain returns the chain of l's unit.
func (l Location) Chain() structure.Chain {
	return l.Structure.Chain(l.Unit.Chain)
}

// Loci returns loci referencing the element at l.
func (l Location) Loci() loci.Loci {
	if !l.IsValid() {
		return loci.Empty
	}
	if l.Granularity == Residue {
		return loci.ForResidue(l.Structure, l.Unit, int(l.Residue))
	}
	return loci.ForAtom(l.Structure, l.Unit, l.Element)
}

// Intersects reports whether any atom at l is referenced by lc.
func (l Location) Intersects(lc loci.Loci) bool {
	if !l.IsValid() {
		return false
	}
	switch lc := lc.(type) {
	case loci.EveryLoci:
		return true
	case *loci.Elements:
		if lc.Structure != l.Structure {
			return false
		}
		set, ok := lc.Unit(l.Unit.ID)
		if !ok {
			return false
		}
		if l.Granularity == Residue {
			r := l.ResidueInfo()
			return set.HasAnyInRange(int32(r.AtomStart), int32(r.AtomEnd))
		}
		return set.Has(l.Element)
	default:
		return false
	}
}

// PickingID identifies one rendered primitive group: the render object, the
// instance within it and the group within the instance.
type PickingID struct {
	ObjectID   int
	InstanceID int
	GroupID    int
}
