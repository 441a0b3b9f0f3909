// Package loci describes references to structural elements independent of
// any geometry.
package loci

import (
	"sort"

	"github.com/gogpu/molvis/structure"
)

// Loci is a reference to zero or more structural elements.
//
// Implementations are [Empty], [Every] and [*Elements].
type Loci interface {
	// Kind returns a short name of the loci kind.
	Kind() string
}

// EmptyLoci references nothing.
type EmptyLoci struct{}

// Kind implements Loci.
func (EmptyLoci) Kind() string { return "empty" }

// EveryLoci references every element of every structure.
type EveryLoci struct{}

// Kind implements Loci.
func (EveryLoci) Kind() string { return "every" }

// Empty is the loci that references nothing.
var Empty Loci = EmptyLoci{}

// Every is the loci that references everything.
var Every Loci = EveryLoci{}

// UnitElements is the set of atoms of one unit.
type UnitElements struct {
	Unit    *structure.Unit
	Indices OrderedSet // global atom indices
}

// Elements references atoms of one structure, grouped by unit. Units are
// sorted by ID and never repeated.
type Elements struct {
	Structure *structure.Structure
	Units     []UnitElements
}

// Kind implements Loci.
func (*Elements) Kind() string { return "elements" }

// Size returns the number of (unit, atom) pairs.
func (e *Elements) Size() int {
	n := 0
	for _, u := range e.Units {
		n += u.Indices.Size()
	}
	return n
}

// Unit returns the atoms referenced in unit id.
func (e *Elements) Unit(id int) (OrderedSet, bool) {
	i := sort.Search(len(e.Units), func(i int) bool { return e.Units[i].Unit.ID >= id })
	if i < len(e.Units) && e.Units[i].Unit.ID == id {
		return e.Units[i].Indices, true
	}
	return nil, false
}

// NewElements returns loci for the given per-unit sets. Empty sets are
// dropped; if nothing remains the result is Empty.
func NewElements(s *structure.Structure, units ...UnitElements) Loci {
	out := make([]UnitElements, 0, len(units))
	for _, u := range units {
		if u.Indices.Size() > 0 {
			out = append(out, u)
		}
	}
	if len(out) == 0 {
		return Empty
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Unit.ID < out[j].Unit.ID })
	merged := out[:1]
	for _, u := range out[1:] {
		last := &merged[len(merged)-1]
		if last.Unit.ID == u.Unit.ID {
			last.Indices = last.Indices.Union(u.Indices)
			continue
		}
		merged = append(merged, u)
	}
	return &Elements{Structure: s, Units: merged}
}

// ForStructure references every atom of every unit of s.
func ForStructure(s *structure.Structure) Loci {
	units := make([]UnitElements, 0, len(s.Units()))
	for _, u := range s.Units() {
		units = append(units, UnitElements{Unit: u, Indices: OrderedSet(u.Elements)})
	}
	return NewElements(s, units...)
}

// ForChain references every atom of chain c in every unit built from it.
func ForChain(s *structure.Structure, c int) Loci {
	var units []UnitElements
	for _, u := range s.Units() {
		if u.Chain == c {
			units = append(units, UnitElements{Unit: u, Indices: OrderedSet(u.Elements)})
		}
	}
	return NewElements(s, units...)
}

// ForResidue references the atoms of residue r in unit u.
func ForResidue(s *structure.Structure, u *structure.Unit, r int) Loci {
	res := s.Residue(r)
	return NewElements(s, UnitElements{Unit: u, Indices: Range(int32(res.AtomStart), int32(res.AtomEnd))})
}

// ForAtom references atom a in unit u.
func ForAtom(s *structure.Structure, u *structure.Unit, a int32) Loci {
	return NewElements(s, UnitElements{Unit: u, Indices: OrderedSet{a}})
}

// IsEmpty reports whether l references nothing.
func IsEmpty(l Loci) bool {
	switch l := l.(type) {
	case nil, EmptyLoci:
		return true
	case *Elements:
		return l.Size() == 0
	default:
		return false
	}
}

// Size returns the number of referenced elements; Every has size -1.
func Size(l Loci) int {
	switch l := l.(type) {
	case *Elements:
		return l.Size()
	case EveryLoci:
		return -1
	default:
		return 0
	}
}

// Union combines two loci. Element loci of different structures cannot be
// combined; the first one wins.
func Union(a, b Loci) Loci {
	switch {
	case IsEmpty(a):
		return b
	case IsEmpty(b):
		return a
	}
	if _, ok := a.(EveryLoci); ok {
		return a
	}
	if _, ok := b.(EveryLoci); ok {
		return b
	}
	ea, okA := a.(*Elements)
	eb, okB := b.(*Elements)
	if !okA || !okB || ea.Structure != eb.Structure {
		return a
	}
	units := append(append([]UnitElements(nil), ea.Units...), eb.Units...)
	return NewElements(ea.Structure, units...)
}

// AreEqual reports whether a and b reference the same elements.
func AreEqual(a, b Loci) bool {
	if IsEmpty(a) || IsEmpty(b) {
		return IsEmpty(a) && IsEmpty(b)
	}
	if a.Kind() != b.Kind() {
		return false
	}
	ea, okA := a.(*Elements)
	eb, okB := b.(*Elements)
	if !okA || !okB {
		return true
	}
	if ea.Structure != eb.Structure || len(ea.Units) != len(eb.Units) {
		return false
	}
	for i := range ea.Units {
		if ea.Units[i].Unit.ID != eb.Units[i].Unit.ID || !ea.Units[i].Indices.Equal(eb.Units[i].Indices) {
			return false
		}
	}
	return true
}
