package location

import (
	"sort"

	"github.com/gogpu/molvis/loci"
	"github.com/gogpu/molvis/structure"
)

// Iterator enumerates the locations of a geometry's groups.
//
// Iteration is group-major within instance: every group of instance 0,
// then every group of instance 1 and so on. The order is deterministic and
// index-aligned with the group ids the geometry builder wrote. Reset
// restarts iteration without allocating.
//
//	for it.HasNext() {
//	    l := it.Move()
//	    colors[it.InstanceIndex*it.GroupCount()+it.GroupIndex] = ...
//	}
type Iterator struct {
	GroupIndex    int
	InstanceIndex int
	IsSecondary   bool

	groupCount    int
	instanceCount int
	next          int
	at            func(group, instance int) Location
}

// New returns an iterator over groupCount groups repeated for
// instanceCount instances. at resolves a (group, instance) pair and must be
// pure.
func New(groupCount, instanceCount int, at func(group, instance int) Location) *Iterator {
	if instanceCount < 1 {
		instanceCount = 1
	}
	return &Iterator{
		groupCount:    groupCount,
		instanceCount: instanceCount,
		at:            at,
	}
}

// GroupCount returns the number of groups per instance.
func (it *Iterator) GroupCount() int { return it.groupCount }

// InstanceCount returns the number of instances.
func (it *Iterator) InstanceCount() int { return it.instanceCount }

// Count returns the total number of locations.
func (it *Iterator) Count() int { return it.groupCount * it.instanceCount }

// HasNext reports whether Move will return another location.
func (it *Iterator) HasNext() bool { return it.next < it.Count() }

// Move advances to the next location and returns it.
func (it *Iterator) Move() Location {
	it.GroupIndex = it.next % it.groupCount
	it.InstanceIndex = it.next / it.groupCount
	it.next++
	return it.at(it.GroupIndex, it.InstanceIndex)
}

// Reset restarts iteration.
func (it *Iterator) Reset() {
	it.next = 0
	it.GroupIndex = 0
	it.InstanceIndex = 0
}

// LocationAt returns the location of a group without moving the iterator.
// Out of range indices return the zero Location.
func (it *Iterator) LocationAt(group, instance int) Location {
	if group < 0 || group >= it.groupCount || instance < 0 || instance >= it.instanceCount {
		return Location{}
	}
	return it.at(group, instance)
}

// Loci returns loci for a picked group, or loci.Empty when the ids are out
// of range.
func (it *Iterator) Loci(instance, group int) loci.Loci {
	return it.LocationAt(group, instance).Loci()
}

// ElementIterator enumerates every atom of every unit of s as one group,
// unit by unit.
func ElementIterator(s *structure.Structure) *Iterator {
	units := s.Units()
	offsets := make([]int, len(units)+1)
	for i, u := range units {
		offsets[i+1] = offsets[i] + u.ElementCount()
	}
	return New(offsets[len(units)], 1, func(group, _ int) Location {
		ui := sort.Search(len(units), func(i int) bool { return offsets[i+1] > group })
		u := units[ui]
		el := u.Elements[group-offsets[ui]]
		return Location{
			Structure:   s,
			Unit:        u,
			Element:     el,
			Residue:     int32(s.Atom(el).Residue),
			Granularity: Element,
		}
	})
}

// ResidueIterator enumerates every residue of every unit of s as one
// group, unit by unit.
func ResidueIterator(s *structure.Structure) *Iterator {
	units := s.Units()
	offsets := make([]int, len(units)+1)
	for i, u := range units {
		start, end := s.UnitResidues(u)
		offsets[i+1] = offsets[i] + end - start
	}
	return New(offsets[len(units)], 1, func(group, _ int) Location {
		ui := sort.Search(len(units), func(i int) bool { return offsets[i+1] > group })
		u := units[ui]
		start, _ := s.UnitResidues(u)
		r := start + group - offsets[ui]
		return Location{
			Structure:   s,
			Unit:        u,
			Element:     s.TraceAtom(r),
			Residue:     int32(r),
			Granularity: Residue,
		}
	})
}

// UnitElementIterator enumerates the atoms of the group leader, one
// instance per unit of g.
func UnitElementIterator(s *structure.Structure, g *structure.UnitGroup) *Iterator {
	elements := g.Leader().Elements
	return New(len(elements), len(g.Units), func(group, instance int) Location {
		el := elements[group]
		return Location{
			Structure:   s,
			Unit:        g.Units[instance],
			Element:     el,
			Residue:     int32(s.Atom(el).Residue),
			Granularity: Element,
		}
	})
}

// UnitResidueIterator enumerates the residues of the group leader, one
// instance per unit of g.
func UnitResidueIterator(s *structure.Structure, g *structure.UnitGroup) *Iterator {
	start, end := s.UnitResidues(g.Leader())
	return New(end-start, len(g.Units), func(group, instance int) Location {
		r := start + group
		return Location{
			Structure:   s,
			Unit:        g.Units[instance],
			Element:     s.TraceAtom(r),
			Residue:     int32(r),
			Granularity: Residue,
		}
	})
}
