// Package structure provides the immutable structure snapshot consumed by
// the visual engine.
//
// A [Structure] holds atoms, residues, chains and units for one timestep.
// It is assembled with a [Builder] and never mutated afterwards; a
// structural change produces a new snapshot with a new [Structure.Version].
// Units partition the structure into substructures (one per chain and
// symmetry operator). Units that share their elements and differ only by
// operator form a [UnitGroup] and are drawn as instances of one geometry.
package structure
