// Package molvis renders large biomolecular assemblies as GPU-drawable
// geometry that stays synchronized with an immutable, versioned structure
// snapshot.
//
// # Overview
//
// The heart of molvis is the visual lifecycle engine in package visual. A
// Visual owns one render object from creation to destruction. It asks a
// pluggable geometry builder for buffers, fills per-group attributes with a
// theme through a LocationIterator, and on every parameter change picks the
// cheapest update that is still correct:
//
//  1. Topology parameters (segment counts, element filters) cannot be
//     applied in place. Update reports that a rebuild is required.
//  2. A changed color theme recomputes only the color buffer.
//  3. Everything else (alpha, toggles, size factor) is written directly into
//     the render object's value and state cells.
//
// # Quick Start
//
//	s, _ := structure.NewBuilder()...Build()
//	r, _ := repr.NewByName("spacefill")
//	if err := r.Create(ctx, s, nil); err != nil {
//	    return err
//	}
//	_ = r.Update(ctx, params.Values{"colorTheme": theme.ChainID()})
//	r.Mark(loci.ForChain(s, 1), render.MarkerSelect)
//
// # Architecture
//
//   - structure: immutable snapshot (atoms, residues, chains, units)
//   - loci, location: element sets and the group-to-element mapping
//   - task: cooperative cancellation and progress
//   - params, theme: parameter sets compared by value, color/size themes
//   - geometry, builders: buffer sets per kind and their builders
//   - render: the backend-agnostic render object description
//   - visual, repr: the lifecycle engine and its aggregation
//
// # Logging
//
// molvis is silent by default. See [SetLogger].
package molvis

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
