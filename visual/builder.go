package visual

import (
	"github.com/gogpu/molvis/geometry"
	"github.com/gogpu/molvis/location"
	"github.com/gogpu/molvis/loci"
	"github.com/gogpu/molvis/params"
	"github.com/gogpu/molvis/structure"
	"github.com/gogpu/molvis/task"
)

// Target is what a visual is built for: a whole structure, or one unit
// group of it when Group is set.
type Target struct {
	Structure *structure.Structure
	Group     *structure.UnitGroup
}

// ComplexTarget returns a target covering every unit of s.
func ComplexTarget(s *structure.Structure) Target {
	return Target{Structure: s}
}

// UnitsTarget returns a target covering the unit group g of s.
func UnitsTarget(s *structure.Structure, g *structure.UnitGroup) Target {
	return Target{Structure: s, Group: g}
}

// IsUnits reports whether t targets a single unit group.
func (t Target) IsUnits() bool { return t.Group != nil }

// Attribute flags the per-group buffers a geometry kind consumes besides
// color and markers.
type Attribute uint8

// Attributes.
const (
	// AttributeSize marks kinds that scale primitives by a per-group size
	// buffer instead of baking sizes into the geometry.
	AttributeSize Attribute = 1 << iota
)

// Builder creates the geometry of one kind of visual. A Visual is generic
// over its Builder; builders hold no per-visual state and may be shared.
type Builder interface {
	// Name is the registry name of the builder.
	Name() string

	// Kind is the geometry kind CreateGeometry returns.
	Kind() geometry.Kind

	// Params lists the parameters the builder understands together with
	// their update tiers.
	Params() params.Definitions

	// CreateGeometry builds the geometry for t. prev is a geometry of the
	// same kind that is no longer displayed; its buffers may be reused.
	// Implementations call ctx.Step at their checkpoints and return the
	// error it reports.
	CreateGeometry(ctx *task.Context, t Target, p params.Values, prev geometry.Geometry) (geometry.Geometry, error)

	// CreateLocationIterator returns an iterator whose group order matches
	// the group ids written by CreateGeometry.
	CreateLocationIterator(t Target) *location.Iterator

	// GetLoci maps a picked group back to structure elements.
	GetLoci(id location.PickingID, t Target) loci.Loci

	// Attributes reports the extra attribute buffers the geometry uses.
	Attributes() Attribute
}
