package repr

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/molvis"
	"github.com/gogpu/molvis/structure"
)

// ErrUnknownUnit is returned when a transform targets a unit that is not
// part of the bound structure.
var ErrUnknownUnit = errors.New("repr: unknown unit")

// UnitTransforms holds per-unit transforms that replace the unit operators
// of units visuals, e.g. while the user drags a chain around. Every change
// bumps Version; visuals compare it with the version they last applied.
//
// UnitTransforms is safe for concurrent use.
type UnitTransforms struct {
	mu        sync.RWMutex
	version   int
	structure *structure.Structure
	overrides map[int]mgl32.Mat4
}

// NewUnitTransforms returns an empty set with version -1.
func NewUnitTransforms() *UnitTransforms {
	return &UnitTransforms{version: -1, overrides: make(map[int]mgl32.Mat4)}
}

// Version returns the number of changes so far, or -1 when the set was
// never changed.
func (u *UnitTransforms) Version() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.version
}

// Transform returns the override of unitID.
func (u *UnitTransforms) Transform(unitID int) (mgl32.Mat4, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	m, ok := u.overrides[unitID]
	return m, ok
}

// Set overrides the transform of unitID. Units of a structure other than
// the one bound by Reset are rejected.
func (u *UnitTransforms) Set(unitID int, m mgl32.Mat4) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.structure != nil {
		if _, ok := u.structure.Unit(unitID); !ok {
			molvis.Logger().Warn("repr: transform for unknown unit", "unit", unitID)
			return fmt.Errorf("%w: %d", ErrUnknownUnit, unitID)
		}
	}
	u.overrides[unitID] = m
	u.version++
	return nil
}

// Reset drops every override and binds the set to s. It counts as a change
// only if there was something to drop.
func (u *UnitTransforms) Reset(s *structure.Structure) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.structure = s
	if len(u.overrides) == 0 {
		return
	}
	clear(u.overrides)
	u.version++
}

// Len returns the number of overridden units.
func (u *UnitTransforms) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.overrides)
}
