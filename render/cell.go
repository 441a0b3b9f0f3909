package render

import (
	"reflect"
	"sync"
)

// Cell is a versioned value. Set always bumps the version; Update bumps it
// only when the new value is not deeply equal to the current one.
//
// Cell is safe for concurrent use. Values stored in a cell must be treated
// as immutable by readers.
type Cell[T any] struct {
	mu      sync.RWMutex
	value   T
	version int
}

// NewCell returns a cell holding v at version 0.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

// Ref returns the current value.
func (c *Cell[T]) Ref() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Version returns the number of changes so far.
func (c *Cell[T]) Version() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Set stores v and bumps the version.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	c.version++
	c.mu.Unlock()
}

// Update stores v if it differs from the current value and reports whether
// it did.
func (c *Cell[T]) Update(v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if reflect.DeepEqual(c.value, v) {
		return false
	}
	c.value = v
	c.version++
	return true
}
