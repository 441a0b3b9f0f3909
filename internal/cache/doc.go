// Package cache provides a small generic LRU cache.
//
// The cache keeps at most a fixed number of entries and evicts the least
// recently used one on overflow. It backs the memoized shape templates of
// the geometry package and the shaped label runs of the label builder.
//
//	c := cache.New[string, []float32](64)
//	run := c.GetOrCreate("ALA 12", shape)
//	hits := c.Stats().Hits
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
