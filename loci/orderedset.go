package loci

import "sort"

// OrderedSet is a sorted set of unique int32 values. The zero value is the
// empty set. OrderedSet values are immutable: every operation returns a new
// set and never modifies its operands.
type OrderedSet []int32

// NewOrderedSet returns the set of the given values, sorted and
// deduplicated.
func NewOrderedSet(values ...int32) OrderedSet {
	if len(values) == 0 {
		return nil
	}
	s := append(OrderedSet(nil), values...)
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
	out := s[:1]
	for _, v := range s[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// Range returns the set [start, end).
func Range(start, end int32) OrderedSet {
	if end <= start {
		return nil
	}
	s := make(OrderedSet, 0, end-start)
	for v := start; v < end; v++ {
		s = append(s, v)
	}
	return s
}

// Size returns the number of values.
func (s OrderedSet) Size() int { return len(s) }

// Has reports whether v is in the set.
func (s OrderedSet) Has(v int32) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= v })
	return i < len(s) && s[i] == v
}

// HasAnyInRange reports whether the set contains a value in [start, end).
func (s OrderedSet) HasAnyInRange(start, end int32) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= start })
	return i < len(s) && s[i] < end
}

// Union returns the values in s or t.
func (s OrderedSet) Union(t OrderedSet) OrderedSet {
	if len(s) == 0 {
		return t
	}
	if len(t) == 0 {
		return s
	}
	out := make(OrderedSet, 0, len(s)+len(t))
	i, j := 0, 0
	for i < len(s) && j < len(t) {
		switch {
		case s[i] < t[j]:
			out = append(out, s[i])
			i++
		case s[i] > t[j]:
			out = append(out, t[j])
			j++
		default:
			out = append(out, s[i])
			i++
			j++
		}
	}
	out = append(out, s[i:]...)
	return append(out, t[j:]...)
}

// Intersect returns the values in both s and t.
func (s OrderedSet) Intersect(t OrderedSet) OrderedSet {
	var out OrderedSet
	i, j := 0, 0
	for i < len(s) && j < len(t) {
		switch {
		case s[i] < t[j]:
			i++
		case s[i] > t[j]:
			j++
		default:
			out = append(out, s[i])
			i++
			j++
		}
	}
	return out
}

// Subtract returns the values in s that are not in t.
func (s OrderedSet) Subtract(t OrderedSet) OrderedSet {
	var out OrderedSet
	j := 0
	for _, v := range s {
		for j < len(t) && t[j] < v {
			j++
		}
		if j < len(t) && t[j] == v {
			continue
		}
		out = append(out, v)
	}
	return out
}

// AreIntersecting reports whether s and t share at least one value.
func (s OrderedSet) AreIntersecting(t OrderedSet) bool {
	i, j := 0, 0
	for i < len(s) && j < len(t) {
		switch {
		case s[i] < t[j]:
			i++
		case s[i] > t[j]:
			j++
		default:
			return true
		}
	}
	return false
}

// IsSuperset reports whether s contains every value of t.
func (s OrderedSet) IsSuperset(t OrderedSet) bool {
	if len(s) < len(t) {
		return false
	}
	return len(s.Intersect(t)) == len(t)
}

// Equal reports whether s and t hold the same values.
func (s OrderedSet) Equal(t OrderedSet) bool {
	if len(s) != len(t) {
		return false
	}
	for i := range s {
		if s[i] != t[i] {
			return false
		}
	}
	return true
}
