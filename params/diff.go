package params

// Change lists changed parameter names grouped by tier.
type Change struct {
	Topology []string
	Color    []string
	Size     []string
	Values   []string
}

// Empty reports whether nothing changed.
func (c Change) Empty() bool {
	return len(c.Topology)+len(c.Color)+len(c.Size)+len(c.Values) == 0
}

// Highest returns the most expensive tier touched by the change and whether
// anything changed at all.
func (c Change) Highest() (Tier, bool) {
	switch {
	case len(c.Topology) > 0:
		return TierTopology, true
	case len(c.Color) > 0:
		return TierColor, true
	case len(c.Size) > 0:
		return TierSize, true
	case len(c.Values) > 0:
		return TierValues, true
	default:
		return TierValues, false
	}
}

// Diff compares two parameter sets by value and classifies every changed
// name by its tier in defs.
func Diff(defs Definitions, old, new Values) Change {
	var c Change
	for _, name := range old.Changed(new) {
		switch defs.Tier(name) {
		case TierTopology:
			c.Topology = append(c.Topology, name)
		case TierColor:
			c.Color = append(c.Color, name)
		case TierSize:
			c.Size = append(c.Size, name)
		default:
			c.Values = append(c.Values, name)
		}
	}
	return c
}
