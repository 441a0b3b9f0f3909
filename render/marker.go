package render

import "fmt"

// Marker bits stored per group and instance.
const (
	MarkerNone        uint8 = 0
	MarkerHighlighted uint8 = 1
	MarkerSelected    uint8 = 2
)

// MarkerAction changes the marker of a range of groups.
type MarkerAction uint8

// Marker actions.
const (
	MarkerHighlight MarkerAction = iota
	MarkerRemoveHighlight
	MarkerSelect
	MarkerDeselect
	MarkerToggle
	MarkerClear
)

// String returns the action name.
func (a MarkerAction) String() string {
	switch a {
	case MarkerHighlight:
		return "highlight"
	case MarkerRemoveHighlight:
		return "remove-highlight"
	case MarkerSelect:
		return "select"
	case MarkerDeselect:
		return "deselect"
	case MarkerToggle:
		return "toggle"
	case MarkerClear:
		return "clear"
	default:
		return fmt.Sprintf("MarkerAction(%d)", a)
	}
}

// ApplyMarkerAction applies action to markers[start:end] and reports
// whether any entry changed. The range is clamped to the array.
func ApplyMarkerAction(markers []uint8, start, end int, action MarkerAction) bool {
	start = max(start, 0)
	end = min(end, len(markers))
	changed := false
	for i := start; i < end; i++ {
		v := markers[i]
		switch action {
		case MarkerHighlight:
			v |= MarkerHighlighted
		case MarkerRemoveHighlight:
			v &^= MarkerHighlighted
		case MarkerSelect:
			v |= MarkerSelected
		case MarkerDeselect:
			v &^= MarkerSelected
		case MarkerToggle:
			v ^= MarkerSelected
		case MarkerClear:
			v = MarkerNone
		}
		if v != markers[i] {
			markers[i] = v
			changed = true
		}
	}
	return changed
}
