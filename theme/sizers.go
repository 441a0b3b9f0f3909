package theme

import (
	"strings"

	"github.com/gogpu/molvis/location"
)

// vdwRadii holds van der Waals radii in Angstrom.
var vdwRadii = map[string]float32{
	"H":  1.1,
	"C":  1.7,
	"N":  1.55,
	"O":  1.52,
	"F":  1.47,
	"P":  1.8,
	"S":  1.8,
	"CL": 1.75,
	"NA": 2.27,
	"MG": 1.73,
	"K":  2.75,
	"CA": 2.31,
	"FE": 2.0,
	"ZN": 1.39,
}

// DefaultRadius is the radius of elements without a tabulated value.
const DefaultRadius = 1.5

// VdwRadius returns the van der Waals radius of element.
func VdwRadius(element string) float32 {
	if r, ok := vdwRadii[strings.ToUpper(element)]; ok {
		return r
	}
	return DefaultRadius
}

type uniformSizer float32

func (s uniformSizer) Size(location.Location) float32 { return float32(s) }

type physicalSizer float32

func (s physicalSizer) Size(l location.Location) float32 {
	if !l.IsValid() {
		return DefaultRadius * float32(s)
	}
	return VdwRadius(l.Atom().Element) * float32(s)
}
