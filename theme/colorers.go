package theme

import (
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/molvis/location"
	"github.com/gogpu/molvis/structure"
)

// rgb converts 0xRRGGBB to an opaque color.
func rgb(hex uint32) gputypes.Color {
	return gputypes.Color{
		R: float64(hex>>16&0xff) / 255,
		G: float64(hex>>8&0xff) / 255,
		B: float64(hex&0xff) / 255,
		A: 1,
	}
}

// DefaultPalette is used by categorical themes without a palette.
var DefaultPalette = []gputypes.Color{
	rgb(0x1b9e77), rgb(0xd95f02), rgb(0x7570b3), rgb(0xe7298a),
	rgb(0x66a61e), rgb(0xe6ab02), rgb(0xa6761d), rgb(0x666666),
	rgb(0x1f78b4), rgb(0xb2df8a), rgb(0xfb9a99), rgb(0xcab2d6),
}

func paletteOr(p []gputypes.Color) []gputypes.Color {
	if len(p) == 0 {
		return DefaultPalette
	}
	return p
}

type uniformColorer gputypes.Color

func (c uniformColorer) Color(location.Location) gputypes.Color { return gputypes.Color(c) }
func (uniformColorer) Type() ColorType                          { return ColorTypeUniform }

type paletteColorer struct {
	palette []gputypes.Color
	key     func(location.Location) int
	typ     ColorType
}

func (c paletteColorer) Color(l location.Location) gputypes.Color {
	if !l.IsValid() {
		return c.palette[0]
	}
	return c.palette[c.key(l)%len(c.palette)]
}

func (c paletteColorer) Type() ColorType {
	if c.typ == ColorTypeUniform {
		return ColorTypeGroup
	}
	return c.typ
}

// cpk holds Jmol element colors.
var cpk = map[string]gputypes.Color{
	"H":  rgb(0xffffff),
	"C":  rgb(0x909090),
	"N":  rgb(0x3050f8),
	"O":  rgb(0xff0d0d),
	"F":  rgb(0x90e050),
	"NA": rgb(0xab5cf2),
	"MG": rgb(0x8aff00),
	"P":  rgb(0xff8000),
	"S":  rgb(0xffff30),
	"CL": rgb(0x1ff01f),
	"K":  rgb(0x8f40d4),
	"CA": rgb(0x3dff00),
	"FE": rgb(0xe06633),
	"ZN": rgb(0x7d80b0),
}

var unknownElement = rgb(0xff1493)

type elementColorer struct{}

func (elementColorer) Color(l location.Location) gputypes.Color {
	if !l.IsValid() {
		return unknownElement
	}
	if c, ok := cpk[strings.ToUpper(l.Atom().Element)]; ok {
		return c
	}
	return unknownElement
}

func (elementColorer) Type() ColorType { return ColorTypeGroup }

// residueColors follows the amino acid colors of RasMol.
var residueColors = map[string]gputypes.Color{
	"ALA": rgb(0xc8c8c8), "ARG": rgb(0x145aff), "ASN": rgb(0x00dcdc),
	"ASP": rgb(0xe60a0a), "CYS": rgb(0xe6e600), "GLN": rgb(0x00dcdc),
	"GLU": rgb(0xe60a0a), "GLY": rgb(0xebebeb), "HIS": rgb(0x8282d2),
	"ILE": rgb(0x0f820f), "LEU": rgb(0x0f820f), "LYS": rgb(0x145aff),
	"MET": rgb(0xe6e600), "PHE": rgb(0x3232aa), "PRO": rgb(0xdc9682),
	"SER": rgb(0xfa9600), "THR": rgb(0xfa9600), "TRP": rgb(0xb45ab4),
	"TYR": rgb(0x3232aa), "VAL": rgb(0x0f820f),
}

var otherResidue = rgb(0xbea06e)

type residueColorer struct{}

func (residueColorer) Color(l location.Location) gputypes.Color {
	if !l.IsValid() {
		return otherResidue
	}
	if c, ok := residueColors[l.ResidueInfo().Name]; ok {
		return c
	}
	return otherResidue
}

func (residueColorer) Type() ColorType { return ColorTypeGroup }

var (
	gradientStart = rgb(0x0000ff)
	gradientEnd   = rgb(0xff0000)
)

// sequenceColorer interpolates from blue to red over the seq id range of
// each chain.
type sequenceColorer struct {
	lo, hi []int
}

func newSequenceColorer(s *structure.Structure) sequenceColorer {
	c := sequenceColorer{lo: make([]int, len(s.Chains())), hi: make([]int, len(s.Chains()))}
	for i, ch := range s.Chains() {
		for r := ch.ResidueStart; r < ch.ResidueEnd; r++ {
			id := s.Residue(r).SeqID
			if r == ch.ResidueStart || id < c.lo[i] {
				c.lo[i] = id
			}
			if r == ch.ResidueStart || id > c.hi[i] {
				c.hi[i] = id
			}
		}
	}
	return c
}

func (c sequenceColorer) Color(l location.Location) gputypes.Color {
	if !l.IsValid() || l.Unit.Chain >= len(c.lo) {
		return gradientStart
	}
	lo, hi := c.lo[l.Unit.Chain], c.hi[l.Unit.Chain]
	if hi == lo {
		return gradientStart
	}
	t := float64(l.ResidueInfo().SeqID-lo) / float64(hi-lo)
	return lerp(gradientStart, gradientEnd, t)
}

func (sequenceColorer) Type() ColorType { return ColorTypeGroup }

func lerp(a, b gputypes.Color, t float64) gputypes.Color {
	return gputypes.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}
