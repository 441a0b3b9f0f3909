package builders

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/cases"
	xlanguage "golang.org/x/text/language"

	"github.com/gogpu/molvis/geometry"
	"github.com/gogpu/molvis/internal/cache"
	"github.com/gogpu/molvis/location"
	"github.com/gogpu/molvis/loci"
	"github.com/gogpu/molvis/params"
	"github.com/gogpu/molvis/task"
	"github.com/gogpu/molvis/theme"
	"github.com/gogpu/molvis/visual"
)

// shapeSize is the em size text is shaped at. Glyph metrics come back in
// 26.6 fixed point, so shaping at 1 would lose most of the precision.
const shapeSize = 64

// DefaultShapeCacheSize is the number of shaped runs kept by the default
// shaper.
const DefaultShapeCacheSize = 4096

// Shaper shapes label text with HarfBuzz and caches the resulting glyph
// quads by text. It is safe for concurrent use.
type Shaper struct {
	font *font.Font
	pool sync.Pool
	runs *cache.Cache[string, []geometry.Glyph]
}

// NewShaper parses a TrueType or OpenType font and returns a shaper
// caching up to capacity runs.
func NewShaper(ttf []byte, capacity int) (*Shaper, error) {
	face, err := font.ParseTTF(bytes.NewReader(ttf))
	if err != nil {
		return nil, fmt.Errorf("builders: parse font: %w", err)
	}
	return &Shaper{
		font: face.Font,
		pool: sync.Pool{New: func() any { return &shaping.HarfbuzzShaper{} }},
		runs: cache.New[string, []geometry.Glyph](capacity),
	}, nil
}

var defaultShaper = sync.OnceValues(func() (*Shaper, error) {
	return NewShaper(goregular.TTF, DefaultShapeCacheSize)
})

// DefaultShaper returns the shared shaper using the Go regular font.
func DefaultShaper() (*Shaper, error) { return defaultShaper() }

// Shape returns the glyph quads of text in em units, horizontally centered
// on the origin with the baseline at y = 0. The returned slice is shared
// and must not be modified.
func (s *Shaper) Shape(text string) []geometry.Glyph {
	return s.runs.GetOrCreate(text, func() []geometry.Glyph { return s.shape(text) })
}

// CacheStats returns the statistics of the run cache.
func (s *Shaper) CacheStats() cache.Stats { return s.runs.Stats() }

func (s *Shaper) shape(text string) []geometry.Glyph {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	in := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(s.font),
		Size:      fixed.I(shapeSize),
		Script:    language.Latin,
		Language:  language.NewLanguage("en"),
	}
	hb := s.pool.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(in)
	s.pool.Put(hb)

	glyphs := make([]geometry.Glyph, 0, len(out.Glyphs))
	var pen float32
	for _, g := range out.Glyphs {
		if g.Width != 0 && g.Height != 0 {
			x0 := pen + toEm(g.XOffset+g.XBearing)
			top := toEm(g.YOffset + g.YBearing)
			gid := float32(g.GlyphID)
			glyphs = append(glyphs, geometry.Glyph{
				X0: x0, Y0: top + toEm(g.Height),
				X1: x0 + toEm(g.Width), Y1: top,
				U0: gid, V0: 0,
				U1: gid + 1, V1: 1,
			})
		}
		pen += toEm(g.Advance)
	}
	half := pen / 2
	for i := range glyphs {
		glyphs[i].X0 -= half
		glyphs[i].X1 -= half
	}
	return glyphs
}

func toEm(v fixed.Int26_6) float32 {
	return float32(v) / 64 / shapeSize
}

// Label cases.
const (
	CaseNone  = "none"
	CaseUpper = "upper"
	CaseLower = "lower"
	CaseTitle = "title"
)

// caser returns the letter case mapping for name, or nil for CaseNone.
// A cases.Caser is stateful, so every build gets its own.
func caser(name string) *cases.Caser {
	var c cases.Caser
	switch name {
	case CaseUpper:
		c = cases.Upper(xlanguage.English)
	case CaseLower:
		c = cases.Lower(xlanguage.English)
	case CaseTitle:
		c = cases.Title(xlanguage.English)
	default:
		return nil
	}
	return &c
}

// =============================================================================
// residue-label
// =============================================================================

// ResidueLabel draws a billboarded "NAME SEQ" label at the trace atom of
// every residue of a whole structure. Glyph quads are in world units;
// U is the glyph id plus the quad corner and V the corner, which a backend
// maps into its glyph atlas.
type ResidueLabel struct {
	// Shaper shapes the labels; nil uses DefaultShaper.
	Shaper *Shaper
}

// NewResidueLabel returns a label builder using the default shaper.
func NewResidueLabel() ResidueLabel { return ResidueLabel{} }

// Name implements visual.Builder.
func (ResidueLabel) Name() string { return ResidueLabelName }

// Kind implements visual.Builder.
func (ResidueLabel) Kind() geometry.Kind { return geometry.KindText }

// Params implements visual.Builder.
func (ResidueLabel) Params() params.Definitions {
	return baseParams().With(
		params.Numeric("labelSize", 1.5, 0.1, 20, params.TierTopology).
			WithDescription("Label height in Angstrom."),
		params.Select("labelCase", CaseNone, params.TierTopology, CaseNone, CaseUpper, CaseLower, CaseTitle),
		params.Boolean("labelChain", false, params.TierTopology).
			WithDescription("Prefix labels with the chain id."),
	)
}

func (b ResidueLabel) shaper() (*Shaper, error) {
	if b.Shaper != nil {
		return b.Shaper, nil
	}
	return DefaultShaper()
}

// LabelText returns the label of the residue at l.
func LabelText(l location.Location, withChain bool) string {
	r := l.ResidueInfo()
	if withChain {
		return fmt.Sprintf("%s:%s %d", l.Chain().ID, r.Name, r.SeqID)
	}
	return fmt.Sprintf("%s %d", r.Name, r.SeqID)
}

// CreateGeometry implements visual.Builder.
func (b ResidueLabel) CreateGeometry(ctx *task.Context, t visual.Target, p params.Values, prev geometry.Geometry) (geometry.Geometry, error) {
	sh, err := b.shaper()
	if err != nil {
		return nil, err
	}
	size := p.Float32("labelSize")
	withChain := p.Bool("labelChain")
	c := caser(p.String("labelCase"))

	it := residueIterator(t)
	n := it.GroupCount()
	tb := geometry.NewTextBuilder(n*8, prev)
	var scaled []geometry.Glyph
	for g := 0; g < n; g++ {
		if err := ctx.Step("residue labels", g, n); err != nil {
			return nil, err
		}
		l := it.LocationAt(g, 0)
		text := LabelText(l, withChain)
		if c != nil {
			text = c.String(text)
		}
		scaled = scaled[:0]
		for _, gl := range sh.Shape(text) {
			gl.X0, gl.Y0, gl.X1, gl.Y1 = gl.X0*size, gl.Y0*size, gl.X1*size, gl.Y1*size
			scaled = append(scaled, gl)
		}
		depth := theme.VdwRadius(l.Atom().Element)
		tb.Add(t.Structure.Position(l.Unit, l.Element), depth, scaled, g)
	}
	tb.SetGroupCount(n)
	return tb.Text(), nil
}

// CreateLocationIterator implements visual.Builder.
func (ResidueLabel) CreateLocationIterator(t visual.Target) *location.Iterator {
	return residueIterator(t)
}

// GetLoci implements visual.Builder.
func (ResidueLabel) GetLoci(id location.PickingID, t visual.Target) loci.Loci {
	return residueLoci(id, t)
}

// Attributes implements visual.Builder.
func (ResidueLabel) Attributes() visual.Attribute { return 0 }
