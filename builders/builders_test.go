package builders

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/molvis/geometry"
	"github.com/gogpu/molvis/location"
	"github.com/gogpu/molvis/loci"
	"github.com/gogpu/molvis/params"
	"github.com/gogpu/molvis/render"
	"github.com/gogpu/molvis/structure"
	"github.com/gogpu/molvis/task"
	"github.com/gogpu/molvis/theme"
	"github.com/gogpu/molvis/visual"
)

func testStructure(t *testing.T) *structure.Structure {
	t.Helper()
	s, err := structure.Synthetic(structure.SyntheticOptions{
		Chains:    2,
		Residues:  4,
		Operators: []mgl32.Mat4{mgl32.Translate3D(40, 0, 0)},
	})
	if err != nil {
		t.Fatalf("Synthetic() error = %v", err)
	}
	return s
}

func targetFor(b visual.Builder, s *structure.Structure) visual.Target {
	if IsUnits(b.Name()) {
		return visual.UnitsTarget(s, s.UnitGroups()[0])
	}
	return visual.ComplexTarget(s)
}

func build(t *testing.T, b visual.Builder, tg visual.Target, p params.Values, prev geometry.Geometry) geometry.Geometry {
	t.Helper()
	g, err := b.CreateGeometry(task.Background(), tg, b.Params().Defaults().Merge(p), prev)
	if err != nil {
		t.Fatalf("%s: CreateGeometry() error = %v", b.Name(), err)
	}
	return g
}

// =============================================================================
// Registry
// =============================================================================

func TestNames(t *testing.T) {
	want := []string{
		"element-sphere", "residue-sphere", "element-spheres", "element-point",
		"polymer-trace", "polymer-tube", "residue-label", "gaussian-surface", "gaussian-volume",
	}
	if got := Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestGet(t *testing.T) {
	for _, name := range Names() {
		b, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", name, err)
		}
		if b.Name() != name {
			t.Errorf("Get(%q).Name() = %q", name, b.Name())
		}
	}
	if _, err := Get("cartoon"); !errors.Is(err, ErrUnknown) {
		t.Errorf("Get(cartoon) error = %v, want ErrUnknown", err)
	}
}

func TestRegister(t *testing.T) {
	Register("zz-test", func() visual.Builder { return ElementPoint{} })
	t.Cleanup(func() { registry.Unregister("zz-test") })
	names := Names()
	if names[len(names)-1] != "zz-test" {
		t.Errorf("Names() = %v, want zz-test last", names)
	}
}

// =============================================================================
// Builder contract
// =============================================================================

func TestBuilders_Contract(t *testing.T) {
	s := testStructure(t)
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			b, _ := Get(name)
			defs := b.Params()
			if err := defs.Validate(defs.Defaults()); err != nil {
				t.Fatalf("defaults invalid: %v", err)
			}
			tg := targetFor(b, s)
			g := build(t, b, tg, nil, nil)
			if g.Kind() != b.Kind() {
				t.Errorf("Kind() = %v, want %v", g.Kind(), b.Kind())
			}
			it := b.CreateLocationIterator(tg)
			if g.GroupCount() != it.GroupCount() {
				t.Errorf("GroupCount() = %d, iterator groups = %d", g.GroupCount(), it.GroupCount())
			}
			if g.DrawCount() == 0 {
				t.Error("DrawCount() = 0")
			}
			for _, buf := range g.Buffers() {
				if buf.Name != "groups" && buf.Name != "groupGrid" {
					continue
				}
				for _, gr := range buf.Data.([]float32) {
					if int(gr) >= g.GroupCount() || gr < -1 {
						t.Fatalf("%s holds group %v of %d", buf.Name, gr, g.GroupCount())
					}
				}
			}
			for inst := 0; inst < it.InstanceCount(); inst++ {
				for gr := 0; gr < it.GroupCount(); gr++ {
					l := b.GetLoci(location.PickingID{InstanceID: inst, GroupID: gr}, tg)
					e, ok := l.(*loci.Elements)
					if !ok || e.Structure != s {
						t.Fatalf("GetLoci(%d, %d) = %v", inst, gr, l)
					}
				}
			}
		})
	}
}

func TestBuilders_Cancelled(t *testing.T) {
	s := testStructure(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, name := range Names() {
		b, _ := Get(name)
		_, err := b.CreateGeometry(task.New(ctx), targetFor(b, s), b.Params().Defaults(), nil)
		if !task.IsCancelled(err) {
			t.Errorf("%s: CreateGeometry() error = %v, want cancelled", name, err)
		}
	}
}

func TestBuilders_Visual(t *testing.T) {
	s := testStructure(t)
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			b, _ := Get(name)
			tg := targetFor(b, s)
			v := visual.NewComplex(b)
			if tg.IsUnits() {
				v = visual.NewUnits(b)
			}
			if err := v.Create(context.Background(), tg, nil); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			ro := v.RenderObject()
			it := b.CreateLocationIterator(tg)
			if got := len(ro.Values.Marker.Ref()); got != it.Count() {
				t.Errorf("len(markers) = %d, want %d", got, it.Count())
			}
			if !v.Mark(loci.ForChain(s, 0), render.MarkerSelect) {
				t.Error("marking chain A should change markers")
			}
		})
	}
}

// =============================================================================
// Kind specifics
// =============================================================================

func TestElementSpheres_Reuse(t *testing.T) {
	s := testStructure(t)
	b := ElementSpheres{}
	tg := targetFor(b, s)
	first := build(t, b, tg, nil, nil).(*geometry.Spheres)
	fresh := build(t, b, tg, nil, nil).(*geometry.Spheres)
	reused := build(t, b, tg, nil, first).(*geometry.Spheres)

	if &reused.Centers[0] != &first.Centers[0] {
		t.Error("a large enough previous geometry should be reused")
	}
	if !slices.Equal(reused.Centers, fresh.Centers) || !slices.Equal(reused.Groups, fresh.Groups) {
		t.Error("reused and fresh builds differ")
	}
}

func TestIgnoreHydrogens(t *testing.T) {
	b := structure.NewBuilder()
	b.AddChain("A", "1")
	b.AddResidue("HOH", 1)
	b.AddAtom("O", "O", mgl32.Vec3{})
	b.AddAtom("H1", "H", mgl32.Vec3{1, 0, 0})
	b.AddAtom("H2", "H", mgl32.Vec3{0, 1, 0})
	s, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	tg := visual.UnitsTarget(s, s.UnitGroups()[0])
	all := build(t, ElementSpheres{}, tg, nil, nil).(*geometry.Spheres)
	heavy := build(t, ElementSpheres{}, tg, params.Values{"ignoreHydrogens": true}, nil).(*geometry.Spheres)
	if all.SphereCount() != 3 || heavy.SphereCount() != 1 {
		t.Errorf("sphere counts = %d, %d, want 3, 1", all.SphereCount(), heavy.SphereCount())
	}
	if heavy.GroupCount() != 3 {
		t.Errorf("GroupCount() = %d, want 3", heavy.GroupCount())
	}
}

func TestSizeTiers(t *testing.T) {
	tests := []struct {
		b    visual.Builder
		want params.Tier
	}{
		{ElementSphere{}, params.TierTopology},
		{ResidueSphere{}, params.TierTopology},
		{ElementSpheres{}, params.TierSize},
		{ElementPoint{}, params.TierSize},
		{PolymerTrace{}, params.TierSize},
	}
	for _, tt := range tests {
		if got := tt.b.Params().Tier("sizeTheme"); got != tt.want {
			t.Errorf("%s sizeTheme tier = %v, want %v", tt.b.Name(), got, tt.want)
		}
		hasSize := tt.b.Attributes()&visual.AttributeSize != 0
		if hasSize != (tt.want == params.TierSize) {
			t.Errorf("%s size attribute = %v", tt.b.Name(), hasSize)
		}
	}
}

func TestElementSphere_Detail(t *testing.T) {
	s := testStructure(t)
	tg := targetFor(ElementSphere{}, s)
	n := tg.Group.Leader().ElementCount()
	for detail := 0; detail <= 2; detail++ {
		m := build(t, ElementSphere{}, tg, params.Values{"detail": detail}, nil)
		if want := n * geometry.Icosphere(detail).VertexCount(); m.VertexCount() != want {
			t.Errorf("detail %d: VertexCount() = %d, want %d", detail, m.VertexCount(), want)
		}
	}
}

func TestPolymerTube_RadialSegments(t *testing.T) {
	s := testStructure(t)
	tg := targetFor(PolymerTube{}, s)
	a := build(t, PolymerTube{}, tg, params.Values{"radialSegments": 6}, nil)
	b := build(t, PolymerTube{}, tg, params.Values{"radialSegments": 12}, nil)
	if b.VertexCount() <= a.VertexCount() {
		t.Errorf("VertexCount() = %d with 12 segments, %d with 6", b.VertexCount(), a.VertexCount())
	}
}

func TestPolymerTrace(t *testing.T) {
	s := testStructure(t)
	l := build(t, PolymerTrace{}, targetFor(PolymerTrace{}, s), nil, nil).(*geometry.Lines)
	// 4 residues: two half segments each except at the chain ends.
	if l.SegmentCount() != 6 {
		t.Errorf("SegmentCount() = %d, want 6", l.SegmentCount())
	}
}

func TestGaussianSurface(t *testing.T) {
	s := testStructure(t)
	tg := targetFor(GaussianSurface{}, s)
	tm := build(t, GaussianSurface{}, tg, nil, nil).(*geometry.TextureMesh)
	if tm.VertexCount() == 0 || tm.VertexCount()%3 != 0 {
		t.Errorf("VertexCount() = %d, want a positive multiple of 3", tm.VertexCount())
	}
	if tm.Width*tm.Height*4 != len(tm.VertexTexture) {
		t.Errorf("texture %dx%d holds %d floats", tm.Width, tm.Height, len(tm.VertexTexture))
	}
	coarse := build(t, GaussianSurface{}, tg, params.Values{"resolution": 2.0}, nil)
	if coarse.VertexCount() >= tm.VertexCount() {
		t.Errorf("coarser grid should give fewer vertices: %d >= %d", coarse.VertexCount(), tm.VertexCount())
	}
}

func TestGaussianVolume(t *testing.T) {
	s := testStructure(t)
	tg := targetFor(GaussianVolume{}, s)
	v := build(t, GaussianVolume{}, tg, nil, nil).(*geometry.DirectVolume)
	if got, want := len(v.Grid), v.Dims[0]*v.Dims[1]*v.Dims[2]; got != want || got == 0 {
		t.Errorf("len(Grid) = %d, dims %v", got, v.Dims)
	}
	if len(v.Textures()) != 1 {
		t.Errorf("Textures() = %d, want 1", len(v.Textures()))
	}
	again := build(t, GaussianVolume{}, tg, nil, v).(*geometry.DirectVolume)
	if &again.Grid[0] != &v.Grid[0] {
		t.Error("volume grid should be reused")
	}
}

// =============================================================================
// Labels
// =============================================================================

func TestShaper(t *testing.T) {
	sh, err := NewShaper(goregular.TTF, 16)
	if err != nil {
		t.Fatal(err)
	}
	glyphs := sh.Shape("ALA 12")
	if len(glyphs) != 5 {
		t.Fatalf("len(glyphs) = %d, want 5 (the space has no quad)", len(glyphs))
	}
	first, last := glyphs[0], glyphs[len(glyphs)-1]
	if first.X0 >= 0 || last.X1 <= 0 {
		t.Errorf("label not centered: %v .. %v", first.X0, last.X1)
	}
	for _, g := range glyphs {
		if g.X1 <= g.X0 || g.Y1 <= g.Y0 || g.Y1 > 1 {
			t.Errorf("bad quad %+v", g)
		}
	}
	before := sh.CacheStats().Hits
	sh.Shape("ALA 12")
	if sh.CacheStats().Hits != before+1 {
		t.Error("repeated labels should hit the cache")
	}
	if sh.Shape("") != nil {
		t.Error("empty text should have no glyphs")
	}
}

func TestDefaultShaper(t *testing.T) {
	a, err := DefaultShaper()
	if err != nil {
		t.Fatalf("DefaultShaper() error = %v", err)
	}
	b, _ := DefaultShaper()
	if a != b {
		t.Error("DefaultShaper() should return a shared shaper")
	}
}

func TestCaser(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{CaseUpper, "ala 12", "ALA 12"},
		{CaseLower, "ALA 12", "ala 12"},
		{CaseTitle, "ALA 12", "Ala 12"},
	}
	for _, tt := range tests {
		if got := caser(tt.name).String(tt.in); got != tt.want {
			t.Errorf("caser(%s)(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
	if caser(CaseNone) != nil {
		t.Error("caser(none) should be nil")
	}
}

func TestResidueLabel(t *testing.T) {
	s := testStructure(t)
	tg := visual.ComplexTarget(s)
	it := ResidueLabel{}.CreateLocationIterator(tg)
	if got := LabelText(it.LocationAt(0, 0), true); got != "A:ALA 1" {
		t.Errorf("LabelText() = %q, want %q", got, "A:ALA 1")
	}
	small := build(t, NewResidueLabel(), tg, nil, nil).(*geometry.Text)
	large := build(t, NewResidueLabel(), tg, params.Values{"labelSize": 3.0}, nil).(*geometry.Text)
	if small.GlyphCount() == 0 || small.GlyphCount() != large.GlyphCount() {
		t.Fatalf("GlyphCount() = %d, %d", small.GlyphCount(), large.GlyphCount())
	}
	if large.Mappings[0] != small.Mappings[0]*2 {
		t.Errorf("mapping = %v, want twice %v", large.Mappings[0], small.Mappings[0])
	}
	// 4 residues in each of 4 units: the complex label visual covers every unit.
	if small.GroupCount() != 16 {
		t.Errorf("GroupCount() = %d, want 16", small.GroupCount())
	}
}

func TestResidueLabel_Color(t *testing.T) {
	s := testStructure(t)
	v := visual.NewComplex(NewResidueLabel())
	if err := v.Create(context.Background(), visual.ComplexTarget(s), params.Values{"colorTheme": theme.UniformColor(theme.DefaultPalette[0])}); err != nil {
		t.Fatal(err)
	}
	if got := len(v.RenderObject().Values.Color.Ref()); got != 3 {
		t.Errorf("len(color) = %d, want 3", got)
	}
}
