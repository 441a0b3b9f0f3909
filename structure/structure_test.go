package structure

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder()
	b.AddChain("A", "1")
	b.AddResidue("ALA", 1)
	b.AddAtom("N", "N", mgl32.Vec3{0, 0, 0})
	b.AddAtom("CA", "C", mgl32.Vec3{1, 0, 0})
	b.AddResidue("GLY", 2)
	b.AddAtom("N", "N", mgl32.Vec3{2, 0, 0})
	b.AddChain("B", "2")
	b.AddResidue("HOH", 1)
	b.AddAtom("O", "O", mgl32.Vec3{5, 5, 5})

	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if s.AtomCount() != 4 {
		t.Errorf("AtomCount() = %d, want 4", s.AtomCount())
	}
	if s.ResidueCount() != 3 {
		t.Errorf("ResidueCount() = %d, want 3", s.ResidueCount())
	}
	if len(s.Units()) != 2 {
		t.Fatalf("len(Units()) = %d, want 2", len(s.Units()))
	}
	if got := s.Units()[0].Elements; len(got) != 3 || got[0] != 0 || got[2] != 2 {
		t.Errorf("unit 0 elements = %v, want [0 1 2]", got)
	}
	if got := s.TraceAtom(0); got != 1 {
		t.Errorf("TraceAtom(0) = %d, want 1 (CA)", got)
	}
	if got := s.TraceAtom(1); got != 2 {
		t.Errorf("TraceAtom(1) = %d, want 2 (first atom)", got)
	}
	if start, end := s.UnitResidues(s.Units()[1]); start != 2 || end != 3 {
		t.Errorf("UnitResidues(unit 1) = [%d,%d), want [2,3)", start, end)
	}
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder)
		want  error
	}{
		{"empty", func(b *Builder) {}, ErrEmpty},
		{"residue without chain", func(b *Builder) { b.AddResidue("ALA", 1) }, ErrNoChain},
		{"atom without residue", func(b *Builder) {
			b.AddChain("A", "1")
			b.AddAtom("CA", "C", mgl32.Vec3{})
		}, ErrNoResidue},
		{"empty residue", func(b *Builder) {
			b.AddChain("A", "1")
			b.AddResidue("ALA", 1)
			b.AddAtom("CA", "C", mgl32.Vec3{})
			b.AddResidue("GLY", 2)
		}, ErrEmptyResidue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			tt.build(b)
			if _, err := b.Build(); !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestVersionsIncrease(t *testing.T) {
	a, err := Synthetic(SyntheticOptions{Chains: 1, Residues: 2})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Synthetic(SyntheticOptions{Chains: 1, Residues: 2})
	if err != nil {
		t.Fatal(err)
	}
	if b.Version() <= a.Version() {
		t.Errorf("versions %d then %d, want strictly increasing", a.Version(), b.Version())
	}
	if a.Hash() == b.Hash() {
		t.Error("Hash() should differ between snapshots")
	}
}

func TestSynthetic_Operators(t *testing.T) {
	s, err := Synthetic(SyntheticOptions{
		Chains:    3,
		Residues:  10,
		Operators: []mgl32.Mat4{mgl32.Translate3D(100, 0, 0)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(s.Units()); got != 6 {
		t.Fatalf("len(Units()) = %d, want 6", got)
	}
	if got := len(s.UnitGroups()); got != 3 {
		t.Fatalf("len(UnitGroups()) = %d, want 3", got)
	}
	g := s.UnitGroups()[1]
	if len(g.Units) != 2 || g.Leader().ID != 1 || g.Units[1].ID != 4 {
		t.Errorf("group 1 units = %v, want IDs [1 4]", []int{g.Units[0].ID, g.Units[1].ID})
	}
	if !g.Units[0].IsIdentity() || g.Units[1].IsIdentity() {
		t.Error("expected identity leader and translated mate")
	}

	a := g.Leader().Elements[0]
	p0 := s.Position(g.Units[0], a)
	p1 := s.Position(g.Units[1], a)
	if d := p1.Sub(p0); !d.ApproxEqual(mgl32.Vec3{100, 0, 0}) {
		t.Errorf("mate offset = %v, want [100 0 0]", d)
	}
	if got := len(g.Transforms(nil)); got != 32 {
		t.Errorf("len(Transforms()) = %d, want 32", got)
	}
	if u, ok := s.Unit(4); !ok || u.Chain != 1 {
		t.Errorf("Unit(4) = %v, %v; want chain 1", u, ok)
	}
	if idx := g.Leader().IndexOf(a + 3); idx != 3 {
		t.Errorf("IndexOf() = %d, want 3", idx)
	}
}

func TestContainer(t *testing.T) {
	var c Container
	if c.Get() != nil {
		t.Fatal("empty container should return nil")
	}
	s, err := Synthetic(SyntheticOptions{Chains: 1, Residues: 1})
	if err != nil {
		t.Fatal(err)
	}
	c.Update(s)
	if c.Get() != s {
		t.Error("Get() did not return the stored snapshot")
	}
}

func TestParseUnitKind(t *testing.T) {
	for _, name := range UnitKindNames {
		k, ok := ParseUnitKind(name)
		if !ok || k.String() != name {
			t.Errorf("ParseUnitKind(%q) = %v, %v", name, k, ok)
		}
	}
	if _, ok := ParseUnitKind("cartoon"); ok {
		t.Error("ParseUnitKind(cartoon) should fail")
	}
}
