package loci

import (
	"testing"

	"github.com/gogpu/molvis/structure"
)

// =============================================================================
// OrderedSet
// =============================================================================

func TestNewOrderedSet(t *testing.T) {
	got := NewOrderedSet(5, 1, 3, 1, 5)
	want := OrderedSet{1, 3, 5}
	if !got.Equal(want) {
		t.Errorf("NewOrderedSet() = %v, want %v", got, want)
	}
	if NewOrderedSet().Size() != 0 {
		t.Error("NewOrderedSet() should be empty")
	}
}

func TestOrderedSet_Algebra(t *testing.T) {
	a := OrderedSet{1, 2, 3, 7}
	b := OrderedSet{2, 3, 4}

	tests := []struct {
		name string
		got  OrderedSet
		want OrderedSet
	}{
		{"union", a.Union(b), OrderedSet{1, 2, 3, 4, 7}},
		{"intersect", a.Intersect(b), OrderedSet{2, 3}},
		{"subtract", a.Subtract(b), OrderedSet{1, 7}},
		{"range", Range(3, 6), OrderedSet{3, 4, 5}},
		{"empty range", Range(6, 3), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Equal(tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if !a.AreIntersecting(b) {
		t.Error("AreIntersecting() = false, want true")
	}
	if a.AreIntersecting(OrderedSet{4, 5, 6}) {
		t.Error("AreIntersecting() = true, want false")
	}
	if !a.IsSuperset(OrderedSet{1, 7}) || a.IsSuperset(b) {
		t.Error("IsSuperset() mismatch")
	}
	if !a.Has(7) || a.Has(4) {
		t.Error("Has() mismatch")
	}
	if !a.HasAnyInRange(4, 8) || a.HasAnyInRange(4, 7) {
		t.Error("HasAnyInRange() mismatch")
	}
}

// =============================================================================
// Loci
// =============================================================================

func testStructure(t *testing.T) *structure.Structure {
	t.Helper()
	s, err := structure.Synthetic(structure.SyntheticOptions{Chains: 3, Residues: 10})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestForChain(t *testing.T) {
	s := testStructure(t)
	l := ForChain(s, 1)
	e, ok := l.(*Elements)
	if !ok {
		t.Fatalf("ForChain() = %T, want *Elements", l)
	}
	if e.Size() != 40 {
		t.Errorf("Size() = %d, want 40", e.Size())
	}
	if _, ok := e.Unit(1); !ok {
		t.Error("Unit(1) missing")
	}
	if _, ok := e.Unit(0); ok {
		t.Error("Unit(0) should be absent")
	}
}

func TestUnionAndEqual(t *testing.T) {
	s := testStructure(t)
	u := s.Units()[0]
	a := ForResidue(s, u, 0)
	b := ForResidue(s, u, 1)
	ab := Union(a, b)
	if Size(ab) != 8 {
		t.Errorf("Size(union) = %d, want 8", Size(ab))
	}
	if !AreEqual(Union(b, a), ab) {
		t.Error("union should be commutative")
	}
	if !AreEqual(Union(Empty, a), a) {
		t.Error("Empty should be the union identity")
	}
	if _, ok := Union(a, Every).(EveryLoci); !ok {
		t.Error("union with Every should be Every")
	}
	if !IsEmpty(NewElements(s, UnitElements{Unit: u})) {
		t.Error("loci of empty sets should be empty")
	}
	if AreEqual(a, b) {
		t.Error("different residues should not be equal")
	}
	if Size(ForStructure(s)) != s.AtomCount() {
		t.Errorf("Size(ForStructure) = %d, want %d", Size(ForStructure(s)), s.AtomCount())
	}
	if Size(ForAtom(s, u, 3)) != 1 {
		t.Error("ForAtom should reference one atom")
	}
}
