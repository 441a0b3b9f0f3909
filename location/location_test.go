package location

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/molvis/loci"
	"github.com/gogpu/molvis/structure"
)

func synthetic(t *testing.T, chains, residues int, ops ...mgl32.Mat4) *structure.Structure {
	t.Helper()
	s, err := structure.Synthetic(structure.SyntheticOptions{Chains: chains, Residues: residues, Operators: ops})
	if err != nil {
		t.Fatalf("Synthetic() error = %v", err)
	}
	return s
}

func collect(it *Iterator) []Location {
	var out []Location
	for it.HasNext() {
		out = append(out, it.Move())
	}
	return out
}

// =============================================================================
// Iterator
// =============================================================================

func TestResidueIterator_Counts(t *testing.T) {
	s := synthetic(t, 3, 10)
	it := ResidueIterator(s)
	if it.GroupCount() != 30 || it.InstanceCount() != 1 || it.Count() != 30 {
		t.Errorf("counts = %d/%d/%d, want 30/1/30", it.GroupCount(), it.InstanceCount(), it.Count())
	}
	locs := collect(it)
	if len(locs) != 30 {
		t.Fatalf("len(locations) = %d, want 30", len(locs))
	}
	for i, l := range locs {
		if int(l.Residue) != i {
			t.Errorf("location %d residue = %d, want %d", i, l.Residue, i)
		}
		if l.Unit.Chain != i/10 {
			t.Errorf("location %d chain = %d, want %d", i, l.Unit.Chain, i/10)
		}
		if l.Atom().Name != "CA" {
			t.Errorf("location %d element = %s, want CA", i, l.Atom().Name)
		}
	}
}

func TestIterator_DeterministicAfterReset(t *testing.T) {
	s := synthetic(t, 2, 5)
	it := ElementIterator(s)
	first := collect(it)
	if it.HasNext() {
		t.Fatal("HasNext() = true after exhausting the iterator")
	}
	it.Reset()
	second := collect(it)
	if len(first) != len(second) || len(first) != s.AtomCount() {
		t.Fatalf("len = %d/%d, want %d", len(first), len(second), s.AtomCount())
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("location %d differs after Reset: %+v vs %+v", i, first[i], second[i])
		}
	}
	fresh := collect(ElementIterator(s))
	for i := range first {
		if first[i] != fresh[i] {
			t.Errorf("location %d differs between iterators", i)
		}
	}
}

func TestUnitIterator_InstanceMajor(t *testing.T) {
	op := mgl32.Translate3D(100, 0, 0)
	s := synthetic(t, 1, 4, op)
	g := s.UnitGroups()[0]
	if len(g.Units) != 2 {
		t.Fatalf("len(group units) = %d, want 2", len(g.Units))
	}
	it := UnitResidueIterator(s, g)
	if it.Count() != 8 {
		t.Fatalf("Count() = %d, want 8", it.Count())
	}
	i := 0
	for it.HasNext() {
		l := it.Move()
		if it.GroupIndex != i%4 || it.InstanceIndex != i/4 {
			t.Errorf("step %d: group/instance = %d/%d, want %d/%d", i, it.GroupIndex, it.InstanceIndex, i%4, i/4)
		}
		if l.Unit != g.Units[i/4] {
			t.Errorf("step %d: unit = %d, want %d", i, l.Unit.ID, g.Units[i/4].ID)
		}
		i++
	}

	eit := UnitElementIterator(s, g)
	if eit.GroupCount() != 16 || eit.InstanceCount() != 2 {
		t.Errorf("element counts = %d/%d, want 16/2", eit.GroupCount(), eit.InstanceCount())
	}
}

func TestIterator_LocationAt(t *testing.T) {
	s := synthetic(t, 2, 3)
	it := ElementIterator(s)
	locs := collect(it)
	for i, want := range locs {
		if got := it.LocationAt(i, 0); got != want {
			t.Errorf("LocationAt(%d) = %+v, want %+v", i, got, want)
		}
	}
	if it.LocationAt(len(locs), 0).IsValid() {
		t.Error("LocationAt(out of range) should be invalid")
	}
	if it.LocationAt(0, 1).IsValid() {
		t.Error("LocationAt(instance out of range) should be invalid")
	}
	if !loci.IsEmpty(it.Loci(0, -1)) {
		t.Error("Loci(out of range) should be empty")
	}
}

func TestIterator_Empty(t *testing.T) {
	it := New(0, 1, nil)
	if it.HasNext() {
		t.Error("HasNext() = true for empty iterator")
	}
}

// =============================================================================
// Location
// =============================================================================

func TestLocation_LociRoundTrip(t *testing.T) {
	s := synthetic(t, 2, 3)
	it := ResidueIterator(s)
	for it.HasNext() {
		l := it.Move()
		lc := l.Loci()
		if loci.Size(lc) != 4 {
			t.Errorf("residue %d loci size = %d, want 4", l.Residue, loci.Size(lc))
		}
		if !l.Intersects(lc) {
			t.Errorf("residue %d does not intersect its own loci", l.Residue)
		}
	}
	eit := ElementIterator(s)
	l := eit.LocationAt(5, 0)
	if loci.Size(l.Loci()) != 1 || !l.Intersects(l.Loci()) {
		t.Errorf("element loci = %v", l.Loci())
	}
}

func TestLocation_Intersects(t *testing.T) {
	s := synthetic(t, 3, 10)
	other := synthetic(t, 3, 10)
	chain1 := loci.ForChain(s, 1)

	it := ResidueIterator(s)
	n := 0
	for it.HasNext() {
		if it.Move().Intersects(chain1) {
			n++
		}
	}
	if n != 10 {
		t.Errorf("residues intersecting chain 1 = %d, want 10", n)
	}

	l := it.LocationAt(0, 0)
	tests := []struct {
		name string
		lc   loci.Loci
		want bool
	}{
		{"every", loci.Every, true},
		{"empty", loci.Empty, false},
		{"nil", nil, false},
		{"other structure", loci.ForStructure(other), false},
		{"other chain", chain1, false},
		{"own chain", loci.ForChain(s, 0), true},
		{"single atom", loci.ForAtom(s, l.Unit, 2), true},
		{"atom of next residue", loci.ForAtom(s, l.Unit, 4), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.Intersects(tt.lc); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
		})
	}
	if (Location{}).Intersects(loci.Every) {
		t.Error("zero Location should not intersect")
	}
}
