package main

import (
	"slices"
	"testing"

	"github.com/gogpu/molvis/repr"
)

func TestBuiltinPresets(t *testing.T) {
	for _, name := range repr.Providers() {
		r, err := repr.NewByName(name)
		if err != nil {
			t.Fatal(err)
		}
		for _, preset := range []string{"chains", "elements", "residues", "rainbow", "ghost", "flat"} {
			if _, err := loadPreset("", preset, r.Params()); err != nil {
				t.Errorf("%s: preset %q: %v", name, preset, err)
			}
		}
		if _, err := loadPreset("", "missing", r.Params()); err == nil {
			t.Errorf("%s: missing preset should fail", name)
		}
		r.Destroy()
	}
}

func TestChanged(t *testing.T) {
	before := map[string]int{"1/color": 1, "1/size": 1, "2/color": 3}
	after := map[string]int{"1/color": 2, "1/size": 1, "2/color": 4, "3/marker": 1}
	if got, want := changed(before, after), []string{"color", "marker"}; !slices.Equal(got, want) {
		t.Errorf("changed() = %v, want %v", got, want)
	}
}
