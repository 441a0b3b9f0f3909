// Command molvisdemo builds a representation of a synthetic structure and
// walks it through every update tier, reporting which buffers each step
// rewrote.
package main

import (
	"bytes"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/molvis"
	"github.com/gogpu/molvis/location"
	"github.com/gogpu/molvis/loci"
	"github.com/gogpu/molvis/params"
	"github.com/gogpu/molvis/render"
	"github.com/gogpu/molvis/repr"
	"github.com/gogpu/molvis/structure"
	"github.com/gogpu/molvis/task"
	"github.com/gogpu/molvis/theme"
	"github.com/gogpu/molvis/visual"
)

//go:embed presets.yaml
var builtinPresets []byte

func main() {
	var (
		provider = flag.String("provider", "spacefill", "representation provider")
		chains   = flag.Int("chains", 3, "number of chains")
		residues = flag.Int("residues", 20, "residues per chain")
		copies   = flag.Int("copies", 2, "symmetry copies of every chain")
		presets  = flag.String("presets", "", "YAML preset file (default: built-in presets)")
		preset   = flag.String("preset", "chains", "preset applied on creation")
		workers  = flag.Int("workers", 0, "build workers (0: GOMAXPROCS)")
		verbose  = flag.Bool("v", false, "log build details")
		list     = flag.Bool("list", false, "list providers and exit")
		version  = flag.Bool("version", false, "print the molvis version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Println("molvis", molvis.Version)
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	molvis.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *list {
		for _, name := range repr.Providers() {
			p, _ := repr.Lookup(name)
			fmt.Printf("%-16s %v  %s\n", name, p.Builders, p.Description)
		}
		return
	}

	operators := make([]mgl32.Mat4, 0, max(*copies-1, 0))
	for i := 1; i < *copies; i++ {
		operators = append(operators, mgl32.Translate3D(0, float32(i)*40, 0))
	}
	s, err := structure.Synthetic(structure.SyntheticOptions{
		Chains:    *chains,
		Residues:  *residues,
		Operators: operators,
	})
	if err != nil {
		log.Fatalf("Failed to build structure: %v", err)
	}

	progress := func(p task.Progress) {
		molvis.Logger().Debug("build progress", "step", p.Message, "done", fmt.Sprintf("%.0f%%", p.Fraction()*100))
	}
	r, err := repr.NewByName(*provider,
		repr.WithWorkers(*workers),
		repr.WithVisualOptions(visual.WithObserver(progress)))
	if err != nil {
		log.Fatalf("Failed to create representation: %v", err)
	}
	defer r.Destroy()

	props, err := loadPreset(*presets, *preset, r.Params())
	if err != nil {
		log.Fatalf("Failed to load preset: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := r.Create(ctx, s, props); err != nil {
		log.Fatalf("Create failed: %v", err)
	}
	describe(r)

	for _, sc := range scenarios {
		p := applicable(sc.props, r.Params())
		if len(p) == 0 {
			fmt.Printf("\n%-10s skipped, not understood by %s\n", sc.name, *provider)
			continue
		}
		before := snapshot(r)
		if err := r.Update(ctx, p); err != nil {
			log.Fatalf("Update %s failed: %v", sc.name, err)
		}
		fmt.Printf("\n%-10s rewrote %v\n", sc.name, changed(before, snapshot(r)))
	}

	before := snapshot(r)
	units := s.Units()
	if err := r.Transforms().Set(units[len(units)-1].ID, mgl32.Translate3D(0, 0, 25)); err != nil {
		log.Fatalf("Set transform failed: %v", err)
	}
	r.ApplyUnitTransforms()
	fmt.Printf("\n%-10s rewrote %v\n", "transform", changed(before, snapshot(r)))

	before = snapshot(r)
	r.Mark(loci.ForChain(s, 0), render.MarkerSelect)
	fmt.Printf("\n%-10s rewrote %v\n", "select", changed(before, snapshot(r)))

	if ros := r.RenderObjects(); len(ros) > 0 {
		l := r.GetLoci(location.PickingID{ObjectID: ros[0].ID})
		fmt.Printf("\npicked group 0 of object %d: %s", ros[0].ID, l.Kind())
		if e, ok := l.(*loci.Elements); ok {
			fmt.Printf(" with %d atoms", e.Size())
		}
		fmt.Println()
	}
}

var scenarios = []struct {
	name  string
	props params.Values
}{
	{"color", params.Values{"colorTheme": theme.ByResidue()}},
	{"alpha", params.Values{"alpha": 0.5}},
	{"size", params.Values{"sizeTheme": theme.UniformSizeTheme(1.2)}},
	{"hydrogens", params.Values{"ignoreHydrogens": true}},
	{"detail", params.Values{"detail": 2}},
	{"labels", params.Values{"labelCase": "title", "labelChain": true}},
}

func loadPreset(path, name string, defs params.Definitions) (params.Values, error) {
	var src io.Reader = bytes.NewReader(builtinPresets)
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		src = f
	}
	all, err := params.LoadPresets(src, defs)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}
	p, ok := all[name]
	if !ok {
		return nil, fmt.Errorf("no preset %q", name)
	}
	return p, nil
}

// applicable drops the entries defs does not declare.
func applicable(p params.Values, defs params.Definitions) params.Values {
	out := params.Values{}
	for k, v := range p {
		if _, ok := defs.Lookup(k); ok {
			out[k] = v
		}
	}
	return out
}

func describe(r *repr.Representation) {
	fmt.Printf("%s: %d visuals\n", r.Provider().Name, r.VisualCount())
	for _, ro := range r.RenderObjects() {
		v := ro.Values
		var total uint64
		for _, b := range ro.BufferDescriptors() {
			total += b.Size
		}
		fmt.Printf("  object %d: %-13s groups=%-4d instances=%-2d draw=%-6d %6.1f KiB\n",
			ro.ID, ro.Kind, v.GroupCount.Ref(), v.InstanceCount.Ref(), v.DrawCount.Ref(), float64(total)/1024)
	}
}

// snapshot records the version of every buffer by object and name.
func snapshot(r *repr.Representation) map[string]int {
	out := make(map[string]int)
	for _, ro := range r.RenderObjects() {
		for _, b := range ro.BufferDescriptors() {
			out[fmt.Sprintf("%d/%s", ro.ID, b.Name)] = b.Version
		}
	}
	return out
}

// changed returns the buffer names whose version differs, ignoring the
// object id.
func changed(before, after map[string]int) []string {
	var names []string
	for key, v := range after {
		if before[key] == v {
			continue
		}
		var id int
		var name string
		if _, err := fmt.Sscanf(key, "%d/%s", &id, &name); err == nil && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
