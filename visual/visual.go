// Package visual implements the lifecycle engine shared by every geometry
// kind.
//
// A [Visual] owns one render object. Create runs its [Builder] under a
// cancellable [task.Context] and swaps the new geometry in only once the
// build has fully succeeded. Update routes parameter changes to the cheapest
// tier that reflects them:
//
//   - topology changes are refused; Update returns true and the caller is
//     expected to Create again
//   - color theme changes rewrite the color buffer only
//   - size theme changes rewrite the size buffer of kinds that have one
//   - every other change is written directly into render values and state
//
// A Visual is safe for concurrent use. At most one build runs at a time;
// a new Create or Update cancels the pending build and waits for it to
// settle.
package visual

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/molvis"
	"github.com/gogpu/molvis/geometry"
	"github.com/gogpu/molvis/location"
	"github.com/gogpu/molvis/loci"
	"github.com/gogpu/molvis/params"
	"github.com/gogpu/molvis/render"
	"github.com/gogpu/molvis/task"
	"github.com/gogpu/molvis/theme"
)

var (
	// ErrStaleRenderObject is returned when picking before the first
	// successful Create.
	ErrStaleRenderObject = errors.New("visual: stale render object")

	// ErrDestroyed is returned by every operation after Destroy.
	ErrDestroyed = errors.New("visual: destroyed")

	// ErrTarget is returned when a target does not match the visual
	// variant.
	ErrTarget = errors.New("visual: invalid target")
)

// State is the lifecycle state of a Visual.
type State uint8

// Lifecycle states.
const (
	Uninitialized State = iota
	Ready
	Destroyed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Destroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// TransformSource overrides unit operators of units visuals. Consumers
// compare Version to decide whether their transforms are current.
type TransformSource interface {
	Version() int
	Transform(unitID int) (mgl32.Mat4, bool)
}

// Option configures a Visual.
type Option func(*Visual)

// WithObserver reports build progress to o.
func WithObserver(o task.Observer) Option {
	return func(v *Visual) {
		v.taskOpts = append(v.taskOpts, task.WithObserver(o))
	}
}

// WithUpdateInterval sets how often builds report progress and yield.
func WithUpdateInterval(d time.Duration) Option {
	return func(v *Visual) {
		v.taskOpts = append(v.taskOpts, task.WithUpdateInterval(d))
	}
}

// WithUnitTransforms makes a units visual take instance transforms from
// src instead of the unit operators where src has one.
func WithUnitTransforms(src TransformSource) Option {
	return func(v *Visual) {
		v.transforms = src
	}
}

// WithDisplayFilter makes v write f(p) instead of p into render values and
// state. Stored parameters and update tiers are unaffected. f must be safe
// for concurrent use; call [Visual.RefreshDisplay] when its output changes.
func WithDisplayFilter(f func(params.Values) params.Values) Option {
	return func(v *Visual) {
		v.display = f
	}
}

// Visual is one builder bound to one target.
type Visual struct {
	builder  Builder
	units    bool
	taskOpts []task.Option
	display  func(params.Values) params.Values

	transforms       TransformSource
	transformVersion int

	slot task.Slot

	mu         sync.Mutex
	state      State
	target     Target
	params     params.Values
	geo        geometry.Geometry
	spare      geometry.Geometry
	iterator   *location.Iterator
	ro         *render.RenderObject
	geoVersion int
}

// NewComplex returns a visual that builds b for a whole structure.
func NewComplex(b Builder, opts ...Option) *Visual {
	return newVisual(b, false, opts)
}

// NewUnits returns a visual that builds b for one unit group and draws it
// once per unit.
func NewUnits(b Builder, opts ...Option) *Visual {
	return newVisual(b, true, opts)
}

func newVisual(b Builder, units bool, opts []Option) *Visual {
	v := &Visual{builder: b, units: units, transformVersion: -1}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Builder returns the builder of v.
func (v *Visual) Builder() Builder { return v.builder }

// IsUnits reports whether v is a units visual.
func (v *Visual) IsUnits() bool { return v.units }

// Create rebuilds the geometry for t with props merged over the builder
// defaults. The result replaces the stored parameters; earlier overrides
// not repeated in props are dropped.
//
// On success the geometry, location iterator and render object are replaced
// together. On failure or cancellation nothing visible changes; cancellation
// is reported with an error satisfying [task.IsCancelled].
func (v *Visual) Create(ctx context.Context, t Target, props params.Values) error {
	if t.Structure == nil || t.IsUnits() != v.units {
		return fmt.Errorf("%w: %s visual", ErrTarget, v.variant())
	}
	bctx, release, err := v.slot.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	v.mu.Lock()
	if v.state == Destroyed {
		v.mu.Unlock()
		return ErrDestroyed
	}
	spare := v.spare
	v.mu.Unlock()

	defs := v.builder.Params()
	p := defs.Defaults().Merge(props)
	if err := defs.Validate(p); err != nil {
		molvis.Logger().Warn("visual: rejected parameters", "builder", v.builder.Name(), "err", err)
		return err
	}

	start := time.Now()
	tc := task.New(bctx, v.taskOpts...)
	g, err := v.builder.CreateGeometry(tc, t, p, spare)
	if err == nil {
		err = tc.Checkpoint()
	}
	if err != nil {
		if task.IsCancelled(err) {
			molvis.Logger().Warn("visual: build cancelled", "builder", v.builder.Name(), "elapsed", time.Since(start))
		}
		return err
	}

	it := v.builder.CreateLocationIterator(t)
	attrs, err := v.attributes(t, it, p)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == Destroyed {
		return ErrDestroyed
	}
	v.spare = v.geo
	v.geo, v.iterator, v.ro = g, it, render.New(g, it, attrs, v.displayed(p))
	v.target, v.params = t, p
	v.state = Ready
	v.geoVersion++
	if v.transforms != nil {
		v.transformVersion = v.transforms.Version()
	}
	molvis.Logger().Debug("visual: built",
		"builder", v.builder.Name(),
		"kind", g.Kind(),
		"groups", g.GroupCount(),
		"instances", it.InstanceCount(),
		"elapsed", time.Since(start))
	return nil
}

// Update applies props to the live render object and reports whether a
// topology change was requested. In that case nothing is modified or
// stored and the caller must Create again. Update before the first Create
// returns false.
func (v *Visual) Update(ctx context.Context, props params.Values) (bool, error) {
	_, release, err := v.slot.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case v.state == Destroyed:
		return false, ErrDestroyed
	case v.ro == nil:
		return false, nil
	}

	defs := v.builder.Params()
	p := v.params.Merge(props)
	if err := defs.Validate(p); err != nil {
		molvis.Logger().Warn("visual: rejected parameters", "builder", v.builder.Name(), "err", err)
		return false, err
	}
	change := params.Diff(defs, v.params, p)
	if change.Empty() {
		return false, nil
	}
	if len(change.Topology) > 0 {
		molvis.Logger().Debug("visual: rebuild required", "builder", v.builder.Name(), "params", change.Topology)
		return true, nil
	}

	if len(change.Color) > 0 {
		if err := v.writeColors(p); err != nil {
			return false, err
		}
	}
	if len(change.Size) > 0 && v.builder.Attributes()&AttributeSize != 0 {
		if err := v.writeSizes(p); err != nil {
			return false, err
		}
	}
	d := v.displayed(p)
	render.UpdateValues(v.ro.Values, d)
	render.UpdateState(v.ro.State, d)
	v.params = p
	molvis.Logger().Debug("visual: updated",
		"builder", v.builder.Name(),
		"color", change.Color,
		"size", change.Size,
		"values", change.Values)
	return false, nil
}

// RefreshDisplay rewrites render values and state from the stored
// parameters through the display filter and reports whether anything
// changed.
func (v *Visual) RefreshDisplay() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ro == nil {
		return false
	}
	d := v.displayed(v.params)
	changed := render.UpdateValues(v.ro.Values, d)
	return render.UpdateState(v.ro.State, d) || changed
}

func (v *Visual) displayed(p params.Values) params.Values {
	if v.display == nil {
		return p
	}
	return v.display(p)
}

// writeColors recolors every group through a fresh iterator.
func (v *Visual) writeColors(p params.Values) error {
	c, err := theme.NewColorer(theme.ColorOf(p), v.target.Structure)
	if err != nil {
		return err
	}
	colors, typ := theme.WriteColors(v.builder.CreateLocationIterator(v.target), c, nil)
	v.ro.Values.Color.Update(colors)
	v.ro.Values.ColorType.Update(typ)
	return nil
}

func (v *Visual) writeSizes(p params.Values) error {
	s, err := theme.NewSizer(theme.SizeOf(p), v.target.Structure)
	if err != nil {
		return err
	}
	v.ro.Values.Size.Update(theme.WriteSizes(v.builder.CreateLocationIterator(v.target), s, nil))
	return nil
}

// attributes computes the initial attribute buffers of a new render
// object.
func (v *Visual) attributes(t Target, it *location.Iterator, p params.Values) (render.Attributes, error) {
	var a render.Attributes
	c, err := theme.NewColorer(theme.ColorOf(p), t.Structure)
	if err != nil {
		return a, err
	}
	a.Color, a.ColorType = theme.WriteColors(it, c, nil)
	if v.builder.Attributes()&AttributeSize != 0 {
		s, err := theme.NewSizer(theme.SizeOf(p), t.Structure)
		if err != nil {
			return a, err
		}
		a.Size = theme.WriteSizes(it, s, nil)
	}
	a.Transform = v.instanceTransforms(t)
	return a, nil
}

// instanceTransforms returns one column-major matrix per instance.
func (v *Visual) instanceTransforms(t Target) []float32 {
	if !t.IsUnits() {
		id := mgl32.Ident4()
		return id[:]
	}
	out := t.Group.Transforms(nil)
	if v.transforms == nil {
		return out
	}
	for i, u := range t.Group.Units {
		if m, ok := v.transforms.Transform(u.ID); ok {
			copy(out[i*16:], m[:])
		}
	}
	return out
}

// ApplyUnitTransforms rewrites the transform buffer when the transform
// source has changed since the last build or call, and reports whether
// the buffer changed. Nothing else is touched.
func (v *Visual) ApplyUnitTransforms() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ro == nil || v.transforms == nil || v.state == Destroyed {
		return false
	}
	version := v.transforms.Version()
	if version == v.transformVersion {
		return false
	}
	v.transformVersion = version
	return v.ro.Values.Transform.Update(v.instanceTransforms(v.target))
}

// GetLoci maps a picking id of the live render object back to structure
// elements. Ids of other render objects map to loci.Empty.
func (v *Visual) GetLoci(id location.PickingID) (loci.Loci, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case v.state == Destroyed:
		return loci.Empty, ErrDestroyed
	case v.ro == nil:
		return loci.Empty, ErrStaleRenderObject
	case id.ObjectID != v.ro.ID:
		return loci.Empty, nil
	}
	return v.builder.GetLoci(id, v.target), nil
}

// Mark applies action to every group whose location intersects l and
// reports whether any marker changed. It is a no-op before Create.
func (v *Visual) Mark(l loci.Loci, action render.MarkerAction) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ro == nil || v.state == Destroyed {
		return false
	}
	it := v.iterator
	var ranges [][2]int
	switch {
	case action == render.MarkerClear, l == loci.Every:
		ranges = [][2]int{{0, it.Count()}}
	case loci.IsEmpty(l):
		return false
	default:
		ranges = intersectingRanges(it, l)
	}
	return v.ro.Mark(ranges, action)
}

// intersectingRanges returns the [start, end) runs of iterator indices
// whose location intersects l.
func intersectingRanges(it *location.Iterator, l loci.Loci) [][2]int {
	var ranges [][2]int
	it.Reset()
	for i := 0; it.HasNext(); i++ {
		if !it.Move().Intersects(l) {
			continue
		}
		if n := len(ranges); n > 0 && ranges[n-1][1] == i {
			ranges[n-1][1] = i + 1
			continue
		}
		ranges = append(ranges, [2]int{i, i + 1})
	}
	it.Reset()
	return ranges
}

// Destroy releases the render object and all buffers. It cancels a pending
// build and is idempotent.
func (v *Visual) Destroy() {
	v.slot.Cancel()
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == Destroyed {
		return
	}
	v.state = Destroyed
	v.geo, v.spare, v.iterator, v.ro = nil, nil, nil, nil
	v.params = nil
	v.target = Target{}
}

// RenderObject returns the live render object, or nil.
func (v *Visual) RenderObject() *render.RenderObject {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ro
}

// Geometry returns the live geometry, or nil.
func (v *Visual) Geometry() geometry.Geometry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.geo
}

// State returns the lifecycle state.
func (v *Visual) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Params returns the current parameter set, or nil before Create.
func (v *Visual) Params() params.Values {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.params
}

// GeometryVersion returns the number of successful builds.
func (v *Visual) GeometryVersion() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.geoVersion
}

func (v *Visual) variant() string {
	if v.units {
		return "units"
	}
	return "complex"
}
