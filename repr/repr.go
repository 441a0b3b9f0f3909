// Package repr groups the visuals of one provider into a Representation.
//
// A Representation owns one child visual per complex builder and one per
// (builder, unit group) for units builders. Create and Update fan out to
// the children on a worker pool. Units visuals are keyed by the invariant
// id of their group, so a new structure with the same chains rebuilds them
// with their previous geometry as reuse hint while vanished groups are
// destroyed.
package repr

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/molvis"
	"github.com/gogpu/molvis/builders"
	"github.com/gogpu/molvis/internal/parallel"
	"github.com/gogpu/molvis/location"
	"github.com/gogpu/molvis/loci"
	"github.com/gogpu/molvis/params"
	"github.com/gogpu/molvis/render"
	"github.com/gogpu/molvis/structure"
	"github.com/gogpu/molvis/visual"
)

// UnitKindsName is the parameter selecting which kinds of unit groups get
// units visuals.
const UnitKindsName = "unitKinds"

var defaultUnitKinds = []string{structure.UnitAtomic.String(), structure.UnitSpheres.String()}

func unitKindsParam() params.Definition {
	return params.MultiSelect(UnitKindsName, defaultUnitKinds, params.TierTopology, structure.UnitKindNames...).
		WithDescription("Kinds of units that get visuals.")
}

// State is the display state of a representation. It is combined with the
// parameters of every child when they are written to its render object: a
// child is only shown when both its visible parameter and Visible allow it,
// and its alpha is scaled by AlphaFactor.
type State struct {
	Visible     bool
	Pickable    bool
	AlphaFactor float64

	// SyncManually marks representations whose state is managed by the
	// caller rather than by a scene-wide policy.
	SyncManually bool
}

// DefaultState returns a visible, pickable state.
func DefaultState() State {
	return State{Visible: true, Pickable: true, AlphaFactor: 1}
}

// Option configures a Representation.
type Option func(*Representation)

// WithWorkers runs builds on a pool of n workers owned by the
// representation and closed by Destroy. By default a pool shared by all
// representations is used.
func WithWorkers(n int) Option {
	return func(r *Representation) {
		r.pool = parallel.NewWorkerPool(n)
		r.ownsPool = true
	}
}

// WithVisualOptions passes opts to every child visual.
func WithVisualOptions(opts ...visual.Option) Option {
	return func(r *Representation) {
		r.visualOpts = append(r.visualOpts, opts...)
	}
}

var sharedPool = sync.OnceValue(func() *parallel.WorkerPool {
	return parallel.NewWorkerPool(0)
})

// entry is one child visual and the target it was last built for.
type entry struct {
	v      *visual.Visual
	target visual.Target
}

// child holds the visuals of one builder.
type child struct {
	builder visual.Builder
	defs    params.Definitions
	units   bool
	complex *entry
	groups  map[int]*entry // by unit group invariant id
}

func (c *child) entries() []*entry {
	if !c.units {
		if c.complex == nil {
			return nil
		}
		return []*entry{c.complex}
	}
	out := make([]*entry, 0, len(c.groups))
	for _, id := range slices.Sorted(maps.Keys(c.groups)) {
		out = append(out, c.groups[id])
	}
	return out
}

// Representation is a named set of visuals over one structure.
//
// Representation is safe for concurrent use.
type Representation struct {
	provider   Provider
	defs       params.Definitions
	children   []*child
	transforms *UnitTransforms
	visualOpts []visual.Option
	pool       *parallel.WorkerPool
	ownsPool   bool
	state      atomic.Pointer[State]

	mu        sync.Mutex
	structure *structure.Structure
	props     params.Values
	destroyed bool
}

// New returns an empty representation of p. Nothing is built before
// Create.
func New(p Provider, opts ...Option) (*Representation, error) {
	r := &Representation{
		provider:   p,
		transforms: NewUnitTransforms(),
	}
	st := DefaultState()
	r.state.Store(&st)
	for _, opt := range opts {
		opt(r)
	}
	r.visualOpts = append(r.visualOpts, visual.WithDisplayFilter(r.display))
	defs := params.Definitions{unitKindsParam()}
	for _, name := range p.Builders {
		b, err := builders.Get(name)
		if err != nil {
			r.closePool()
			return nil, err
		}
		r.children = append(r.children, &child{
			builder: b,
			defs:    b.Params(),
			units:   builders.IsUnits(name),
			groups:  make(map[int]*entry),
		})
		defs = params.Merge(defs, b.Params())
	}
	if err := defs.Validate(p.Params); err != nil {
		r.closePool()
		return nil, fmt.Errorf("repr: provider %s: %w", p.Name, err)
	}
	if r.pool == nil {
		r.pool = sharedPool()
	}
	r.defs = defs
	r.props = params.Values{}.Merge(p.Params)
	return r, nil
}

// NewByName returns an empty representation of the provider registered
// under name.
func NewByName(name string, opts ...Option) (*Representation, error) {
	p, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return New(p, opts...)
}

// Provider returns the provider r was created from.
func (r *Representation) Provider() Provider { return r.provider }

// Params returns the parameters understood by any child.
func (r *Representation) Params() params.Definitions { return r.defs }

// Props returns the accumulated explicit parameter values.
func (r *Representation) Props() params.Values {
	r.mu.Lock()
	defer r.mu.Unlock()
	return params.Values{}.Merge(r.props)
}

// Transforms returns the unit transforms shared by the units visuals.
func (r *Representation) Transforms() *UnitTransforms { return r.transforms }

// Create builds every child for s with props merged over the current
// props. On a new structure the unit transforms are reset.
func (r *Representation) Create(ctx context.Context, s *structure.Structure, props params.Values) error {
	if s == nil {
		return fmt.Errorf("%w: nil structure", visual.ErrTarget)
	}
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return visual.ErrDestroyed
	}
	if err := r.defs.Validate(props); err != nil {
		r.mu.Unlock()
		molvis.Logger().Warn("repr: rejected parameters", "provider", r.provider.Name, "err", err)
		return err
	}
	r.props = r.props.Merge(props)
	if s != r.structure {
		r.transforms.Reset(s)
		r.structure = s
	}
	tasks := r.plan(s, false)
	r.mu.Unlock()

	start := time.Now()
	if err := r.pool.Run(ctx, tasks...); err != nil {
		return err
	}
	molvis.Logger().Info("repr: created",
		"provider", r.provider.Name,
		"visuals", len(tasks),
		"elapsed", time.Since(start))
	return nil
}

// Update applies props to every child. Children whose update needs a new
// topology are rebuilt; the others only rewrite the affected buffers.
// Changing unitKinds creates or destroys units visuals as needed. Before
// the first Create the props are only recorded.
func (r *Representation) Update(ctx context.Context, props params.Values) error {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return visual.ErrDestroyed
	}
	if err := r.defs.Validate(props); err != nil {
		r.mu.Unlock()
		molvis.Logger().Warn("repr: rejected parameters", "provider", r.provider.Name, "err", err)
		return err
	}
	r.props = r.props.Merge(props)
	if r.structure == nil {
		r.mu.Unlock()
		return nil
	}
	tasks := r.plan(r.structure, true)
	r.mu.Unlock()

	return r.pool.Run(ctx, tasks...)
}

// plan returns one build task per child visual of s, creating visuals for
// new unit groups and destroying those of groups that are gone or
// filtered out. With update set, visuals that are already built get an
// update task instead of a rebuild. r.mu must be held.
func (r *Representation) plan(s *structure.Structure, update bool) []func(context.Context) error {
	kinds := r.unitKinds()
	var tasks []func(context.Context) error
	add := func(e *entry, p params.Values) {
		if update && e.v.RenderObject() != nil {
			tasks = append(tasks, updateTask(e.v, e.target, p))
			return
		}
		tasks = append(tasks, createTask(e.v, e.target, p))
	}

	for _, c := range r.children {
		p := filter(r.props, c.defs)
		if !c.units {
			if c.complex == nil {
				c.complex = &entry{v: visual.NewComplex(c.builder, r.visualOpts...)}
			}
			c.complex.target = visual.ComplexTarget(s)
			add(c.complex, p)
			continue
		}

		seen := make(map[int]bool)
		for _, g := range s.UnitGroups() {
			if !slices.Contains(kinds, g.Kind().String()) {
				continue
			}
			seen[g.InvariantID] = true
			e := c.groups[g.InvariantID]
			if e == nil {
				opts := append(slices.Clone(r.visualOpts), visual.WithUnitTransforms(r.transforms))
				e = &entry{v: visual.NewUnits(c.builder, opts...)}
				c.groups[g.InvariantID] = e
			}
			e.target = visual.UnitsTarget(s, g)
			add(e, p)
		}
		for id, e := range c.groups {
			if !seen[id] {
				e.v.Destroy()
				delete(c.groups, id)
				molvis.Logger().Debug("repr: removed unit group", "builder", c.builder.Name(), "group", id)
			}
		}
	}
	return tasks
}

func createTask(v *visual.Visual, t visual.Target, p params.Values) func(context.Context) error {
	return func(ctx context.Context) error {
		return v.Create(ctx, t, p)
	}
}

func updateTask(v *visual.Visual, t visual.Target, p params.Values) func(context.Context) error {
	return func(ctx context.Context) error {
		rebuild, err := v.Update(ctx, p)
		if err != nil || !rebuild {
			return err
		}
		molvis.Logger().Debug("repr: rebuilding", "builder", v.Builder().Name())
		return v.Create(ctx, t, p)
	}
}

// filter returns the entries of p that defs declares.
func filter(p params.Values, defs params.Definitions) params.Values {
	out := make(params.Values, len(p))
	for k, v := range p {
		if _, ok := defs.Lookup(k); ok {
			out[k] = v
		}
	}
	return out
}

func (r *Representation) unitKinds() []string {
	if kinds, ok := params.Get[[]string](r.props, UnitKindsName); ok {
		return kinds
	}
	return defaultUnitKinds
}

// visuals returns every child visual in draw order.
func (r *Representation) visuals() []*visual.Visual {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*visual.Visual
	for _, c := range r.children {
		for _, e := range c.entries() {
			out = append(out, e.v)
		}
	}
	return out
}

// VisualCount returns the number of child visuals.
func (r *Representation) VisualCount() int { return len(r.visuals()) }

// RenderObjects returns the render objects of every built child in draw
// order.
func (r *Representation) RenderObjects() []*render.RenderObject {
	var out []*render.RenderObject
	for _, v := range r.visuals() {
		if ro := v.RenderObject(); ro != nil {
			out = append(out, ro)
		}
	}
	return out
}

// GetLoci returns the loci of the first child that recognizes id, or
// loci.Empty.
func (r *Representation) GetLoci(id location.PickingID) loci.Loci {
	for _, v := range r.visuals() {
		if l, err := v.GetLoci(id); err == nil && !loci.IsEmpty(l) {
			return l
		}
	}
	return loci.Empty
}

// Mark applies action to every child and reports whether any marker
// changed.
func (r *Representation) Mark(l loci.Loci, action render.MarkerAction) bool {
	changed := false
	for _, v := range r.visuals() {
		if v.Mark(l, action) {
			changed = true
		}
	}
	return changed
}

// ApplyUnitTransforms rewrites the transform buffers of units visuals
// whose transforms are out of date and reports whether any changed.
func (r *Representation) ApplyUnitTransforms() bool {
	changed := false
	for _, v := range r.visuals() {
		if v.IsUnits() && v.ApplyUnitTransforms() {
			changed = true
		}
	}
	return changed
}

// State returns the display state.
func (r *Representation) State() State {
	return *r.state.Load()
}

// SetState changes the display state of every child without rebuilding.
func (r *Representation) SetState(s State) {
	r.state.Store(&s)
	for _, v := range r.visuals() {
		v.RefreshDisplay()
	}
}

// display combines the child parameters p with the display state.
func (r *Representation) display(p params.Values) params.Values {
	s := r.State()
	return p.Merge(params.Values{
		"alpha":    p.Float("alpha") * s.AlphaFactor,
		"visible":  s.Visible && p.Bool("visible"),
		"pickable": s.Pickable && p.Bool("pickable"),
	})
}

// Destroy destroys every child. It is safe to call more than once.
func (r *Representation) Destroy() {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.destroyed = true
	var all []*visual.Visual
	for _, c := range r.children {
		for _, e := range c.entries() {
			all = append(all, e.v)
		}
		c.complex = nil
		clear(c.groups)
	}
	r.mu.Unlock()

	for _, v := range all {
		v.Destroy()
	}
	r.closePool()
	molvis.Logger().Debug("repr: destroyed", "provider", r.provider.Name, "visuals", len(all))
}

func (r *Representation) closePool() {
	if r.ownsPool {
		r.pool.Close()
	}
}
