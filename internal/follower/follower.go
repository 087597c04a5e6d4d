// Package follower keeps one widget instance in step with the slice the user
// is looking at.
//
// A floating widget follows the view under the pointer: its manipulator plane
// tracks that view's axis and slice, and it is shown on every view of the
// hovered view's type. A locked widget stays on the axis and slice it was
// locked to and is shown only on slice views currently displaying exactly
// that slice.
package follower

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/jask/slicewidgets/internal/hooks"
	"github.com/jask/slicewidgets/internal/reactive"
	"github.com/jask/slicewidgets/internal/store"
	"github.com/jask/slicewidgets/internal/surface"
	"github.com/jask/slicewidgets/internal/widget"
)

// SliceTolerance is the absolute tolerance used to decide whether a view
// shows a locked slice.
const SliceTolerance = 1e-6

// Lock pins a widget to an axis and slice. The zero value is floating.
// Axis and Slice are meaningful only when Locked is set, so a half-locked
// state cannot be represented.
type Lock struct {
	Locked bool
	Axis   surface.Axis
	Slice  float64
}

// Floating returns the unlocked state.
func Floating() Lock { return Lock{Axis: surface.AxisInvalid} }

// LockAt returns a lock on axis a at slice s. An invalid axis yields Floating.
func LockAt(a surface.Axis, s float64) Lock {
	if !a.Valid() {
		return Floating()
	}
	return Lock{Locked: true, Axis: a, Slice: s}
}

func (l Lock) String() string {
	if !l.Locked {
		return "floating"
	}
	return fmt.Sprintf("locked(%s=%g)", l.Axis, l.Slice)
}

// Position is an axis and the slice on it.
type Position struct {
	Axis  surface.Axis
	Slice float64
}

// Hover is the view under the pointer. The zero value means none.
type Hover struct {
	View surface.View
	Type surface.ViewType
}

// Options configures New.
type Options struct {
	Scope   *widget.Scope
	Lock    *reactive.Cell[Lock]
	Factory surface.Factory
	// Instances and ViewType come from the widget's setup arguments.
	Instances func() map[surface.View]surface.Projection
	ViewType  func(surface.View) (surface.ViewType, bool)
	Logger    *slog.Logger
}

// Follower is the derived slice state of one widget instance.
type Follower struct {
	st        *store.Store
	lock      *reactive.Cell[Lock]
	factory   surface.Factory
	instances func() map[surface.View]surface.Projection
	viewType  func(surface.View) (surface.ViewType, bool)
	log       *slog.Logger

	hover     *reactive.Cell[Hover]
	axis      *reactive.Derived[surface.Axis]
	slice     *reactive.Derived[float64]
	position  *reactive.Derived[Position]
	effective *reactive.Derived[Position]
}

// New builds a follower and registers its hooks and effects on opts.Scope.
// It must be called from a widget's setup.
func New(opts Options) (*Follower, error) {
	s := opts.Scope
	g := s.Graph()
	f := &Follower{
		st:        s.Store(),
		lock:      opts.Lock,
		factory:   opts.Factory,
		instances: opts.Instances,
		viewType:  opts.ViewType,
		log:       opts.Logger,
		hover:     reactive.NewCell(g, Hover{}),
	}
	if f.lock == nil {
		f.lock = reactive.NewCell(g, Floating())
	}
	if f.log == nil {
		f.log = slog.Default()
	}
	if f.instances == nil {
		f.instances = func() map[surface.View]surface.Projection { return nil }
	}
	if f.viewType == nil {
		f.viewType = func(surface.View) (surface.ViewType, bool) { return "", false }
	}

	f.axis = reactive.NewDerived(g, func(t *reactive.Tracker) surface.Axis {
		h := f.hover.Get(t)
		if h.View == nil {
			return surface.AxisInvalid
		}
		if a, ok := h.View.Axis(); ok {
			return a
		}
		return surface.AxisInvalid
	})
	f.slice = reactive.NewDerived(g, func(t *reactive.Tracker) float64 {
		return f.st.Slice(t, f.axis.Get(t))
	})
	f.position = reactive.NewDerived(g, func(t *reactive.Tracker) Position {
		return Position{Axis: f.axis.Get(t), Slice: f.slice.Get(t)}
	})
	f.effective = reactive.NewDerived(g, func(t *reactive.Tracker) Position {
		if l := f.lock.Get(t); l.Locked {
			return Position{Axis: l.Axis, Slice: l.Slice}
		}
		return f.position.Get(t)
	})

	if err := s.OnViewMouseEvent(f.onPointer); err != nil {
		return nil, err
	}
	if err := s.On(hooks.AddedToView, func(a widget.HookArgs) hooks.Result {
		f.applyVisibility(a.View, a.Projection, f.hover.Peek(), f.lock.Peek(), f.st.Snapshot().Visualization.Slices)
		return hooks.OK()
	}); err != nil {
		return nil, err
	}

	if _, err := widget.Observe(s, reactive.Func[manipulatorInput](func(t *reactive.Tracker) manipulatorInput {
		return manipulatorInput{pos: f.position.Get(t), lock: f.lock.Get(t), spacing: f.st.Spacing().Read(t)}
	}), f.updateManipulator, reactive.Immediate()); err != nil {
		return nil, err
	}

	if _, err := widget.Observe(s, reactive.Func[visibilityInput](func(t *reactive.Tracker) visibilityInput {
		return visibilityInput{
			hover:     f.hover.Get(t),
			effective: f.effective.Get(t),
			lock:      f.lock.Get(t),
			slices:    f.st.Slices().Read(t),
		}
	}), f.updateVisibility); err != nil {
		return nil, err
	}
	return f, nil
}

// Hover returns the view under the pointer.
func (f *Follower) Hover() reactive.Source[Hover] { return f.hover }

// Axis returns the axis of the hovered view, AxisInvalid when the hovered
// view is not a slice view or nothing is hovered.
func (f *Follower) Axis() reactive.Source[surface.Axis] { return f.axis }

// Slice returns the current slice on Axis.
func (f *Follower) Slice() reactive.Source[float64] { return f.slice }

// Position returns Axis and Slice together.
func (f *Follower) Position() reactive.Source[Position] { return f.position }

// Effective returns the lock when locked, else Position.
func (f *Follower) Effective() reactive.Source[Position] { return f.effective }

// Lock returns the lock cell.
func (f *Follower) Lock() *reactive.Cell[Lock] { return f.lock }

func (f *Follower) onPointer(a widget.HookArgs) {
	if a.Pointer == nil {
		return
	}
	switch a.Pointer.Kind {
	case surface.PointerEnter, surface.PointerMove:
		f.hover.Set(Hover{View: a.View, Type: a.ViewType})
	case surface.PointerLeave:
		// Leaving a view other than the hovered one is stale.
		if cur := f.hover.Peek(); cur.View == nil || cur.View == a.View {
			f.hover.Set(Hover{})
		}
	}
}

type manipulatorInput struct {
	pos     Position
	lock    Lock
	spacing surface.Vec3
}

func (f *Follower) updateManipulator(in manipulatorInput) {
	if in.lock.Locked || !in.pos.Axis.Valid() || f.factory == nil {
		return
	}
	m := f.factory.Manipulator()
	if m == nil {
		return
	}
	normal := surface.Unit(in.pos.Axis)
	var origin surface.Vec3
	origin[in.pos.Axis] = in.pos.Slice * in.spacing[in.pos.Axis]
	m.SetNormal(normal)
	m.SetOrigin(origin)
}

type visibilityInput struct {
	hover     Hover
	effective Position
	lock      Lock
	slices    surface.Vec3
}

func (f *Follower) updateVisibility(in visibilityInput) {
	for view, proj := range f.instances() {
		f.applyVisibility(view, proj, in.hover, in.lock, in.slices)
	}
}

func (f *Follower) applyVisibility(view surface.View, proj surface.Projection, h Hover, l Lock, slices surface.Vec3) {
	if view == nil || proj == nil {
		return
	}
	v := f.Visible(view, h, l, slices)
	proj.SetVisibility(v)
	proj.SetContextVisibility(v)
	view.Render()
}

// Visible decides whether the widget shows on view.
func (f *Follower) Visible(view surface.View, h Hover, l Lock, slices surface.Vec3) bool {
	if l.Locked {
		a, ok := view.Axis()
		return ok && a == l.Axis && math.Abs(slices[a]-l.Slice) < SliceTolerance
	}
	if h.View == nil {
		return false
	}
	vt, ok := f.viewType(view)
	return ok && vt == h.Type
}
