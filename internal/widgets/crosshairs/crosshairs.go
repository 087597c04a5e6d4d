// Package crosshairs implements a single-handle widget that drives the shared
// slice position. Moving the handle moves every slice view to it, and moving
// a slice moves the handle.
package crosshairs

import (
	"fmt"
	"math"

	"github.com/jask/slicewidgets/internal/follower"
	"github.com/jask/slicewidgets/internal/hooks"
	"github.com/jask/slicewidgets/internal/reactive"
	"github.com/jask/slicewidgets/internal/scene"
	"github.com/jask/slicewidgets/internal/store"
	"github.com/jask/slicewidgets/internal/surface"
	"github.com/jask/slicewidgets/internal/widget"
)

const (
	TypeName      = "Crosshairs"
	RecordVersion = "1.0"
)

const epsilon = 1e-9

func Type() widget.Type {
	return widget.Type{Name: TypeName, Setup: Setup}
}

// Factory is the crosshairs behavior object.
type Factory struct {
	*scene.Factory
	st      *store.Store
	follow  *follower.Follower
	syncing bool
}

// Place moves the handle to p projected on the manipulator plane, creating it
// on first use.
func (f *Factory) Place(p surface.Vec3) bool {
	p = f.Plane().Project(p)
	if len(f.Handles().HandleList()) == 0 {
		return f.Handles().AddHandle(p)
	}
	return f.Handles().MoveHandle(0, p)
}

// Position returns the handle, if placed.
func (f *Factory) Position() (surface.Vec3, bool) {
	pts := f.Handles().HandleList()
	if len(pts) == 0 {
		return surface.Vec3{}, false
	}
	return pts[0], true
}

// Follower returns the slice follower driving the manipulator.
func (f *Factory) Follower() *follower.Follower { return f.follow }

func Setup(s *widget.Scope, args widget.Args) (widget.Instance, error) {
	f := &Factory{
		Factory: scene.NewFactory(TypeName, 1),
		st:      s.Store(),
	}
	if args.InitialState != nil {
		if err := f.restore(*args.InitialState); err != nil {
			return widget.Instance{}, err
		}
	}

	fl, err := follower.New(follower.Options{
		Scope:     s,
		Factory:   f,
		Instances: args.Instances,
		ViewType:  args.ViewType,
		Logger:    args.Logger,
	})
	if err != nil {
		return widget.Instance{}, err
	}
	f.follow = fl

	if err := s.On(hooks.BeforeAddToView, func(a widget.HookArgs) hooks.Result {
		if a.View == nil {
			return hooks.Reject()
		}
		if _, ok := a.View.Axis(); !ok {
			return hooks.Reject()
		}
		return hooks.OK()
	}); err != nil {
		return widget.Instance{}, err
	}

	log := args.Logger
	if err := s.OnWidgetStateChanged(func(widget.HookArgs) {
		if f.syncing {
			return
		}
		if err := f.pushSlices(); err != nil && log != nil {
			log.Warn("crosshairs: set slices", "err", err)
		}
	}); err != nil {
		return widget.Instance{}, err
	}

	if _, err := widget.WatchStore(s, func(t *reactive.Tracker) surface.Vec3 {
		slices, spacing := f.st.Slices().Read(t), f.st.Spacing().Read(t)
		var world surface.Vec3
		for i := range world {
			world[i] = slices[i] * spacing[i]
		}
		return world
	}, f.pullSlices); err != nil {
		return widget.Instance{}, err
	}

	return widget.Instance{Factory: f, Serialize: f.serialize}, nil
}

// pushSlices writes the handle position, in slice units, to the store.
func (f *Factory) pushSlices() error {
	pos, ok := f.Position()
	if !ok {
		return nil
	}
	spacing := f.st.Snapshot().Visualization.Spacing
	var slices surface.Vec3
	for i := range slices {
		slices[i] = pos[i] / spacing[i]
	}
	return f.st.Dispatch(store.ActionSetSlices, slices)
}

// pullSlices moves the handle when the slices move elsewhere.
func (f *Factory) pullSlices(world surface.Vec3) {
	pos, ok := f.Position()
	if !ok || near(pos, world) {
		return
	}
	f.syncing = true
	defer func() { f.syncing = false }()
	f.Handles().MoveHandle(0, world)
}

func near(a, b surface.Vec3) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}

func (f *Factory) serialize() widget.Record {
	pos := []float64{}
	if p, ok := f.Position(); ok {
		pos = widget.List(p)
	}
	return widget.Record{
		Version: RecordVersion,
		Type:    TypeName,
		Data:    map[string]any{"position": pos},
	}
}

func (f *Factory) restore(rec widget.Record) error {
	if rec.Type != TypeName {
		return fmt.Errorf("crosshairs: cannot restore %q record", rec.Type)
	}
	if p, ok := widget.Vec3(rec.Data["position"]); ok {
		f.Handles().SetHandles([]surface.Vec3{p})
	}
	return nil
}
