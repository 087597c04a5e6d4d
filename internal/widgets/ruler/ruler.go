// Package ruler implements a two-point distance widget.
//
// Placing the first point locks the ruler to the hovered axis and slice. If
// the hovered slice changes (or the pointer leaves the view) before the
// second point is placed, the ruler starts over. Placing the second point
// completes it and gives focus back to the provider.
package ruler

import (
	"fmt"

	"github.com/jask/slicewidgets/internal/follower"
	"github.com/jask/slicewidgets/internal/reactive"
	"github.com/jask/slicewidgets/internal/scene"
	"github.com/jask/slicewidgets/internal/surface"
	"github.com/jask/slicewidgets/internal/widget"
)

const (
	TypeName      = "Ruler"
	RecordVersion = "1.0"
)

// PlaceState is how far placement has progressed.
type PlaceState int

const (
	Start PlaceState = iota + 1
	Partial
	Complete
)

func (s PlaceState) String() string {
	switch s {
	case Start:
		return "start"
	case Partial:
		return "partial"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("PlaceState(%d)", int(s))
}

// Type returns the registrable ruler type.
func Type() widget.Type {
	return widget.Type{Name: TypeName, Setup: Setup}
}

// Factory is the ruler's behavior object.
type Factory struct {
	*scene.Factory
	id     int
	place  *reactive.Cell[PlaceState]
	lock   *reactive.Cell[follower.Lock]
	follow *follower.Follower
}

// PlaceState returns the current placement state.
func (f *Factory) PlaceState() PlaceState { return f.place.Peek() }

// Lock returns the current lock.
func (f *Factory) Lock() follower.Lock { return f.lock.Peek() }

// Follower returns the slice follower driving the ruler.
func (f *Factory) Follower() *follower.Follower { return f.follow }

// Length is the distance between the two points, 0 until both are placed.
func (f *Factory) Length() float64 {
	pts := f.Handles().HandleList()
	if len(pts) < 2 {
		return 0
	}
	return scene.Distance(pts[0], pts[1])
}

// Setup builds a ruler instance.
func Setup(s *widget.Scope, args widget.Args) (widget.Instance, error) {
	g := s.Graph()
	f := &Factory{
		Factory: scene.NewFactory(TypeName, 2),
		id:      args.ID,
		place:   reactive.NewCell(g, Start),
		lock:    reactive.NewCell(g, follower.Floating()),
	}
	if args.InitialState != nil {
		if err := f.restore(*args.InitialState); err != nil {
			return widget.Instance{}, err
		}
	}

	fl, err := follower.New(follower.Options{
		Scope:     s,
		Lock:      f.lock,
		Factory:   f,
		Instances: args.Instances,
		ViewType:  args.ViewType,
		Logger:    args.Logger,
	})
	if err != nil {
		return widget.Instance{}, err
	}
	f.follow = fl

	if _, err := widget.Observe(s, fl.Position(), func(pos follower.Position) {
		if f.place.Peek() != Partial {
			return
		}
		if l := f.lock.Peek(); pos.Axis != l.Axis || pos.Slice != l.Slice {
			f.reset()
		}
	}); err != nil {
		return widget.Instance{}, err
	}

	unfocus := args.UnfocusSelf
	if _, err := widget.Observe(s, reactive.Source[PlaceState](f.place), func(ps PlaceState) {
		if ps == Complete && unfocus != nil {
			unfocus()
		}
	}); err != nil {
		return widget.Instance{}, err
	}

	if err := s.OnWidgetStateChanged(func(widget.HookArgs) { f.onStateChanged() }); err != nil {
		return widget.Instance{}, err
	}

	return widget.Instance{Factory: f, Serialize: f.serialize}, nil
}

func (f *Factory) onStateChanged() {
	switch len(f.Handles().HandleList()) {
	case 1:
		pos := f.follow.Position().Read(nil)
		f.place.Set(Partial)
		f.lock.Set(follower.LockAt(pos.Axis, pos.Slice))
	case 2:
		f.place.Set(Complete)
	}
}

func (f *Factory) reset() {
	f.lock.Set(follower.Floating())
	f.place.Set(Start)
	f.Handles().ClearHandleList()
}

func (f *Factory) serialize() widget.Record {
	data := map[string]any{
		"coordinates": "World",
		"point1":      []float64{},
		"point2":      []float64{},
		"length":      f.Length(),
	}
	pts := f.Handles().HandleList()
	if len(pts) > 0 {
		data["point1"] = widget.List(pts[0])
	}
	if len(pts) > 1 {
		data["point2"] = widget.List(pts[1])
	}
	if l := f.lock.Peek(); l.Locked {
		data["axis"] = int(l.Axis)
		data["slice"] = l.Slice
	}
	return widget.Record{
		Version: RecordVersion,
		Type:    TypeName,
		Name:    fmt.Sprintf("ruler-%d", f.id),
		Data:    data,
	}
}

func (f *Factory) restore(rec widget.Record) error {
	if rec.Type != TypeName {
		return fmt.Errorf("ruler: cannot restore %q record", rec.Type)
	}
	var pts []surface.Vec3
	for _, key := range []string{"point1", "point2"} {
		if p, ok := widget.Vec3(rec.Data[key]); ok {
			pts = append(pts, p)
		}
	}
	if len(pts) == 0 {
		return nil
	}
	axis, okAxis := widget.Int(rec.Data["axis"])
	slice, okSlice := widget.Float(rec.Data["slice"])
	if okAxis && okSlice {
		f.lock.Set(follower.LockAt(surface.Axis(axis), slice))
	}
	f.Handles().SetHandles(pts)
	if len(pts) == 2 {
		f.place.Set(Complete)
	} else {
		f.place.Set(Partial)
	}
	return nil
}
