// Package store holds the shared visualization state: the current slice on
// each axis, world spacing, and the focused widget. State lives in reactive
// cells, so computations that read it through a Tracker rerun when it
// changes. It is only mutated through Dispatch.
package store

import (
	"errors"
	"fmt"

	"github.com/jask/slicewidgets/internal/reactive"
	"github.com/jask/slicewidgets/internal/surface"
)

// Actions understood by Dispatch.
const (
	ActionFocusWidget         = "focusWidget"
	ActionUnfocusActiveWidget = "unfocusActiveWidget"
	ActionSetSlice            = "setSlice"
	ActionSetSlices           = "setSlices"
	ActionSetSpacing          = "setSpacing"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrBadPayload    = errors.New("bad payload")
)

// SlicePayload moves the slice on one axis.
type SlicePayload struct {
	Axis  surface.Axis
	Value float64
}

// Options seeds the store.
type Options struct {
	Slices  surface.Vec3
	Spacing surface.Vec3
}

// State is a plain copy of the store.
type State struct {
	Visualization Visualization
	FocusedID     int
}

// Visualization is the slice/orientation part of State.
type Visualization struct {
	Slices  surface.Vec3
	Spacing surface.Vec3
}

// Store is the shared application state.
type Store struct {
	g       *reactive.Graph
	slices  *reactive.Cell[surface.Vec3]
	spacing *reactive.Cell[surface.Vec3]
	focused *reactive.Cell[int]
}

// New creates a store on g. A zero spacing component defaults to 1.
func New(g *reactive.Graph, opts Options) *Store {
	spacing := opts.Spacing
	for i := range spacing {
		if spacing[i] <= 0 {
			spacing[i] = 1
		}
	}
	return &Store{
		g:       g,
		slices:  reactive.NewCell(g, opts.Slices),
		spacing: reactive.NewCell(g, spacing),
		focused: reactive.NewCell(g, 0),
	}
}

// Graph returns the graph the store's cells live on.
func (s *Store) Graph() *reactive.Graph { return s.g }

// Slices is the reactive slice position per axis.
func (s *Store) Slices() reactive.Source[surface.Vec3] { return s.slices }

// Spacing is the reactive world spacing per axis.
func (s *Store) Spacing() reactive.Source[surface.Vec3] { return s.spacing }

// FocusedID is the reactive id of the focused widget, 0 when none.
func (s *Store) FocusedID() reactive.Source[int] { return s.focused }

// Slice returns the current slice on a, recording the read on t. An invalid
// axis yields 0.
func (s *Store) Slice(t *reactive.Tracker, a surface.Axis) float64 {
	slices := s.slices.Get(t)
	if !a.Valid() {
		return 0
	}
	return slices[a]
}

// Snapshot returns a plain copy of the state.
func (s *Store) Snapshot() State {
	return State{
		Visualization: Visualization{Slices: s.slices.Peek(), Spacing: s.spacing.Peek()},
		FocusedID:     s.focused.Peek(),
	}
}

// Dispatch applies action.
func (s *Store) Dispatch(action string, payload any) error {
	switch action {
	case ActionFocusWidget:
		id, ok := payload.(int)
		if !ok {
			return fmt.Errorf("%w: %s wants int, got %T", ErrBadPayload, action, payload)
		}
		s.focused.Set(id)
	case ActionUnfocusActiveWidget:
		s.focused.Set(0)
	case ActionSetSlice:
		p, ok := payload.(SlicePayload)
		if !ok || !p.Axis.Valid() {
			return fmt.Errorf("%w: %s wants SlicePayload with a valid axis, got %v", ErrBadPayload, action, payload)
		}
		s.slices.Update(func(v surface.Vec3) surface.Vec3 {
			v[p.Axis] = p.Value
			return v
		})
	case ActionSetSlices:
		v, ok := payload.(surface.Vec3)
		if !ok {
			return fmt.Errorf("%w: %s wants Vec3, got %T", ErrBadPayload, action, payload)
		}
		s.slices.Set(v)
	case ActionSetSpacing:
		v, ok := payload.(surface.Vec3)
		if !ok {
			return fmt.Errorf("%w: %s wants Vec3, got %T", ErrBadPayload, action, payload)
		}
		for i := range v {
			if v[i] <= 0 {
				return fmt.Errorf("%w: spacing must be positive, got %v", ErrBadPayload, v)
			}
		}
		s.spacing.Set(v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return nil
}

// Watch observes getter over the store and calls fn with each new value.
func Watch[T any](s *Store, getter func(*reactive.Tracker) T, fn func(T), opts ...reactive.ObserveOption) (reactive.Disposer, error) {
	return reactive.Observe(s.g, reactive.Func[T](getter), fn, opts...)
}
