// Package widget defines what a widget type is: a setup function run once per
// instance inside a hook context, the arguments it receives, and the record it
// serializes to.
package widget

import (
	"log/slog"

	"github.com/jask/slicewidgets/internal/hooks"
	"github.com/jask/slicewidgets/internal/reactive"
	"github.com/jask/slicewidgets/internal/store"
	"github.com/jask/slicewidgets/internal/surface"
)

// HookArgs is the payload of every lifecycle hook.
type HookArgs struct {
	ID          int
	Type        string
	WidgetState surface.WidgetState
	Factory     surface.Factory
	Instances   map[surface.View]surface.Projection
	View        surface.View
	Projection  surface.Projection
	ViewType    surface.ViewType
	// Pointer is set for ViewMouseEvent.
	Pointer *surface.PointerEvent
}

type (
	Context = hooks.Context[HookArgs]
	Stack   = hooks.Stack[HookArgs]
)

// Record is the persisted form of a widget. Data is owned by the widget type.
type Record struct {
	Version string         `json:"version" toml:"version" msgpack:"version"`
	Type    string         `json:"type" toml:"type" msgpack:"type"`
	Name    string         `json:"name,omitempty" toml:"name,omitempty" msgpack:"name,omitempty"`
	Data    map[string]any `json:"data" toml:"data" msgpack:"data"`
}

// Args is what the provider hands to a widget type's setup.
type Args struct {
	ID    int
	Store *store.Store
	Graph *reactive.Graph
	// InitialState is set when restoring a persisted widget.
	InitialState *Record

	// These run on the next turn of the event loop, never synchronously.
	DeleteSelf  func()
	FocusSelf   func()
	UnfocusSelf func()

	// Instances returns the projections of the widget, keyed by view.
	Instances func() map[surface.View]surface.Projection
	// ViewType returns the registered type of a view.
	ViewType func(surface.View) (surface.ViewType, bool)

	Logger *slog.Logger
}

// Instance is what setup produces.
type Instance struct {
	Factory   surface.Factory
	Serialize func() Record
}

// Setup builds one widget instance. Hooks must be registered on s before it
// returns.
type Setup func(s *Scope, args Args) (Instance, error)

// Type is a registrable widget type.
type Type struct {
	Name  string
	Setup Setup
}
