package widget

import (
	"github.com/jask/slicewidgets/internal/hooks"
	"github.com/jask/slicewidgets/internal/reactive"
	"github.com/jask/slicewidgets/internal/store"
)

// Scope is the handle a setup function registers its reactions through.
type Scope struct {
	ctx *Context
	g   *reactive.Graph
	st  *store.Store
}

// NewScope wraps ctx. g and st are the graph and store the widget lives on.
func NewScope(ctx *Context, g *reactive.Graph, st *store.Store) *Scope {
	return &Scope{ctx: ctx, g: g, st: st}
}

func (s *Scope) Context() *Context      { return s.ctx }
func (s *Scope) Graph() *reactive.Graph { return s.g }
func (s *Scope) Store() *store.Store    { return s.st }

// On registers fn under name.
func (s *Scope) On(name hooks.Name, fn hooks.Func[HookArgs]) error {
	return s.ctx.On(name, fn)
}

// OnWidgetStateChanged registers fn for handle changes.
func (s *Scope) OnWidgetStateChanged(fn func(HookArgs)) error {
	return s.ctx.OnWidgetStateChanged(fn)
}

// OnViewMouseEvent registers fn for pointer events on attached views.
func (s *Scope) OnViewMouseEvent(fn func(HookArgs)) error {
	return s.ctx.OnViewMouseEvent(fn)
}

// OnBeforeDelete registers fn to run before teardown.
func (s *Scope) OnBeforeDelete(fn func()) error {
	return s.ctx.OnBeforeDelete(fn)
}

// OnDeleted registers fn to run after teardown.
func (s *Scope) OnDeleted(fn func()) error {
	return s.ctx.OnDeleted(fn)
}

// Observe is reactive.Observe bound to the widget's lifetime: the observation
// stops before the widget is torn down, or when its context is disposed,
// whichever comes first.
func Observe[T any](s *Scope, src reactive.Source[T], cb func(T), opts ...reactive.ObserveOption) (reactive.Disposer, error) {
	stop, err := reactive.Observe(s.g, src, cb, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.ctx.OnBeforeDelete(stop); err != nil {
		stop()
		return nil, err
	}
	s.ctx.Defer(stop)
	return stop, nil
}

// WatchStore is store.Watch bound to the widget's lifetime: the watch stops
// once the widget is deleted or its context is disposed.
func WatchStore[T any](s *Scope, getter func(*reactive.Tracker) T, fn func(T), opts ...reactive.ObserveOption) (reactive.Disposer, error) {
	stop, err := store.Watch(s.st, getter, fn, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.ctx.OnDeleted(stop); err != nil {
		stop()
		return nil, err
	}
	s.ctx.Defer(stop)
	return stop, nil
}
