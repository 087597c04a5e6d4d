// Package provider owns the widgets of a multi-view surface. It creates and
// deletes widget instances, projects every widget onto every registered view,
// routes pointer events from views to the widgets attached to them, and
// arbitrates input focus.
//
// All methods must be called from the event loop goroutine. Callbacks a widget
// uses to act on itself (delete, focus, unfocus) are deferred to the next turn
// through the Scheduler so they never run while the provider is iterating its
// own tables.
package provider

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/jask/slicewidgets/internal/hooks"
	"github.com/jask/slicewidgets/internal/store"
	"github.com/jask/slicewidgets/internal/surface"
	"github.com/jask/slicewidgets/internal/widget"
)

var ErrMissingDependency = errors.New("provider: missing dependency")

// Widget is the provider's record of one widget instance.
type Widget struct {
	ID        int
	Type      string
	Factory   surface.Factory
	Context   *widget.Context
	Instances map[surface.View]surface.Projection
	Serialize func() widget.Record

	subscriptions []surface.Subscription
	deleted       bool
}

// Deleted reports whether the widget has been torn down.
func (w *Widget) Deleted() bool { return w.deleted }

// Options wires a Provider.
type Options struct {
	Store     *store.Store
	Registry  *widget.Registry
	Scheduler Scheduler
	Logger    *slog.Logger
}

// CreateOptions are per-instance creation options.
type CreateOptions struct {
	InitialState *widget.Record
}

// Provider coordinates widgets across views.
type Provider struct {
	store    *store.Store
	registry *widget.Registry
	sched    Scheduler
	log      *slog.Logger

	stack   widget.Stack
	widgets map[int]*Widget
	nextID  int

	views     []surface.View
	viewTypes map[surface.View]surface.ViewType
	viewSubs  map[surface.View]surface.Subscription
}

// New returns an empty provider.
func New(opts Options) (*Provider, error) {
	if opts.Store == nil || opts.Registry == nil || opts.Scheduler == nil {
		return nil, fmt.Errorf("%w: store, registry and scheduler are required", ErrMissingDependency)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Provider{
		store:     opts.Store,
		registry:  opts.Registry,
		sched:     opts.Scheduler,
		log:       log,
		widgets:   make(map[int]*Widget),
		nextID:    1,
		viewTypes: make(map[surface.View]surface.ViewType),
		viewSubs:  make(map[surface.View]surface.Subscription),
	}, nil
}

// Store returns the shared store.
func (p *Provider) Store() *store.Store { return p.store }

// Get returns the widget with id.
func (p *Provider) Get(id int) (*Widget, bool) {
	w, ok := p.widgets[id]
	return w, ok
}

// Widgets returns all widgets in id order.
func (p *Provider) Widgets() []*Widget {
	ids := slices.Sorted(maps.Keys(p.widgets))
	out := make([]*Widget, 0, len(ids))
	for _, id := range ids {
		out = append(out, p.widgets[id])
	}
	return out
}

// FilterByType returns the widgets of type t in id order.
func (p *Provider) FilterByType(t string) []*Widget {
	var out []*Widget
	for _, w := range p.Widgets() {
		if w.Type == t {
			out = append(out, w)
		}
	}
	return out
}

// Views returns the registered views in registration order.
func (p *Provider) Views() []surface.View {
	return slices.Clone(p.views)
}

// ViewType returns the type v was registered with.
func (p *Provider) ViewType(v surface.View) (surface.ViewType, bool) {
	vt, ok := p.viewTypes[v]
	return vt, ok
}

// Records serializes every widget in id order.
func (p *Provider) Records() []widget.Record {
	ws := p.Widgets()
	out := make([]widget.Record, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Serialize())
	}
	return out
}

// CreateWidget sets up a new widget of the named type and attaches it to every
// registered view. A non-nil error with a non-nil widget means the widget was
// created but some attach hooks failed.
func (p *Provider) CreateWidget(typeName string, opts CreateOptions) (*Widget, error) {
	t, err := p.registry.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	id := p.nextID
	log := p.log.With("widget", id, "type", typeName)

	ctx := hooks.NewContext[widget.HookArgs]()
	w := &Widget{
		ID:        id,
		Type:      typeName,
		Context:   ctx,
		Instances: make(map[surface.View]surface.Projection),
	}
	args := widget.Args{
		ID:           id,
		Store:        p.store,
		Graph:        p.store.Graph(),
		InitialState: opts.InitialState,
		DeleteSelf:   func() { p.sched.Defer(func() { p.DeleteWidget(id) }) },
		FocusSelf: func() {
			p.sched.Defer(func() {
				if err := p.FocusWidget(id); err != nil {
					log.Warn("focus failed", "err", err)
				}
			})
		},
		UnfocusSelf: func() { p.sched.Defer(p.Unfocus) },
		Instances:   func() map[surface.View]surface.Projection { return maps.Clone(w.Instances) },
		ViewType:    p.ViewType,
		Logger:      log,
	}

	p.stack.Open(ctx)
	inst, err := t.Setup(widget.NewScope(ctx, p.store.Graph(), p.store), args)
	if cerr := p.stack.Close(ctx); cerr != nil && err == nil {
		err = cerr
	}
	if err == nil && inst.Factory == nil {
		err = errors.New("setup returned no factory")
	}
	if err != nil {
		// Undo whatever setup managed to register.
		ctx.Invoke(hooks.BeforeDelete, widget.HookArgs{ID: id, Type: typeName})
		ctx.Dispose()
		ctx.Invoke(hooks.Deleted, widget.HookArgs{ID: id, Type: typeName})
		return nil, fmt.Errorf("setup %s: %w", typeName, err)
	}

	w.Factory = inst.Factory
	w.Serialize = inst.Serialize
	if w.Serialize == nil {
		w.Serialize = func() widget.Record { return widget.Record{Version: "1.0", Type: typeName} }
	}
	p.widgets[id] = w
	p.nextID++

	if state := w.Factory.WidgetState(); state != nil {
		w.subscriptions = append(w.subscriptions, state.OnModified(func() {
			if w.deleted {
				return
			}
			w.Context.Invoke(hooks.WidgetStateChanged, p.hookArgs(w, nil, nil))
		}))
	}
	log.Debug("widget created")

	var errs []error
	for _, v := range p.Views() {
		if err := p.attach(w, v); err != nil {
			errs = append(errs, err)
		}
	}
	return w, errors.Join(errs...)
}

// AddView registers v and attaches every widget to it. Registering a view
// twice does nothing.
func (p *Provider) AddView(v surface.View, vt surface.ViewType) error {
	if v == nil || slices.Contains(p.views, v) {
		return nil
	}
	if vt == "" {
		vt = surface.ViewTypeDefault
	}
	p.views = append(p.views, v)
	p.viewTypes[v] = vt
	p.viewSubs[v] = p.watchView(v)
	p.log.Debug("view added", "view", viewName(v), "view_type", vt)

	var errs []error
	for _, w := range p.Widgets() {
		if err := p.attach(w, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DetachView unregisters v and detaches every widget from it. Unknown views
// are ignored.
func (p *Provider) DetachView(v surface.View) {
	idx := slices.Index(p.views, v)
	if idx < 0 {
		return
	}
	for _, w := range p.Widgets() {
		p.detach(w, v)
	}
	p.views = slices.Delete(p.views, idx, idx+1)
	if sub, ok := p.viewSubs[v]; ok {
		sub.Unsubscribe()
		delete(p.viewSubs, v)
	}
	delete(p.viewTypes, v)
	p.log.Debug("view detached", "view", viewName(v))
}

// FocusWidget gives input focus to the widget on every view whose beforeFocus
// hooks agree. The store records the focus only if some view granted it.
func (p *Provider) FocusWidget(id int) error {
	w, ok := p.widgets[id]
	if !ok {
		return nil
	}
	prev := p.store.Snapshot().FocusedID
	granted := false
	var errs []error
	for _, v := range p.Views() {
		wm := v.WidgetManager()
		if wm == nil {
			continue
		}
		proj, attached := w.Instances[v]
		if !attached {
			continue
		}
		args := p.hookArgs(w, v, nil)
		ok, err := hooks.Decide(w.Context.Invoke(hooks.BeforeFocus, args))
		if err != nil {
			errs = append(errs, err)
		}
		if !ok {
			p.log.Debug("focus vetoed", "widget", id, "view", viewName(v))
			continue
		}
		if !granted && prev != 0 && prev != id {
			p.releaseFocus()
		}
		granted = true
		wm.GrabFocus(proj)
		w.Context.Invoke(hooks.Focused, args)
	}
	if granted {
		if err := p.store.Dispatch(store.ActionFocusWidget, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Unfocus releases input focus on every view and clears the focused widget.
func (p *Provider) Unfocus() {
	p.releaseFocus()
	if err := p.store.Dispatch(store.ActionUnfocusActiveWidget, nil); err != nil {
		p.log.Error("unfocus dispatch failed", "err", err)
	}
}

func (p *Provider) releaseFocus() {
	for _, v := range p.Views() {
		wm := v.WidgetManager()
		if wm == nil {
			continue
		}
		wm.ReleaseFocus()
		for _, w := range p.Widgets() {
			if _, ok := w.Instances[v]; ok {
				w.Context.Invoke(hooks.UnFocused, p.hookArgs(w, v, nil))
			}
		}
	}
}

// DeleteWidget tears the widget down. Unknown ids are ignored.
func (p *Provider) DeleteWidget(id int) {
	w, ok := p.widgets[id]
	if !ok {
		return
	}
	for _, v := range p.Views() {
		p.detach(w, v)
	}
	args := p.hookArgs(w, nil, nil)
	w.Context.Invoke(hooks.BeforeDelete, args)
	for len(w.subscriptions) > 0 {
		last := len(w.subscriptions) - 1
		sub := w.subscriptions[last]
		w.subscriptions = w.subscriptions[:last]
		sub.Unsubscribe()
	}
	w.Context.Dispose()
	delete(p.widgets, id)
	w.deleted = true
	if p.store.Snapshot().FocusedID == id {
		if err := p.store.Dispatch(store.ActionUnfocusActiveWidget, nil); err != nil {
			p.log.Error("unfocus dispatch failed", "err", err)
		}
	}
	w.Context.Invoke(hooks.Deleted, args)

	// References are dropped only after every hook has run.
	w.Factory = nil
	w.Instances = nil
	w.Context = nil
	p.log.Debug("widget deleted", "widget", id, "type", w.Type)
}

func (p *Provider) attach(w *Widget, v surface.View) error {
	wm := v.WidgetManager()
	if wm == nil {
		return nil
	}
	if _, ok := w.Instances[v]; ok {
		return nil
	}
	ok, err := hooks.Decide(w.Context.Invoke(hooks.BeforeAddToView, p.hookArgs(w, v, nil)))
	if !ok {
		p.log.Debug("attach vetoed", "widget", w.ID, "view", viewName(v), "err", err)
		return err
	}
	w.Instances[v] = wm.AddWidget(w.Factory, p.viewTypes[v])
	w.Context.Invoke(hooks.AddedToView, p.hookArgs(w, v, nil))
	return nil
}

// detach always completes: it runs when a view goes away or a widget is
// deleted, and keeping the projection would leave it pointing at a view the
// provider no longer knows.
func (p *Provider) detach(w *Widget, v surface.View) {
	if _, ok := w.Instances[v]; !ok {
		return
	}
	args := p.hookArgs(w, v, nil)
	ok, err := hooks.Decide(w.Context.Invoke(hooks.BeforeRemoveFromView, args))
	if !ok {
		p.log.Warn("detach veto ignored", "widget", w.ID, "view", viewName(v), "err", err)
	}
	if wm := v.WidgetManager(); wm != nil {
		wm.RemoveWidget(w.Factory)
	}
	delete(w.Instances, v)
	w.Context.Invoke(hooks.RemovedFromView, args)
}

func (p *Provider) onViewEvent(v surface.View, ev surface.PointerEvent) {
	for _, w := range p.Widgets() {
		if _, ok := w.Instances[v]; ok {
			w.Context.Invoke(hooks.ViewMouseEvent, p.hookArgs(w, v, &ev))
		}
	}
}

// watchView forwards pointer events from v's container, following the
// container when v swaps it.
func (p *Provider) watchView(v surface.View) surface.Subscription {
	var (
		container surface.Container
		subs      []surface.Subscription
	)
	setContainer := func(c surface.Container) {
		for _, s := range subs {
			s.Unsubscribe()
		}
		subs = nil
		container = c
		if c == nil {
			return
		}
		for _, kind := range []surface.PointerKind{surface.PointerEnter, surface.PointerMove, surface.PointerLeave} {
			subs = append(subs, c.Listen(kind, func(ev surface.PointerEvent) {
				ev.Kind = kind
				p.onViewEvent(v, ev)
			}))
		}
	}
	setContainer(v.Container())
	mod := v.OnModified(func() {
		if c := v.Container(); c != container {
			setContainer(c)
		}
	})
	return surface.SubscriptionFunc(func() {
		mod.Unsubscribe()
		setContainer(nil)
	})
}

func (p *Provider) hookArgs(w *Widget, v surface.View, ptr *surface.PointerEvent) widget.HookArgs {
	args := widget.HookArgs{
		ID:        w.ID,
		Type:      w.Type,
		Factory:   w.Factory,
		Instances: maps.Clone(w.Instances),
		Pointer:   ptr,
	}
	if w.Factory != nil {
		args.WidgetState = w.Factory.WidgetState()
	}
	if v != nil {
		args.View = v
		args.ViewType = p.viewTypes[v]
		args.Projection = w.Instances[v]
	}
	return args
}

func viewName(v surface.View) string {
	if n, ok := v.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%p", v)
}
