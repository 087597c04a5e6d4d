// Package scene is a software rendering surface. It implements every
// collaborator in package surface in memory, so the widget core can run in a
// terminal host and in tests without a graphics stack.
package scene

import (
	"sort"

	"github.com/jask/slicewidgets/internal/surface"
)

// listeners is an ordered set of callbacks keyed by registration number.
type listeners[F any] struct {
	next int
	fns  map[int]F
}

func (l *listeners[F]) add(fn F) surface.Subscription {
	if l.fns == nil {
		l.fns = make(map[int]F)
	}
	l.next++
	key := l.next
	l.fns[key] = fn
	return surface.SubscriptionFunc(func() { delete(l.fns, key) })
}

func (l *listeners[F]) each() []F {
	keys := make([]int, 0, len(l.fns))
	for k := range l.fns {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]F, 0, len(keys))
	for _, k := range keys {
		out = append(out, l.fns[k])
	}
	return out
}

func (l *listeners[F]) len() int {
	return len(l.fns)
}

// View is an in-memory viewport.
type View struct {
	name      string
	axis      surface.Axis
	hasAxis   bool
	manager   *Manager
	container *Container
	modified  listeners[func()]
	renders   int
}

// NewView returns a view with its own widget manager and container. Pass
// hasAxis=false for views that are not axis-aligned slices.
func NewView(name string, axis surface.Axis, hasAxis bool) *View {
	v := &View{name: name, axis: axis, hasAxis: hasAxis && axis.Valid()}
	v.manager = NewManager()
	v.container = NewContainer()
	return v
}

func (v *View) Name() string { return v.name }

// Axis implements surface.View.
func (v *View) Axis() (surface.Axis, bool) {
	if !v.hasAxis {
		return surface.AxisInvalid, false
	}
	return v.axis, true
}

// WidgetManager implements surface.View.
func (v *View) WidgetManager() surface.Manager {
	if v.manager == nil {
		return nil
	}
	return v.manager
}

// Manager returns the concrete manager, or nil.
func (v *View) Manager() *Manager { return v.manager }

// SetManager swaps the widget manager; nil detaches it.
func (v *View) SetManager(m *Manager) {
	v.manager = m
	v.Modified()
}

// Render implements surface.View.
func (v *View) Render() { v.renders++ }

// Renders returns how many times the view was asked to render.
func (v *View) Renders() int { return v.renders }

// Container implements surface.View.
func (v *View) Container() surface.Container {
	if v.container == nil {
		return nil
	}
	return v.container
}

// PointerTarget returns the concrete container pointer events go to.
func (v *View) PointerTarget() *Container { return v.container }

// SetContainer replaces the container and signals a modification.
func (v *View) SetContainer(c *Container) {
	v.container = c
	v.Modified()
}

// OnModified implements surface.View.
func (v *View) OnModified(fn func()) surface.Subscription {
	return v.modified.add(fn)
}

// Modified notifies modification listeners.
func (v *View) Modified() {
	for _, fn := range v.modified.each() {
		fn()
	}
}

// Container fans pointer events out to listeners.
type Container struct {
	byKind map[surface.PointerKind]*listeners[func(surface.PointerEvent)]
}

func NewContainer() *Container {
	return &Container{byKind: make(map[surface.PointerKind]*listeners[func(surface.PointerEvent)])}
}

// Listen implements surface.Container.
func (c *Container) Listen(kind surface.PointerKind, fn func(surface.PointerEvent)) surface.Subscription {
	l, ok := c.byKind[kind]
	if !ok {
		l = &listeners[func(surface.PointerEvent)]{}
		c.byKind[kind] = l
	}
	return l.add(fn)
}

// Listeners returns the number of listeners for kind.
func (c *Container) Listeners(kind surface.PointerKind) int {
	if l, ok := c.byKind[kind]; ok {
		return l.len()
	}
	return 0
}

// Dispatch delivers ev to the listeners of ev.Kind.
func (c *Container) Dispatch(ev surface.PointerEvent) {
	l, ok := c.byKind[ev.Kind]
	if !ok {
		return
	}
	for _, fn := range l.each() {
		fn(ev)
	}
}
