package hooks

import "fmt"

// Context is a hook registry plus an ordered list of pending disposals.
type Context[A any] struct {
	hooks    map[Name][]Func[A]
	pending  []func()
	stack    *Stack[A]
	disposed bool
}

// NewContext returns an empty context.
func NewContext[A any]() *Context[A] {
	return &Context[A]{hooks: make(map[Name][]Func[A])}
}

// On appends fn to the callbacks of name. It fails unless c is the current
// context of the stack it was opened on.
func (c *Context[A]) On(name Name, fn Func[A]) error {
	if c.stack == nil || c.stack.Current() != c {
		return fmt.Errorf("%w: %s", ErrOutsideContext, name)
	}
	c.hooks[name] = append(c.hooks[name], fn)
	return nil
}

// OnWidgetStateChanged registers fn on WidgetStateChanged.
func (c *Context[A]) OnWidgetStateChanged(fn func(A)) error {
	return c.On(WidgetStateChanged, observer(fn))
}

// OnViewMouseEvent registers fn on ViewMouseEvent.
func (c *Context[A]) OnViewMouseEvent(fn func(A)) error {
	return c.On(ViewMouseEvent, observer(fn))
}

// OnBeforeDelete registers fn to run before teardown begins.
func (c *Context[A]) OnBeforeDelete(fn func()) error {
	return c.On(BeforeDelete, func(A) Result { fn(); return OK() })
}

// OnDeleted registers fn to run once teardown has happened.
func (c *Context[A]) OnDeleted(fn func()) error {
	return c.On(Deleted, func(A) Result { fn(); return OK() })
}

func observer[A any](fn func(A)) Func[A] {
	return func(a A) Result {
		fn(a)
		return OK()
	}
}

// Invoke runs every callback registered under name, in registration order,
// and returns their results in the same order.
func (c *Context[A]) Invoke(name Name, payload A) []Result {
	fns := c.hooks[name]
	if len(fns) == 0 {
		return nil
	}
	// Callbacks registered during the invocation do not run in it.
	fns = fns[:len(fns):len(fns)]
	results := make([]Result, 0, len(fns))
	for _, fn := range fns {
		results = append(results, fn(payload))
	}
	return results
}

// Count returns how many callbacks are registered under name.
func (c *Context[A]) Count(name Name) int {
	return len(c.hooks[name])
}

// Defer schedules fn to run when the context is disposed.
func (c *Context[A]) Defer(fn func()) {
	if c.disposed {
		fn()
		return
	}
	c.pending = append(c.pending, fn)
}

// Dispose runs the pending disposals in reverse order. Later calls do nothing.
func (c *Context[A]) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	for len(c.pending) > 0 {
		fn := c.pending[len(c.pending)-1]
		c.pending = c.pending[:len(c.pending)-1]
		fn()
	}
}

// Stack is the strictly nested stack of open contexts.
type Stack[A any] struct {
	items []*Context[A]
}

// Open pushes c, making it current.
func (s *Stack[A]) Open(c *Context[A]) {
	c.stack = s
	s.items = append(s.items, c)
}

// Current returns the most recently opened context, or nil.
func (s *Stack[A]) Current() *Context[A] {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}

// Len returns the nesting depth.
func (s *Stack[A]) Len() int {
	return len(s.items)
}

// Close pops c. c must be the current context.
func (s *Stack[A]) Close(c *Context[A]) error {
	if s.Current() != c {
		return ErrUnbalanced
	}
	s.items = s.items[:len(s.items)-1]
	return nil
}

// CloseCurrent pops whatever context is current.
func (s *Stack[A]) CloseCurrent() error {
	if len(s.items) == 0 {
		return ErrUnbalanced
	}
	s.items = s.items[:len(s.items)-1]
	return nil
}
