package reactive

// Effect re-runs a getter whenever one of the nodes it read changes, and
// hands the result to a callback.
type Effect[T any] struct {
	g        *Graph
	id       uint64
	getter   func(*Tracker) T
	callback func(T)
	deps     deps
	active   bool
	running  bool
	rerun    bool
}

// NewEffect creates an inactive-until-started effect. Start runs the getter
// once to collect the initial dependencies.
func NewEffect[T any](g *Graph, getter func(*Tracker) T, callback func(T)) *Effect[T] {
	return &Effect[T]{g: g, id: g.allocID(), getter: getter, callback: callback, active: true}
}

// Start collects the initial dependencies and returns the getter's value.
// The callback is not invoked.
func (e *Effect[T]) Start() T {
	return e.run()
}

// Active reports whether the effect has not been stopped.
func (e *Effect[T]) Active() bool {
	return e.active
}

// Deps returns the number of nodes read during the most recent run.
func (e *Effect[T]) Deps() int {
	return e.deps.len()
}

// Stop detaches the effect from its dependencies. It is idempotent. A
// callback already running completes, but nothing runs afterwards.
func (e *Effect[T]) Stop() {
	if !e.active {
		return
	}
	e.active = false
	e.deps.prune(e)
}

// run evaluates the getter with fresh dependency tracking. Nodes read again
// stay subscribed; the rest are released afterwards.
func (e *Effect[T]) run() T {
	old := e.deps
	e.deps = deps{}
	e.g.push(e)
	defer e.g.pop()
	v := e.getter(&Tracker{sub: e})
	if !e.active {
		// Stopped from inside the getter; drop everything.
		old.prune(e)
		e.deps.prune(e)
		return v
	}
	old.release(e, &e.deps)
	return v
}

// trigger runs the getter and callback, allowing one extra settle pass when
// the callback dirties the effect's own dependencies.
func (e *Effect[T]) trigger() {
	e.running = true
	defer func() {
		e.running = false
		e.rerun = false
	}()
	for pass := 0; pass < 2; pass++ {
		e.rerun = false
		v := e.run()
		if !e.active {
			return
		}
		e.callback(v)
		if !e.rerun || !e.active {
			return
		}
	}
	// Out of passes with a write still pending. Re-read without the
	// callback so stale deriveds are clean and the next write reaches us.
	e.rerun = false
	e.run()
}

func (e *Effect[T]) nodeID() uint64 { return e.id }

func (e *Effect[T]) addDep(dep dependency) { e.deps.add(dep) }

func (e *Effect[T]) notify() {
	if !e.active {
		return
	}
	if e.running {
		e.rerun = true
		return
	}
	e.trigger()
}
