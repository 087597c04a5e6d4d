package reactive

// Derived is a lazily evaluated, memoized computation.
type Derived[T any] struct {
	g     *Graph
	id    uint64
	fn    func(*Tracker) T
	value T
	dirty bool
	deps  deps
	subs  subscribers
	runs  int
}

// NewDerived creates a computation over other nodes. fn is not called until
// the first read.
func NewDerived[T any](g *Graph, fn func(*Tracker) T) *Derived[T] {
	return &Derived[T]{g: g, id: g.allocID(), fn: fn, dirty: true, subs: subscribers{}}
}

// Get returns the memoized value, recomputing it if a dependency changed
// since the last evaluation. The read is recorded on t.
func (d *Derived[T]) Get(t *Tracker) T {
	t.track(d)
	if d.dirty {
		d.recompute()
	}
	return d.value
}

// Peek is Get without recording a dependency.
func (d *Derived[T]) Peek() T {
	return d.Get(nil)
}

// Computations returns how many times the function has been evaluated.
func (d *Derived[T]) Computations() int {
	return d.runs
}

// Dirty reports whether the next read will recompute.
func (d *Derived[T]) Dirty() bool {
	return d.dirty
}

func (d *Derived[T]) recompute() {
	old := d.deps
	d.deps = deps{}
	d.g.push(d)
	defer d.g.pop()
	d.value = d.fn(&Tracker{sub: d})
	d.dirty = false
	d.runs++
	old.release(d, &d.deps)
}

// Read implements Source.
func (d *Derived[T]) Read(t *Tracker) T { return d.Get(t) }

// ReadAny implements Value.
func (d *Derived[T]) ReadAny(t *Tracker) any { return d.Get(t) }

func (d *Derived[T]) valid() bool { return d != nil && d.fn != nil }

func (d *Derived[T]) nodeID() uint64 { return d.id }

func (d *Derived[T]) subscribe(s subscriber) { d.subs[s.nodeID()] = s }

// unsubscribe drops s. When the last subscriber leaves, the derived detaches
// from its own dependencies and goes stale; the next read re-attaches it.
func (d *Derived[T]) unsubscribe(s subscriber) {
	delete(d.subs, s.nodeID())
	if len(d.subs) == 0 && d.deps.len() > 0 {
		d.deps.prune(d)
		d.dirty = true
	}
}

func (d *Derived[T]) addDep(dep dependency) { d.deps.add(dep) }

// notify marks the value stale. Subscribers are told once per clean-to-dirty
// transition; they will pull the new value when they re-read.
func (d *Derived[T]) notify() {
	if d.dirty {
		return
	}
	d.dirty = true
	d.subs.notifyAll()
}
