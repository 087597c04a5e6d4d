package reactive

// Cell is a mutable value holder.
type Cell[T any] struct {
	g     *Graph
	id    uint64
	value T
	equal func(a, b T) bool
	subs  subscribers
}

// NewCell creates a cell whose writes are dropped when the new value equals
// the current one.
func NewCell[T comparable](g *Graph, initial T) *Cell[T] {
	return NewCellFunc(g, initial, func(a, b T) bool { return a == b })
}

// NewCellFunc creates a cell with a custom equality. A nil equal makes every
// write notify.
func NewCellFunc[T any](g *Graph, initial T, equal func(a, b T) bool) *Cell[T] {
	return &Cell[T]{g: g, id: g.allocID(), value: initial, equal: equal, subs: subscribers{}}
}

// Get returns the current value, recording the read on t.
func (c *Cell[T]) Get(t *Tracker) T {
	t.track(c)
	return c.value
}

// Peek returns the current value without recording a dependency.
func (c *Cell[T]) Peek() T {
	return c.value
}

// Set stores v and synchronously notifies subscribers.
func (c *Cell[T]) Set(v T) {
	if c.equal != nil && c.equal(c.value, v) {
		return
	}
	c.value = v
	c.subs.notifyAll()
}

// Update applies fn to the current value and stores the result.
func (c *Cell[T]) Update(fn func(T) T) {
	c.Set(fn(c.value))
}

// Subscribers returns the number of computations currently depending on c.
func (c *Cell[T]) Subscribers() int {
	return len(c.subs)
}

// Read implements Source.
func (c *Cell[T]) Read(t *Tracker) T { return c.Get(t) }

// ReadAny implements Value.
func (c *Cell[T]) ReadAny(t *Tracker) any { return c.Get(t) }

func (c *Cell[T]) valid() bool { return c != nil && c.g != nil }

func (c *Cell[T]) nodeID() uint64 { return c.id }

func (c *Cell[T]) subscribe(s subscriber) { c.subs[s.nodeID()] = s }

func (c *Cell[T]) unsubscribe(s subscriber) { delete(c.subs, s.nodeID()) }
