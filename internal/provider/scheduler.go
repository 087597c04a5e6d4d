package provider

// Scheduler runs functions on a later turn of the event loop.
type Scheduler interface {
	Defer(fn func())
}

// Queue is a FIFO Scheduler drained explicitly by its owner.
type Queue struct {
	pending []func()
}

// Defer implements Scheduler.
func (q *Queue) Defer(fn func()) {
	q.pending = append(q.pending, fn)
}

// Len returns the number of queued functions.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Flush runs queued functions until the queue is empty, including functions
// queued while flushing. It returns how many ran.
func (q *Queue) Flush() int {
	n := 0
	for len(q.pending) > 0 {
		batch := q.pending
		q.pending = nil
		for _, fn := range batch {
			fn()
			n++
		}
	}
	return n
}
