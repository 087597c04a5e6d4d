// Package reactive implements fine-grained dependency tracking.
//
// A Graph owns three kinds of nodes:
//
//   - Cell: a mutable value. Reads through a Tracker are recorded, writes
//     notify every subscriber.
//   - Derived: a memoized function of other nodes, recomputed lazily the
//     first time it is read after one of its dependencies changed.
//   - Effect: a getter plus a callback. When a dependency changes the getter
//     is re-run and its result handed to the callback.
//
// Dependencies are explicit. A computation receives a *Tracker and passes it
// to every read it wants recorded; reads made with a nil Tracker (or through
// Peek) are plain value reads. The Graph keeps the stack of computations that
// are currently evaluating, which is how cycles are detected.
//
// A Graph is meant to be driven from a single goroutine (a UI loop) and is not
// safe for concurrent use.
package reactive

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidSource is returned when observing something that is neither a
	// node, a tuple of nodes nor a getter function.
	ErrInvalidSource = errors.New("cannot observe the given source")
	// ErrCycle is the panic value raised when a Derived reads itself,
	// directly or transitively.
	ErrCycle = errors.New("reactive: dependency cycle")
)

// Graph is the owner of a set of reactive nodes.
type Graph struct {
	nextID uint64
	stack  []subscriber
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Depth returns the number of computations currently evaluating.
func (g *Graph) Depth() int {
	return len(g.stack)
}

func (g *Graph) allocID() uint64 {
	g.nextID++
	return g.nextID
}

func (g *Graph) push(s subscriber) {
	for _, other := range g.stack {
		if other.nodeID() == s.nodeID() {
			panic(fmt.Errorf("%w: node %d", ErrCycle, s.nodeID()))
		}
	}
	g.stack = append(g.stack, s)
}

func (g *Graph) pop() {
	g.stack = g.stack[:len(g.stack)-1]
}

// Tracker records the reads made by one evaluation of a computation. It is
// only valid for the duration of that evaluation.
type Tracker struct {
	sub subscriber
}

func (t *Tracker) track(d dependency) {
	if t == nil || t.sub == nil {
		return
	}
	d.subscribe(t.sub)
	t.sub.addDep(d)
}

type subscriber interface {
	nodeID() uint64
	notify()
	addDep(dependency)
}

type dependency interface {
	nodeID() uint64
	subscribe(subscriber)
	unsubscribe(subscriber)
}

// subscribers is the explicit subscriber list a dependency keeps, keyed by
// node id. Notification order is node creation order.
type subscribers map[uint64]subscriber

func (s subscribers) sorted() []subscriber {
	out := make([]subscriber, 0, len(s))
	for _, sub := range s {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].nodeID() < out[j].nodeID() })
	return out
}

func (s subscribers) notifyAll() {
	for _, sub := range s.sorted() {
		sub.notify()
	}
}

// deps is the dependency set of a computation, in first-read order.
type deps struct {
	list []dependency
	seen map[uint64]struct{}
}

func (d *deps) add(dep dependency) {
	if d.seen == nil {
		d.seen = make(map[uint64]struct{})
	}
	if _, ok := d.seen[dep.nodeID()]; ok {
		return
	}
	d.seen[dep.nodeID()] = struct{}{}
	d.list = append(d.list, dep)
}

// prune detaches sub from every recorded dependency and empties the set.
func (d *deps) prune(sub subscriber) {
	for _, dep := range d.list {
		dep.unsubscribe(sub)
	}
	d.list = nil
	d.seen = nil
}

// release detaches sub from the dependencies in d that keep does not hold.
func (d *deps) release(sub subscriber, keep *deps) {
	for _, dep := range d.list {
		if _, ok := keep.seen[dep.nodeID()]; !ok {
			dep.unsubscribe(sub)
		}
	}
}

func (d *deps) len() int {
	return len(d.list)
}
