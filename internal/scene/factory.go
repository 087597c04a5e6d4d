package scene

import (
	"math"

	"github.com/jask/slicewidgets/internal/surface"
)

// HandleState is a list of placed handles with change notification.
type HandleState struct {
	handles  []surface.Vec3
	max      int
	modified listeners[func()]
}

// OnModified implements surface.WidgetState.
func (s *HandleState) OnModified(fn func()) surface.Subscription {
	return s.modified.add(fn)
}

// HandleList implements surface.WidgetState. The returned slice is a copy.
func (s *HandleState) HandleList() []surface.Vec3 {
	return append([]surface.Vec3(nil), s.handles...)
}

// ClearHandleList implements surface.WidgetState.
func (s *HandleState) ClearHandleList() {
	if len(s.handles) == 0 {
		return
	}
	s.handles = nil
	s.notify()
}

// AddHandle appends p. It reports false when the list is already full.
func (s *HandleState) AddHandle(p surface.Vec3) bool {
	if s.max > 0 && len(s.handles) >= s.max {
		return false
	}
	s.handles = append(s.handles, p)
	s.notify()
	return true
}

// MoveHandle replaces the handle at i.
func (s *HandleState) MoveHandle(i int, p surface.Vec3) bool {
	if i < 0 || i >= len(s.handles) {
		return false
	}
	s.handles[i] = p
	s.notify()
	return true
}

// SetHandles replaces the whole list with one notification.
func (s *HandleState) SetHandles(pts []surface.Vec3) {
	if s.max > 0 && len(pts) > s.max {
		pts = pts[:s.max]
	}
	s.handles = append([]surface.Vec3(nil), pts...)
	s.notify()
}

// Full reports whether no more handles can be placed.
func (s *HandleState) Full() bool {
	return s.max > 0 && len(s.handles) >= s.max
}

func (s *HandleState) notify() {
	for _, fn := range s.modified.each() {
		fn()
	}
}

// PlaneManipulator keeps handles on a plane given by a normal and an origin.
type PlaneManipulator struct {
	normal surface.Vec3
	origin surface.Vec3
}

// SetNormal implements surface.Manipulator.
func (m *PlaneManipulator) SetNormal(n surface.Vec3) { m.normal = n }

// SetOrigin implements surface.Manipulator.
func (m *PlaneManipulator) SetOrigin(o surface.Vec3) { m.origin = o }

func (m *PlaneManipulator) Normal() surface.Vec3 { return m.normal }
func (m *PlaneManipulator) Origin() surface.Vec3 { return m.origin }

// Project returns the closest point to p on the plane. With a zero normal p is
// returned unchanged.
func (m *PlaneManipulator) Project(p surface.Vec3) surface.Vec3 {
	n := m.normal
	nn := dot(n, n)
	if nn == 0 {
		return p
	}
	d := (dot(p, n) - dot(m.origin, n)) / nn
	return surface.Vec3{p[0] - d*n[0], p[1] - d*n[1], p[2] - d*n[2]}
}

func dot(a, b surface.Vec3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b surface.Vec3) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Factory is a widget behavior object backed by a HandleState and a
// PlaneManipulator.
type Factory struct {
	kind  string
	state *HandleState
	manip *PlaneManipulator
}

// NewFactory returns a factory whose state accepts at most maxHandles handles
// (0 means unlimited).
func NewFactory(kind string, maxHandles int) *Factory {
	return &Factory{
		kind:  kind,
		state: &HandleState{max: maxHandles},
		manip: &PlaneManipulator{},
	}
}

func (f *Factory) Kind() string { return f.kind }

// WidgetState implements surface.Factory.
func (f *Factory) WidgetState() surface.WidgetState { return f.state }

// Manipulator implements surface.Factory.
func (f *Factory) Manipulator() surface.Manipulator { return f.manip }

// Handles returns the concrete handle state.
func (f *Factory) Handles() *HandleState { return f.state }

// Plane returns the concrete manipulator.
func (f *Factory) Plane() *PlaneManipulator { return f.manip }

// Place projects p onto the manipulator plane and appends it as a handle.
func (f *Factory) Place(p surface.Vec3) bool {
	return f.state.AddHandle(f.manip.Project(p))
}

// InPlaneAxes returns the two axes spanning a slice view whose normal is a,
// horizontal first.
func InPlaneAxes(a surface.Axis) (u, v surface.Axis) {
	switch a {
	case surface.AxisX:
		return surface.AxisY, surface.AxisZ
	case surface.AxisY:
		return surface.AxisX, surface.AxisZ
	default:
		return surface.AxisX, surface.AxisY
	}
}

// WorldPoint maps in-plane coordinates (u, v) of a slice view with normal a,
// at the given depth along a, to world space.
func WorldPoint(a surface.Axis, u, v, depth float64) surface.Vec3 {
	var p surface.Vec3
	if !a.Valid() {
		return p
	}
	ua, va := InPlaneAxes(a)
	p[ua], p[va], p[a] = u, v, depth
	return p
}
