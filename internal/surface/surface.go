// Package surface declares the rendering collaborators the widget core talks
// to: views, their pointer containers, per-view widget managers, and the
// per-type widget factories.
package surface

import "fmt"

// Axis is a world axis index. AxisInvalid means "no axis".
type Axis int

const (
	AxisInvalid Axis = -1
	AxisX       Axis = 0
	AxisY       Axis = 1
	AxisZ       Axis = 2
)

// Valid reports whether a is one of the three real axes.
func (a Axis) Valid() bool {
	return a >= AxisX && a <= AxisZ
}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "invalid"
	}
}

// ParseAxis accepts x, y, z or 0, 1, 2.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X", "0":
		return AxisX, nil
	case "y", "Y", "1":
		return AxisY, nil
	case "z", "Z", "2":
		return AxisZ, nil
	}
	return AxisInvalid, fmt.Errorf("unknown axis %q", s)
}

// ViewType tags how a view renders widgets.
type ViewType string

const (
	ViewTypeDefault  ViewType = "default"
	ViewTypeSlice    ViewType = "slice"
	ViewTypeVolume   ViewType = "volume"
	ViewTypeGeometry ViewType = "geometry"
)

// Vec3 is a point or direction in world space.
type Vec3 [3]float64

// Unit returns the unit vector along a. It is the zero vector for an invalid
// axis.
func Unit(a Axis) Vec3 {
	var v Vec3
	if a.Valid() {
		v[a] = 1
	}
	return v
}

// Subscription is returned by every listener registration.
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a function to a Subscription.
type SubscriptionFunc func()

// Unsubscribe implements Subscription.
func (f SubscriptionFunc) Unsubscribe() { f() }

// PointerKind is the kind of a pointer event on a view container.
type PointerKind string

const (
	PointerEnter PointerKind = "mouseenter"
	PointerMove  PointerKind = "mousemove"
	PointerLeave PointerKind = "mouseleave"
)

// PointerEvent carries the position of the pointer inside a view, in view
// cells.
type PointerEvent struct {
	Kind PointerKind
	X, Y int
}

// Container is the element a view draws into; it emits pointer events.
type Container interface {
	Listen(kind PointerKind, fn func(PointerEvent)) Subscription
}

// View is one rendering viewport.
type View interface {
	// Axis returns the normal axis of a 2-D slice view. ok is false for any
	// other kind of view.
	Axis() (a Axis, ok bool)
	// WidgetManager may return nil when the view cannot host widgets yet.
	WidgetManager() Manager
	Render()
	Container() Container
	OnModified(fn func()) Subscription
}

// Projection is the per-(widget, view) rendering handle.
type Projection interface {
	// SetVisibility toggles handles and silhouettes.
	SetVisibility(bool)
	// SetContextVisibility toggles the background context geometry.
	SetContextVisibility(bool)
}

// Manager hosts widget projections inside one view.
type Manager interface {
	AddWidget(f Factory, vt ViewType) Projection
	RemoveWidget(f Factory)
	GrabFocus(p Projection)
	ReleaseFocus()
}

// WidgetState is the geometric state shared by every projection of a widget.
type WidgetState interface {
	OnModified(fn func()) Subscription
	HandleList() []Vec3
	ClearHandleList()
}

// Manipulator constrains handle placement to a plane.
type Manipulator interface {
	SetNormal(Vec3)
	SetOrigin(Vec3)
}

// Factory is the behavior object of one widget instance.
type Factory interface {
	Kind() string
	WidgetState() WidgetState
	Manipulator() Manipulator
}
