package scene

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/slicewidgets/internal/surface"
)

func TestManagerSingleFocus(t *testing.T) {
	m := NewManager()
	f1, f2 := NewFactory("a", 0), NewFactory("b", 0)
	p1 := m.AddWidget(f1, surface.ViewTypeSlice)
	require.Same(t, p1, m.AddWidget(f1, surface.ViewTypeSlice))
	p2 := m.AddWidget(f2, surface.ViewTypeSlice)

	m.GrabFocus(p1)
	require.Same(t, p1, m.Focused())
	m.GrabFocus(p2)
	require.Same(t, p2, m.Focused())

	// Foreign projections are ignored.
	m.GrabFocus(NewManager().AddWidget(f1, surface.ViewTypeSlice))
	require.Same(t, p2, m.Focused())

	m.RemoveWidget(f2)
	require.Nil(t, m.Focused())
	require.Len(t, m.Projections(), 1)
	m.ReleaseFocus()
	require.Nil(t, m.Focused())
}

func TestHandleState(t *testing.T) {
	f := NewFactory("ruler", 2)
	s := f.Handles()
	n := 0
	sub := s.OnModified(func() { n++ })

	require.True(t, s.AddHandle(surface.Vec3{1}))
	require.True(t, s.AddHandle(surface.Vec3{2}))
	require.False(t, s.AddHandle(surface.Vec3{3}))
	require.True(t, s.Full())
	require.True(t, s.MoveHandle(1, surface.Vec3{5}))
	require.False(t, s.MoveHandle(2, surface.Vec3{5}))
	require.Equal(t, []surface.Vec3{{1}, {5}}, s.HandleList())

	s.ClearHandleList()
	s.ClearHandleList()
	require.Equal(t, 4, n)

	sub.Unsubscribe()
	s.SetHandles([]surface.Vec3{{1}, {2}, {3}})
	require.Equal(t, 4, n)
	require.Len(t, s.HandleList(), 2)
}

func TestPlaneProject(t *testing.T) {
	f := NewFactory("x", 0)
	require.Equal(t, surface.Vec3{1, 2, 3}, f.Plane().Project(surface.Vec3{1, 2, 3}))

	f.Manipulator().SetNormal(surface.Unit(surface.AxisY))
	f.Manipulator().SetOrigin(surface.Vec3{0, 4, 0})
	require.True(t, f.Place(surface.Vec3{1, 9, 3}))
	require.Equal(t, []surface.Vec3{{1, 4, 3}}, f.Handles().HandleList())
	require.InDelta(t, 5.0, Distance(surface.Vec3{}, surface.Vec3{3, 4, 0}), 1e-12)
}

func TestWorldPoint(t *testing.T) {
	require.Equal(t, surface.Vec3{1, 2, 7}, WorldPoint(surface.AxisZ, 1, 2, 7))
	require.Equal(t, surface.Vec3{7, 1, 2}, WorldPoint(surface.AxisX, 1, 2, 7))
	require.Equal(t, surface.Vec3{1, 7, 2}, WorldPoint(surface.AxisY, 1, 2, 7))
	require.Equal(t, surface.Vec3{}, WorldPoint(surface.AxisInvalid, 1, 2, 7))
}

func TestContainerDispatch(t *testing.T) {
	v := NewView("axial", surface.AxisZ, true)
	var got []surface.PointerEvent
	sub := v.Container().Listen(surface.PointerMove, func(ev surface.PointerEvent) { got = append(got, ev) })
	require.Equal(t, 1, v.PointerTarget().Listeners(surface.PointerMove))

	v.PointerTarget().Dispatch(surface.PointerEvent{Kind: surface.PointerMove, X: 1, Y: 2})
	v.PointerTarget().Dispatch(surface.PointerEvent{Kind: surface.PointerEnter})
	sub.Unsubscribe()
	v.PointerTarget().Dispatch(surface.PointerEvent{Kind: surface.PointerMove})
	require.Equal(t, []surface.PointerEvent{{Kind: surface.PointerMove, X: 1, Y: 2}}, got)
}

func TestViewModified(t *testing.T) {
	v := NewView("vol", surface.AxisZ, false)
	_, ok := v.Axis()
	require.False(t, ok)

	n := 0
	v.OnModified(func() { n++ })
	v.SetContainer(NewContainer())
	v.SetManager(nil)
	require.Equal(t, 2, n)
	require.Nil(t, v.WidgetManager())
	require.Nil(t, v.Manager())
}
