package widget

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/slicewidgets/internal/hooks"
	"github.com/jask/slicewidgets/internal/reactive"
	"github.com/jask/slicewidgets/internal/store"
	"github.com/jask/slicewidgets/internal/surface"
)

func nopSetup(*Scope, Args) (Instance, error) { return Instance{}, nil }

func TestRegistryValidatesAtRegistration(t *testing.T) {
	r, err := NewRegistry(Type{Name: "Ruler", Setup: nopSetup})
	require.NoError(t, err)

	require.ErrorIs(t, r.Register(Type{Name: "", Setup: nopSetup}), ErrInvalidType)
	require.ErrorIs(t, r.Register(Type{Name: " Paint", Setup: nopSetup}), ErrInvalidType)
	require.ErrorIs(t, r.Register(Type{Name: "Paint"}), ErrInvalidType)
	require.ErrorIs(t, r.Register(Type{Name: "Ruler", Setup: nopSetup}), ErrDuplicateType)

	_, err = NewRegistry(Type{Name: "A", Setup: nopSetup}, Type{Name: "A", Setup: nopSetup})
	require.ErrorIs(t, err, ErrDuplicateType)
}

func TestLookupSuggestsClosestName(t *testing.T) {
	r, err := NewRegistry(
		Type{Name: "Ruler", Setup: nopSetup},
		Type{Name: "Crosshairs", Setup: nopSetup},
	)
	require.NoError(t, err)
	require.Equal(t, []string{"Crosshairs", "Ruler"}, r.Names())

	got, err := r.Lookup("Ruler")
	require.NoError(t, err)
	require.Equal(t, "Ruler", got.Name)

	_, err = r.Lookup("rular")
	require.ErrorIs(t, err, ErrUnknownType)
	require.EqualError(t, err, "could not find widget rular (did you mean Ruler?)")

	_, err = r.Lookup("Polygon")
	require.EqualError(t, err, "could not find widget Polygon")
}

func TestScopeBindsObservationToLifetime(t *testing.T) {
	g := reactive.NewGraph()
	st := store.New(g, store.Options{})
	ctx := hooks.NewContext[HookArgs]()
	var stack Stack
	stack.Open(ctx)
	s := NewScope(ctx, g, st)

	cell := reactive.NewCell(g, 0)
	var seen []int
	_, err := Observe(s, reactive.Source[int](cell), func(v int) { seen = append(seen, v) })
	require.NoError(t, err)

	var slices []float64
	_, err = WatchStore(s, func(tr *reactive.Tracker) float64 {
		return st.Slice(tr, surface.AxisZ)
	}, func(v float64) { slices = append(slices, v) })
	require.NoError(t, err)
	require.NoError(t, stack.Close(ctx))

	cell.Set(1)
	require.NoError(t, st.Dispatch(store.ActionSetSlice, store.SlicePayload{Axis: surface.AxisZ, Value: 2}))

	ctx.Invoke(hooks.BeforeDelete, HookArgs{})
	cell.Set(2)
	require.NoError(t, st.Dispatch(store.ActionSetSlice, store.SlicePayload{Axis: surface.AxisZ, Value: 3}))

	ctx.Invoke(hooks.Deleted, HookArgs{})
	require.NoError(t, st.Dispatch(store.ActionSetSlice, store.SlicePayload{Axis: surface.AxisZ, Value: 4}))

	require.Equal(t, []int{1}, seen)
	require.Equal(t, []float64{2, 3}, slices)
}

func TestScopeDisposeStopsObservations(t *testing.T) {
	g := reactive.NewGraph()
	st := store.New(g, store.Options{})
	ctx := hooks.NewContext[HookArgs]()
	var stack Stack
	stack.Open(ctx)
	s := NewScope(ctx, g, st)

	cell := reactive.NewCell(g, 0)
	fired := 0
	_, err := Observe(s, reactive.Source[int](cell), func(int) { fired++ })
	require.NoError(t, err)
	_, err = WatchStore(s, func(tr *reactive.Tracker) float64 {
		return st.Slice(tr, surface.AxisZ)
	}, func(float64) { fired++ })
	require.NoError(t, err)
	require.NoError(t, stack.Close(ctx))
	require.Equal(t, 1, cell.Subscribers())

	ctx.Dispose()
	cell.Set(1)
	require.NoError(t, st.Dispatch(store.ActionSetSlice, store.SlicePayload{Axis: surface.AxisZ, Value: 2}))
	require.Equal(t, 0, fired)
	require.Equal(t, 0, cell.Subscribers())
	require.Equal(t, 0, st.Slices().(*reactive.Cell[surface.Vec3]).Subscribers())

	// The hooks still run and stopping twice is harmless.
	ctx.Invoke(hooks.BeforeDelete, HookArgs{})
	ctx.Invoke(hooks.Deleted, HookArgs{})
	require.Equal(t, 0, fired)
}

func TestScopeRejectsLateRegistration(t *testing.T) {
	g := reactive.NewGraph()
	s := NewScope(hooks.NewContext[HookArgs](), g, store.New(g, store.Options{}))
	_, err := Observe(s, reactive.Source[int](reactive.NewCell(g, 0)), func(int) {})
	require.Error(t, err)
}
