package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/slicewidgets/internal/reactive"
	"github.com/jask/slicewidgets/internal/surface"
)

func TestDispatch(t *testing.T) {
	s := New(reactive.NewGraph(), Options{Spacing: surface.Vec3{0.5, 0, 2}})
	require.Equal(t, surface.Vec3{0.5, 1, 2}, s.Snapshot().Visualization.Spacing)

	require.NoError(t, s.Dispatch(ActionSetSlice, SlicePayload{Axis: surface.AxisZ, Value: 12}))
	require.NoError(t, s.Dispatch(ActionFocusWidget, 3))
	st := s.Snapshot()
	require.Equal(t, surface.Vec3{0, 0, 12}, st.Visualization.Slices)
	require.Equal(t, 3, st.FocusedID)

	require.NoError(t, s.Dispatch(ActionUnfocusActiveWidget, nil))
	require.Equal(t, 0, s.Snapshot().FocusedID)

	require.NoError(t, s.Dispatch(ActionSetSlices, surface.Vec3{1, 2, 3}))
	require.Equal(t, 2.0, s.Slice(nil, surface.AxisY))
	require.Equal(t, 0.0, s.Slice(nil, surface.AxisInvalid))
}

func TestDispatchErrors(t *testing.T) {
	s := New(reactive.NewGraph(), Options{})
	require.ErrorIs(t, s.Dispatch("explode", nil), ErrUnknownAction)
	require.ErrorIs(t, s.Dispatch(ActionFocusWidget, "1"), ErrBadPayload)
	require.ErrorIs(t, s.Dispatch(ActionSetSlice, SlicePayload{Axis: surface.AxisInvalid}), ErrBadPayload)
	require.ErrorIs(t, s.Dispatch(ActionSetSpacing, surface.Vec3{1, 0, 1}), ErrBadPayload)
	require.ErrorIs(t, s.Dispatch(ActionSetSlices, []float64{1, 2, 3}), ErrBadPayload)
}

func TestWatch(t *testing.T) {
	s := New(reactive.NewGraph(), Options{})
	var got []float64
	stop, err := Watch(s, func(tr *reactive.Tracker) float64 {
		return s.Slice(tr, surface.AxisX)
	}, func(v float64) { got = append(got, v) }, reactive.Immediate())
	require.NoError(t, err)

	require.NoError(t, s.Dispatch(ActionSetSlice, SlicePayload{Axis: surface.AxisX, Value: 4}))
	require.NoError(t, s.Dispatch(ActionFocusWidget, 9))
	stop()
	require.NoError(t, s.Dispatch(ActionSetSlice, SlicePayload{Axis: surface.AxisX, Value: 5}))
	require.Equal(t, []float64{0, 4}, got)
}
