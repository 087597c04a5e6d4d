package tui

import (
	"context"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/slicewidgets/internal/config"
	"github.com/jask/slicewidgets/internal/provider"
	"github.com/jask/slicewidgets/internal/reactive"
	"github.com/jask/slicewidgets/internal/store"
	"github.com/jask/slicewidgets/internal/surface"
	"github.com/jask/slicewidgets/internal/widget"
	"github.com/jask/slicewidgets/internal/widgets/crosshairs"
	"github.com/jask/slicewidgets/internal/widgets/ruler"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	reg, err := widget.NewRegistry(ruler.Type(), crosshairs.Type())
	require.NoError(t, err)
	q := &provider.Queue{}
	log := slog.New(slog.DiscardHandler)
	p, err := provider.New(provider.Options{
		Store:     store.New(reactive.NewGraph(), store.Options{}),
		Registry:  reg,
		Scheduler: q,
		Logger:    log,
	})
	require.NoError(t, err)

	specs, err := config.Config{UI: config.UIConfig{Views: []string{"axial:z", "coronal:y", "sagittal:x", "volume:3d"}}}.Views()
	require.NoError(t, err)
	a, err := New(context.Background(), specs, Options{Provider: p, Queue: q, Logger: log})
	require.NoError(t, err)
	send(t, a, tea.WindowSizeMsg{Width: 80, Height: 25})
	return a
}

// send feeds msg to the app and runs every command it returns, the way the
// program loop would.
func send(t *testing.T, a *App, msg tea.Msg) {
	t.Helper()
	_, cmd := a.Update(msg)
	run(t, a, cmd)
}

func run(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch m := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range m {
			run(t, a, c)
		}
	default:
		send(t, a, m)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewRequiresProvider(t *testing.T) {
	_, err := New(context.Background(), nil, Options{})
	require.Error(t, err)
}

func TestLayout(t *testing.T) {
	a := newTestApp(t)
	require.Len(t, a.panes, 4)
	require.Equal(t, rect{x: 0, y: 0, w: 40, h: 12}, a.panes[0].rect)
	require.Equal(t, rect{x: 40, y: 12, w: 40, h: 12}, a.panes[3].rect)
	require.Equal(t, rect{x: 1, y: 2, w: 38, h: 9}, a.panes[0].area())
	require.Len(t, a.Views(), 4)

	idx, x, y := a.hit(6, 5)
	require.Equal(t, 0, idx)
	require.Equal(t, 5, x)
	require.Equal(t, 3, y)
	idx, _, _ = a.hit(0, 0)
	require.Equal(t, -1, idx)
}

func TestPlaceRulerWithMouse(t *testing.T) {
	a := newTestApp(t)
	send(t, a, runes("r"))
	w, ok := a.prov.Get(1)
	require.True(t, ok)
	require.Equal(t, 1, a.focusedID())
	f := w.Factory.(*ruler.Factory)

	send(t, a, tea.MouseMsg{X: 6, Y: 5, Action: tea.MouseActionMotion})
	require.Equal(t, 0, a.hovered)
	send(t, a, tea.MouseMsg{X: 6, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.Equal(t, ruler.Partial, f.PlaceState())
	require.Equal(t, []surface.Vec3{{5, 3, 0}}, f.WidgetState().HandleList())

	send(t, a, tea.MouseMsg{X: 9, Y: 9, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.Equal(t, ruler.Complete, f.PlaceState())
	require.InDelta(t, 5, f.Length(), 1e-9)
	// the completed ruler gives up focus on the following turn
	require.Equal(t, 0, a.focusedID())
	require.Zero(t, a.queue.Len())
}

func TestClickWithoutFocusedWidget(t *testing.T) {
	a := newTestApp(t)
	send(t, a, tea.MouseMsg{X: 6, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.Contains(t, a.status, "no focused widget")
}

func TestSliceKeysFollowHoveredPane(t *testing.T) {
	a := newTestApp(t)
	send(t, a, tea.KeyMsg{Type: tea.KeyUp})
	require.Contains(t, a.status, "hover")

	// sagittal pane, normal x
	send(t, a, tea.MouseMsg{X: 5, Y: 16, Action: tea.MouseActionMotion})
	require.Equal(t, 2, a.hovered)
	send(t, a, tea.KeyMsg{Type: tea.KeyUp})
	send(t, a, tea.KeyMsg{Type: tea.KeyUp})
	send(t, a, runes("j"))
	require.Equal(t, surface.Vec3{1, 0, 0}, a.prov.Store().Snapshot().Visualization.Slices)
}

func TestCrosshairsAndFocusCycle(t *testing.T) {
	a := newTestApp(t)
	send(t, a, runes("c"))
	send(t, a, runes("r"))
	require.Equal(t, 2, a.focusedID())

	send(t, a, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, 1, a.focusedID())
	send(t, a, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, 2, a.focusedID())

	send(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, 0, a.focusedID())

	send(t, a, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, 1, a.focusedID())
	send(t, a, tea.MouseMsg{X: 6, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.Equal(t, surface.Vec3{5, 3, 0}, a.prov.Store().Snapshot().Visualization.Slices)

	send(t, a, runes("x"))
	_, ok := a.prov.Get(1)
	require.False(t, ok)
	require.Equal(t, 0, a.focusedID())
}

func TestSaveWithoutArchive(t *testing.T) {
	a := newTestApp(t)
	send(t, a, runes("s"))
	require.Equal(t, "no database configured", a.status)
}

func TestRestoreReplacesWidgets(t *testing.T) {
	a := newTestApp(t)
	send(t, a, runes("r"))
	send(t, a, recordsMsg{
		{Type: crosshairs.TypeName, Version: "1.0", Data: map[string]any{"position": []float64{1, 2, 3}}},
		{Type: "Bogus"},
	})
	ws := a.prov.Widgets()
	require.Len(t, ws, 1)
	require.Equal(t, crosshairs.TypeName, ws[0].Type)
	require.Equal(t, "loaded 1 widgets (1 failed)", a.status)
}

func TestView(t *testing.T) {
	a := &App{}
	require.Equal(t, "loading...", a.View())

	a = newTestApp(t)
	send(t, a, runes("r"))
	send(t, a, tea.MouseMsg{X: 6, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	out := a.View()
	for _, name := range []string{"axial", "coronal", "sagittal", "volume", "#1 Ruler partial"} {
		require.Contains(t, out, name)
	}
}

func TestCell(t *testing.T) {
	x, y := cell(surface.AxisX, surface.Vec3{9, 2, 6}, surface.Vec3{1, 1, 2})
	require.Equal(t, 2, x)
	require.Equal(t, 3, y)
}
