// Package tui hosts the widget provider in a terminal. Each configured view is
// a pane; terminal mouse events become pointer events on the pane's view
// container, and clicks place handles for the focused widget.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/slicewidgets/internal/config"
	"github.com/jask/slicewidgets/internal/provider"
	"github.com/jask/slicewidgets/internal/scene"
	"github.com/jask/slicewidgets/internal/service"
	"github.com/jask/slicewidgets/internal/store"
	"github.com/jask/slicewidgets/internal/surface"
	"github.com/jask/slicewidgets/internal/widget"
	"github.com/jask/slicewidgets/internal/widgets/crosshairs"
	"github.com/jask/slicewidgets/internal/widgets/ruler"
)

// App is the bubbletea model.
type App struct {
	ctx     context.Context
	prov    *provider.Provider
	queue   *provider.Queue
	archive *service.ArchiveService
	log     *slog.Logger

	panes   []*pane
	hovered int
	width   int
	height  int
	status  string
	keys    keyMap
	help    help.Model
}

// Options wires an App.
type Options struct {
	Provider *provider.Provider
	// Queue must be the provider's scheduler.
	Queue    *provider.Queue
	// Archive is optional; without it save and load are disabled.
	Archive  *service.ArchiveService
	Logger   *slog.Logger
}

type pane struct {
	spec config.ViewSpec
	view *scene.View
	rect rect
}

type rect struct{ x, y, w, h int }

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

type statusMsg string

type errMsg struct{ error }

type flushMsg struct{}

type recordsMsg []widget.Record

// New registers a view for every ViewSpec with the provider.
func New(ctx context.Context, specs []config.ViewSpec, opts Options) (*App, error) {
	if opts.Provider == nil || opts.Queue == nil {
		return nil, fmt.Errorf("tui: provider and queue are required")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	a := &App{
		ctx:     ctx,
		prov:    opts.Provider,
		queue:   opts.Queue,
		archive: opts.Archive,
		log:     log,
		hovered: -1,
		keys:    defaultKeys(),
		help:    help.New(),
	}
	for _, spec := range specs {
		v := scene.NewView(spec.Name, spec.Axis, spec.HasAxis)
		if err := a.prov.AddView(v, spec.Type); err != nil {
			return nil, fmt.Errorf("add view %s: %w", spec.Name, err)
		}
		a.panes = append(a.panes, &pane{spec: spec, view: v})
	}
	return a, nil
}

// Views returns the scene view of every pane, in order.
func (a *App) Views() []*scene.View {
	out := make([]*scene.View, 0, len(a.panes))
	for _, p := range a.panes {
		out = append(out, p.view)
	}
	return out
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.layout()
	case tea.KeyMsg:
		if key.Matches(m, a.keys.Quit) {
			return a, tea.Quit
		}
		cmd = a.handleKey(m)
	case tea.MouseMsg:
		a.handleMouse(m)
	case flushMsg:
		a.queue.Flush()
	case recordsMsg:
		a.restore(m)
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
		a.log.Error("tui", "err", m.error)
	}
	return a, tea.Batch(cmd, a.drain())
}

// drain schedules a follow-up message when widgets deferred work to the next
// turn.
func (a *App) drain() tea.Cmd {
	if a.queue.Len() == 0 {
		return nil
	}
	return func() tea.Msg { return flushMsg{} }
}

func (a *App) handleKey(m tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(m, a.keys.Ruler):
		a.create(ruler.TypeName)
	case key.Matches(m, a.keys.Crosshairs):
		a.create(crosshairs.TypeName)
	case key.Matches(m, a.keys.NextWidget):
		a.focusNext()
	case key.Matches(m, a.keys.SliceUp):
		a.stepSlice(1)
	case key.Matches(m, a.keys.SliceDown):
		a.stepSlice(-1)
	case key.Matches(m, a.keys.Delete):
		if id := a.focusedID(); id != 0 {
			a.prov.DeleteWidget(id)
			a.status = fmt.Sprintf("deleted #%d", id)
		}
	case key.Matches(m, a.keys.Unfocus):
		a.prov.Unfocus()
	case key.Matches(m, a.keys.Save):
		return a.saveCmd()
	case key.Matches(m, a.keys.Load):
		return a.loadCmd()
	}
	return nil
}

func (a *App) create(typeName string) {
	w, err := a.prov.CreateWidget(typeName, provider.CreateOptions{})
	if err != nil {
		a.status = "error: " + err.Error()
		if w == nil {
			return
		}
	}
	if err := a.prov.FocusWidget(w.ID); err != nil {
		a.status = "error: " + err.Error()
		return
	}
	a.status = fmt.Sprintf("new %s #%d, click a slice view to place", typeName, w.ID)
}

func (a *App) focusNext() {
	ws := a.prov.Widgets()
	if len(ws) == 0 {
		return
	}
	cur := a.focusedID()
	next := ws[0].ID
	for i, w := range ws {
		if w.ID == cur && i+1 < len(ws) {
			next = ws[i+1].ID
		}
	}
	if err := a.prov.FocusWidget(next); err != nil {
		a.status = "error: " + err.Error()
	}
}

func (a *App) focusedID() int {
	return a.prov.Store().Snapshot().FocusedID
}

func (a *App) stepSlice(delta float64) {
	if a.hovered < 0 {
		a.status = "hover a slice view to move its slice"
		return
	}
	p := a.panes[a.hovered]
	if !p.spec.HasAxis {
		return
	}
	st := a.prov.Store()
	cur := st.Snapshot().Visualization.Slices[p.spec.Axis]
	if err := st.Dispatch(store.ActionSetSlice, store.SlicePayload{Axis: p.spec.Axis, Value: cur + delta}); err != nil {
		a.status = "error: " + err.Error()
	}
}

// handleMouse turns terminal mouse events into enter, move and leave events
// on view containers, then handles clicks.
func (a *App) handleMouse(m tea.MouseMsg) {
	idx, lx, ly := a.hit(m.X, m.Y)
	if idx != a.hovered {
		if a.hovered >= 0 {
			a.panes[a.hovered].view.PointerTarget().Dispatch(surface.PointerEvent{Kind: surface.PointerLeave})
		}
		a.hovered = idx
		if idx >= 0 {
			a.panes[idx].view.PointerTarget().Dispatch(surface.PointerEvent{Kind: surface.PointerEnter, X: lx, Y: ly})
		}
	}
	if idx < 0 {
		return
	}
	a.panes[idx].view.PointerTarget().Dispatch(surface.PointerEvent{Kind: surface.PointerMove, X: lx, Y: ly})

	if m.Action == tea.MouseActionPress && m.Button == tea.MouseButtonLeft {
		a.click(a.panes[idx], lx, ly)
	}
}

type placer interface {
	Place(p surface.Vec3) bool
}

func (a *App) click(p *pane, lx, ly int) {
	if !p.spec.HasAxis {
		return
	}
	id := a.focusedID()
	w, ok := a.prov.Get(id)
	if !ok {
		a.status = "no focused widget (r: ruler, c: crosshairs)"
		return
	}
	pl, ok := w.Factory.(placer)
	if !ok {
		return
	}
	vis := a.prov.Store().Snapshot().Visualization
	ax := p.spec.Axis
	ua, va := scene.InPlaneAxes(ax)
	world := scene.WorldPoint(ax,
		float64(lx)*vis.Spacing[ua],
		float64(ly)*vis.Spacing[va],
		vis.Slices[ax]*vis.Spacing[ax])
	if !pl.Place(world) {
		a.status = "widget is complete"
	}
}

// hit returns the pane under terminal cell (x, y) and the position inside
// its drawing area, or -1.
func (a *App) hit(x, y int) (int, int, int) {
	for i, p := range a.panes {
		area := p.area()
		if area.contains(x, y) {
			return i, x - area.x, y - area.y
		}
	}
	return -1, 0, 0
}

// area is the drawing area inside the border and title line.
func (p *pane) area() rect {
	return rect{x: p.rect.x + 1, y: p.rect.y + 2, w: max(0, p.rect.w-2), h: max(0, p.rect.h-3)}
}

func (a *App) layout() {
	n := len(a.panes)
	if n == 0 {
		return
	}
	cols := 1
	if n > 1 {
		cols = 2
	}
	rows := (n + cols - 1) / cols
	w := a.width / cols
	h := max(0, a.height-1) / rows
	for i, p := range a.panes {
		p.rect = rect{x: (i % cols) * w, y: (i / cols) * h, w: w, h: h}
	}
}

func (a *App) saveCmd() tea.Cmd {
	if a.archive == nil {
		a.status = "no database configured"
		return nil
	}
	recs := a.prov.Records()
	return func() tea.Msg {
		if err := a.archive.Save(a.ctx, recs); err != nil {
			return errMsg{err}
		}
		return statusMsg(fmt.Sprintf("saved %d widgets", len(recs)))
	}
}

func (a *App) loadCmd() tea.Cmd {
	if a.archive == nil {
		a.status = "no database configured"
		return nil
	}
	return func() tea.Msg {
		recs, err := a.archive.Load(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return recordsMsg(recs)
	}
}

// restore replaces every widget with the loaded records.
func (a *App) restore(recs []widget.Record) {
	for _, w := range a.prov.Widgets() {
		a.prov.DeleteWidget(w.ID)
	}
	failed := 0
	for i := range recs {
		rec := recs[i]
		if _, err := a.prov.CreateWidget(rec.Type, provider.CreateOptions{InitialState: &rec}); err != nil {
			failed++
			a.log.Warn("restore failed", "type", rec.Type, "err", err)
		}
	}
	a.status = fmt.Sprintf("loaded %d widgets", len(recs)-failed)
	if failed > 0 {
		a.status += fmt.Sprintf(" (%d failed)", failed)
	}
}

// cell maps a world point to a cell of a slice pane.
func cell(ax surface.Axis, p, spacing surface.Vec3) (int, int) {
	ua, va := scene.InPlaneAxes(ax)
	return int(math.Round(p[ua] / spacing[ua])), int(math.Round(p[va] / spacing[va]))
}
