package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/slicewidgets/internal/provider"
	"github.com/jask/slicewidgets/internal/scene"
	"github.com/jask/slicewidgets/internal/store"
	"github.com/jask/slicewidgets/internal/widgets/crosshairs"
	"github.com/jask/slicewidgets/internal/widgets/ruler"
)

var (
	paneStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	hoveredStyle = paneStyle.BorderForeground(lipgloss.Color("12"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	statusStyle  = lipgloss.NewStyle().Faint(true)
)

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "loading..."
	}
	vis := a.prov.Store().Snapshot()
	cols := 1
	if len(a.panes) > 1 {
		cols = 2
	}
	var rows []string
	for start := 0; start < len(a.panes); start += cols {
		var line []string
		for _, p := range a.panes[start:min(start+cols, len(a.panes))] {
			line = append(line, a.renderPane(p, vis))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, line...))
	}
	status := a.status
	if status == "" {
		status = a.help.ShortHelpView(a.keys.ShortHelp())
	}
	rows = append(rows, statusStyle.Render(ansi.Truncate(status, a.width, "…")))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) renderPane(p *pane, st store.State) string {
	area := p.area()
	if area.w <= 0 || area.h <= 0 {
		return ""
	}
	title := p.spec.Name
	if p.spec.HasAxis {
		title = fmt.Sprintf("%s %s=%g", p.spec.Name, p.spec.Axis, st.Visualization.Slices[p.spec.Axis])
	}
	var body []string
	if p.spec.HasAxis {
		body = a.sliceGrid(p, st, area.w, area.h)
	} else {
		body = a.widgetList(st, area.h)
	}
	for i, l := range body {
		body[i] = ansi.Truncate(l, area.w, "")
	}
	style := paneStyle
	if i := a.paneIndex(p); i == a.hovered {
		style = hoveredStyle
	}
	content := titleStyle.Render(ansi.Truncate(title, area.w, "…")) + "\n" + strings.Join(body, "\n")
	return style.Width(area.w).Height(area.h + 1).Render(content)
}

func (a *App) paneIndex(p *pane) int {
	for i, q := range a.panes {
		if q == p {
			return i
		}
	}
	return -1
}

// sliceGrid draws the handles of every widget visible in p.
func (a *App) sliceGrid(p *pane, st store.State, w, h int) []string {
	grid := make([][]rune, h)
	focused := make([]map[int]bool, h)
	for y := range grid {
		grid[y] = []rune(strings.Repeat("·", w))
		focused[y] = map[int]bool{}
	}
	for _, wd := range a.prov.Widgets() {
		proj, ok := wd.Instances[p.view].(*scene.Projection)
		if !ok || !proj.Visible() {
			continue
		}
		glyph := glyphFor(wd)
		for _, pt := range wd.Factory.WidgetState().HandleList() {
			x, y := cell(p.spec.Axis, pt, st.Visualization.Spacing)
			if x < 0 || y < 0 || x >= w || y >= h {
				continue
			}
			grid[y][x] = glyph
			if wd.ID == st.FocusedID {
				focused[y][x] = true
			}
		}
	}
	lines := make([]string, h)
	for y, row := range grid {
		if len(focused[y]) == 0 {
			lines[y] = string(row)
			continue
		}
		var b strings.Builder
		for x, r := range row {
			if focused[y][x] {
				b.WriteString(focusStyle.Render(string(r)))
				continue
			}
			b.WriteRune(r)
		}
		lines[y] = b.String()
	}
	return lines
}

func glyphFor(w *provider.Widget) rune {
	switch w.Type {
	case ruler.TypeName:
		return 'o'
	case crosshairs.TypeName:
		return '+'
	}
	return '*'
}

// widgetList summarizes every widget, for views that are not slices.
func (a *App) widgetList(st store.State, h int) []string {
	var lines []string
	for _, w := range a.prov.Widgets() {
		mark := " "
		if w.ID == st.FocusedID {
			mark = "*"
		}
		var desc string
		switch f := w.Factory.(type) {
		case *ruler.Factory:
			desc = fmt.Sprintf("%s %.2f", f.PlaceState(), f.Length())
			if l := f.Lock(); l.Locked {
				desc += " " + l.String()
			}
		case *crosshairs.Factory:
			if pos, ok := f.Position(); ok {
				desc = fmt.Sprintf("(%g, %g, %g)", pos[0], pos[1], pos[2])
			} else {
				desc = "unplaced"
			}
		}
		lines = append(lines, fmt.Sprintf("%s#%d %s %s", mark, w.ID, w.Type, desc))
	}
	if len(lines) == 0 {
		lines = append(lines, "no widgets")
	}
	if len(lines) > h {
		lines = lines[:h]
	}
	return lines
}
