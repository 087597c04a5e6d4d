package scene

import "github.com/jask/slicewidgets/internal/surface"

// Projection is the in-memory rendering handle of one widget in one view.
type Projection struct {
	factory        surface.Factory
	viewType       surface.ViewType
	visible        bool
	contextVisible bool
}

// SetVisibility implements surface.Projection.
func (p *Projection) SetVisibility(v bool) { p.visible = v }

// SetContextVisibility implements surface.Projection.
func (p *Projection) SetContextVisibility(v bool) { p.contextVisible = v }

func (p *Projection) Visible() bool              { return p.visible }
func (p *Projection) ContextVisible() bool       { return p.contextVisible }
func (p *Projection) Factory() surface.Factory   { return p.factory }
func (p *Projection) ViewType() surface.ViewType { return p.viewType }

// Manager tracks the projections of one view and which of them holds input
// focus. At most one projection is focused.
type Manager struct {
	projections map[surface.Factory]*Projection
	order       []surface.Factory
	focused     *Projection
}

func NewManager() *Manager {
	return &Manager{projections: make(map[surface.Factory]*Projection)}
}

// AddWidget implements surface.Manager. Adding the same factory twice returns
// the existing projection.
func (m *Manager) AddWidget(f surface.Factory, vt surface.ViewType) surface.Projection {
	if p, ok := m.projections[f]; ok {
		return p
	}
	p := &Projection{factory: f, viewType: vt, visible: true, contextVisible: true}
	m.projections[f] = p
	m.order = append(m.order, f)
	return p
}

// RemoveWidget implements surface.Manager.
func (m *Manager) RemoveWidget(f surface.Factory) {
	p, ok := m.projections[f]
	if !ok {
		return
	}
	if m.focused == p {
		m.focused = nil
	}
	delete(m.projections, f)
	for i, other := range m.order {
		if other == f {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// GrabFocus implements surface.Manager. Projections this manager does not
// own are ignored.
func (m *Manager) GrabFocus(p surface.Projection) {
	sp, ok := p.(*Projection)
	if !ok || sp == nil {
		return
	}
	if owned, ok := m.projections[sp.factory]; !ok || owned != sp {
		return
	}
	m.focused = sp
}

// ReleaseFocus implements surface.Manager.
func (m *Manager) ReleaseFocus() { m.focused = nil }

// Focused returns the focused projection, or nil.
func (m *Manager) Focused() *Projection { return m.focused }

// Projection returns the projection of f.
func (m *Manager) Projection(f surface.Factory) (*Projection, bool) {
	p, ok := m.projections[f]
	return p, ok
}

// Projections returns every projection in insertion order.
func (m *Manager) Projections() []*Projection {
	out := make([]*Projection, 0, len(m.order))
	for _, f := range m.order {
		out = append(out, m.projections[f])
	}
	return out
}
