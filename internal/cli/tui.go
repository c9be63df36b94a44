package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/astview/pkg/diagram"
	"github.com/matzehuels/astview/pkg/inspect"
	"github.com/matzehuels/astview/pkg/render"
	"github.com/matzehuels/astview/pkg/source"
	"github.com/matzehuels/astview/pkg/tree"
	"github.com/matzehuels/astview/pkg/view"
)

// =============================================================================
// Key Bindings
// =============================================================================

type keyMap struct {
	Up, Down, Left, Right key.Binding
	Activate, Mode        key.Binding
	ExpandAll, Collapse   key.Binding
	Refresh, Inspector    key.Binding
	Help, Quit            key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Activate, k.Mode, k.Inspector, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Activate, k.Mode, k.ExpandAll, k.Collapse},
		{k.Refresh, k.Inspector, k.Help, k.Quit},
	}
}

var defaultKeys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "parent")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "first child")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
	Activate:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("⏎", "activate")),
	Mode:      key.NewBinding(key.WithKeys("tab", "m"), key.WithHelp("tab", "toggle/select mode")),
	ExpandAll: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expand all")),
	Collapse:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse all")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Inspector: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "inspector")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// =============================================================================
// Model
// =============================================================================

// refreshMsg asks the model to reload its source.
type refreshMsg struct{}

// tuiModel is the bubbletea model of the interactive tree view. All view
// operations run on the bubbletea goroutine.
type tuiModel struct {
	ctx  context.Context
	view *view.View
	unit float64

	keys          keyMap
	help          help.Model
	inspector     viewport.Model
	showInspector bool

	diagram diagram.Diagram
	boxes   map[string]diagram.Box
	canvas  *render.Canvas
	cursor  string
	xoff    int
	yoff    int

	width, height int
	status        string
	failed        bool
}

// newTUIModel creates the model for v. charWidth is the layout width of one
// label character; terminal columns are narrower so that labels, which gain a
// state marker in text, fit their slots.
func newTUIModel(ctx context.Context, v *view.View, charWidth float64) *tuiModel {
	m := &tuiModel{
		ctx:           ctx,
		view:          v,
		unit:          charWidth * 2 / 3,
		keys:          defaultKeys,
		help:          help.New(),
		inspector:     viewport.New(0, 0),
		showInspector: true,
		cursor:        tree.RootID,
	}
	if v.NoContent() {
		m.setStatus(false, "no content: %v", v.Reason())
	}
	m.redraw()
	return m
}

func (m *tuiModel) Init() tea.Cmd { return nil }

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		m.scrollToCursor()
		return m, nil

	case refreshMsg:
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
		case key.Matches(msg, m.keys.Up):
			m.moveTo(parentID(m.cursor))
		case key.Matches(msg, m.keys.Down):
			m.moveTo(m.firstChild())
		case key.Matches(msg, m.keys.Left):
			m.moveTo(m.sibling(-1))
		case key.Matches(msg, m.keys.Right):
			m.moveTo(m.sibling(1))
		case key.Matches(msg, m.keys.Activate):
			m.activate()
		case key.Matches(msg, m.keys.Mode):
			next := m.view.Mode().Next()
			if err := m.view.SetMode(next); err != nil {
				m.setStatus(true, "%v", err)
			} else {
				m.setStatus(false, "%s mode", next)
			}
		case key.Matches(msg, m.keys.ExpandAll):
			m.expandTo(-1)
		case key.Matches(msg, m.keys.Collapse):
			m.expandTo(0)
		case key.Matches(msg, m.keys.Refresh):
			m.refresh()
		case key.Matches(msg, m.keys.Inspector):
			m.showInspector = !m.showInspector
			m.resize()
		default:
			var cmd tea.Cmd
			m.inspector, cmd = m.inspector.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// =============================================================================
// Actions
// =============================================================================

func (m *tuiModel) activate() {
	if err := m.view.Activate(m.cursor); err != nil {
		m.setStatus(true, "%v", err)
		return
	}
	if m.view.Mode() == view.ModeToggle {
		if n, err := m.view.Node(m.cursor); err == nil {
			state := "expanded"
			if n.Collapsed {
				state = "collapsed"
			}
			m.setStatus(false, "%s %s", state, n.Label)
		}
	}
	m.redraw()
}

// selected receives nodes activated in select mode.
func (m *tuiModel) selected(n source.Node) {
	m.setStatus(false, "selected %s at %s", n.Label(), n.StartPoint())
}

func (m *tuiModel) expandTo(depth int) {
	if err := m.view.ExpandTo(depth); err != nil {
		m.setStatus(true, "%v", err)
		return
	}
	m.redraw()
}

func (m *tuiModel) refresh() {
	err := m.view.Refresh(m.ctx)
	switch {
	case err != nil:
		m.setStatus(true, "reload failed, showing previous tree: %v", err)
	case m.view.NoContent():
		m.setStatus(false, "no content: %v", m.view.Reason())
	default:
		m.setStatus(false, "reloaded %s", m.view.Source())
	}
	m.redraw()
}

func (m *tuiModel) setStatus(failed bool, format string, args ...any) {
	m.failed = failed
	m.status = fmt.Sprintf(format, args...)
}

// redraw re-exports the diagram after the view changed and keeps the cursor
// on the nearest visible node.
func (m *tuiModel) redraw() {
	m.diagram = m.view.Diagram()
	m.boxes = make(map[string]diagram.Box, len(m.diagram.Boxes))
	for _, b := range m.diagram.Boxes {
		m.boxes[b.ID] = b
	}
	m.canvas = render.NewCanvas(m.diagram, render.Options{Unit: m.unit})
	m.cursor = m.visibleAncestor(m.cursor)
	m.updateInspector()
	m.scrollToCursor()
}

func (m *tuiModel) moveTo(id string) {
	if _, ok := m.boxes[id]; !ok || id == m.cursor {
		return
	}
	m.cursor = id
	m.updateInspector()
	m.scrollToCursor()
}

func (m *tuiModel) updateInspector() {
	var b strings.Builder
	switch n, err := m.view.Node(m.cursor); {
	case err != nil:
		b.WriteString(StyleDim.Render(err.Error()))
	case n.Synthetic:
		b.WriteString(StyleDim.Render("source text of " + n.Parent().Label))
		b.WriteString("\n")
		b.WriteString(n.Label)
	default:
		props, _ := m.view.Inspect(m.cursor)
		_ = inspect.Fprint(&b, props)
	}
	m.inspector.SetContent(b.String())
	m.inspector.GotoTop()
}

// =============================================================================
// Navigation
// =============================================================================

func parentID(id string) string {
	if i := strings.LastIndexByte(id, '.'); i > 0 {
		return id[:i]
	}
	return tree.RootID
}

func (m *tuiModel) visibleAncestor(id string) string {
	for {
		if _, ok := m.boxes[id]; ok || id == tree.RootID {
			return id
		}
		id = parentID(id)
	}
}

// firstChild returns the leftmost visible child of the cursor.
func (m *tuiModel) firstChild() string {
	best, bestX := "", 0.0
	prefix := m.cursor + "."
	for _, b := range m.diagram.Boxes {
		if strings.HasPrefix(b.ID, prefix) && !strings.Contains(b.ID[len(prefix):], ".") {
			if best == "" || b.X < bestX {
				best, bestX = b.ID, b.X
			}
		}
	}
	return best
}

// sibling returns the node delta positions away on the cursor's row.
func (m *tuiModel) sibling(delta int) string {
	cur, ok := m.canvas.Span(m.cursor)
	if !ok {
		return ""
	}
	var row []render.Span
	for _, s := range m.canvas.Spans() {
		if s.Line == cur.Line {
			row = append(row, s)
		}
	}
	slices.SortFunc(row, func(a, b render.Span) int { return a.Col - b.Col })
	i := slices.IndexFunc(row, func(s render.Span) bool { return s.ID == m.cursor }) + delta
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i].ID
}

// =============================================================================
// Geometry
// =============================================================================

func (m *tuiModel) inspectorHeight() int {
	if !m.showInspector {
		return 0
	}
	return max(m.height/3, 4)
}

func (m *tuiModel) diagramHeight() int {
	used := 2 + lipgloss.Height(m.help.View(m.keys))
	if m.showInspector {
		used += m.inspectorHeight() + 2
	}
	return max(m.height-used, 1)
}

func (m *tuiModel) resize() {
	m.inspector.Width = m.width
	m.inspector.Height = m.inspectorHeight()
}

func (m *tuiModel) scrollToCursor() {
	s, ok := m.canvas.Span(m.cursor)
	if !ok || m.width == 0 {
		return
	}
	h := m.diagramHeight()
	switch {
	case s.Line < m.yoff:
		m.yoff = s.Line
	case s.Line+1 >= m.yoff+h:
		m.yoff = s.Line + 2 - h
	}
	switch {
	case s.Col < m.xoff:
		m.xoff = s.Col - 2
	case s.Col+s.Len > m.xoff+m.width:
		m.xoff = s.Col + s.Len - m.width + 2
	}
	m.xoff, m.yoff = max(m.xoff, 0), max(m.yoff, 0)
}

// =============================================================================
// Rendering
// =============================================================================

func (m *tuiModel) View() string {
	if m.width == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.diagramView())
	if m.showInspector {
		b.WriteString(paneTitleStyle.Width(m.width).Render("Inspector " + StyleDim.Render(m.cursor)))
		b.WriteString("\n")
		b.WriteString(m.inspector.View())
		b.WriteString("\n")
	}
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *tuiModel) header() string {
	parts := []string{m.view.Source()}
	if m.diagram.Language != "" {
		parts = append(parts, m.diagram.Language)
	}
	parts = append(parts, m.view.Mode().String()+" mode", fmt.Sprintf("%d nodes shown", len(m.diagram.Boxes)))
	line := StyleTitle.Render(appName) + " " + StyleDim.Render(strings.Join(parts, " · "))
	if m.diagram.Truncated {
		line += " " + StyleWarning.Render("truncated")
	}
	return line
}

func (m *tuiModel) statusLine() string {
	if m.status == "" {
		return ""
	}
	if m.failed {
		return styleIconError.Render(iconError) + " " + m.status
	}
	return StyleDim.Render(m.status)
}

// diagramView draws the visible window of the canvas, styling each label by
// the state of its node.
func (m *tuiModel) diagramView() string {
	lines := m.canvas.Lines()
	spans := make(map[int][]render.Span)
	for _, s := range m.canvas.Spans() {
		spans[s.Line] = append(spans[s.Line], s)
	}
	lo, hi := m.xoff, m.xoff+m.width

	var b strings.Builder
	for i := m.yoff; i < m.yoff+m.diagramHeight(); i++ {
		if i < len(lines) {
			row := []rune(lines[i])
			onLine := spans[i]
			slices.SortFunc(onLine, func(a, b render.Span) int { return a.Col - b.Col })
			pos := 0
			for _, s := range onLine {
				end := min(s.Col+s.Len, len(row))
				b.WriteString(edgeStyle.Render(window(row[pos:max(s.Col, pos)], pos, lo, hi)))
				if label := window(row[min(s.Col, end):end], s.Col, lo, hi); label != "" {
					b.WriteString(m.boxStyle(s.ID).Render(label))
				}
				pos = max(end, pos)
			}
			if pos < len(row) {
				b.WriteString(edgeStyle.Render(window(row[pos:], pos, lo, hi)))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *tuiModel) boxStyle(id string) lipgloss.Style {
	bx := m.boxes[id]
	var style lipgloss.Style
	switch {
	case id == m.cursor:
		return boxCursorStyle
	case bx.Error:
		style = boxErrorStyle
	case bx.Synthetic:
		style = boxTextStyle
	case bx.Collapsed:
		style = boxCollapsedStyle
	case bx.Leaf:
		style = boxLeafStyle
	default:
		style = boxExpandedStyle
	}
	if id == m.view.Selected() {
		style = style.Underline(true)
	}
	return style
}

// window returns the part of r, which starts at column start, that falls
// into the columns [lo, hi).
func window(r []rune, start, lo, hi int) string {
	a, b := max(lo-start, 0), min(hi-start, len(r))
	if a >= b {
		return ""
	}
	return string(r[a:b])
}
