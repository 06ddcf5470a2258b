package overlaypane

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	xansi "github.com/charmbracelet/x/ansi"
)

// Overlay is a component that can be floated above the background.
type Overlay interface {
	Init() tea.Cmd
	Update(tea.Msg) (Overlay, tea.Cmd)
	View() (string, *tea.Cursor)
	SetSize(width, height int)
}

type focusable interface {
	Focus() tea.Cmd
}

type blurrable interface {
	Blur()
}

// Centered places an overlay in the middle of the pane at width x height.
func Centered(width, height int) Placement {
	return Placement{Horizontal: lipgloss.Center, Vertical: lipgloss.Center, Width: width, Height: height}
}

// Model composes a background surface with an optional overlay.
type Model struct {
	width  int
	height int

	background string
	bgCursor   *tea.Cursor

	overlay   Overlay
	placement Placement
}

// New constructs a container sized to width x height.
func New(width, height int) *Model {
	m := &Model{}
	m.SetSize(width, height)
	return m
}

// SetSize updates the container bounds.
func (m *Model) SetSize(width, height int) {
	m.width = max(width, 1)
	m.height = max(height, 1)
	if m.overlay != nil {
		m.overlay.SetSize(m.overlaySize())
	}
}

// SetBackground records the background view and cursor.
func (m *Model) SetBackground(view string, cursor *tea.Cursor) {
	m.background = view
	m.bgCursor = nil
	if cursor != nil {
		c := *cursor
		m.bgCursor = &c
	}
}

// SetOverlay mounts overlay using placement and returns its Init command.
func (m *Model) SetOverlay(overlay Overlay, placement Placement) tea.Cmd {
	if overlay == nil {
		return nil
	}
	m.overlay = overlay
	m.placement = placement
	m.overlay.SetSize(m.overlaySize())
	return m.overlay.Init()
}

// ClearOverlay removes any active overlay.
func (m *Model) ClearOverlay() {
	if b, ok := m.overlay.(blurrable); ok {
		b.Blur()
	}
	m.overlay = nil
}

// HasOverlay reports if an overlay is currently mounted.
func (m *Model) HasOverlay() bool { return m.overlay != nil }

// Overlay returns the mounted overlay, if any.
func (m *Model) Overlay() Overlay { return m.overlay }

// Update forwards messages to the overlay when present. An overlay that
// returns nil from Update is unmounted.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if m.overlay == nil {
		return nil
	}
	next, cmd := m.overlay.Update(msg)
	m.overlay = next
	return cmd
}

// View renders the composed view.
func (m *Model) View() (string, *tea.Cursor) {
	if m.overlay == nil {
		return Compose(m.background, m.width, m.height, "", Placement{}), m.backgroundCursor()
	}
	fg, cur := m.overlay.View()
	w, h := contentSize(fg)
	maxW, maxH := m.overlaySize()
	p := m.placement
	p.Width, p.Height = min(w, maxW), min(h, maxH)
	view := Compose(m.background, m.width, m.height, fg, p)
	if cur == nil {
		return view, nil
	}
	x, y := offsets(m.width, m.height, p.Width, p.Height, p)
	c := *cur
	c.X += x
	c.Y += y
	return view, &c
}

// Focus requests focus for the overlay when supported.
func (m *Model) Focus() tea.Cmd {
	if f, ok := m.overlay.(focusable); ok {
		return f.Focus()
	}
	return nil
}

func (m *Model) backgroundCursor() *tea.Cursor {
	if m.bgCursor == nil {
		return nil
	}
	c := *m.bgCursor
	return &c
}

func (m *Model) overlaySize() (int, int) {
	w := m.placement.Width
	if w <= 0 || w > m.width {
		w = m.width
	}
	h := m.placement.Height
	if h <= 0 || h > m.height {
		h = m.height
	}
	return w, h
}

func contentSize(view string) (int, int) {
	lines := strings.Split(view, "\n")
	w := 0
	for _, line := range lines {
		w = max(w, xansi.StringWidth(line))
	}
	return w, len(lines)
}
