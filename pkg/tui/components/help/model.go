package help

import (
	_ "embed"
	"strings"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss/v2"
	xansi "github.com/charmbracelet/x/ansi"

	"tableflip.dev/tmpl/pkg/tui/components/overlaypane"
)

//go:embed help.md
var helpMarkdown string

// Model renders the key reference inside a bordered, scrollable viewport.
type Model struct {
	viewport viewport.Model
	width    int
	height   int

	frame lipgloss.Style
	err   error
}

// New constructs a help overlay model sized to the provided bounds.
func New(width, height int) *Model {
	vp := viewport.New(
		viewport.WithWidth(max(width, 1)),
		viewport.WithHeight(max(height, 1)),
	)
	vp.MouseWheelEnabled = true
	m := &Model{
		viewport: vp,
		frame:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()),
	}
	m.SetSize(width, height)
	return m
}

// Init implements overlaypane.Overlay.
func (m *Model) Init() tea.Cmd { return nil }

// Update scrolls the viewport. esc, q and ? dismiss the overlay.
func (m *Model) Update(msg tea.Msg) (overlaypane.Overlay, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q", "?":
			return nil, nil
		}
	}
	vp, cmd := m.viewport.Update(msg)
	m.viewport = vp
	return m, cmd
}

// View renders the help content inside a rounded frame.
func (m *Model) View() (string, *tea.Cursor) {
	body := m.viewport.View()
	if body == "" && m.err != nil {
		body = "help unavailable: " + m.err.Error()
	}
	return m.frame.Width(m.width).Height(m.height).Render(body), nil
}

// SetSize configures the overlay dimensions and re-renders the markdown to fit.
func (m *Model) SetSize(width, height int) {
	width, height = max(width, 32), max(height, 8)
	if m.width == width && m.height == height {
		return
	}
	m.width = width
	m.height = height

	innerWidth := max(width-m.frame.GetHorizontalFrameSize(), 1)
	innerHeight := max(height-m.frame.GetVerticalFrameSize(), 1)
	m.viewport.SetWidth(innerWidth)
	m.viewport.SetHeight(innerHeight)
	m.render(innerWidth)
}

func (m *Model) render(wrap int) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(wrap, 10)),
	)
	if err == nil {
		var content string
		content, err = renderer.Render(strings.TrimSpace(helpMarkdown))
		if err == nil {
			m.err = nil
			m.viewport.SetContent(xansi.Strip(content))
			m.viewport.SetYOffset(0)
			return
		}
	}
	m.err = err
	m.viewport.SetContent("help unavailable: " + err.Error())
}
