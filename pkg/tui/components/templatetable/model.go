// Package templatetable renders the template collection as a scrollable
// table with a selection cursor.
package templatetable

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/tmpl/pkg/template"
	"tableflip.dev/tmpl/pkg/tui/events"
	"tableflip.dev/tmpl/pkg/tui/theme"
)

// EmptyText is shown when there are no templates.
const EmptyText = "No templates found"

const (
	idWidth = 6
	gap     = 2
)

// Model lists templates.
type Model struct {
	id    events.ComponentID
	theme theme.TableTheme

	rows     []template.Template
	selected int
	offset   int

	width  int
	height int
}

// New constructs an empty table.
func New(id events.ComponentID, th theme.TableTheme) *Model {
	if id == "" {
		id = events.ComponentID("templates")
	}
	return &Model{id: id, theme: th, width: 80, height: 10}
}

// SetTemplates replaces the rows. The selection stays on the same template
// id when it is still present.
func (m *Model) SetTemplates(list []template.Template) {
	var keep template.ID
	if cur, ok := m.Selected(); ok {
		keep = cur.ID
	}
	m.rows = append([]template.Template(nil), list...)
	m.selected = 0
	if i := template.IndexOf(m.rows, keep); i >= 0 {
		m.selected = i
	}
	m.clamp()
}

// Len returns the number of rows.
func (m *Model) Len() int { return len(m.rows) }

// Selected returns the highlighted template.
func (m *Model) Selected() (template.Template, bool) {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return template.Template{}, false
	}
	return m.rows[m.selected], true
}

// Select moves the cursor to the template with id. It reports false when no
// row has that id.
func (m *Model) Select(id template.ID) bool {
	i := template.IndexOf(m.rows, id)
	if i < 0 {
		return false
	}
	m.selected = i
	m.clamp()
	return true
}

// SetSize configures the table bounds including the header row.
func (m *Model) SetSize(width, height int) {
	m.width = max(width, 20)
	m.height = max(height, 2)
	m.clamp()
}

// Update moves the selection. A create or update announced for this table
// selects the changed template.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if change, ok := msg.(events.TemplateChangeMsg); ok {
		if change.Component == m.id && change.Action != events.ChangeDelete {
			m.Select(change.ID)
		}
		return nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	prev := m.selected
	switch key.String() {
	case "j", "down":
		m.selected++
	case "k", "up":
		m.selected--
	case "g", "home":
		m.selected = 0
	case "G", "end":
		m.selected = len(m.rows) - 1
	case "pgdown":
		m.selected += m.visibleRows()
	case "pgup":
		m.selected -= m.visibleRows()
	default:
		return nil
	}
	m.clamp()
	if m.selected == prev {
		return nil
	}
	t, _ := m.Selected()
	return func() tea.Msg {
		return events.TemplateHighlightMsg{Component: m.id, Template: t}
	}
}

// View renders the header and the visible rows.
func (m *Model) View() string {
	if len(m.rows) == 0 {
		return m.theme.Empty.Render(EmptyText)
	}
	subjectWidth, bodyWidth := m.columns()
	lines := []string{m.theme.Header.Render(m.row("ID", "SUBJECT", "BODY", subjectWidth, bodyWidth))}
	end := min(m.offset+m.visibleRows(), len(m.rows))
	for i := m.offset; i < end; i++ {
		t := m.rows[i]
		line := m.row(t.ID.String(), t.Subject, firstLine(t.Body), subjectWidth, bodyWidth)
		if i == m.selected {
			lines = append(lines, m.theme.Selected.Render(line))
		} else {
			lines = append(lines, m.theme.Row.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) row(id, subject, body string, subjectWidth, bodyWidth int) string {
	return fmt.Sprintf("%-*s%*s%s%*s%s",
		idWidth, cell(id, idWidth),
		gap, "",
		pad(cell(subject, subjectWidth), subjectWidth),
		gap, "",
		cell(body, bodyWidth),
	)
}

func (m *Model) columns() (int, int) {
	rest := max(m.width-idWidth-2*gap, 10)
	subject := max(rest*2/5, 8)
	return subject, max(rest-subject, 1)
}

func (m *Model) visibleRows() int {
	return max(m.height-1, 1)
}

func (m *Model) clamp() {
	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	visible := m.visibleRows()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+visible {
		m.offset = m.selected - visible + 1
	}
	m.offset = max(min(m.offset, len(m.rows)-visible), 0)
}

func cell(s string, width int) string {
	return truncate.StringWithTail(s, uint(width), "…")
}

func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func firstLine(s string) string {
	line, rest, _ := strings.Cut(s, "\n")
	if strings.TrimSpace(rest) != "" {
		return line + " …"
	}
	return line
}
