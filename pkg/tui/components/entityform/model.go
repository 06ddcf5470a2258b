// Package entityform renders a form.Form as a modal overlay with one input
// per field.
package entityform

import (
	"github.com/charmbracelet/bubbles/v2/textarea"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/tmpl/pkg/form"
	"tableflip.dev/tmpl/pkg/tui/components/overlaypane"
	"tableflip.dev/tmpl/pkg/tui/events"
	"tableflip.dev/tmpl/pkg/tui/theme"
)

// Options control how the form is presented.
type Options struct {
	ID    events.ComponentID
	Key   string
	Title string
	Theme theme.ModalTheme
}

type input struct {
	field form.Field
	line  textinput.Model
	area  textarea.Model
}

func (in *input) value() string {
	if in.field.Multiline {
		return in.area.Value()
	}
	return in.line.Value()
}

// Model is the overlay editing one form instance.
type Model struct {
	form  *form.Form
	id    events.ComponentID
	key   string
	title string
	theme theme.ModalTheme

	inputs  []*input
	focus   int
	focused bool

	width      int
	height     int
	fieldWidth int

	busy   bool
	errMsg string
}

// New mounts f. Inputs start with the form's current values.
func New(f *form.Form, opts Options) *Model {
	id := opts.ID
	if id == "" {
		id = events.ComponentID("entityform")
	}
	m := &Model{
		form:    f,
		id:      id,
		key:     opts.Key,
		title:   opts.Title,
		theme:   opts.Theme,
		focused: true,
	}
	for _, field := range f.Fields() {
		in := &input{field: field}
		if field.Multiline {
			in.area = textarea.New()
			in.area.ShowLineNumbers = false
			in.area.Prompt = ""
			in.area.SetValue(f.Value(field.Name))
		} else {
			in.line = textinput.New()
			in.line.Prompt = ""
			in.line.Placeholder = field.Label
			in.line.SetValue(f.Value(field.Name))
		}
		m.inputs = append(m.inputs, in)
	}
	m.SetSize(80, 20)
	return m
}

// Key returns the form key this overlay was built for.
func (m *Model) Key() string { return m.key }

// Form returns the bound form state.
func (m *Model) Form() *form.Form { return m.form }

// SetBusy toggles the in-flight indicator.
func (m *Model) SetBusy(busy bool) { m.busy = busy }

// SetError shows msg under the inputs. An empty msg clears it.
func (m *Model) SetError(msg string) { m.errMsg = msg }

// Init implements overlaypane.Overlay.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(events.FocusCmd(m.id), m.updateInputFocus())
}

// Focus gives keyboard focus to the active input.
func (m *Model) Focus() tea.Cmd {
	m.focused = true
	return m.updateInputFocus()
}

// Blur releases keyboard focus.
func (m *Model) Blur() {
	m.focused = false
	m.updateInputFocus()
}

// Update processes Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (overlaypane.Overlay, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case events.FocusMsg:
		if msg.Component == m.id {
			return m, m.Focus()
		}
		return m, nil
	case events.BlurMsg:
		if msg.Component == m.id {
			m.Blur()
		}
		return m, nil
	}
	// Non-key messages such as cursor blinks go to the active input.
	return m, m.forward(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if !m.focused {
		return nil
	}
	switch msg.String() {
	case "esc":
		return events.FormCancelCmd(m.id, m.key)
	case "ctrl+s":
		m.submit()
		return nil
	case "tab":
		return m.advanceFocus(1)
	case "shift+tab":
		return m.advanceFocus(-1)
	case "enter":
		if in := m.active(); in != nil && !in.field.Multiline {
			m.submit()
			return nil
		}
	}
	return m.forward(msg)
}

func (m *Model) submit() {
	if m.busy {
		return
	}
	m.errMsg = ""
	m.form.HandleSubmit()
}

func (m *Model) forward(msg tea.Msg) tea.Cmd {
	in := m.active()
	if in == nil {
		return nil
	}
	var cmd tea.Cmd
	before := in.value()
	if in.field.Multiline {
		in.area, cmd = in.area.Update(msg)
	} else {
		in.line, cmd = in.line.Update(msg)
	}
	if after := in.value(); after != before {
		m.form.HandleFieldChange(in.field.Name, after)
	}
	return cmd
}

func (m *Model) active() *input {
	if m.focus < 0 || m.focus >= len(m.inputs) {
		return nil
	}
	return m.inputs[m.focus]
}

func (m *Model) advanceFocus(delta int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	m.focus = (m.focus + len(m.inputs) + delta) % len(m.inputs)
	return m.updateInputFocus()
}

func (m *Model) updateInputFocus() tea.Cmd {
	var cmds []tea.Cmd
	for i, in := range m.inputs {
		active := m.focused && i == m.focus
		switch {
		case active && in.field.Multiline:
			cmds = appendCmd(cmds, in.area.Focus())
		case active:
			cmds = appendCmd(cmds, in.line.Focus())
		case in.field.Multiline:
			in.area.Blur()
		default:
			in.line.Blur()
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func appendCmd(cmds []tea.Cmd, cmd tea.Cmd) []tea.Cmd {
	if cmd == nil {
		return cmds
	}
	return append(cmds, cmd)
}

// View renders the overlay UI.
func (m *Model) View() (string, *tea.Cursor) {
	lines := []string{m.theme.Title.Render(m.title), ""}
	var cursor *tea.Cursor
	for i, in := range m.inputs {
		label := m.theme.Label
		if i == m.focus && m.focused {
			label = m.theme.LabelFocused
		}
		lines = append(lines, label.Render(in.field.Label))
		if in.field.Multiline {
			lines = append(lines, in.area.View())
		} else {
			if i == m.focus {
				if c := in.line.Cursor(); c != nil {
					clone := *c
					clone.Position.Y += len(lines)
					cursor = &clone
				}
			}
			lines = append(lines, in.line.View())
		}
		lines = append(lines, "")
	}
	lines = append(lines, m.statusLine())

	body := lipgloss.NewStyle().Width(m.fieldWidth).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))

	border := m.theme.BorderFocus
	if !m.focused {
		border = m.theme.BorderBlur
	}
	frame := m.theme.Frame
	if border != nil {
		frame = frame.BorderForeground(border)
	}
	box := frame.Render(body)

	if cursor != nil {
		cursor.Position.X += frame.GetBorderLeftSize() + frame.GetPaddingLeft()
		cursor.Position.Y += frame.GetBorderTopSize() + frame.GetPaddingTop()
	}
	return box, cursor
}

func (m *Model) statusLine() string {
	switch {
	case m.busy:
		return m.theme.Hint.Render("saving…")
	case m.errMsg != "":
		return m.theme.Error.Render(m.errMsg)
	}
	return m.theme.Hint.Render("ctrl+s " + m.form.SubmitLabel() + " · tab next field · esc cancel")
}

// SetSize configures the overlay dimensions.
func (m *Model) SetSize(width, height int) {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 20
	}
	m.width = width
	m.height = height
	m.fieldWidth = min(max(width-8, 20), 72)

	// title, blank, status and a label plus spacer per field
	fixed := 3 + 2*len(m.inputs) + m.theme.Frame.GetVerticalFrameSize()
	areaHeight := height - fixed
	for _, in := range m.inputs {
		if !in.field.Multiline {
			areaHeight--
		}
	}
	areaHeight = min(max(areaHeight, 3), 10)
	for _, in := range m.inputs {
		if in.field.Multiline {
			in.area.SetWidth(m.fieldWidth)
			in.area.SetHeight(areaHeight)
		} else {
			in.line.SetWidth(m.fieldWidth)
		}
	}
}
