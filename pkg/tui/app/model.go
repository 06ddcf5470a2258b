// Package app is the root Bubble Tea model of the template manager. It owns
// the orchestrator and runs its transport calls as commands, so every state
// change happens inside Update.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	orch "tableflip.dev/tmpl/pkg/app"
	"tableflip.dev/tmpl/pkg/template"
	"tableflip.dev/tmpl/pkg/tui/components/entityform"
	"tableflip.dev/tmpl/pkg/tui/components/help"
	"tableflip.dev/tmpl/pkg/tui/components/overlaypane"
	"tableflip.dev/tmpl/pkg/tui/components/templatetable"
	"tableflip.dev/tmpl/pkg/tui/events"
	"tableflip.dev/tmpl/pkg/tui/theme"
)

const (
	tableID events.ComponentID = "templates"
	formID  events.ComponentID = "template-form"
)

// resultMsg carries a finished transport call back into Update.
type resultMsg struct {
	res orch.Result
}

// Describe implements the logging helper.
func (m resultMsg) Describe() string {
	if m.res.Err != nil {
		return fmt.Sprintf(`op:%q id:%d err:%q`, m.res.Op, m.res.ID, m.res.Err)
	}
	return fmt.Sprintf(`op:%q id:%d`, m.res.Op, m.res.ID)
}

// Option customises the root model.
type Option func(*Model)

// WithLogger routes UI event logging to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithContext sets the context transport calls run under.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// Model composes the template table, the form overlay and the help overlay.
type Model struct {
	orch   *orch.Orchestrator
	ctx    context.Context
	logger *slog.Logger
	theme  theme.Theme

	width  int
	height int

	table *templatetable.Model
	pane  *overlaypane.Model
	form  *entityform.Model
	help  *help.Model

	// submitted holds form values handed over by the form's submit callback
	// until Update turns them into a call.
	submitted     template.Fields
	hasSubmission bool

	confirmDelete template.ID
	status        string
}

// New constructs a root model around o.
func New(o *orch.Orchestrator, opts ...Option) *Model {
	th := theme.Default()
	m := &Model{
		orch:   o,
		ctx:    context.Background(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		theme:  th,
		table:  templatetable.New(tableID, th.Table),
		pane:   overlaypane.New(80, 24),
		width:  80,
		height: 24,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.layout()
	return m
}

// Run launches the Bubble Tea program.
func Run(ctx context.Context, o *orch.Orchestrator, logger *slog.Logger) error {
	p := tea.NewProgram(New(o, WithContext(ctx), WithLogger(logger)), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model. The first load starts immediately.
func (m *Model) Init() tea.Cmd {
	m.status = "Loading…"
	return m.begin(m.orch.BeginLoad())
}

// Update routes Bubble Tea messages to composed components.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.noteEvent(msg)

	var cmds []tea.Cmd
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
		m.layout()
		return m, nil

	case resultMsg:
		cmds = appendCmd(cmds, m.apply(v.res))

	case events.TemplateChangeMsg:
		cmds = appendCmd(cmds, m.table.Update(v))

	case events.FormCancelMsg:
		if m.form != nil && v.Key == m.form.Key() {
			m.status = "Cancelled"
			cmds = appendCmd(cmds, m.begin(m.orch.BeginClose()))
		}

	case tea.KeyMsg:
		if v.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.pane.HasOverlay() {
			cmds = appendCmd(cmds, m.pane.Update(msg))
			if m.help != nil && !m.pane.HasOverlay() {
				m.help = nil
			}
			cmds = appendCmd(cmds, m.takeSubmission())
		} else {
			cmds = appendCmd(cmds, m.handleListKey(v))
		}

	default:
		if m.pane.HasOverlay() {
			cmds = appendCmd(cmds, m.pane.Update(msg))
		}
	}

	cmds = appendCmd(cmds, m.sync())
	if len(cmds) == 0 {
		return m, nil
	}
	return m, tea.Batch(cmds...)
}

// View renders the composed UI.
func (m *Model) View() (string, *tea.Cursor) {
	m.pane.SetBackground(m.background(), nil)
	return m.pane.View()
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if m.confirmDelete != 0 {
		id := m.confirmDelete
		m.confirmDelete = 0
		if key == "y" || key == "enter" {
			m.status = fmt.Sprintf("Deleting #%d…", id)
			return m.begin(m.orch.BeginDelete(id))
		}
		m.status = ""
		return nil
	}

	switch key {
	case "q":
		return tea.Quit
	case "?":
		m.help = help.New(m.width, m.height)
		return m.pane.SetOverlay(m.help, m.helpPlacement())
	case "r":
		m.status = "Reloading…"
		return m.begin(m.orch.BeginLoad())
	case "n":
		if err := m.orch.OpenCreateOverlay(); err != nil {
			m.status = err.Error()
		}
		return nil
	case "e", "enter":
		t, ok := m.table.Selected()
		if !ok {
			return nil
		}
		if err := m.orch.OpenEditOverlay(t); err != nil {
			m.status = err.Error()
		}
		return nil
	case "d":
		t, ok := m.table.Selected()
		if !ok {
			return nil
		}
		m.confirmDelete = t.ID
		m.status = fmt.Sprintf("Delete #%d %q? (y/n)", t.ID, t.Subject)
		return nil
	}
	return m.table.Update(msg)
}

// onSubmit is the form callback. It only records the values; the call is
// started by takeSubmission once the key has been handled.
func (m *Model) onSubmit(fields template.Fields) {
	m.submitted = fields
	m.hasSubmission = true
}

func (m *Model) takeSubmission() tea.Cmd {
	if !m.hasSubmission {
		return nil
	}
	fields := m.submitted
	m.submitted, m.hasSubmission = nil, false
	call, ok := m.orch.BeginSubmit(fields)
	if !ok {
		return nil
	}
	m.status = "Saving…"
	return m.begin(call, true)
}

// begin turns a prepared call into a command. A false ok means nothing needs
// to run.
func (m *Model) begin(call orch.Call, ok bool) tea.Cmd {
	if !ok {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return resultMsg{res: call.Run(ctx)}
	}
}

func (m *Model) apply(res orch.Result) tea.Cmd {
	reload := m.orch.Apply(res)
	var changed tea.Cmd
	switch {
	case res.Err != nil:
		m.status = "Error: " + res.Err.Error()
		if m.form != nil && res.Op != orch.OpLoad {
			m.form.SetError(res.Err.Error())
		}
	case res.Op == orch.OpLoad:
		m.status = fmt.Sprintf("%d templates", len(m.orch.Templates()))
	case res.Op == orch.OpCreate:
		m.status = fmt.Sprintf("Created #%d", res.Template.ID)
		changed = events.TemplateChangeCmd(tableID, events.ChangeCreate, res.Template.ID)
	case res.Op == orch.OpUpdate:
		m.status = fmt.Sprintf("Updated #%d", res.ID)
		changed = events.TemplateChangeCmd(tableID, events.ChangeUpdate, res.ID)
	case res.Op == orch.OpDelete:
		m.status = fmt.Sprintf("Deleted #%d", res.ID)
	}
	if !reload {
		return changed
	}
	return tea.Batch(changed, m.begin(m.orch.BeginLoad()))
}

// sync mounts or unmounts the form overlay to match the orchestrator and
// refreshes the table.
func (m *Model) sync() tea.Cmd {
	m.table.SetTemplates(m.orch.Templates())

	state := m.orch.Overlay()
	if state.Visible == orch.OverlayNone {
		if m.form != nil {
			m.pane.ClearOverlay()
			m.form = nil
		}
		return nil
	}

	var cmd tea.Cmd
	if m.form == nil || m.form.Key() != m.orch.FormKey() {
		title := "New template"
		if state.Editing != nil {
			title = fmt.Sprintf("Edit template #%d", state.Editing.ID)
		}
		m.help = nil
		m.form = entityform.New(m.orch.Form(m.onSubmit), entityform.Options{
			ID:    formID,
			Key:   m.orch.FormKey(),
			Title: title,
			Theme: m.theme.Modal,
		})
		cmd = m.pane.SetOverlay(m.form, m.formPlacement())
	}
	busy := m.orch.InFlight(orch.OpCreate, 0)
	if state.Editing != nil {
		busy = m.orch.InFlight(orch.OpUpdate, state.Editing.ID)
	}
	m.form.SetBusy(busy)
	return cmd
}

func (m *Model) layout() {
	m.width = max(m.width, 1)
	m.height = max(m.height, 1)
	m.pane.SetSize(m.width, m.height)
	// title row, blank row and the footer
	m.table.SetSize(m.width, m.height-3)
}

func (m *Model) background() string {
	title := m.theme.Table.Title.Render("Templates")
	body := m.table.View()
	lines := strings.Split(body, "\n")
	rows := max(m.height-3, 0)
	for len(lines) < rows {
		lines = append(lines, "")
	}
	if len(lines) > rows {
		lines = lines[:rows]
	}
	parts := append([]string{title, ""}, lines...)
	parts = append(parts, m.footer())
	return strings.Join(parts, "\n")
}

func (m *Model) footer() string {
	status := m.status
	style := m.theme.Footer.Status
	if err := m.orch.Err(); err != nil && strings.HasPrefix(status, "Error") {
		style = m.theme.Footer.Error
	} else if m.orch.Busy() {
		style = m.theme.Footer.Busy
	}
	hint := m.theme.Footer.Help.Render("n new · e edit · d delete · r reload · ? help · q quit")
	left := style.Render(status)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(hint)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + hint
}

func (m *Model) formPlacement() overlaypane.Placement {
	return overlaypane.Centered(min(m.width, 80), m.height)
}

func (m *Model) helpPlacement() overlaypane.Placement {
	width := int(math.Round(float64(m.width) * 0.9))
	if width < 20 {
		width = min(20, m.width)
	}
	height := int(math.Round(float64(m.height) * 0.9))
	if height < 5 {
		height = min(5, m.height)
	}
	return overlaypane.Centered(width, height)
}

func (m *Model) noteEvent(msg tea.Msg) {
	if !m.logger.Enabled(m.ctx, slog.LevelDebug) {
		return
	}
	detail := describeMsg(msg)
	if detail == "" {
		return
	}
	m.logger.Debug("ui event", "type", fmt.Sprintf("%T", msg), "detail", detail)
}

func describeMsg(msg tea.Msg) string {
	if d, ok := msg.(interface{ Describe() string }); ok {
		return d.Describe()
	}
	switch v := msg.(type) {
	case tea.KeyMsg:
		return fmt.Sprintf("key=%q", v.String())
	case tea.WindowSizeMsg:
		return fmt.Sprintf("size=%dx%d", v.Width, v.Height)
	}
	return ""
}

func appendCmd(cmds []tea.Cmd, cmd tea.Cmd) []tea.Cmd {
	if cmd == nil {
		return cmds
	}
	return append(cmds, cmd)
}
