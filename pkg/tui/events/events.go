package events

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/tmpl/pkg/template"
)

// ComponentID uniquely identifies a component instance emitting events.
type ComponentID string

// ChangeType enumerates supported change actions across components.
type ChangeType string

const (
	// ChangeCreate indicates a new template was created.
	ChangeCreate ChangeType = "create"
	// ChangeUpdate indicates an existing template changed.
	ChangeUpdate ChangeType = "update"
	// ChangeDelete indicates a template was removed.
	ChangeDelete ChangeType = "delete"
)

// TemplateHighlightMsg is emitted when the table cursor lands on a row.
type TemplateHighlightMsg struct {
	Component ComponentID
	Template  template.Template
}

// Describe renders the highlight in a human-friendly format for logs.
func (m TemplateHighlightMsg) Describe() string {
	return fmt.Sprintf(`id:%d subject:%q`, m.Template.ID, m.Template.Subject)
}

// TemplateChangeMsg announces that a template changed on the server.
type TemplateChangeMsg struct {
	Component ComponentID
	Action    ChangeType
	ID        template.ID
}

// Describe implements the logging helper.
func (m TemplateChangeMsg) Describe() string {
	return fmt.Sprintf(`action:%q id:%d`, m.Action, m.ID)
}

// TemplateChangeCmd wraps TemplateChangeMsg into a tea.Cmd.
func TemplateChangeCmd(component ComponentID, action ChangeType, id template.ID) tea.Cmd {
	return func() tea.Msg {
		return TemplateChangeMsg{Component: component, Action: action, ID: id}
	}
}

// FormCancelMsg is emitted when the user dismisses a form overlay.
type FormCancelMsg struct {
	Component ComponentID
	Key       string
}

// Describe implements the logging helper.
func (m FormCancelMsg) Describe() string {
	return fmt.Sprintf(`form:%q`, m.Key)
}

// FormCancelCmd wraps FormCancelMsg into a tea.Cmd.
func FormCancelCmd(component ComponentID, key string) tea.Cmd {
	return func() tea.Msg {
		return FormCancelMsg{Component: component, Key: key}
	}
}

// FocusMsg requests that the addressed component takes focus.
type FocusMsg struct {
	Component ComponentID
}

// BlurMsg requests that the addressed component releases focus.
type BlurMsg struct {
	Component ComponentID
}

// FocusCmd emits FocusMsg for component.
func FocusCmd(component ComponentID) tea.Cmd {
	return func() tea.Msg { return FocusMsg{Component: component} }
}

// BlurCmd emits BlurMsg for component.
func BlurCmd(component ComponentID) tea.Cmd {
	return func() tea.Msg { return BlurMsg{Component: component} }
}
