package theme

import (
	"image/color"

	"github.com/charmbracelet/lipgloss/v2"
)

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Footer FooterTheme
	Table  TableTheme
	Modal  ModalTheme
}

// FooterTheme groups styles used by the bottom status bar.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Busy   lipgloss.Style
	Error  lipgloss.Style
}

// TableTheme styles the template listing.
type TableTheme struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Row      lipgloss.Style
	Selected lipgloss.Style
	Empty    lipgloss.Style
}

// ModalTheme styles centered modal overlays such as the template form.
type ModalTheme struct {
	Frame        lipgloss.Style
	BorderFocus  color.Color
	BorderBlur   color.Color
	Title        lipgloss.Style
	Label        lipgloss.Style
	LabelFocused lipgloss.Style
	Hint         lipgloss.Style
	Error        lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	accent := lipgloss.Color("212")
	muted := lipgloss.Color("244")

	return Theme{
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Foreground(muted),
			Busy:   lipgloss.NewStyle().Foreground(accent),
			Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		},
		Table: TableTheme{
			Title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
			Header:   lipgloss.NewStyle().Bold(true).Foreground(muted),
			Row:      lipgloss.NewStyle(),
			Selected: lipgloss.NewStyle().Reverse(true),
			Empty:    lipgloss.NewStyle().Foreground(muted).Italic(true),
		},
		Modal: ModalTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(1, 2),
			BorderFocus:  accent,
			BorderBlur:   lipgloss.Color("240"),
			Title:        lipgloss.NewStyle().Bold(true),
			Label:        lipgloss.NewStyle().Foreground(muted),
			LabelFocused: lipgloss.NewStyle().Foreground(accent).Bold(true),
			Hint:         lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
			Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		},
	}
}
