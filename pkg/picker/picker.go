// Package picker lets a terminal user choose a template interactively.
package picker

import (
	"errors"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"

	"tableflip.dev/tmpl/pkg/template"
)

// ErrEmpty is returned when there is nothing to choose from.
var ErrEmpty = errors.New("picker: no templates to choose from")

// Picker selects one template from a list.
type Picker struct {
	Label  string
	Stdin  io.Reader
	Stdout io.Writer
	Size   int
}

// Pick runs the prompt and returns the chosen template.
func (p *Picker) Pick(list []template.Template) (template.Template, error) {
	if len(list) == 0 {
		return template.Template{}, ErrEmpty
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "➜  {{ .ID | faint }} {{ .Subject | bold }}",
		Inactive: "   {{ .ID | faint }} {{ .Subject }}",
		Selected: "{{ .Subject | bold }}",
		Details: `
--------- Body ----------
{{ .Body }}
`,
	}

	label := p.Label
	if label == "" {
		label = "Template"
	}
	size := p.Size
	if size <= 0 {
		size = 10
	}

	prompt := promptui.Select{
		HideHelp:  true,
		Label:     label,
		Items:     list,
		Templates: templates,
		Size:      size,
	}
	if p.Stdin != nil {
		prompt.Stdin = io.NopCloser(p.Stdin)
	}
	if p.Stdout != nil {
		prompt.Stdout = NopCloser(p.Stdout)
	}

	i, _, err := prompt.Run()
	if err != nil {
		return template.Template{}, fmt.Errorf("picker: %w", err)
	}
	return list[i], nil
}

// Confirm asks a yes/no question. Answering no is not an error.
func (p *Picker) Confirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if p.Stdin != nil {
		prompt.Stdin = io.NopCloser(p.Stdin)
	}
	if p.Stdout != nil {
		prompt.Stdout = NopCloser(p.Stdout)
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, fmt.Errorf("picker: %w", err)
	}
	return true, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// NopCloser returns a WriteCloser with a no-op Close method wrapping w.
func NopCloser(w io.Writer) io.WriteCloser {
	return nopCloser{w}
}
