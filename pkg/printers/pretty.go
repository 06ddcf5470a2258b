package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/tmpl/pkg/template"
)

// PrettyPrint writes templates for humans or, with JSON set, for scripts.
type PrettyPrint struct {
	ShowID bool
	JSON   bool
	// MaxWidth caps the body column. Zero means 60.
	MaxWidth int
	Out      io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " template")
	default:
		_, _ = c.Fprintln(pp.out(), " templates")
	}
}

// Templates prints the collection as a table.
func (pp *PrettyPrint) Templates(list ...template.Template) error {
	if pp.JSON {
		if list == nil {
			list = []template.Template{}
		}
		return pp.encode(list)
	}

	pp.TitleWithCount("Templates", len(list))
	if len(list) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return nil
	}

	bold := color.New(color.Bold)
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	width := pp.MaxWidth
	if width <= 0 {
		width = 60
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = uint(width)
	if pp.ShowID {
		tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Subject"), bold.Sprint("Body"))
	} else {
		tbl.AddRow(bold.Sprint("Subject"), bold.Sprint("Body"))
	}
	for _, t := range list {
		body := truncate.StringWithTail(oneLine(t.Body), uint(width), "…")
		if pp.ShowID {
			tbl.AddRow(y.Sprint(t.ID.String()), t.Subject, body)
		} else {
			tbl.AddRow(t.Subject, body)
		}
	}
	if pp.ShowID {
		tbl.RightAlign(0)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
	return nil
}

// Template prints one template in full.
func (pp *PrettyPrint) Template(t template.Template) error {
	if pp.JSON {
		return pp.encode(t)
	}
	faint := color.New(color.Faint)
	title := t.Subject
	if pp.ShowID {
		title = fmt.Sprintf("#%s %s", t.ID, t.Subject)
	}
	pp.Title(title)
	if t.Body == "" {
		_, _ = faint.Fprintln(pp.out(), "(empty body)")
	} else {
		_, _ = fmt.Fprintln(pp.out(), t.Body)
	}
	pp.NewLine()
	return nil
}

func (pp *PrettyPrint) encode(v any) error {
	enc := json.NewEncoder(pp.out())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
