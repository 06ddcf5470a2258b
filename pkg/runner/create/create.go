package create

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"tableflip.dev/tmpl/pkg/app"
	"tableflip.dev/tmpl/pkg/client"
	"tableflip.dev/tmpl/pkg/form"
	"tableflip.dev/tmpl/pkg/printers"
	"tableflip.dev/tmpl/pkg/template"
)

// Create adds a template. Values come from Fields and, when Prompt is set,
// from answering the form one field at a time.
type Create struct {
	Transport client.Transport
	Logger    *slog.Logger
	Fields    template.Fields
	Prompt    form.PromptDriver
	ShowID    bool
	JSON      bool
	Out       io.Writer
}

func (c *Create) Do(ctx context.Context) error {
	if c.Transport == nil {
		return errors.New("can not create, no transport")
	}

	o := app.NewOrchestrator(c.Transport, app.WithLogger(c.Logger))
	if err := o.OpenCreateOverlay(); err != nil {
		return err
	}

	var (
		submitted template.Fields
		done      bool
	)
	f := o.Form(func(v template.Fields) {
		submitted, done = v, true
	})
	for name, value := range c.Fields {
		f.HandleFieldChange(name, value)
	}
	if c.Prompt != nil {
		if err := form.Prompt(ctx, c.Prompt, f); err != nil {
			return err
		}
	} else {
		f.HandleSubmit()
	}
	if !done {
		return form.ErrAborted
	}

	if err := o.Submit(ctx, submitted); err != nil {
		return err
	}
	created, _ := o.Saved()

	pp := printers.PrettyPrint{ShowID: c.ShowID, JSON: c.JSON, Out: c.Out}
	if !c.JSON {
		pp.NewLine()
	}
	return pp.Template(created)
}
