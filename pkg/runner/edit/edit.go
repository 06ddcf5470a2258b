package edit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"tableflip.dev/tmpl/pkg/app"
	"tableflip.dev/tmpl/pkg/client"
	"tableflip.dev/tmpl/pkg/form"
	"tableflip.dev/tmpl/pkg/printers"
	"tableflip.dev/tmpl/pkg/template"
)

// Chooser picks one template, typically by asking the user.
type Chooser interface {
	Pick(list []template.Template) (template.Template, error)
}

// Edit changes an existing template. Fields overwrite the current values;
// Prompt, when set, then asks for each field with the result as default.
type Edit struct {
	Transport client.Transport
	Logger    *slog.Logger
	ID        template.ID
	// Chooser selects the target when ID is zero.
	Chooser Chooser
	Fields  template.Fields
	Prompt  form.PromptDriver
	ShowID  bool
	JSON    bool
	Out     io.Writer
}

func (e *Edit) Do(ctx context.Context) error {
	if e.Transport == nil {
		return errors.New("can not edit, no transport")
	}

	o := app.NewOrchestrator(e.Transport, app.WithLogger(e.Logger))
	if err := o.Load(ctx); err != nil {
		return err
	}

	target, err := e.target(o)
	if err != nil {
		return err
	}
	if err := o.OpenEditOverlay(target); err != nil {
		return err
	}

	var (
		submitted template.Fields
		done      bool
	)
	f := o.Form(func(v template.Fields) {
		submitted, done = v, true
	})
	for name, value := range e.Fields {
		f.HandleFieldChange(name, value)
	}
	if e.Prompt != nil {
		if err := form.Prompt(ctx, e.Prompt, f); err != nil {
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
	updated, _ := o.Saved()

	pp := printers.PrettyPrint{ShowID: e.ShowID, JSON: e.JSON, Out: e.Out}
	if !e.JSON {
		pp.NewLine()
	}
	return pp.Template(updated)
}

func (e *Edit) target(o *app.Orchestrator) (template.Template, error) {
	if e.ID == 0 {
		if e.Chooser == nil {
			return template.Template{}, errors.New("no template id given")
		}
		return e.Chooser.Pick(o.Templates())
	}
	t, ok := o.Find(e.ID)
	if !ok {
		return template.Template{}, fmt.Errorf("template %d not found", e.ID)
	}
	return t, nil
}
