package remove

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"

	"tableflip.dev/tmpl/pkg/app"
	"tableflip.dev/tmpl/pkg/client"
	"tableflip.dev/tmpl/pkg/template"
)

// Chooser picks one template and confirms destructive actions.
type Chooser interface {
	Pick(list []template.Template) (template.Template, error)
	Confirm(label string) (bool, error)
}

// Delete removes a template. With a Chooser the target can be picked and the
// removal is confirmed first unless Yes is set.
type Delete struct {
	Transport client.Transport
	Logger    *slog.Logger
	ID        template.ID
	Chooser   Chooser
	Yes       bool
	Out       io.Writer
}

func (d *Delete) Do(ctx context.Context) error {
	if d.Transport == nil {
		return errors.New("can not delete, no transport")
	}

	o := app.NewOrchestrator(d.Transport, app.WithLogger(d.Logger))
	if err := o.Load(ctx); err != nil {
		return err
	}

	target := template.Template{ID: d.ID}
	if d.ID == 0 {
		if d.Chooser == nil {
			return errors.New("no template id given")
		}
		picked, err := d.Chooser.Pick(o.Templates())
		if err != nil {
			return err
		}
		target = picked
	} else if t, ok := o.Find(d.ID); ok {
		target = t
	}

	if d.Chooser != nil && !d.Yes {
		ok, err := d.Chooser.Confirm(fmt.Sprintf("Delete #%s %q", target.ID, target.Subject))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	// A missing id is left to the service, which answers 404.
	if err := o.Delete(ctx, target.ID); err != nil {
		return err
	}

	out := d.Out
	if out == nil {
		out = color.Output
	}
	_, _ = color.New(color.Faint).Fprintf(out, "Deleted #%s\n", target.ID)
	return nil
}
