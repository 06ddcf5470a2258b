package list

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"tableflip.dev/tmpl/pkg/app"
	"tableflip.dev/tmpl/pkg/client"
	"tableflip.dev/tmpl/pkg/printers"
)

// List prints every template held by the persistence service.
type List struct {
	Transport client.Transport
	Logger    *slog.Logger
	ShowID    bool
	JSON      bool
	Out       io.Writer
}

func (l *List) Do(ctx context.Context) error {
	if l.Transport == nil {
		return errors.New("can not list, no transport")
	}

	o := app.NewOrchestrator(l.Transport, app.WithLogger(l.Logger))
	if err := o.Load(ctx); err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowID: l.ShowID, JSON: l.JSON, Out: l.Out}
	if !l.JSON {
		pp.NewLine()
	}
	return pp.Templates(o.Templates()...)
}
