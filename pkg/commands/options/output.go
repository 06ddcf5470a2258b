package options

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/tmpl/pkg/client"
)

// OutputOptions adds an error writer and error kinds to the shared --json
// option.
type OutputOptions struct {
	base.OutputOptions
	// Out receives JSON errors. Nil means color.Output.
	Out io.Writer
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	base.AddOutputArg(cmd, &po.OutputOptions)
}

// jsonError is what --json prints in place of a failed command.
type jsonError struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// HandleError passes err through unless JSON output is on, in which case it
// prints err as an object and reports success to cobra.
func (o *OutputOptions) HandleError(err error) error {
	if err == nil || !o.JSON {
		return err
	}
	kind := "usage"
	if errors.Is(err, client.ErrTransport) {
		kind = "transport"
	}
	b, merr := json.Marshal(jsonError{Error: err.Error(), Kind: kind})
	if merr != nil {
		return merr
	}
	w := o.Out
	if w == nil {
		w = color.Output
	}
	_, _ = fmt.Fprintln(w, string(b))
	return nil
}
