package options

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// InteractiveOptions
type InteractiveOptions struct {
	Interactive bool
}

func InteractiveArgs(cmd *cobra.Command, o *InteractiveOptions) {
	cmd.Flags().BoolVarP(&o.Interactive, "interactive", "i", false,
		`Prompt for every field, even when flags are given.`)
}

// Prompting reports whether to ask the user. Without the flag it does so
// only when nothing was given and stdin is a terminal.
func (o *InteractiveOptions) Prompting(given bool) bool {
	if o.Interactive {
		return true
	}
	return !given && IsTerminal()
}

// IsTerminal reports whether stdin and stdout are attached to a terminal.
func IsTerminal() bool {
	in, out := os.Stdin.Fd(), os.Stdout.Fd()
	return (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in)) &&
		(isatty.IsTerminal(out) || isatty.IsCygwinTerminal(out))
}
