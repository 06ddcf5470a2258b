package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/tmpl/pkg/commands/options"
	"tableflip.dev/tmpl/pkg/picker"
	"tableflip.dev/tmpl/pkg/runner/remove"
)

func addDelete(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	yes := false

	cmd := &cobra.Command{
		Use:     "delete [id]",
		Aliases: []string{"rm"},
		Short:   "Delete a template.",
		Example: `
tmpl delete 3
tmpl rm 3 --yes
tmpl delete
`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: idCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := io.ParseID(args); err != nil {
				return oo.HandleError(err)
			}
			c, err := env.client(env.logger)
			if err != nil {
				return oo.HandleError(err)
			}
			r := remove.Delete{
				Transport: c,
				Logger:    env.logger,
				ID:        io.ID,
				Yes:       yes,
				Out:       cmd.OutOrStdout(),
			}
			if options.IsTerminal() {
				r.Chooser = &picker.Picker{Label: "Delete which template"}
			}
			return oo.HandleError(r.Do(cmd.Context()))
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation.")
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
