package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/tmpl/pkg/commands/options"
	"tableflip.dev/tmpl/pkg/runner/list"
)

func addList(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all templates.",
		Example: `
tmpl list
tmpl ls --show-id
tmpl list --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := env.client(env.logger)
			if err != nil {
				return oo.HandleError(err)
			}
			l := list.List{
				Transport: c,
				Logger:    env.logger,
				ShowID:    io.ShowID,
				JSON:      oo.JSON,
				Out:       cmd.OutOrStdout(),
			}
			return oo.HandleError(l.Do(cmd.Context()))
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
