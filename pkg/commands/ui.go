package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/tmpl/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Manage templates in a full screen terminal UI.",
		Long: `Browse, create, edit and delete templates in a full screen view.

Logs are dropped unless --log-file is set, so they do not tear the screen.`,
		Example: `
tmpl ui
tmpl ui --server http://templates.internal:3000 --log-file ~/tmpl.log
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := env.quietLogger()
			c, err := env.client(logger)
			if err != nil {
				return err
			}
			u := ui.UI{
				Transport: c,
				Logger:    logger,
			}
			return u.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
