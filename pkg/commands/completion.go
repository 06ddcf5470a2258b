package commands

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/tmpl/pkg/logging"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(tmpl completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(tmpl completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

// idCompletions offers "id<TAB>subject" pairs fetched from the service.
func idCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	// Completion requests skip the persistent hooks.
	if env.cfg == nil {
		if err := env.load(); err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		defer env.close()
	}
	c, err := env.client(logging.Discard())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	list, err := c.List(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	out := make([]string, 0, len(list))
	for _, t := range list {
		out = append(out, t.ID.String()+"\t"+t.Subject)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
