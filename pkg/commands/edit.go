package commands

import (
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/tmpl/pkg/commands/options"
	"tableflip.dev/tmpl/pkg/form"
	"tableflip.dev/tmpl/pkg/picker"
	"tableflip.dev/tmpl/pkg/runner/edit"
)

func addEdit(topLevel *cobra.Command) {
	to := &options.TemplateOptions{}
	io := &options.IDOptions{}
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a template.",
		Long: base.Wrap80(`Edit a template. Flags replace single fields and
keep the rest. Without an id on a terminal, the template is picked from a
list; without flags, each field is asked for with its current value.`),
		Example: `
tmpl edit 3 --subject "Welcome aboard"
tmpl edit 3 -i
tmpl edit
`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: idCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := io.ParseID(args); err != nil {
				return oo.HandleError(err)
			}
			fields, err := readFields(cmd, to)
			if err != nil {
				return oo.HandleError(err)
			}
			c, err := env.client(env.logger)
			if err != nil {
				return oo.HandleError(err)
			}
			r := edit.Edit{
				Transport: c,
				Logger:    env.logger,
				ID:        io.ID,
				Fields:    fields,
				ShowID:    io.ShowID,
				JSON:      oo.JSON,
				Out:       cmd.OutOrStdout(),
			}
			if io.ID == 0 && options.IsTerminal() {
				r.Chooser = &picker.Picker{Label: "Edit which template"}
			}
			if i.Prompting(len(fields) > 0) {
				r.Prompt = form.NewSurveyDriver()
			}
			return oo.HandleError(r.Do(cmd.Context()))
		},
	}

	options.AddTemplateArgs(cmd, to)
	options.InteractiveArgs(cmd, i)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
