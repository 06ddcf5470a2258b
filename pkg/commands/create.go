package commands

import (
	"io"
	"os"
	"strings"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/tmpl/pkg/commands/options"
	"tableflip.dev/tmpl/pkg/form"
	"tableflip.dev/tmpl/pkg/runner/create"
	"tableflip.dev/tmpl/pkg/template"
)

func addCreate(topLevel *cobra.Command) {
	to := &options.TemplateOptions{}
	ido := &options.IDOptions{}
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"new", "add"},
		Short:   "Create a template.",
		Long: base.Wrap80(`Create a template from flags. Without flags on a
terminal, each field is asked for in turn; the body opens in $EDITOR.`),
		Example: `
tmpl create --subject "Welcome" --body "Hi there"
echo "Hi there" | tmpl create --subject "Welcome" --body -
tmpl create -i
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := readFields(cmd, to)
			if err != nil {
				return oo.HandleError(err)
			}
			c, err := env.client(env.logger)
			if err != nil {
				return oo.HandleError(err)
			}
			r := create.Create{
				Transport: c,
				Logger:    env.logger,
				Fields:    fields,
				ShowID:    ido.ShowID,
				JSON:      oo.JSON,
				Out:       cmd.OutOrStdout(),
			}
			if i.Prompting(len(fields) > 0) {
				r.Prompt = form.NewSurveyDriver()
			}
			return oo.HandleError(r.Do(cmd.Context()))
		},
	}

	options.AddTemplateArgs(cmd, to)
	options.InteractiveArgs(cmd, i)
	options.AddShowIDArgs(cmd, ido)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

// readFields collects the template flags, reading a body of "-" from stdin.
func readFields(cmd *cobra.Command, to *options.TemplateOptions) (template.Fields, error) {
	fields := to.Fields(cmd)
	if fields[template.FieldBody] != "-" {
		return fields, nil
	}
	in := cmd.InOrStdin()
	if in == nil {
		in = os.Stdin
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	fields[template.FieldBody] = strings.TrimRight(string(b), "\n")
	return fields, nil
}
