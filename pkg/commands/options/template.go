package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/tmpl/pkg/template"
)

// TemplateOptions
type TemplateOptions struct {
	Subject string
	Body    string
}

func AddTemplateArgs(cmd *cobra.Command, o *TemplateOptions) {
	cmd.Flags().StringVarP(&o.Subject, "subject", "s", "",
		"Subject of the template.")
	cmd.Flags().StringVarP(&o.Body, "body", "b", "",
		`Body of the template, use "-" to read it from stdin.`)
}

// Fields returns the values of the flags that were set on cmd.
func (o *TemplateOptions) Fields(cmd *cobra.Command) template.Fields {
	fields := template.Fields{}
	if cmd.Flags().Changed("subject") {
		fields[template.FieldSubject] = o.Subject
	}
	if cmd.Flags().Changed("body") {
		fields[template.FieldBody] = o.Body
	}
	return fields
}
