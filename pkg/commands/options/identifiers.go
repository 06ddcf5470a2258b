package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/tmpl/pkg/template"
)

// IDOptions
type IDOptions struct {
	ShowID bool
	ID     template.ID
}

func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show the ID of each template.")
}

// ParseID reads the optional id argument. No argument leaves ID at zero.
func (o *IDOptions) ParseID(args []string) error {
	if len(args) == 0 {
		return nil
	}
	id, err := template.ParseID(args[0])
	if err != nil {
		return err
	}
	o.ID = id
	return nil
}
