package commands

import (
	"fmt"
	"net"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/tmpl/pkg/runner/mcp"
)

func addMCP(topLevel *cobra.Command) {
	var (
		mode string
		r    mcp.Runner
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve templates to agents over the Model Context Protocol.",
		Long: base.Wrap80(`Expose list, read, create, update and delete of
templates as MCP tools and resources. Calls go to the same template service as
every other command.`),
		Example: `
tmpl mcp
tmpl mcp --mode http --addr 127.0.0.1:0
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := mcp.ParseMode(mode)
			if err != nil {
				return err
			}
			// stdio belongs to the protocol, so logs only go to a file there.
			logger := env.logger
			if m == mcp.ModeStdio {
				logger = env.quietLogger()
			}
			c, err := env.client(logger)
			if err != nil {
				return err
			}

			r.Transport = c
			r.Logger = logger
			r.Version = version
			r.Mode = m
			r.Listening = func(a net.Addr) {
				scheme := "http"
				if r.CertFile != "" {
					scheme = "https"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "MCP listening on %s://%s%s\n", scheme, a, r.Path)
			}
			return r.Do(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&mode, "mode", string(mcp.ModeStdio), "Transport: stdio or http.")
	flags.StringVar(&r.Addr, "addr", "127.0.0.1:8080", "Listen address in http mode, port 0 picks one.")
	flags.StringVar(&r.Path, "path", "/mcp", "Endpoint path in http mode.")
	flags.StringVar(&r.CertFile, "tls-cert", "", "TLS certificate for http mode.")
	flags.StringVar(&r.KeyFile, "tls-key", "", "TLS key for http mode.")

	topLevel.AddCommand(cmd)
}
