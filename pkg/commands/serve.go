package commands

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tableflip.dev/tmpl/pkg/config"
	"tableflip.dev/tmpl/pkg/runner/serve"
)

func addServe(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the template persistence service.",
		Example: `
tmpl serve
tmpl serve --addr 127.0.0.1:8080 --backend sqlite --path ~/.tmpl.sqlite
TMPL_SERVE_DSN="user:pass@tcp(db:3306)/tmpl" tmpl serve --backend mysql
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !env.logger.Enabled(cmd.Context(), slog.LevelDebug) {
				gin.SetMode(gin.ReleaseMode)
			}
			s := serve.Serve{
				Config: env.cfg.Serve,
				Logger: env.logger,
			}
			return s.Do(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "0.0.0.0:3000", "Address to listen on.")
	flags.String("backend", "diskv", "Storage backend: diskv, sqlite, mysql or memory.")
	flags.String("path", "~/.tmpl.db", "Directory or file for the diskv and sqlite backends.")
	flags.String("dsn", "", "Data source name for the mysql backend.")
	flags.StringSlice("allow-origin", []string{"*"}, "Origins allowed by CORS.")

	_ = viper.BindPFlag(config.KeyServeAddr, flags.Lookup("addr"))
	_ = viper.BindPFlag(config.KeyServeBackend, flags.Lookup("backend"))
	_ = viper.BindPFlag(config.KeyServePath, flags.Lookup("path"))
	_ = viper.BindPFlag(config.KeyServeDSN, flags.Lookup("dsn"))
	_ = viper.BindPFlag(config.KeyServeOrigins, flags.Lookup("allow-origin"))

	topLevel.AddCommand(cmd)
}
