package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tableflip.dev/tmpl/pkg/client"
	"tableflip.dev/tmpl/pkg/commands/options"
	"tableflip.dev/tmpl/pkg/config"
	"tableflip.dev/tmpl/pkg/logging"
)

var (
	oo  = &options.OutputOptions{}
	env = &environment{}
)

// environment is resolved once per invocation before any subcommand runs.
type environment struct {
	configFile string

	cfg     *config.Config
	logger  *slog.Logger
	logFile io.Closer
}

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:           "tmpl",
		Short:         base.Wrap80("Manage message templates stored by a template service."),
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			oo.Out = cmd.OutOrStdout()
			return env.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			env.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addGlobalFlags(cmd)
	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addList(topLevel)
	addCreate(topLevel)
	addEdit(topLevel)
	addDelete(topLevel)
	addServe(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

func addGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&env.configFile, "config", "",
		"Config file, default is .tmpl.yaml in the working or home directory.")
	flags.String("server", config.DefaultServer,
		"Base URL of the template service.")
	flags.Duration("timeout", config.DefaultTimeout,
		"Timeout for each request to the template service.")
	flags.String("log-level", "info",
		"Log level: debug, info, warn or error.")
	flags.String("log-file", "",
		"Write logs to this file instead of stderr.")

	_ = viper.BindPFlag(config.KeyServer, flags.Lookup("server"))
	_ = viper.BindPFlag(config.KeyTimeout, flags.Lookup("timeout"))
	_ = viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFile, flags.Lookup("log-file"))
}

func (e *environment) load() error {
	if e.configFile != "" {
		viper.SetConfigFile(e.configFile)
	}
	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stderr
	if cfg.Log.File != "" {
		f, err := logging.OpenFile(cfg.Log.File)
		if err != nil {
			return err
		}
		e.logFile = f
		w = f
	}
	e.cfg = cfg
	e.logger = logging.New(w, level, cfg.Log.Format)
	e.logger.Debug("configuration loaded", "server", cfg.Server, "config", viper.ConfigFileUsed())
	return nil
}

func (e *environment) close() {
	if e.logFile != nil {
		_ = e.logFile.Close()
		e.logFile = nil
	}
}

// quietLogger is the logger for commands that own the terminal. Records are
// only kept when a log file is configured.
func (e *environment) quietLogger() *slog.Logger {
	if e.logFile == nil {
		return logging.Discard()
	}
	return e.logger
}

func (e *environment) client(logger *slog.Logger) (*client.Client, error) {
	c, err := client.New(e.cfg.Server,
		client.WithTimeout(e.cfg.Timeout),
		client.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("server %q: %w", e.cfg.Server, err)
	}
	return c, nil
}
