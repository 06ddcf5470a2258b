package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/tmpl/pkg/app"
	"tableflip.dev/tmpl/pkg/logging"
	"tableflip.dev/tmpl/pkg/store"
	tuiapp "tableflip.dev/tmpl/pkg/tui/app"
)

type options struct {
	latency time.Duration
	fail    []string
	empty   bool
	logFile string
}

func main() {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "testbed",
		Short: "Run the template UI against an in-memory store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	rootCmd.Flags().DurationVar(&opts.latency, "latency", 300*time.Millisecond, "delay added to every call")
	rootCmd.Flags().StringSliceVar(&opts.fail, "fail", nil, "operations that always fail: load, create, update, delete")
	rootCmd.Flags().BoolVar(&opts.empty, "empty", false, "start without sample templates")
	rootCmd.Flags().StringVar(&opts.logFile, "log-file", "", "write debug logs to this file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	logger := logging.Discard()
	if opts.logFile != "" {
		f, err := logging.OpenFile(opts.logFile)
		if err != nil {
			return err
		}
		defer f.Close()
		logger = logging.New(f, slog.LevelDebug, logging.FormatText)
	}

	p := store.NewMemory()
	if !opts.empty {
		for _, t := range sampleTemplates() {
			if _, err := p.Create(ctx, t); err != nil {
				return err
			}
		}
	}

	tr := &slowTransport{
		Persistence: p,
		latency:     opts.latency,
		fail:        map[app.Op]bool{},
	}
	for _, op := range opts.fail {
		tr.fail[app.Op(strings.ToLower(strings.TrimSpace(op)))] = true
	}

	o := app.NewOrchestrator(tr, app.WithLogger(logger))
	return tuiapp.Run(ctx, o, logger)
}
