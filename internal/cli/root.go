package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/powertimer/internal/apiclient"
	"github.com/fastygo/powertimer/internal/countdown"
	"github.com/fastygo/powertimer/pkg/logger"
	"github.com/fastygo/powertimer/usecase/reconcile"
)

const defaultServer = "http://localhost:8080"

// Options lets tests swap the HTTP transport.
type Options struct {
	Doer apiclient.Doer
}

// app holds what every subcommand needs, built once flags are parsed.
type app struct {
	client *apiclient.Client
	cache  *countdown.Service
	rec    *reconcile.Reconciler
	logger *zap.Logger

	timeout time.Duration
}

func (a *app) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

// NewRootCommand builds the timerctl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	a := &app{}
	var (
		server   string
		logLevel string
		tick     time.Duration
	)

	root := &cobra.Command{
		Use:           "timerctl",
		Short:         "Manage powertimer countdown timers from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(logger.Config{Level: logLevel, Encoding: "console", Output: cmd.ErrOrStderr()})
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			a.logger = log
			a.client = apiclient.New(server, a.timeout)
			if opts.Doer != nil {
				a.client.WithDoer(opts.Doer)
			}
			a.cache = countdown.New(countdown.Config{TickInterval: tick, CompleteTimeout: a.timeout}, log)
			a.rec = reconcile.New(a.client, a.cache, log)
			a.cache.SetCompleter(a.rec)
			return nil
		},
	}

	serverDefault := os.Getenv("TIMERCTL_SERVER")
	if serverDefault == "" {
		serverDefault = defaultServer
	}
	root.PersistentFlags().StringVar(&server, "server", serverDefault, "powertimer API base URL (env TIMERCTL_SERVER)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 5*time.Second, "per-request timeout")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr")
	root.PersistentFlags().DurationVar(&tick, "tick", time.Second, "countdown tick interval")
	_ = root.PersistentFlags().MarkHidden("tick")

	root.AddCommand(
		newListCmd(a),
		newCreateCmd(a),
		newRenameCmd(a),
		newDeleteCmd(a),
		newTemplatesCmd(a),
		newStatsCmd(a),
		newWatchCmd(a),
	)
	for _, op := range intentOps {
		root.AddCommand(newIntentCmd(a, op))
	}
	return root
}

// Execute runs timerctl. Exits with code 1 on error.
func Execute() {
	root := NewRootCommand(Options{})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func outln(cmd *cobra.Command, args ...interface{}) {
	fmt.Fprintln(cmd.OutOrStdout(), args...)
}

func outf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
