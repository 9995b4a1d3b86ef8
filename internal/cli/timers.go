package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/powertimer/api/transport"
	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/repository"
)

func newListCmd(a *app) *cobra.Command {
	var (
		all    bool
		status string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List timers (completed ones only with --all or --status)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := repository.TimerFilter{IncludeCompleted: all}
			if status != "" {
				parsed, ok := domain.ParseStatus(status)
				if !ok {
					return fmt.Errorf("unknown status %q", status)
				}
				filter.Status = parsed
			}

			ctx, cancel := a.ctx(cmd)
			defer cancel()
			timers, err := a.client.ListTimers(ctx, filter)
			if err != nil {
				return err
			}
			if len(timers) == 0 {
				outln(cmd, "no timers")
				return nil
			}
			for _, t := range timers {
				outln(cmd, formatTimer(t))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include completed timers")
	cmd.Flags().StringVar(&status, "status", "", "only timers with this status")
	return cmd
}

func newCreateCmd(a *app) *cobra.Command {
	var (
		minutes  int
		seconds  int
		category string
	)
	cmd := &cobra.Command{
		Use:   "create [name...]",
		Short: "Create a timer",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := transport.CreateTimerRequest{
				DurationSeconds: minutes*60 + seconds,
				Category:        category,
				Name:            joinArgs(args),
			}

			ctx, cancel := a.ctx(cmd)
			defer cancel()
			timer, err := a.client.CreateTimer(ctx, req)
			if err != nil {
				return err
			}
			outln(cmd, formatTimer(*timer))
			return nil
		},
	}
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "duration in minutes")
	cmd.Flags().IntVarP(&seconds, "seconds", "s", 0, "additional duration in seconds")
	cmd.Flags().StringVarP(&category, "category", "c", string(domain.CategoryGeneral), "productivity, break, tasks or general")
	return cmd
}

func newRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a timer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			timer, err := a.rec.Rename(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			outln(cmd, formatTimer(*timer))
			return nil
		},
	}
}

type intentOp struct {
	use   string
	short string
	run   func(a *app, ctx context.Context, id string) (*domain.Timer, error)
}

var intentOps = []intentOp{
	{"start", "Start or resume a timer", func(a *app, ctx context.Context, id string) (*domain.Timer, error) { return a.rec.Start(ctx, id) }},
	{"pause", "Pause a running timer", func(a *app, ctx context.Context, id string) (*domain.Timer, error) { return a.rec.Pause(ctx, id) }},
	{"stop", "Stop a timer and reset it to its full duration", func(a *app, ctx context.Context, id string) (*domain.Timer, error) { return a.rec.Stop(ctx, id) }},
	{"toggle", "Pause a running timer, start anything else", func(a *app, ctx context.Context, id string) (*domain.Timer, error) { return a.rec.Toggle(ctx, id) }},
	{"complete", "Mark a timer completed", func(a *app, ctx context.Context, id string) (*domain.Timer, error) { return a.rec.Complete(ctx, id) }},
}

func newIntentCmd(a *app, op intentOp) *cobra.Command {
	return &cobra.Command{
		Use:   op.use + " <id>",
		Short: op.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			// Pause checkpoints the local prediction, so load the stored record first.
			if _, err := a.rec.Refresh(ctx, args[0]); err != nil {
				return err
			}
			timer, err := op.run(a, ctx, args[0])
			if err != nil {
				return err
			}
			outln(cmd, formatTimer(*timer))
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a timer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			if err := a.rec.Delete(ctx, args[0]); err != nil {
				return err
			}
			outf(cmd, "deleted %s\n", args[0])
			return nil
		},
	}
}

func formatTimer(t domain.Timer) string {
	name := t.Name
	if r := []rune(name); len(r) > 24 {
		name = string(r[:23]) + "…"
	}
	return fmt.Sprintf("%-36s  %-24s  %8s / %-8s  %-9s  %s",
		t.ID, name, formatClock(t.RemainingSeconds), formatClock(t.DurationSeconds),
		t.Status, transport.DisplayFor(t.Category).Label)
}

// formatClock renders seconds as M:SS, or H:MM:SS from one hour up.
func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
