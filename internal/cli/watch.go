package cli

import (
	"bufio"
	"context"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/internal/countdown"
	"github.com/fastygo/powertimer/internal/notify"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		start   bool
		notifyF bool
		resync  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch <id>",
		Short: "Follow a timer's countdown and complete it when it reaches zero",
		Long: `Follow a timer's countdown and complete it when it reaches zero.

While watching, type a key and press enter:
  p  pause or resume
  s  stop (reset to the full duration)
  c  complete now
  q  quit`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reqCtx, cancel := a.ctx(cmd)
			timer, err := a.rec.Refresh(reqCtx, id)
			if err == nil && start && timer.Status != domain.StatusRunning {
				timer, err = a.rec.Start(reqCtx, id)
			}
			cancel()
			if err != nil {
				return err
			}

			if notifyF {
				a.cache.SetNotifier(notify.NewNotifier("timerctl", true))
			}
			a.cache.Start()
			defer a.cache.Stop()

			updates, unsubscribe := a.cache.Subscribe(id, 8)
			defer unsubscribe()

			if resync <= 0 {
				resync = 30 * time.Second
			}
			refresh := time.NewTicker(resync)
			defer refresh.Stop()

			keys := readKeys(ctx, cmd.InOrStdin())

			for {
				select {
				case <-ctx.Done():
					return nil
				case update, open := <-updates:
					if !open {
						outln(cmd, "timer removed")
						return nil
					}
					outln(cmd, formatUpdate(update))
					if update.Timer.IsCompleted() {
						return nil
					}
				case key, open := <-keys:
					if !open {
						keys = nil
						continue
					}
					if key == "q" {
						return nil
					}
					if err := a.runKey(cmd, id, key); err != nil {
						cmd.PrintErrln("error:", err)
					}
				case <-refresh.C:
					reqCtx, cancel := a.ctx(cmd)
					if _, err := a.rec.Refresh(reqCtx, id); err != nil && !domain.IsDomainError(err, domain.ErrCodeUnavailable) {
						cancel()
						return err
					}
					cancel()
				}
			}
		},
	}
	cmd.Flags().BoolVar(&start, "start", false, "start the timer if it is not running")
	cmd.Flags().BoolVar(&notifyF, "notify", false, "send a desktop notification on completion")
	cmd.Flags().DurationVar(&resync, "resync", 30*time.Second, "how often to reload the stored record")
	return cmd
}

// runKey applies one watch key. Results reach the screen through the
// countdown subscription.
func (a *app) runKey(cmd *cobra.Command, id, key string) error {
	ctx, cancel := a.ctx(cmd)
	defer cancel()
	var err error
	switch key {
	case "p":
		_, err = a.rec.Toggle(ctx, id)
	case "s":
		_, err = a.rec.Stop(ctx, id)
	case "c":
		_, err = a.rec.Complete(ctx, id)
	default:
		cmd.PrintErrln("keys: p pause/resume, s stop, c complete, q quit")
	}
	return err
}

// readKeys delivers trimmed input lines until EOF or ctx ends.
func readKeys(ctx context.Context, in io.Reader) <-chan string {
	keys := make(chan string)
	go func() {
		defer close(keys)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			line := strings.ToLower(strings.TrimSpace(scanner.Text()))
			if line == "" {
				continue
			}
			select {
			case keys <- line:
			case <-ctx.Done():
				return
			}
		}
	}()
	return keys
}

func formatUpdate(u countdown.Update) string {
	marker := ""
	if u.Source == countdown.SourcePredicted {
		marker = " ~"
	}
	return formatClock(u.Timer.RemainingSeconds) + "  " + string(u.Timer.Status) + marker + "  " + u.Timer.Name
}
