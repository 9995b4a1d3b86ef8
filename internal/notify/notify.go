package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/fastygo/powertimer/domain"
)

// ErrUnavailable is returned when no notify-send binary is installed.
var ErrUnavailable = errors.New("notify-send not available")

type Urgency int

const (
	UrgencyNormal Urgency = iota
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string
}

// Runner executes the notification command.
type Runner func(ctx context.Context, name string, args ...string) error

// Notifier sends desktop notifications through notify-send. Delivery is best
// effort; callers log and drop errors.
type Notifier struct {
	enabled bool
	appName string
	run     Runner
}

func NewNotifier(appName string, enabled bool) *Notifier {
	if appName == "" {
		appName = "powertimer"
	}
	return &Notifier{enabled: enabled, appName: appName, run: execRunner}
}

// WithRunner swaps the command runner.
func (n *Notifier) WithRunner(run Runner) *Notifier {
	n.run = run
	return n
}

// Send sends a desktop notification using notify-send
func (n *Notifier) Send(notification Notification) error {
	if !n.enabled {
		return nil
	}

	args := []string{"-u", "normal"}
	if notification.Urgency == UrgencyCritical {
		args[1] = "critical"
	}
	if notification.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(notification.Timeout.Milliseconds())))
	}
	if notification.Icon != "" {
		args = append(args, "-i", notification.Icon)
	}
	args = append(args, "-a", n.appName, notification.Title)
	if notification.Body != "" {
		args = append(args, notification.Body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return n.run(ctx, "notify-send", args...)
}

// TimerCompleted announces a finished timer. Breaks get a back-to-work message.
func (n *Notifier) TimerCompleted(timer domain.Timer) error {
	if timer.Category == domain.CategoryBreak {
		return n.Send(Notification{
			Title:   "Break Over",
			Body:    "Time to get back to work!",
			Urgency: UrgencyCritical,
			Timeout: 10 * time.Second,
			Icon:    "appointment-soon-symbolic",
		})
	}
	return n.Send(Notification{
		Title:   "Timer Completed!",
		Body:    fmt.Sprintf("%s (%d min)", timer.Name, (timer.DurationSeconds+59)/60),
		Urgency: UrgencyNormal,
		Timeout: 10 * time.Second,
		Icon:    "alarm-symbolic",
	})
}

func execRunner(ctx context.Context, name string, args ...string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return ErrUnavailable
	}
	return exec.CommandContext(ctx, path, args...).Run()
}
