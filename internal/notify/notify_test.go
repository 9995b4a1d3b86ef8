package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/fastygo/powertimer/domain"
)

type recorder struct {
	name string
	args []string
}

func (r *recorder) run(_ context.Context, name string, args ...string) error {
	r.name = name
	r.args = args
	return nil
}

func TestDisabledNotifierSendsNothing(t *testing.T) {
	rec := &recorder{}
	n := NewNotifier("test", false).WithRunner(rec.run)
	if err := n.TimerCompleted(domain.Timer{Name: "Focus", DurationSeconds: 1500}); err != nil {
		t.Fatalf("TimerCompleted: %v", err)
	}
	if rec.name != "" {
		t.Errorf("disabled notifier ran %q", rec.name)
	}
}

func TestTimerCompletedMessage(t *testing.T) {
	rec := &recorder{}
	n := NewNotifier("powertimer", true).WithRunner(rec.run)
	if err := n.TimerCompleted(domain.Timer{Name: "Focus", DurationSeconds: 1500, Category: domain.CategoryProductivity}); err != nil {
		t.Fatalf("TimerCompleted: %v", err)
	}
	joined := strings.Join(rec.args, " ")
	if !strings.Contains(joined, "-u normal") {
		t.Errorf("timer completion urgency args = %v", rec.args)
	}
	if rec.name != "notify-send" || !strings.Contains(joined, "-a powertimer") || !strings.Contains(joined, "Timer Completed!") || !strings.Contains(joined, "Focus (25 min)") {
		t.Errorf("unexpected command %s %v", rec.name, rec.args)
	}

	if err := n.TimerCompleted(domain.Timer{Name: "Rest", DurationSeconds: 300, Category: domain.CategoryBreak}); err != nil {
		t.Fatalf("TimerCompleted: %v", err)
	}
	if joined := strings.Join(rec.args, " "); !strings.Contains(joined, "Break Over") || !strings.Contains(joined, "-u critical") {
		t.Errorf("break completion args = %v", rec.args)
	}
}
