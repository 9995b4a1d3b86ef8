package domain

import (
	"strings"
	"time"
)

// Event is a mutating intent applied to a timer.
type Event string

const (
	EventStart      Event = "start"
	EventPause      Event = "pause"
	EventStop       Event = "stop"
	EventComplete   Event = "complete"
	EventCheckpoint Event = "checkpoint"
)

// EventForStatus maps a requested target status onto the event that reaches it.
// "created" has no inbound event, so it is rejected alongside unknown values.
func EventForStatus(raw string) (Event, bool) {
	status, ok := ParseStatus(raw)
	if !ok {
		return "", false
	}
	switch status {
	case StatusRunning:
		return EventStart, true
	case StatusPaused:
		return EventPause, true
	case StatusStopped:
		return EventStop, true
	case StatusCompleted:
		return EventComplete, true
	default:
		return "", false
	}
}

// ToggleEvent is start unless the timer is running, in which case it is pause.
func ToggleEvent(status Status) Event {
	if status == StatusRunning {
		return EventPause
	}
	return EventStart
}

// CanApply reports whether event is defined from status.
func CanApply(status Status, event Event) bool {
	switch event {
	case EventStart:
		return status == StatusCreated || status == StatusPaused || status == StatusStopped
	case EventPause:
		return status == StatusRunning
	case EventStop, EventComplete:
		return !status.IsTerminal()
	case EventCheckpoint:
		return status == StatusRunning || status == StatusPaused
	}
	return false
}

// Apply runs event against the timer. It returns false with a nil error when the
// event is an idempotent no-op (completing a completed timer). Refused events
// leave the timer untouched and return a *TransitionError.
func (t *Timer) Apply(event Event, now time.Time) (bool, error) {
	if t == nil {
		return false, ErrTimerNotFound
	}
	if event == EventComplete && t.Status == StatusCompleted {
		return false, nil
	}
	if !CanApply(t.Status, event) {
		return false, t.refuse(event)
	}

	switch event {
	case EventStart:
		t.Status = StatusRunning
		t.StartedAt = &now
		t.PausedAt = nil
	case EventPause:
		t.Status = StatusPaused
		t.PausedAt = &now
	case EventStop:
		t.Status = StatusStopped
		t.RemainingSeconds = t.DurationSeconds
		t.StartedAt = nil
		t.PausedAt = nil
	case EventComplete:
		t.Status = StatusCompleted
		t.RemainingSeconds = 0
		t.PausedAt = nil
		t.CompletedAt = &now
	}
	return true, nil
}

// Checkpoint records a newer remaining value for a running or paused timer.
func (t *Timer) Checkpoint(remaining int) error {
	if t == nil {
		return ErrTimerNotFound
	}
	if !CanApply(t.Status, EventCheckpoint) {
		return t.refuse(EventCheckpoint)
	}
	if remaining < 0 || remaining > t.DurationSeconds {
		return ErrInvalidRemaining
	}
	t.RemainingSeconds = remaining
	return nil
}

// Rename sets a display name, keeping the default for blank input.
func (t *Timer) Rename(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTimerName
	}
	t.Name = name
}

// CheckInvariants validates the structural rules every stored timer obeys.
func (t *Timer) CheckInvariants() error {
	switch {
	case t.DurationSeconds <= 0:
		return ErrInvalidDuration
	case t.RemainingSeconds < 0 || t.RemainingSeconds > t.DurationSeconds:
		return ErrInvalidRemaining
	case t.Status == StatusCompleted && t.RemainingSeconds != 0:
		return NewError(ErrCodeInternal, "completed timer with remaining time")
	case t.Status == StatusStopped && t.RemainingSeconds != t.DurationSeconds:
		return NewError(ErrCodeInternal, "stopped timer not reset")
	}
	return nil
}

func (t *Timer) refuse(event Event) *TransitionError {
	current := t.Clone()
	return &TransitionError{From: t.Status, Event: event, Current: &current}
}
