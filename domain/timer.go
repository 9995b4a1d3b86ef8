package domain

import (
	"strings"
	"time"
)

// DefaultTimerName is used when a timer is created without a name.
const DefaultTimerName = "Untitled Timer"

// Status is the lifecycle position of a timer.
type Status string

const (
	StatusCreated   Status = "created"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusStopped   Status = "stopped"
	StatusCompleted Status = "completed"
)

// ParseStatus reports whether s names a known status.
func ParseStatus(s string) (Status, bool) {
	switch status := Status(strings.ToLower(strings.TrimSpace(s))); status {
	case StatusCreated, StatusRunning, StatusPaused, StatusStopped, StatusCompleted:
		return status, true
	default:
		return Status(s), false
	}
}

// IsTerminal reports whether no transition leaves the status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

// Timer is a named countdown owned by the record store.
type Timer struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Category         Category   `json:"category"`
	DurationSeconds  int        `json:"duration_seconds"`
	RemainingSeconds int        `json:"remaining_seconds"`
	Status           Status     `json:"status"`
	TemplateID       string     `json:"template_id,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	PausedAt         *time.Time `json:"paused_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	Version          int        `json:"version"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewTimer builds a timer in the created state. The category is normalized so
// the core never emits a value outside the closed set.
func NewTimer(name string, durationSeconds int, category string) (*Timer, error) {
	if durationSeconds <= 0 {
		return nil, ErrInvalidDuration
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTimerName
	}
	return &Timer{
		Name:             name,
		Category:         NormalizeCategory(category),
		DurationSeconds:  durationSeconds,
		RemainingSeconds: durationSeconds,
		Status:           StatusCreated,
	}, nil
}

func (t *Timer) IsRunning() bool {
	return t != nil && t.Status == StatusRunning
}

func (t *Timer) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// Clone returns a deep copy safe to hand to another goroutine.
func (t Timer) Clone() Timer {
	t.StartedAt = cloneTime(t.StartedAt)
	t.PausedAt = cloneTime(t.PausedAt)
	t.CompletedAt = cloneTime(t.CompletedAt)
	return t
}

// Touch stamps the bookkeeping timestamps.
func (t *Timer) Touch(now time.Time) {
	if t == nil {
		return
	}
	t.UpdatedAt = now
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
}

// TimerPatch is a partial update request against one timer.
type TimerPatch struct {
	Name             *string `json:"name,omitempty"`
	Status           *string `json:"status,omitempty"`
	RemainingSeconds *int    `json:"remaining_seconds,omitempty"`
}

// StatusPatch is shorthand for a patch carrying only a status.
func StatusPatch(status Status) TimerPatch {
	s := string(status)
	return TimerPatch{Status: &s}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
