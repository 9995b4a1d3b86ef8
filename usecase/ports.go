package usecase

import (
	"context"

	"github.com/fastygo/powertimer/domain"
)

// TimerPublisher receives every committed timer state so views and other
// instances can replace their cached copies.
type TimerPublisher interface {
	Publish(ctx context.Context, timer domain.Timer)
	Remove(ctx context.Context, id string)
}

// RemainingSource reports the countdown's predicted remaining seconds for a timer.
type RemainingSource interface {
	Remaining(id string) (int, bool)
}

// NopPublisher discards every notification.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.Timer) {}
func (NopPublisher) Remove(context.Context, string)        {}
