package services

import (
	"context"

	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/usecase"
)

// Fanout forwards committed timer states to several publishers in order.
type Fanout []usecase.TimerPublisher

func NewFanout(publishers ...usecase.TimerPublisher) Fanout {
	out := make(Fanout, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (f Fanout) Publish(ctx context.Context, timer domain.Timer) {
	for _, p := range f {
		p.Publish(ctx, timer.Clone())
	}
}

func (f Fanout) Remove(ctx context.Context, id string) {
	for _, p := range f {
		p.Remove(ctx, id)
	}
}
