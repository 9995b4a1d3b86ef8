package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/usecase"
)

const (
	eventUpsert = "upsert"
	eventRemove = "remove"
)

// timerEvent is the wire form of one committed mutation.
type timerEvent struct {
	Origin string        `json:"origin"`
	Kind   string        `json:"kind"`
	ID     string        `json:"id"`
	Timer  *domain.Timer `json:"timer,omitempty"`
}

// TimerEventBus broadcasts committed timer states to every server instance over
// Redis pub/sub. Each instance tags its messages so it can skip its own echoes.
type TimerEventBus struct {
	client  *redislib.Client
	channel string
	origin  string
	logger  *zap.Logger
}

func NewTimerEventBus(client *redislib.Client, channel string, logger *zap.Logger) *TimerEventBus {
	if channel == "" {
		channel = "powertimer:timers"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimerEventBus{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger,
	}
}

// Origin identifies this instance on the channel.
func (b *TimerEventBus) Origin() string {
	return b.origin
}

// Publish broadcasts a committed timer. Failures only cost other instances
// freshness until their next resync, so they are logged, not returned.
func (b *TimerEventBus) Publish(ctx context.Context, timer domain.Timer) {
	t := timer.Clone()
	b.send(ctx, timerEvent{Origin: b.origin, Kind: eventUpsert, ID: t.ID, Timer: &t})
}

func (b *TimerEventBus) Remove(ctx context.Context, id string) {
	b.send(ctx, timerEvent{Origin: b.origin, Kind: eventRemove, ID: id})
}

func (b *TimerEventBus) send(ctx context.Context, event timerEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("encode timer event", zap.Error(err))
		return
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		b.logger.Warn("publish timer event failed",
			zap.String("timer_id", event.ID),
			zap.String("kind", event.Kind),
			zap.Error(err))
	}
}

// Listen feeds events from other instances into sink until ctx is done.
func (b *TimerEventBus) Listen(ctx context.Context, sink usecase.TimerPublisher) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.logger.Info("listening for timer events", zap.String("channel", b.channel), zap.String("origin", b.origin))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.handle(ctx, []byte(msg.Payload), sink)
		}
	}
}

func (b *TimerEventBus) handle(ctx context.Context, payload []byte, sink usecase.TimerPublisher) {
	var event timerEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		b.logger.Warn("decode timer event", zap.Error(err))
		return
	}
	if event.Origin == b.origin {
		return
	}

	switch event.Kind {
	case eventUpsert:
		if event.Timer == nil {
			return
		}
		sink.Publish(ctx, *event.Timer)
	case eventRemove:
		sink.Remove(ctx, event.ID)
	default:
		b.logger.Debug("unknown timer event kind", zap.String("kind", event.Kind))
	}
}
