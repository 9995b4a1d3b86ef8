package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/fastygo/powertimer/domain"
)

type sink struct {
	published []domain.Timer
	removed   []string
}

func (s *sink) Publish(_ context.Context, timer domain.Timer) { s.published = append(s.published, timer) }
func (s *sink) Remove(_ context.Context, id string)           { s.removed = append(s.removed, id) }

func encode(t *testing.T, event timerEvent) []byte {
	t.Helper()
	raw, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return raw
}

func TestHandleSkipsOwnEvents(t *testing.T) {
	bus := NewTimerEventBus(nil, "", nil)
	out := &sink{}
	timer := domain.Timer{ID: "t1", Status: domain.StatusRunning, DurationSeconds: 60, RemainingSeconds: 60}

	bus.handle(context.Background(), encode(t, timerEvent{Origin: bus.Origin(), Kind: eventUpsert, ID: "t1", Timer: &timer}), out)
	if len(out.published) != 0 {
		t.Fatal("own event was applied")
	}

	bus.handle(context.Background(), encode(t, timerEvent{Origin: "other", Kind: eventUpsert, ID: "t1", Timer: &timer}), out)
	bus.handle(context.Background(), encode(t, timerEvent{Origin: "other", Kind: eventRemove, ID: "t2"}), out)
	if len(out.published) != 1 || out.published[0].ID != "t1" {
		t.Errorf("published = %+v", out.published)
	}
	if len(out.removed) != 1 || out.removed[0] != "t2" {
		t.Errorf("removed = %v", out.removed)
	}
}

func TestHandleIgnoresGarbage(t *testing.T) {
	bus := NewTimerEventBus(nil, "custom", nil)
	out := &sink{}
	bus.handle(context.Background(), []byte("{not json"), out)
	bus.handle(context.Background(), encode(t, timerEvent{Origin: "other", Kind: eventUpsert, ID: "t1"}), out)
	bus.handle(context.Background(), encode(t, timerEvent{Origin: "other", Kind: "explode", ID: "t1"}), out)
	if len(out.published)+len(out.removed) != 0 {
		t.Errorf("garbage produced events: %+v", out)
	}
}
