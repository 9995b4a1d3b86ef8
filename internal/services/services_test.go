package services

import (
	"context"
	"errors"
	"testing"

	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/repository"
)

type staticLister struct {
	timers []domain.Timer
	err    error
	filter repository.TimerFilter
}

func (l *staticLister) ListTimers(_ context.Context, filter repository.TimerFilter) ([]domain.Timer, error) {
	l.filter = filter
	return l.timers, l.err
}

type recordingSyncer struct{ calls [][]domain.Timer }

func (s *recordingSyncer) Sync(timers []domain.Timer) { s.calls = append(s.calls, timers) }

type health bool

func (h health) IsOnline() bool { return bool(h) }

func TestResyncSkipsWhenOffline(t *testing.T) {
	lister := &staticLister{timers: []domain.Timer{{ID: "a"}}}
	sink := &recordingSyncer{}

	rp := NewResyncProcessor(lister, sink, health(false), nil, ResyncConfig{})
	if err := rp.Resync(context.Background()); err != nil {
		t.Fatalf("Resync: %v", err)
	}
	if len(sink.calls) != 0 {
		t.Fatal("resynced while offline")
	}

	rp = NewResyncProcessor(lister, sink, health(true), nil, ResyncConfig{})
	if err := rp.Resync(context.Background()); err != nil {
		t.Fatalf("Resync: %v", err)
	}
	if len(sink.calls) != 1 || sink.calls[0][0].ID != "a" {
		t.Errorf("sync calls = %+v", sink.calls)
	}
	if lister.filter.IncludeCompleted || lister.filter.Status != "" {
		t.Errorf("resync should list non-completed timers, got filter %+v", lister.filter)
	}
}

func TestResyncReturnsStoreErrors(t *testing.T) {
	boom := errors.New("boom")
	rp := NewResyncProcessor(&staticLister{err: boom}, &recordingSyncer{}, nil, nil, ResyncConfig{})
	if err := rp.Resync(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Resync = %v", err)
	}
}

type countingPublisher struct {
	published int
	removed   int
}

func (c *countingPublisher) Publish(context.Context, domain.Timer) { c.published++ }
func (c *countingPublisher) Remove(context.Context, string)        { c.removed++ }

func TestFanoutSkipsNilPublishers(t *testing.T) {
	a, b := &countingPublisher{}, &countingPublisher{}
	f := NewFanout(a, nil, b)
	f.Publish(context.Background(), domain.Timer{ID: "x"})
	f.Remove(context.Background(), "x")
	if a.published != 1 || b.published != 1 || a.removed != 1 || b.removed != 1 {
		t.Errorf("a=%+v b=%+v", a, b)
	}
}
