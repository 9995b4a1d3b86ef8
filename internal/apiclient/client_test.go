package apiclient_test

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/fastygo/powertimer/api/transport"
	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/internal/apiclient"
	"github.com/fastygo/powertimer/internal/countdown"
	"github.com/fastygo/powertimer/repository"
	"github.com/fastygo/powertimer/usecase/reconcile"
)

func completedTimer() domain.Timer {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return domain.Timer{
		ID: "done", Name: "Focus", Category: domain.CategoryProductivity, DurationSeconds: 60,
		Status: domain.StatusCompleted, CompletedAt: &at, Version: 4,
	}
}

func writeEnvelope(ctx *fasthttp.RequestCtx, status int, env transport.Envelope) {
	raw, _ := json.Marshal(env)
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(raw)
}

func stubAPI(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	switch {
	case path == "/api/v1/timers" && ctx.IsGet():
		if string(ctx.QueryArgs().Peek("include_completed")) != "true" {
			writeEnvelope(ctx, 200, transport.NewSuccess([]transport.TimerView{}, nil))
			return
		}
		writeEnvelope(ctx, 200, transport.NewSuccess(transport.NewTimerViews([]domain.Timer{completedTimer()}), nil))
	case path == "/api/v1/timers/done" && ctx.IsGet():
		writeEnvelope(ctx, 200, transport.NewSuccess(transport.NewTimerView(completedTimer()), nil))
	case path == "/api/v1/timers/done" && string(ctx.Method()) == fasthttp.MethodPatch:
		writeEnvelope(ctx, 409, transport.NewError(string(domain.ErrCodeInvalidTransition), "invalid transition: start from completed", transport.NewTimerView(completedTimer())))
	case strings.HasPrefix(path, "/api/v1/timers/"):
		writeEnvelope(ctx, 404, transport.NewError(string(domain.ErrCodeNotFound), "timer not found", nil))
	default:
		ctx.SetStatusCode(502)
		ctx.SetBodyString("<html>bad gateway</html>")
	}
}

func newClient(t *testing.T) *apiclient.Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go fasthttp.Serve(ln, stubAPI) //nolint:errcheck
	t.Cleanup(func() { _ = ln.Close() })

	doer := &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}
	return apiclient.New("http://powertimer.test", time.Second).WithDoer(doer)
}

func TestDecodesTimersAndFilters(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	timer, err := c.GetTimer(ctx, "done")
	if err != nil || timer.Version != 4 || timer.Status != domain.StatusCompleted {
		t.Fatalf("GetTimer = %+v, %v", timer, err)
	}

	active, err := c.ListTimers(ctx, repository.TimerFilter{})
	if err != nil || len(active) != 0 {
		t.Errorf("ListTimers(default) = %v, %v", active, err)
	}
	all, err := c.ListTimers(ctx, repository.TimerFilter{IncludeCompleted: true})
	if err != nil || len(all) != 1 {
		t.Errorf("ListTimers(include_completed) = %v, %v", all, err)
	}
}

func TestMapsErrorEnvelopes(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	_, err := c.Patch(ctx, "done", domain.StatusPatch(domain.StatusRunning))
	tErr, ok := domain.AsTransitionError(err)
	if !ok || tErr.Current == nil || tErr.Current.Version != 4 {
		t.Fatalf("Patch = %v, want TransitionError carrying the record", err)
	}

	if err := c.DeleteTimer(ctx, "missing"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("DeleteTimer = %v, want NOT_FOUND", err)
	}
	if _, err := c.Stats(ctx); !domain.IsDomainError(err, domain.ErrCodeUnavailable) {
		t.Errorf("non-JSON response = %v, want UNAVAILABLE", err)
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	ln := fasthttputil.NewInmemoryListener()
	_ = ln.Close()
	doer := &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}
	c := apiclient.New("http://powertimer.test", 200*time.Millisecond).WithDoer(doer)

	if _, err := c.GetTimer(context.Background(), "x"); !domain.IsDomainError(err, domain.ErrCodeUnavailable) {
		t.Errorf("GetTimer = %v, want UNAVAILABLE", err)
	}
}

func TestReconcilerAdoptsRefusedRecord(t *testing.T) {
	c := newClient(t)
	cache := countdown.New(countdown.Config{}, nil)
	rec := reconcile.New(c, cache, nil)

	got, err := rec.Start(context.Background(), "done")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got.Status != domain.StatusCompleted {
		t.Errorf("Start returned %+v", got)
	}
	if cached, ok := cache.Snapshot("done"); !ok || cached.Status != domain.StatusCompleted {
		t.Errorf("cache = %+v, %v", cached, ok)
	}
}
