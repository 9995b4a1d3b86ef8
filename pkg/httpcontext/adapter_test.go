package httpcontext

import (
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/powertimer/pkg/logger"
)

func TestAttachKeepsIncomingRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx
	rc.Request.Header.Set(HeaderRequestID, "abc")
	rc.Request.Header.SetUserAgent("timerctl")

	ctx, cancel := NewAdapter(time.Second).Attach(&rc)
	defer cancel()

	if got := appLogger.RequestIDFromContext(ctx); got != "abc" {
		t.Errorf("request id = %q", got)
	}
	if got := string(rc.Response.Header.Peek(HeaderRequestID)); got != "abc" {
		t.Errorf("response header = %q", got)
	}
	if ctx.Value(KeyUserAgent) != "timerctl" {
		t.Errorf("user agent = %v", ctx.Value(KeyUserAgent))
	}
	if _, ok := ctx.Deadline(); !ok {
		t.Error("Attach should set a deadline")
	}
}

func TestAttachStreamHasNoDeadline(t *testing.T) {
	var rc fasthttp.RequestCtx
	ctx, cancel := NewAdapter(0).AttachStream(&rc)
	defer cancel()

	if _, ok := ctx.Deadline(); ok {
		t.Error("stream context should not have a deadline")
	}
	if appLogger.RequestIDFromContext(ctx) == "" {
		t.Error("request id not generated")
	}
}
