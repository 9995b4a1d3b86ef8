package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/powertimer/api/transport"
	"github.com/fastygo/powertimer/internal/countdown"
	"github.com/fastygo/powertimer/pkg/httpcontext"
	"github.com/fastygo/powertimer/pkg/logger"
	timerUC "github.com/fastygo/powertimer/usecase/timer"
)

const heartbeatInterval = 15 * time.Second

// eventPayload is one countdown update as streamed to a view.
type eventPayload struct {
	Timer  transport.TimerView `json:"timer"`
	Source countdown.Source    `json:"source"`
	At     time.Time           `json:"at"`
}

type EventsHandler struct {
	baseHandler
	uc        *timerUC.UseCase
	countdown *countdown.Service
	buffer    int

	closeOnce sync.Once
	done      chan struct{}
}

func NewEventsHandler(uc *timerUC.UseCase, svc *countdown.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		countdown:   svc,
		buffer:      16,
		done:        make(chan struct{}),
	}
}

// Close ends every open stream with an end event. Streams opened afterwards
// end immediately. The server calls it before shutting down the listener.
func (h *EventsHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// @Summary Stream countdown updates for one timer
// @Tags timers
// @Router /api/v1/timers/{id}/events [get]
func (h *EventsHandler) Stream(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	lookupCtx, cancelLookup := h.requestContext(ctx)
	timer, err := h.uc.GetTimer(lookupCtx, id)
	cancelLookup()
	if err != nil {
		h.respondError(ctx, lookupCtx, err)
		return
	}
	h.countdown.Replace(*timer)

	var streamCtx = lookupCtx
	cancelStream := func() {}
	if h.adapter != nil {
		streamCtx, cancelStream = h.adapter.AttachStream(ctx)
	}
	log := logger.WithRequestID(streamCtx, h.logger).With(zap.String("timer_id", id))
	updates, unsubscribe := h.countdown.Subscribe(id, h.buffer)

	ctx.SetContentType("text/event-stream")
	ctx.Response.Header.Set("Cache-Control", "no-cache")
	ctx.Response.Header.Set("Connection", "keep-alive")
	ctx.Response.Header.Set("X-Accel-Buffering", "no")

	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancelStream()
		defer unsubscribe()
		log.Debug("event stream opened")

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case update, open := <-updates:
				if !open {
					_ = writeEvent(w, "end", map[string]string{"id": id})
					log.Debug("event stream closed by countdown")
					return
				}
				payload := eventPayload{
					Timer:  transport.NewTimerView(update.Timer),
					Source: update.Source,
					At:     update.At,
				}
				if err := writeEvent(w, "update", payload); err != nil {
					log.Debug("event stream client gone", zap.Error(err))
					return
				}
			case <-h.done:
				_ = writeEvent(w, "end", map[string]string{"id": id})
				log.Debug("event stream closed for shutdown")
				return
			case <-heartbeat.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					log.Debug("event stream client gone", zap.Error(err))
					return
				}
			}
		}
	})
}

func writeEvent(w *bufio.Writer, name string, data interface{}) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, body); err != nil {
		return err
	}
	return w.Flush()
}
