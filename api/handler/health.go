package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/powertimer/api/transport"
	"github.com/fastygo/powertimer/internal/infrastructure/monitor"
	"github.com/fastygo/powertimer/pkg/httpcontext"
)

// HealthReporter is satisfied by *monitor.Monitor.
type HealthReporter interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor HealthReporter
}

func NewHealthHandler(mon HealthReporter, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"timestamp":  time.Now().UTC(),
		"last_check": status.LastCheck,
		"services":   status.Services,
	}

	if status.Online {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.Envelope{
		Status: transport.StatusError,
		Code:   "DEGRADED",
		Error:  "dependencies unhealthy",
		Meta:   payload,
	})
}
