package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/powertimer/pkg/httpcontext"
	statsUC "github.com/fastygo/powertimer/usecase/stats"
)

type StatsHandler struct {
	baseHandler
	uc *statsUC.UseCase
}

func NewStatsHandler(uc *statsUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Completed-session statistics
// @Tags stats
// @Router /api/v1/stats [get]
func (h *StatsHandler) GetStats(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	snapshot, err := h.uc.Snapshot(stdCtx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, snapshot)
}
