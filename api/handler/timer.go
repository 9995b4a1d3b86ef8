package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/powertimer/api/transport"
	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/pkg/httpcontext"
	"github.com/fastygo/powertimer/repository"
	templateUC "github.com/fastygo/powertimer/usecase/template"
	timerUC "github.com/fastygo/powertimer/usecase/timer"
)

type TimerHandler struct {
	baseHandler
	uc        *timerUC.UseCase
	templates *templateUC.UseCase
}

func NewTimerHandler(uc *timerUC.UseCase, templates *templateUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TimerHandler {
	return &TimerHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		templates:   templates,
	}
}

// @Summary List timers
// @Tags timers
// @Router /api/v1/timers [get]
func (h *TimerHandler) GetTimers(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	filter := repository.TimerFilter{
		IncludeCompleted: parseBool(string(args.Peek("include_completed")), false),
		Limit:            clampLimit(parseInt(string(args.Peek("limit")), 0)),
		Offset:           parseInt(string(args.Peek("offset")), 0),
	}
	if raw := string(args.Peek("status")); raw != "" {
		status, ok := domain.ParseStatus(raw)
		if !ok {
			h.respondInvalid(ctx, "unknown status filter")
			return
		}
		filter.Status = status
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	timers, err := h.uc.ListTimers(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondList(ctx, transport.NewTimerViews(timers), transport.ListMeta{
		Count:  len(timers),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// @Summary Get timer
// @Tags timers
// @Router /api/v1/timers/{id} [get]
func (h *TimerHandler) GetTimer(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	timer, err := h.uc.GetTimer(stdCtx, id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewTimerView(*timer))
}

// @Summary Create timer
// @Tags timers
// @Router /api/v1/timers [post]
func (h *TimerHandler) CreateTimer(ctx *fasthttp.RequestCtx) {
	var req transport.CreateTimerRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var (
		created *domain.Timer
		err     error
	)
	if req.TemplateID != "" && h.templates != nil {
		created, err = h.templates.Instantiate(stdCtx, req.TemplateID, req.Name)
	} else {
		created, err = h.uc.CreateTimer(stdCtx, req.Name, req.DurationSeconds, req.Category)
	}
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.NewTimerView(*created))
}

// @Summary Patch timer
// @Tags timers
// @Router /api/v1/timers/{id} [patch]
func (h *TimerHandler) PatchTimer(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	var req transport.PatchTimerRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Patch(stdCtx, id, domain.TimerPatch{
		Name:             req.Name,
		Status:           req.Status,
		RemainingSeconds: req.RemainingSeconds,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewTimerView(*updated))
}

// @Summary Delete timer
// @Tags timers
// @Router /api/v1/timers/{id} [delete]
func (h *TimerHandler) DeleteTimer(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTimer(stdCtx, id); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"deleted": id})
}
