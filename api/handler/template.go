package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/powertimer/api/transport"
	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/pkg/httpcontext"
	templateUC "github.com/fastygo/powertimer/usecase/template"
)

type TemplateHandler struct {
	baseHandler
	uc *templateUC.UseCase
}

func NewTemplateHandler(uc *templateUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List templates
// @Tags templates
// @Router /api/v1/templates [get]
func (h *TemplateHandler) GetTemplates(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	templates, err := h.uc.ListTemplates(stdCtx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondList(ctx, transport.NewTemplateViews(templates), transport.ListMeta{Count: len(templates)})
}

// @Summary Create template
// @Tags templates
// @Router /api/v1/templates [post]
func (h *TemplateHandler) CreateTemplate(ctx *fasthttp.RequestCtx) {
	var req transport.CreateTemplateRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTemplate(stdCtx, &domain.Template{
		Name:            req.Name,
		Category:        domain.Category(req.Category),
		DurationMinutes: req.DurationMinutes,
		Description:     req.Description,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.NewTemplateViews([]domain.Template{*created})[0])
}

// @Summary Create timer from template
// @Tags templates
// @Router /api/v1/templates/{id}/create-timer [post]
func (h *TemplateHandler) CreateTimer(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	name := string(ctx.QueryArgs().Peek("name"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	timer, err := h.uc.Instantiate(stdCtx, id, name)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.NewTimerView(*timer))
}

// @Summary Seed default templates
// @Tags templates
// @Router /api/v1/init-templates [post]
func (h *TemplateHandler) InitTemplates(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Seed(stdCtx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int{"created": created})
}
