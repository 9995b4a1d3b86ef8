package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/powertimer/api/handler"
	"github.com/fastygo/powertimer/internal/middleware"
)

type Handlers struct {
	Timer    *apiHandler.TimerHandler
	Template *apiHandler.TemplateHandler
	Stats    *apiHandler.StatsHandler
	Events   *apiHandler.EventsHandler
	Health   *apiHandler.HealthHandler
}

type Options struct {
	CORSAllowedOrigin string
	Logger            *zap.Logger
}

func New(handlers Handlers, opts Options) fasthttp.RequestHandler {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	api := r.Group("/api/v1")

	api.GET("/timers", handlers.Timer.GetTimers)
	api.POST("/timers", handlers.Timer.CreateTimer)
	api.GET("/timers/{id}", handlers.Timer.GetTimer)
	api.PATCH("/timers/{id}", handlers.Timer.PatchTimer)
	api.DELETE("/timers/{id}", handlers.Timer.DeleteTimer)
	api.GET("/timers/{id}/events", handlers.Events.Stream)

	api.GET("/templates", handlers.Template.GetTemplates)
	api.POST("/templates", handlers.Template.CreateTemplate)
	api.POST("/templates/{id}/create-timer", handlers.Template.CreateTimer)
	api.POST("/init-templates", handlers.Template.InitTemplates)

	api.GET("/stats", handlers.Stats.GetStats)

	return middleware.Chain(r.Handler,
		middleware.Recover(opts.Logger),
		middleware.AccessLog(opts.Logger),
		middleware.CORS(opts.CORSAllowedOrigin),
	)
}
