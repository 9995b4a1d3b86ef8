package template

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/pkg/logger"
	"github.com/fastygo/powertimer/repository"
)

// TimerInserter stores timers stamped out of a template.
type TimerInserter interface {
	Insert(ctx context.Context, timer *domain.Timer) (*domain.Timer, error)
}

type UseCase struct {
	templates repository.TemplateRepository
	timers    TimerInserter
	catalog   []domain.Template
	logger    *zap.Logger
}

func New(templates repository.TemplateRepository, timers TimerInserter, catalog []domain.Template, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		templates: templates,
		timers:    timers,
		catalog:   catalog,
		logger:    logger,
	}
}

func (uc *UseCase) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	return uc.templates.List(ctx)
}

func (uc *UseCase) CreateTemplate(ctx context.Context, template *domain.Template) (*domain.Template, error) {
	if err := template.Validate(); err != nil {
		return nil, err
	}
	return uc.templates.Create(ctx, template)
}

// Instantiate creates a timer from the template; an empty name keeps the template's name.
func (uc *UseCase) Instantiate(ctx context.Context, templateID, name string) (*domain.Timer, error) {
	tpl, err := uc.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	timer, err := tpl.Instantiate(name)
	if err != nil {
		return nil, err
	}
	return uc.timers.Insert(ctx, timer)
}

// Seed inserts every catalog entry whose name is not stored yet and reports how
// many were created. Calling it repeatedly is safe.
func (uc *UseCase) Seed(ctx context.Context) (int, error) {
	created := 0
	for _, entry := range uc.catalog {
		tpl := entry
		tpl.ID = ""
		ok, err := uc.templates.CreateIfAbsent(ctx, &tpl)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	logger.WithRequestID(ctx, uc.logger).Info("template catalog seeded",
		zap.Int("created", created),
		zap.Int("catalog_size", len(uc.catalog)))
	return created, nil
}
