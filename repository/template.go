package repository

import (
	"context"

	"github.com/fastygo/powertimer/domain"
)

type TemplateRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Template, error)
	List(ctx context.Context) ([]domain.Template, error)
	Create(ctx context.Context, template *domain.Template) (*domain.Template, error)
	// CreateIfAbsent inserts template unless one with the same name exists.
	CreateIfAbsent(ctx context.Context, template *domain.Template) (bool, error)
}
