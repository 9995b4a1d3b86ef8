package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/repository"
)

type templateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository returns a Postgres-backed implementation of TemplateRepository.
func NewTemplateRepository(pool *pgxpool.Pool) repository.TemplateRepository {
	return &templateRepository{pool: pool}
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	const query = `
	SELECT id, name, category, duration_minutes, description, created_at
	FROM timer_templates
	WHERE id = $1
	`
	return scanTemplate(r.pool.QueryRow(ctx, query, id))
}

func (r *templateRepository) List(ctx context.Context) ([]domain.Template, error) {
	const query = `
	SELECT id, name, category, duration_minutes, description, created_at
	FROM timer_templates
	ORDER BY created_at ASC, name ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]domain.Template, 0)
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *tpl)
	}
	return templates, rows.Err()
}

func (r *templateRepository) Create(ctx context.Context, template *domain.Template) (*domain.Template, error) {
	if template == nil {
		return nil, domain.ErrInvalidPayload
	}
	if template.ID == "" {
		template.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO timer_templates (id, name, category, duration_minutes, description)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		template.ID,
		template.Name,
		string(template.Category),
		template.DurationMinutes,
		template.Description,
	).Scan(&template.CreatedAt); err != nil {
		return nil, err
	}
	return template, nil
}

func (r *templateRepository) CreateIfAbsent(ctx context.Context, template *domain.Template) (bool, error) {
	if template == nil {
		return false, domain.ErrInvalidPayload
	}
	if template.ID == "" {
		template.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO timer_templates (id, name, category, duration_minutes, description)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (name) DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, query,
		template.ID,
		template.Name,
		string(template.Category),
		template.DurationMinutes,
		template.Description,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanTemplate(row pgx.Row) (*domain.Template, error) {
	var (
		tpl      domain.Template
		category string
	)
	if err := row.Scan(
		&tpl.ID,
		&tpl.Name,
		&category,
		&tpl.DurationMinutes,
		&tpl.Description,
		&tpl.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, err
	}
	tpl.Category = domain.Category(category)
	return &tpl, nil
}
