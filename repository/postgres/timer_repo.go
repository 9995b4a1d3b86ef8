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

const timerColumns = `id, name, category, duration_seconds, remaining_seconds, status, template_id,
	started_at, paused_at, completed_at, version, created_at, updated_at`

type timerRepository struct {
	pool *pgxpool.Pool
}

// NewTimerRepository returns a Postgres-backed implementation of TimerRepository.
func NewTimerRepository(pool *pgxpool.Pool) repository.TimerRepository {
	return &timerRepository{pool: pool}
}

func (r *timerRepository) GetByID(ctx context.Context, id string) (*domain.Timer, error) {
	const query = `SELECT ` + timerColumns + ` FROM timers WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTimer(row)
}

func (r *timerRepository) List(ctx context.Context, filter repository.TimerFilter) ([]domain.Timer, error) {
	const query = `
	SELECT ` + timerColumns + `
	FROM timers
	WHERE ($1 = '' OR status = $1)
	  AND ($1 <> '' OR $2 OR status <> 'completed')
	ORDER BY created_at ASC, id ASC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, string(filter.Status), filter.IncludeCompleted, limitArg(filter.Limit), max(filter.Offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	timers := make([]domain.Timer, 0)
	for rows.Next() {
		timer, err := scanTimer(rows)
		if err != nil {
			return nil, err
		}
		timers = append(timers, *timer)
	}
	return timers, rows.Err()
}

func (r *timerRepository) Create(ctx context.Context, timer *domain.Timer) (*domain.Timer, error) {
	if timer == nil {
		return nil, domain.ErrInvalidPayload
	}
	if timer.ID == "" {
		timer.ID = uuid.NewString()
	}
	timer.Version = 1

	const query = `
	INSERT INTO timers (id, name, category, duration_seconds, remaining_seconds, status, template_id,
		started_at, paused_at, completed_at, version)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		timer.ID,
		timer.Name,
		string(timer.Category),
		timer.DurationSeconds,
		timer.RemainingSeconds,
		string(timer.Status),
		nullString(timer.TemplateID),
		nullTime(timer.StartedAt),
		nullTime(timer.PausedAt),
		nullTime(timer.CompletedAt),
		timer.Version,
	).Scan(&timer.CreatedAt, &timer.UpdatedAt); err != nil {
		return nil, err
	}
	return timer, nil
}

func (r *timerRepository) Update(ctx context.Context, timer *domain.Timer) error {
	if timer == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE timers
	SET name = $3,
		remaining_seconds = $4,
		status = $5,
		started_at = $6,
		paused_at = $7,
		completed_at = $8,
		version = version + 1,
		updated_at = NOW()
	WHERE id = $1 AND version = $2
	RETURNING version, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		timer.ID,
		timer.Version,
		timer.Name,
		timer.RemainingSeconds,
		string(timer.Status),
		nullTime(timer.StartedAt),
		nullTime(timer.PausedAt),
		nullTime(timer.CompletedAt),
	).Scan(&timer.Version, &timer.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM timers WHERE id = $1)`, timer.ID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrTimerNotFound
	}
	return domain.ErrVersionConflict
}

func (r *timerRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM timers WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTimerNotFound
	}
	return nil
}

func scanTimer(row pgx.Row) (*domain.Timer, error) {
	var (
		timer      domain.Timer
		category   string
		status     string
		templateID *string
	)
	if err := row.Scan(
		&timer.ID,
		&timer.Name,
		&category,
		&timer.DurationSeconds,
		&timer.RemainingSeconds,
		&status,
		&templateID,
		&timer.StartedAt,
		&timer.PausedAt,
		&timer.CompletedAt,
		&timer.Version,
		&timer.CreatedAt,
		&timer.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTimerNotFound
		}
		return nil, err
	}

	timer.Category = domain.Category(category)
	timer.Status = domain.Status(status)
	if templateID != nil {
		timer.TemplateID = *templateID
	}
	return &timer, nil
}
