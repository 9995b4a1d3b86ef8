package repository

import (
	"context"

	"github.com/fastygo/powertimer/domain"
)

// TimerFilter narrows List results. Completed timers are excluded unless
// IncludeCompleted is set or Status asks for them explicitly. A Limit of zero
// returns every matching record.
type TimerFilter struct {
	Status           domain.Status
	IncludeCompleted bool
	Limit            int
	Offset           int
}

// Matches applies the filter to a single record; store drivers without a query
// language use it directly.
func (f TimerFilter) Matches(t *domain.Timer) bool {
	if f.Status != "" {
		return t.Status == f.Status
	}
	return f.IncludeCompleted || t.Status != domain.StatusCompleted
}

type TimerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Timer, error)
	List(ctx context.Context, filter TimerFilter) ([]domain.Timer, error)
	Create(ctx context.Context, timer *domain.Timer) (*domain.Timer, error)
	// Update persists timer if the stored version still equals timer.Version,
	// then bumps the version. A mismatch returns domain.ErrVersionConflict.
	Update(ctx context.Context, timer *domain.Timer) error
	Delete(ctx context.Context, id string) error
}
