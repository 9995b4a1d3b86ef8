package bolt

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/internal/infrastructure/boltdb"
	"github.com/fastygo/powertimer/repository"
)

type timerRepository struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewTimerRepository returns a BoltDB-backed implementation of TimerRepository.
// Every write happens inside a single Update transaction, which bbolt serializes.
func NewTimerRepository(db *bbolt.DB) repository.TimerRepository {
	return &timerRepository{db: db, now: time.Now}
}

func (r *timerRepository) GetByID(ctx context.Context, id string) (*domain.Timer, error) {
	var timer *domain.Timer
	err := r.db.View(func(tx *bbolt.Tx) error {
		var err error
		timer, err = getTimer(tx, id)
		return err
	})
	return timer, err
}

func (r *timerRepository) List(ctx context.Context, filter repository.TimerFilter) ([]domain.Timer, error) {
	timers := make([]domain.Timer, 0)
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltdb.BucketTimers).ForEach(func(_, v []byte) error {
			var timer domain.Timer
			if err := json.Unmarshal(v, &timer); err != nil {
				return err
			}
			if filter.Matches(&timer) {
				timers = append(timers, timer)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(timers, func(i, j int) bool {
		if timers[i].CreatedAt.Equal(timers[j].CreatedAt) {
			return timers[i].ID < timers[j].ID
		}
		return timers[i].CreatedAt.Before(timers[j].CreatedAt)
	})
	return paginate(timers, filter.Limit, filter.Offset), nil
}

func (r *timerRepository) Create(ctx context.Context, timer *domain.Timer) (*domain.Timer, error) {
	if timer == nil {
		return nil, domain.ErrInvalidPayload
	}
	if timer.ID == "" {
		timer.ID = uuid.NewString()
	}
	timer.Version = 1
	timer.Touch(r.now())

	err := r.db.Update(func(tx *bbolt.Tx) error {
		return putJSON(tx.Bucket(boltdb.BucketTimers), timer.ID, timer)
	})
	if err != nil {
		return nil, err
	}
	return timer, nil
}

func (r *timerRepository) Update(ctx context.Context, timer *domain.Timer) error {
	if timer == nil {
		return domain.ErrInvalidPayload
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		stored, err := getTimer(tx, timer.ID)
		if err != nil {
			return err
		}
		if stored.Version != timer.Version {
			return domain.ErrVersionConflict
		}

		next := *timer
		next.DurationSeconds = stored.DurationSeconds
		next.Category = stored.Category
		next.TemplateID = stored.TemplateID
		next.CreatedAt = stored.CreatedAt
		next.Version = stored.Version + 1
		next.UpdatedAt = r.now()
		if err := putJSON(tx.Bucket(boltdb.BucketTimers), next.ID, &next); err != nil {
			return err
		}
		timer.Version = next.Version
		timer.UpdatedAt = next.UpdatedAt
		return nil
	})
}

func (r *timerRepository) Delete(ctx context.Context, id string) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(boltdb.BucketTimers)
		if b.Get([]byte(id)) == nil {
			return domain.ErrTimerNotFound
		}
		return b.Delete([]byte(id))
	})
}

func getTimer(tx *bbolt.Tx, id string) (*domain.Timer, error) {
	raw := tx.Bucket(boltdb.BucketTimers).Get([]byte(id))
	if raw == nil {
		return nil, domain.ErrTimerNotFound
	}
	var timer domain.Timer
	if err := json.Unmarshal(raw, &timer); err != nil {
		return nil, err
	}
	return &timer, nil
}
