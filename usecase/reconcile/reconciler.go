package reconcile

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/pkg/logger"
)

// Store is the authoritative record store. The server's timer use case and the
// HTTP API client both satisfy it.
type Store interface {
	GetTimer(ctx context.Context, id string) (*domain.Timer, error)
	Patch(ctx context.Context, id string, patch domain.TimerPatch) (*domain.Timer, error)
	DeleteTimer(ctx context.Context, id string) error
}

// Cache is the local countdown that mirrors store records.
type Cache interface {
	Replace(timer domain.Timer)
	Forget(id string)
	Snapshot(id string) (domain.Timer, bool)
	Remaining(id string) (int, bool)
}

// Reconciler turns user intents and countdown expiries into store operations
// and folds every answer back into the cache. Operations on one id are
// serialized; concurrent completions of one id share a single store call.
type Reconciler struct {
	store  Store
	cache  Cache
	logger *zap.Logger

	group singleflight.Group
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(store Store, cache Cache, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		store:  store,
		cache:  cache,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Start begins or resumes a timer.
func (r *Reconciler) Start(ctx context.Context, id string) (*domain.Timer, error) {
	unlock := r.lock(id)
	defer unlock()
	return r.start(ctx, id)
}

// Pause checkpoints the locally predicted remaining time and pauses the timer.
func (r *Reconciler) Pause(ctx context.Context, id string) (*domain.Timer, error) {
	unlock := r.lock(id)
	defer unlock()
	return r.pause(ctx, id)
}

// Stop resets the timer to its full duration.
func (r *Reconciler) Stop(ctx context.Context, id string) (*domain.Timer, error) {
	unlock := r.lock(id)
	defer unlock()

	patch := domain.StatusPatch(domain.StatusStopped)
	if cached, ok := r.cache.Snapshot(id); ok {
		full := cached.DurationSeconds
		patch.RemainingSeconds = &full
	}
	timer, err := r.store.Patch(ctx, id, patch)
	return r.settle(ctx, id, timer, err)
}

// Toggle pauses a running timer and starts anything else, deciding on the
// stored status rather than the cached one.
func (r *Reconciler) Toggle(ctx context.Context, id string) (*domain.Timer, error) {
	unlock := r.lock(id)
	defer unlock()

	current, err := r.store.GetTimer(ctx, id)
	if err != nil {
		return r.settle(ctx, id, nil, err)
	}
	r.cache.Replace(current.Clone())

	if domain.ToggleEvent(current.Status) == domain.EventPause {
		return r.pause(ctx, id)
	}
	return r.start(ctx, id)
}

// Complete commits the completed transition. Concurrent calls for the same id
// collapse into one store request and all receive its answer.
func (r *Reconciler) Complete(ctx context.Context, id string) (*domain.Timer, error) {
	v, err, shared := r.group.Do(id, func() (interface{}, error) {
		unlock := r.lock(id)
		defer unlock()

		timer, err := r.store.Patch(ctx, id, domain.StatusPatch(domain.StatusCompleted))
		return r.settle(ctx, id, timer, err)
	})
	if shared {
		logger.WithRequestID(ctx, r.logger).Debug("completion shared", zap.String("timer_id", id))
	}
	if err != nil {
		return nil, err
	}
	timer := v.(*domain.Timer).Clone()
	return &timer, nil
}

// Rename changes the display name only.
func (r *Reconciler) Rename(ctx context.Context, id, name string) (*domain.Timer, error) {
	unlock := r.lock(id)
	defer unlock()

	timer, err := r.store.Patch(ctx, id, domain.TimerPatch{Name: &name})
	return r.settle(ctx, id, timer, err)
}

// Refresh reloads the stored record into the cache.
func (r *Reconciler) Refresh(ctx context.Context, id string) (*domain.Timer, error) {
	unlock := r.lock(id)
	defer unlock()

	timer, err := r.store.GetTimer(ctx, id)
	return r.settle(ctx, id, timer, err)
}

// Delete removes the timer from the store and the cache.
func (r *Reconciler) Delete(ctx context.Context, id string) error {
	unlock := r.lock(id)
	err := r.store.DeleteTimer(ctx, id)
	unlock()

	if err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return err
	}
	r.cache.Forget(id)
	r.mu.Lock()
	delete(r.locks, id)
	r.mu.Unlock()
	return err
}

func (r *Reconciler) start(ctx context.Context, id string) (*domain.Timer, error) {
	timer, err := r.store.Patch(ctx, id, domain.StatusPatch(domain.StatusRunning))
	return r.settle(ctx, id, timer, err)
}

func (r *Reconciler) pause(ctx context.Context, id string) (*domain.Timer, error) {
	patch := domain.StatusPatch(domain.StatusPaused)
	if remaining, ok := r.cache.Remaining(id); ok {
		patch.RemainingSeconds = &remaining
	}
	timer, err := r.store.Patch(ctx, id, patch)
	return r.settle(ctx, id, timer, err)
}

// settle folds a store answer into the cache. A refused transition is not an
// error for the caller: the stored record it carries becomes the result.
func (r *Reconciler) settle(ctx context.Context, id string, timer *domain.Timer, err error) (*domain.Timer, error) {
	if err == nil {
		r.cache.Replace(timer.Clone())
		return timer, nil
	}
	if tErr, ok := domain.AsTransitionError(err); ok && tErr.Current != nil {
		logger.WithRequestID(ctx, r.logger).Debug("transition refused by store",
			zap.String("timer_id", id),
			zap.String("event", string(tErr.Event)),
			zap.String("status", string(tErr.Current.Status)))
		r.cache.Replace(tErr.Current.Clone())
		current := tErr.Current.Clone()
		return &current, nil
	}
	if domain.IsDomainError(err, domain.ErrCodeNotFound) {
		r.cache.Forget(id)
	}
	return nil, err
}

func (r *Reconciler) lock(id string) func() {
	r.mu.Lock()
	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}
