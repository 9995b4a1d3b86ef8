package timer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/pkg/logger"
	"github.com/fastygo/powertimer/repository"
	"github.com/fastygo/powertimer/usecase"
)

// maxWriteAttempts bounds the read-apply-write loop when the stored version moves underneath us.
const maxWriteAttempts = 3

type UseCase struct {
	timers    repository.TimerRepository
	publisher usecase.TimerPublisher
	remaining usecase.RemainingSource
	logger    *zap.Logger
	now       func() time.Time
}

func New(timers repository.TimerRepository, publisher usecase.TimerPublisher, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = usecase.NopPublisher{}
	}
	return &UseCase{
		timers:    timers,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// SetRemainingSource lets pause requests without a checkpoint use the countdown's prediction.
func (uc *UseCase) SetRemainingSource(source usecase.RemainingSource) {
	uc.remaining = source
}

func (uc *UseCase) ListTimers(ctx context.Context, filter repository.TimerFilter) ([]domain.Timer, error) {
	return uc.timers.List(ctx, filter)
}

func (uc *UseCase) GetTimer(ctx context.Context, id string) (*domain.Timer, error) {
	return uc.timers.GetByID(ctx, id)
}

func (uc *UseCase) CreateTimer(ctx context.Context, name string, durationSeconds int, category string) (*domain.Timer, error) {
	timer, err := domain.NewTimer(name, durationSeconds, category)
	if err != nil {
		return nil, err
	}
	return uc.Insert(ctx, timer)
}

// Insert stores an already-built timer, e.g. one instantiated from a template.
func (uc *UseCase) Insert(ctx context.Context, timer *domain.Timer) (*domain.Timer, error) {
	if timer == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := timer.CheckInvariants(); err != nil {
		return nil, err
	}
	created, err := uc.timers.Create(ctx, timer)
	if err != nil {
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("timer created",
		zap.String("timer_id", created.ID),
		zap.Int("duration_seconds", created.DurationSeconds))
	uc.publisher.Publish(ctx, created.Clone())
	return created, nil
}

// Patch applies a partial update through the state machine. Completing a
// completed timer returns the stored record without writing.
func (uc *UseCase) Patch(ctx context.Context, id string, patch domain.TimerPatch) (*domain.Timer, error) {
	var event domain.Event
	if patch.Status != nil {
		ev, ok := domain.EventForStatus(*patch.Status)
		if !ok {
			current, err := uc.timers.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return nil, &domain.TransitionError{From: current.Status, Event: domain.Event(*patch.Status), Current: current}
		}
		event = ev
	}

	log := logger.WithRequestID(ctx, uc.logger).With(zap.String("timer_id", id))
	for attempt := 1; ; attempt++ {
		timer, err := uc.timers.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		changed, err := uc.apply(timer, event, patch)
		if err != nil {
			return nil, err
		}
		if !changed {
			return timer, nil
		}

		err = uc.timers.Update(ctx, timer)
		if err == nil {
			log.Info("timer updated",
				zap.String("status", string(timer.Status)),
				zap.Int("remaining_seconds", timer.RemainingSeconds),
				zap.Int("version", timer.Version))
			uc.publisher.Publish(ctx, timer.Clone())
			return timer, nil
		}
		if !domain.IsDomainError(err, domain.ErrCodeConflict) || attempt >= maxWriteAttempts {
			return nil, err
		}
		log.Debug("version conflict, re-reading timer", zap.Int("attempt", attempt))
	}
}

func (uc *UseCase) apply(timer *domain.Timer, event domain.Event, patch domain.TimerPatch) (bool, error) {
	now := uc.now()
	if event == domain.EventComplete || event == domain.EventStop {
		// Both effects fix remaining_seconds, so a supplied value is ignored.
		changed, err := timer.Apply(event, now)
		if err != nil || !changed {
			return changed, err
		}
		if patch.Name != nil {
			timer.Rename(*patch.Name)
		}
		return true, nil
	}

	if event == "" && patch.RemainingSeconds == nil && patch.Name == nil {
		return false, nil
	}
	if event != "" && !domain.CanApply(timer.Status, event) {
		return timer.Apply(event, now)
	}

	checkpoint := patch.RemainingSeconds
	if checkpoint == nil && event == domain.EventPause && uc.remaining != nil {
		if predicted, ok := uc.remaining.Remaining(timer.ID); ok && predicted < timer.RemainingSeconds {
			checkpoint = &predicted
		}
	}
	if event == domain.EventStart && timer.Status != domain.StatusPaused {
		// Starting from created/stopped always begins at the stored value.
		checkpoint = nil
	}
	if checkpoint != nil {
		if err := timer.Checkpoint(*checkpoint); err != nil {
			return false, err
		}
	}

	if event != "" {
		if _, err := timer.Apply(event, now); err != nil {
			return false, err
		}
	}
	if patch.Name != nil {
		timer.Rename(*patch.Name)
	}
	return true, nil
}

func (uc *UseCase) DeleteTimer(ctx context.Context, id string) error {
	if err := uc.timers.Delete(ctx, id); err != nil {
		return err
	}
	logger.WithRequestID(ctx, uc.logger).Info("timer deleted", zap.String("timer_id", id))
	uc.publisher.Remove(ctx, id)
	return nil
}
