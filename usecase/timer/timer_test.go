package timer_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/internal/infrastructure/boltdb"
	"github.com/fastygo/powertimer/repository"
	boltRepo "github.com/fastygo/powertimer/repository/bolt"
	timerUC "github.com/fastygo/powertimer/usecase/timer"
)

type recordingPublisher struct {
	published []domain.Timer
	removed   []string
}

func (p *recordingPublisher) Publish(_ context.Context, timer domain.Timer) {
	p.published = append(p.published, timer)
}

func (p *recordingPublisher) Remove(_ context.Context, id string) {
	p.removed = append(p.removed, id)
}

type fixedRemaining map[string]int

func (f fixedRemaining) Remaining(id string) (int, bool) {
	v, ok := f[id]
	return v, ok
}

func newUseCase(t *testing.T) (*timerUC.UseCase, *recordingPublisher) {
	t.Helper()
	db, err := boltdb.Open(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	pub := &recordingPublisher{}
	return timerUC.New(boltRepo.NewTimerRepository(db), pub, nil), pub
}

func ptr[T any](v T) *T { return &v }

func patchStatus(t *testing.T, uc *timerUC.UseCase, id, status string) *domain.Timer {
	t.Helper()
	got, err := uc.Patch(context.Background(), id, domain.TimerPatch{Status: ptr(status)})
	if err != nil {
		t.Fatalf("Patch(%s): %v", status, err)
	}
	return got
}

func TestCreateAndStart(t *testing.T) {
	uc, pub := newUseCase(t)
	created, err := uc.CreateTimer(context.Background(), "  ", 1500, "productivity")
	if err != nil {
		t.Fatalf("CreateTimer: %v", err)
	}
	if created.Name != domain.DefaultTimerName || created.Status != domain.StatusCreated || created.RemainingSeconds != 1500 {
		t.Fatalf("created = %+v", created)
	}

	running := patchStatus(t, uc, created.ID, "running")
	if running.Status != domain.StatusRunning || running.RemainingSeconds != 1500 || running.StartedAt == nil {
		t.Errorf("running = %+v", running)
	}
	if running.Version != created.Version+1 {
		t.Errorf("version = %d, want %d", running.Version, created.Version+1)
	}
	if len(pub.published) != 2 {
		t.Errorf("published %d records, want 2", len(pub.published))
	}
}

func TestCreateRejectsBadDuration(t *testing.T) {
	uc, _ := newUseCase(t)
	if _, err := uc.CreateTimer(context.Background(), "x", 0, ""); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("CreateTimer(0) = %v, want INVALID", err)
	}
}

func TestPauseKeepsCheckpointAndStopResets(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	timer, _ := uc.CreateTimer(ctx, "Focus", 1500, "productivity")
	patchStatus(t, uc, timer.ID, "running")

	paused, err := uc.Patch(ctx, timer.ID, domain.TimerPatch{Status: ptr("paused"), RemainingSeconds: ptr(900)})
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if paused.Status != domain.StatusPaused || paused.RemainingSeconds != 900 || paused.PausedAt == nil {
		t.Fatalf("paused = %+v", paused)
	}

	resumed := patchStatus(t, uc, timer.ID, "running")
	if resumed.RemainingSeconds != 900 {
		t.Errorf("resumed remaining = %d, want 900", resumed.RemainingSeconds)
	}

	stopped, err := uc.Patch(ctx, timer.ID, domain.TimerPatch{Status: ptr("stopped"), RemainingSeconds: ptr(12)})
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if stopped.Status != domain.StatusStopped || stopped.RemainingSeconds != 1500 {
		t.Errorf("stopped = %s/%d, want stopped/1500", stopped.Status, stopped.RemainingSeconds)
	}

	restarted := patchStatus(t, uc, timer.ID, "running")
	if restarted.RemainingSeconds != 1500 {
		t.Errorf("restart from stopped = %d, want 1500", restarted.RemainingSeconds)
	}
}

func TestPauseUsesPredictedRemaining(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	timer, _ := uc.CreateTimer(ctx, "Focus", 600, "")
	patchStatus(t, uc, timer.ID, "running")
	uc.SetRemainingSource(fixedRemaining{timer.ID: 480})

	paused := patchStatus(t, uc, timer.ID, "paused")
	if paused.RemainingSeconds != 480 {
		t.Errorf("paused remaining = %d, want 480", paused.RemainingSeconds)
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	uc, pub := newUseCase(t)
	ctx := context.Background()
	timer, _ := uc.CreateTimer(ctx, "Focus", 60, "")
	patchStatus(t, uc, timer.ID, "running")

	first := patchStatus(t, uc, timer.ID, "completed")
	published := len(pub.published)
	second := patchStatus(t, uc, timer.ID, "completed")

	if first.Status != domain.StatusCompleted || first.RemainingSeconds != 0 {
		t.Fatalf("first = %+v", first)
	}
	if second.Version != first.Version || !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Errorf("second complete changed the record: %+v vs %+v", second, first)
	}
	if len(pub.published) != published {
		t.Error("idempotent complete was published")
	}
}

func TestPatchCompletedIsRefused(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	timer, _ := uc.CreateTimer(ctx, "Focus", 60, "")
	done := patchStatus(t, uc, timer.ID, "completed")

	for _, status := range []string{"running", "paused", "stopped"} {
		_, err := uc.Patch(ctx, timer.ID, domain.TimerPatch{Status: ptr(status)})
		tErr, ok := domain.AsTransitionError(err)
		if !ok {
			t.Fatalf("%s from completed: err = %v", status, err)
		}
		if tErr.Current.Version != done.Version || tErr.Current.Status != domain.StatusCompleted {
			t.Errorf("%s: current = %+v", status, tErr.Current)
		}
	}
}

func TestPatchRejectsUnknownAndCreatedStatus(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	timer, _ := uc.CreateTimer(ctx, "Focus", 60, "")

	for _, status := range []string{"created", "exploded"} {
		_, err := uc.Patch(ctx, timer.ID, domain.TimerPatch{Status: ptr(status)})
		if !domain.IsDomainError(err, domain.ErrCodeInvalidTransition) {
			t.Errorf("status %q: err = %v, want INVALID_TRANSITION", status, err)
		}
	}
	if _, err := uc.Patch(ctx, "missing", domain.StatusPatch(domain.StatusRunning)); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("missing timer: err = %v", err)
	}
}

func TestRenameAndRemainingOnlyPatch(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	timer, _ := uc.CreateTimer(ctx, "Focus", 600, "")

	renamed, err := uc.Patch(ctx, timer.ID, domain.TimerPatch{Name: ptr("Deep focus")})
	if err != nil || renamed.Name != "Deep focus" {
		t.Fatalf("rename = %+v, %v", renamed, err)
	}
	if _, err := uc.Patch(ctx, timer.ID, domain.TimerPatch{RemainingSeconds: ptr(10)}); !domain.IsDomainError(err, domain.ErrCodeInvalidTransition) {
		t.Errorf("checkpoint on created timer: err = %v", err)
	}

	patchStatus(t, uc, timer.ID, "running")
	checkpointed, err := uc.Patch(ctx, timer.ID, domain.TimerPatch{RemainingSeconds: ptr(300)})
	if err != nil || checkpointed.RemainingSeconds != 300 || checkpointed.Status != domain.StatusRunning {
		t.Fatalf("checkpoint = %+v, %v", checkpointed, err)
	}
	if _, err := uc.Patch(ctx, timer.ID, domain.TimerPatch{RemainingSeconds: ptr(601)}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("out-of-range checkpoint: err = %v", err)
	}
}

func TestListExcludesCompletedByDefault(t *testing.T) {
	uc, pub := newUseCase(t)
	ctx := context.Background()
	a, _ := uc.CreateTimer(ctx, "A", 60, "")
	uc.CreateTimer(ctx, "B", 60, "")
	patchStatus(t, uc, a.ID, "completed")

	active, err := uc.ListTimers(ctx, repository.TimerFilter{})
	if err != nil || len(active) != 1 || active[0].Name != "B" {
		t.Fatalf("active = %+v, %v", active, err)
	}
	all, _ := uc.ListTimers(ctx, repository.TimerFilter{IncludeCompleted: true})
	if len(all) != 2 {
		t.Errorf("all = %d, want 2", len(all))
	}

	if err := uc.DeleteTimer(ctx, a.ID); err != nil {
		t.Fatalf("DeleteTimer: %v", err)
	}
	if len(pub.removed) != 1 || pub.removed[0] != a.ID {
		t.Errorf("removed = %v", pub.removed)
	}
}
