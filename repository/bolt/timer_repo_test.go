package bolt_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/internal/infrastructure/boltdb"
	"github.com/fastygo/powertimer/repository"
	boltRepo "github.com/fastygo/powertimer/repository/bolt"
)

func openDB(t *testing.T) *bbolt.DB {
	t.Helper()
	db, err := boltdb.Open(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTimerCreateGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := boltRepo.NewTimerRepository(openDB(t))

	timer, _ := domain.NewTimer("Read", 900, "tasks")
	created, err := repo.Create(ctx, timer)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.Version != 1 || created.CreatedAt.IsZero() {
		t.Fatalf("Create did not assign bookkeeping: %+v", created)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Read" || got.RemainingSeconds != 900 || got.Status != domain.StatusCreated {
		t.Errorf("GetByID = %+v", got)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, created.ID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("second Delete = %v, want NOT_FOUND", err)
	}
	if _, err := repo.GetByID(ctx, created.ID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("GetByID after delete = %v, want NOT_FOUND", err)
	}
}

func TestTimerUpdateChecksVersion(t *testing.T) {
	ctx := context.Background()
	repo := boltRepo.NewTimerRepository(openDB(t))

	timer, _ := domain.NewTimer("Write", 60, "productivity")
	created, err := repo.Create(ctx, timer)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first := created.Clone()
	second := created.Clone()

	first.Status = domain.StatusRunning
	if err := repo.Update(ctx, &first); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if first.Version != 2 {
		t.Errorf("Version = %d, want 2", first.Version)
	}

	second.Status = domain.StatusStopped
	if err := repo.Update(ctx, &second); !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("stale Update = %v, want CONFLICT", err)
	}

	stored, _ := repo.GetByID(ctx, created.ID)
	if stored.Status != domain.StatusRunning {
		t.Errorf("stale write leaked: status %s", stored.Status)
	}

	missing := domain.Timer{ID: "nope", Version: 1}
	if err := repo.Update(ctx, &missing); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("Update missing = %v, want NOT_FOUND", err)
	}
}

func TestTimerListFilters(t *testing.T) {
	ctx := context.Background()
	repo := boltRepo.NewTimerRepository(openDB(t))

	var ids []string
	for _, status := range []domain.Status{domain.StatusCreated, domain.StatusRunning, domain.StatusCompleted} {
		timer, _ := domain.NewTimer(string(status), 30, "general")
		created, err := repo.Create(ctx, timer)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		created.Status = status
		if status == domain.StatusCompleted {
			created.RemainingSeconds = 0
		}
		if err := repo.Update(ctx, created); err != nil {
			t.Fatalf("Update: %v", err)
		}
		ids = append(ids, created.ID)
		time.Sleep(2 * time.Millisecond)
	}

	active, err := repo.List(ctx, repository.TimerFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("default List returned %d timers, want 2", len(active))
	}
	if active[0].ID != ids[0] || active[1].ID != ids[1] {
		t.Errorf("List not in creation order: %s, %s", active[0].ID, active[1].ID)
	}

	all, _ := repo.List(ctx, repository.TimerFilter{IncludeCompleted: true})
	if len(all) != 3 {
		t.Errorf("IncludeCompleted returned %d, want 3", len(all))
	}

	completed, _ := repo.List(ctx, repository.TimerFilter{Status: domain.StatusCompleted})
	if len(completed) != 1 || completed[0].ID != ids[2] {
		t.Errorf("Status filter = %+v", completed)
	}

	page, _ := repo.List(ctx, repository.TimerFilter{IncludeCompleted: true, Limit: 1, Offset: 1})
	if len(page) != 1 || page[0].ID != ids[1] {
		t.Errorf("pagination = %+v", page)
	}
}

func TestTemplateCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := boltRepo.NewTemplateRepository(openDB(t))

	tpl := &domain.Template{Name: "Pomodoro Work", Category: domain.CategoryProductivity, DurationMinutes: 25}
	created, err := repo.CreateIfAbsent(ctx, tpl)
	if err != nil || !created {
		t.Fatalf("first CreateIfAbsent = %v, %v", created, err)
	}
	dup := &domain.Template{Name: "Pomodoro Work", Category: domain.CategoryProductivity, DurationMinutes: 50}
	created, err = repo.CreateIfAbsent(ctx, dup)
	if err != nil || created {
		t.Fatalf("duplicate CreateIfAbsent = %v, %v", created, err)
	}

	list, _ := repo.List(ctx)
	if len(list) != 1 || list[0].DurationMinutes != 25 {
		t.Errorf("List = %+v", list)
	}
	got, err := repo.GetByID(ctx, tpl.ID)
	if err != nil || got.Name != "Pomodoro Work" {
		t.Errorf("GetByID = %+v, %v", got, err)
	}
}
