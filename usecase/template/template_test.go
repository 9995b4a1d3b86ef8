package template_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/internal/catalog"
	"github.com/fastygo/powertimer/internal/infrastructure/boltdb"
	boltRepo "github.com/fastygo/powertimer/repository/bolt"
	templateUC "github.com/fastygo/powertimer/usecase/template"
	timerUC "github.com/fastygo/powertimer/usecase/timer"
)

func newUseCase(t *testing.T) *templateUC.UseCase {
	t.Helper()
	db, err := boltdb.Open(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	entries, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default: %v", err)
	}
	timers := timerUC.New(boltRepo.NewTimerRepository(db), nil, nil)
	return templateUC.New(boltRepo.NewTemplateRepository(db), timers, entries, nil)
}

func TestSeedIsIdempotent(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	created, err := uc.Seed(ctx)
	if err != nil || created != 5 {
		t.Fatalf("first Seed = %d, %v; want 5", created, err)
	}
	created, err = uc.Seed(ctx)
	if err != nil || created != 0 {
		t.Fatalf("second Seed = %d, %v; want 0", created, err)
	}
	list, _ := uc.ListTemplates(ctx)
	if len(list) != 5 {
		t.Errorf("templates = %d, want 5", len(list))
	}
}

func TestInstantiate(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()
	if _, err := uc.Seed(ctx); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	list, _ := uc.ListTemplates(ctx)

	var pomodoro domain.Template
	for _, tpl := range list {
		if tpl.Name == "Pomodoro Work" {
			pomodoro = tpl
		}
	}
	if pomodoro.ID == "" {
		t.Fatal("Pomodoro Work not seeded")
	}

	timer, err := uc.Instantiate(ctx, pomodoro.ID, "")
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if timer.Name != "Pomodoro Work" || timer.DurationSeconds != 1500 || timer.RemainingSeconds != 1500 ||
		timer.Status != domain.StatusCreated || timer.Category != domain.CategoryProductivity || timer.TemplateID != pomodoro.ID {
		t.Errorf("instantiated = %+v", timer)
	}

	named, err := uc.Instantiate(ctx, pomodoro.ID, "Essay")
	if err != nil || named.Name != "Essay" {
		t.Errorf("named instantiate = %+v, %v", named, err)
	}
	if _, err := uc.Instantiate(ctx, "missing", ""); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("missing template: err = %v", err)
	}
}

func TestCreateTemplateValidates(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()
	if _, err := uc.CreateTemplate(ctx, &domain.Template{Name: "", DurationMinutes: 5}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("blank name: err = %v", err)
	}
	tpl, err := uc.CreateTemplate(ctx, &domain.Template{Name: "Stretch", DurationMinutes: 3, Category: "wellness"})
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	if tpl.ID == "" || tpl.Category != domain.CategoryGeneral {
		t.Errorf("created = %+v", tpl)
	}
}
