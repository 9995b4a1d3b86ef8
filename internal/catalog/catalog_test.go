package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fastygo/powertimer/domain"
)

func TestDefaultCatalog(t *testing.T) {
	templates, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(templates) != 5 {
		t.Fatalf("got %d templates, want 5", len(templates))
	}
	first := templates[0]
	if first.Name != "Pomodoro Work" || first.DurationMinutes != 25 || first.Category != domain.CategoryProductivity {
		t.Errorf("first template = %+v", first)
	}
}

func TestParseNormalizesCategory(t *testing.T) {
	templates, err := Parse([]byte("templates:\n  - name: Stretch\n    duration_minutes: 3\n    category: Wellness\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if templates[0].Category != domain.CategoryGeneral {
		t.Errorf("category = %q, want general", templates[0].Category)
	}
}

func TestParseRejectsBadEntries(t *testing.T) {
	cases := map[string]string{
		"zero duration": "templates:\n  - name: Nope\n    duration_minutes: 0\n",
		"missing name":  "templates:\n  - duration_minutes: 5\n",
		"duplicate":     "templates:\n  - name: A\n    duration_minutes: 1\n  - name: A\n    duration_minutes: 2\n",
		"not yaml":      "templates: [",
	}
	for name, raw := range cases {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadFallsBackWhenMissing(t *testing.T) {
	templates, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil || len(templates) != 5 {
		t.Fatalf("Load(missing) = %d templates, %v", len(templates), err)
	}

	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("templates:\n  - name: Tea\n    duration_minutes: 4\n    category: break\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	templates, err = Load(path)
	if err != nil || len(templates) != 1 || templates[0].Name != "Tea" {
		t.Fatalf("Load(custom) = %+v, %v", templates, err)
	}
}
