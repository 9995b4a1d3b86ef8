package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fastygo/powertimer/domain"
)

//go:embed default_templates.yaml
var defaultCatalog []byte

type catalogFile struct {
	Templates []domain.Template `yaml:"templates"`
}

// Default returns the built-in template catalog.
func Default() ([]domain.Template, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path. An empty path or a missing file yields the
// built-in catalog.
func Load(path string) ([]domain.Template, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default()
		}
		return nil, fmt.Errorf("read template catalog: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML catalog.
func Parse(raw []byte) ([]domain.Template, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}
	seen := make(map[string]bool, len(file.Templates))
	for i := range file.Templates {
		tpl := &file.Templates[i]
		if err := tpl.Validate(); err != nil {
			return nil, fmt.Errorf("template %d: %w", i, err)
		}
		if seen[tpl.Name] {
			return nil, fmt.Errorf("template %q listed twice", tpl.Name)
		}
		seen[tpl.Name] = true
	}
	return file.Templates, nil
}
