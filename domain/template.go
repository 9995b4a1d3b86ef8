package domain

import (
	"strings"
	"time"
)

// Template is a read-only catalog entry used to stamp out timers.
type Template struct {
	ID              string    `json:"id" yaml:"-"`
	Name            string    `json:"name" yaml:"name"`
	Category        Category  `json:"category" yaml:"category"`
	DurationMinutes int       `json:"duration_minutes" yaml:"duration_minutes"`
	Description     string    `json:"description" yaml:"description"`
	CreatedAt       time.Time `json:"created_at" yaml:"-"`
}

// Validate checks the fields required to instantiate timers and normalizes the category.
func (t *Template) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return NewError(ErrCodeInvalid, "template name is required")
	}
	if t.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	t.Category = NormalizeCategory(string(t.Category))
	return nil
}

// Instantiate copies the template into a new created timer.
func (t *Template) Instantiate(name string) (*Timer, error) {
	if strings.TrimSpace(name) == "" {
		name = t.Name
	}
	timer, err := NewTimer(name, t.DurationMinutes*60, string(t.Category))
	if err != nil {
		return nil, err
	}
	timer.TemplateID = t.ID
	return timer, nil
}
