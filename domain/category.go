package domain

import "strings"

// Category groups timers for statistics. Stored values outside the closed set
// are kept verbatim so older records still load.
type Category string

const (
	CategoryProductivity Category = "productivity"
	CategoryBreak        Category = "break"
	CategoryTasks        Category = "tasks"
	CategoryGeneral      Category = "general"
)

// Categories lists the closed set in display order.
var Categories = []Category{CategoryProductivity, CategoryBreak, CategoryTasks, CategoryGeneral}

func (c Category) IsKnown() bool {
	switch c {
	case CategoryProductivity, CategoryBreak, CategoryTasks, CategoryGeneral:
		return true
	}
	return false
}

// NormalizeCategory maps free-form input onto the closed set, falling back to general.
func NormalizeCategory(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if c.IsKnown() {
		return c
	}
	return CategoryGeneral
}
