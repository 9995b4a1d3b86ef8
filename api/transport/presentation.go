package transport

import (
	"github.com/fastygo/powertimer/domain"
)

// Display is how a category is drawn by clients.
type Display struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

var displays = map[domain.Category]Display{
	domain.CategoryProductivity: {Label: "Productivity", Icon: "brain", Color: "from-blue-500 to-purple-600"},
	domain.CategoryBreak:        {Label: "Break", Icon: "coffee", Color: "from-green-500 to-emerald-600"},
	domain.CategoryTasks:        {Label: "Tasks", Icon: "zap", Color: "from-yellow-500 to-orange-600"},
}

var fallbackDisplay = Display{Label: "General", Icon: "clock", Color: "from-gray-500 to-slate-600"}

// DisplayFor maps any category, including values written by older clients, to a presentation.
func DisplayFor(category domain.Category) Display {
	if d, ok := displays[category]; ok {
		return d
	}
	return fallbackDisplay
}

// TimerView is a timer as served over HTTP.
type TimerView struct {
	domain.Timer
	Display Display `json:"display"`
}

type TemplateView struct {
	domain.Template
	Display Display `json:"display"`
}

func NewTimerView(t domain.Timer) TimerView {
	return TimerView{Timer: t, Display: DisplayFor(t.Category)}
}

func NewTimerViews(timers []domain.Timer) []TimerView {
	views := make([]TimerView, 0, len(timers))
	for _, t := range timers {
		views = append(views, NewTimerView(t))
	}
	return views
}

func NewTemplateViews(templates []domain.Template) []TemplateView {
	views := make([]TemplateView, 0, len(templates))
	for _, t := range templates {
		views = append(views, TemplateView{Template: t, Display: DisplayFor(t.Category)})
	}
	return views
}
