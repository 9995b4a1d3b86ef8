package transport

type CreateTimerRequest struct {
	Name            string `json:"name"`
	DurationSeconds int    `json:"duration_seconds"`
	Category        string `json:"category"`
	TemplateID      string `json:"template_id,omitempty"`
}

// PatchTimerRequest leaves absent fields untouched.
type PatchTimerRequest struct {
	Name             *string `json:"name,omitempty"`
	Status           *string `json:"status,omitempty"`
	RemainingSeconds *int    `json:"remaining_seconds,omitempty"`
}

type CreateTemplateRequest struct {
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	Category        string `json:"category"`
	Description     string `json:"description"`
}
