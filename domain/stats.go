package domain

// StatsSnapshot summarizes completed sessions. It is derived on demand and never stored.
type StatsSnapshot struct {
	TotalSessions          int              `json:"total_sessions"`
	TotalTimeSeconds       int              `json:"total_time_seconds"`
	TodaySessions          int              `json:"today_sessions"`
	TodayTimeSeconds       int              `json:"today_time_seconds"`
	AverageSessionDuration float64          `json:"average_session_duration"`
	Categories             map[Category]int `json:"categories"`
}
