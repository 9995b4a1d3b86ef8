package stats

import (
	"context"
	"time"

	"github.com/fastygo/powertimer/domain"
	"github.com/fastygo/powertimer/repository"
)

type UseCase struct {
	timers   repository.TimerRepository
	location *time.Location
	now      func() time.Time
}

// New builds the stats use case; "today" is evaluated in loc (server local time when nil).
func New(timers repository.TimerRepository, loc *time.Location) *UseCase {
	if loc == nil {
		loc = time.Local
	}
	return &UseCase{timers: timers, location: loc, now: time.Now}
}

// Snapshot recomputes statistics from every completed timer.
func (uc *UseCase) Snapshot(ctx context.Context) (domain.StatsSnapshot, error) {
	completed, err := uc.timers.List(ctx, repository.TimerFilter{Status: domain.StatusCompleted})
	if err != nil {
		return domain.StatsSnapshot{}, err
	}
	return Aggregate(completed, uc.now().In(uc.location)), nil
}

// Aggregate summarizes the completed timers in timers. Sessions count their
// nominal duration. "Today" is the calendar day of now in now's location.
func Aggregate(timers []domain.Timer, now time.Time) domain.StatsSnapshot {
	snapshot := domain.StatsSnapshot{Categories: make(map[domain.Category]int)}
	year, month, day := now.Date()
	loc := now.Location()

	for _, t := range timers {
		if t.Status != domain.StatusCompleted {
			continue
		}
		snapshot.TotalSessions++
		snapshot.TotalTimeSeconds += t.DurationSeconds
		snapshot.Categories[t.Category] += t.DurationSeconds

		if t.CompletedAt == nil {
			continue
		}
		y, m, d := t.CompletedAt.In(loc).Date()
		if y == year && m == month && d == day {
			snapshot.TodaySessions++
			snapshot.TodayTimeSeconds += t.DurationSeconds
		}
	}

	if snapshot.TotalSessions > 0 {
		snapshot.AverageSessionDuration = float64(snapshot.TotalTimeSeconds) / float64(snapshot.TotalSessions)
	}
	return snapshot
}
