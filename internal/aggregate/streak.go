package aggregate

import (
	"sort"
	"time"

	"lifeos/internal/core"
)

type StreakSummary struct {
	Current     int  `json:"current" yaml:"current"`
	Longest     int  `json:"longest" yaml:"longest"`
	ActiveToday bool `json:"active_today" yaml:"active_today"`
}

// Streak measures runs of consecutive UTC days with at least one entry.
// The current streak may end yesterday when nothing is logged today yet.
func Streak(entries []core.DomainEntry, now time.Time) StreakSummary {
	days := map[time.Time]bool{}
	for _, e := range entries {
		if t, ok := e.Time(); ok {
			days[truncateDay(t)] = true
		}
	}
	if len(days) == 0 {
		return StreakSummary{}
	}

	sorted := make([]time.Time, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var s StreakSummary
	run := 0
	for i, d := range sorted {
		if i > 0 && sorted[i-1].AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		if run > s.Longest {
			s.Longest = run
		}
	}

	today := truncateDay(now)
	s.ActiveToday = days[today]
	cursor := today
	if !s.ActiveToday {
		cursor = today.AddDate(0, 0, -1)
	}
	for days[cursor] {
		s.Current++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return s
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
