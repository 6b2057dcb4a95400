package aggregate

import (
	"testing"

	"lifeos/internal/core"
)

func TestStreak(t *testing.T) {
	tests := []struct {
		name  string
		times []string
		want  StreakSummary
	}{
		{
			name: "no entries",
			want: StreakSummary{},
		},
		{
			name:  "active today",
			times: []string{"2025-02-24T06:00:00Z", "2025-02-24T20:00:00Z", "2025-02-23T08:00:00Z", "2025-02-22T08:00:00Z"},
			want:  StreakSummary{Current: 3, Longest: 3, ActiveToday: true},
		},
		{
			name:  "streak ending yesterday still counts",
			times: []string{"2025-02-23T08:00:00Z", "2025-02-22T08:00:00Z"},
			want:  StreakSummary{Current: 2, Longest: 2},
		},
		{
			name:  "broken streak",
			times: []string{"2025-02-21T08:00:00Z", "2025-02-10T08:00:00Z", "2025-02-11T08:00:00Z", "2025-02-12T08:00:00Z", "2025-02-13T08:00:00Z"},
			want:  StreakSummary{Current: 0, Longest: 4},
		},
		{
			name:  "unparsable timestamps ignored",
			times: []string{"soon", "2025-02-24T08:00:00Z"},
			want:  StreakSummary{Current: 1, Longest: 1, ActiveToday: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entries []core.DomainEntry
			for _, ts := range tt.times {
				entries = append(entries, entry(ts, core.Neutral))
			}
			if got := Streak(entries, testNow); got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
