package aggregate

import (
	"time"

	"lifeos/internal/core"
)

const dayLayout = "2006-01-02"

// DayBucket counts the entries logged on one calendar day.
type DayBucket struct {
	Date  string `json:"date" yaml:"date"`
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// Activity returns days buckets ending today, oldest first. Buckets are keyed
// by UTC date; labels use the weekday in loc. Entries with unparsable
// timestamps are skipped.
func Activity(entries []core.DomainEntry, days int, now time.Time, loc *time.Location) []DayBucket {
	if days <= 0 {
		return []DayBucket{}
	}
	if loc == nil {
		loc = time.UTC
	}

	buckets := make([]DayBucket, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := now.UTC().AddDate(0, 0, -(days - 1 - i))
		key := day.Format(dayLayout)
		buckets[i] = DayBucket{Date: key, Label: day.In(loc).Format("Mon")}
		index[key] = i
	}

	for _, e := range entries {
		t, ok := e.Time()
		if !ok {
			continue
		}
		if i, ok := index[t.UTC().Format(dayLayout)]; ok {
			buckets[i].Count++
		}
	}
	return buckets
}
