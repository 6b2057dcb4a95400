package aggregate

import "lifeos/internal/core"

type SentimentBreakdown struct {
	Total       int `json:"total" yaml:"total"`
	Positive    int `json:"positive" yaml:"positive"`
	Neutral     int `json:"neutral" yaml:"neutral"`
	Negative    int `json:"negative" yaml:"negative"`
	PositivePct int `json:"positive_pct" yaml:"positive_pct"`
	NeutralPct  int `json:"neutral_pct" yaml:"neutral_pct"`
	NegativePct int `json:"negative_pct" yaml:"negative_pct"`
}

// Sentiments counts the sentiment mix. Anything not positive or negative is
// neutral.
func Sentiments(entries []core.DomainEntry) SentimentBreakdown {
	var b SentimentBreakdown
	b.Total = len(entries)
	for _, e := range entries {
		switch e.Sentiment {
		case core.Positive:
			b.Positive++
		case core.Negative:
			b.Negative++
		}
	}
	b.Neutral = b.Total - b.Positive - b.Negative
	if b.Total == 0 {
		return b
	}
	pct := func(n int) int { return roundHalfUp(float64(n) / float64(b.Total) * 100) }
	b.PositivePct = pct(b.Positive)
	b.NeutralPct = pct(b.Neutral)
	b.NegativePct = pct(b.Negative)
	return b
}

// MoodTimeline returns the sentiments of the k most recent entries, oldest
// of those first.
func MoodTimeline(entries []core.DomainEntry, k int) []core.Sentiment {
	if k <= 0 {
		return []core.Sentiment{}
	}
	if k > len(entries) {
		k = len(entries)
	}
	out := make([]core.Sentiment, 0, k)
	for i := k - 1; i >= 0; i-- {
		s := entries[i].Sentiment
		if !s.Valid() {
			s = core.Neutral
		}
		out = append(out, s)
	}
	return out
}
