package aggregate

import (
	"time"

	"lifeos/internal/core"
)

const (
	TrendImproving      = "Improving"
	TrendStable         = "Stable"
	TrendNeedsAttention = "Needs attention"
)

// ScoreTrend labels a 0-100 score.
func ScoreTrend(score int) string {
	switch {
	case score >= 60:
		return TrendImproving
	case score >= 40:
		return TrendStable
	default:
		return TrendNeedsAttention
	}
}

// LastEntryLabel describes when the newest entry was logged, e.g. "Feb 24".
func LastEntryLabel(entries []core.DomainEntry, loc *time.Location) string {
	if len(entries) == 0 {
		return "No entries yet"
	}
	ts := entries[0].Timestamp
	if ts == "" {
		return "No date"
	}
	t, ok := core.ParseTimestamp(ts)
	if !ok {
		return "Unknown"
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("Jan 2")
}

type DomainCard struct {
	Domain     core.Domain `json:"domain" yaml:"domain"`
	Label      string      `json:"label" yaml:"label"`
	Score      int         `json:"score" yaml:"score"`
	Trend      string      `json:"trend" yaml:"trend"`
	EntryCount int         `json:"entry_count" yaml:"entry_count"`
	LastEntry  string      `json:"last_entry" yaml:"last_entry"`
}

// DomainView is everything the detail screen of one domain shows. The
// optional sections are set only for the domain they belong to.
type DomainView struct {
	DomainCard `yaml:",inline"`

	Entries   []core.DomainEntry `json:"entries" yaml:"entries"`
	Sentiment SentimentBreakdown `json:"sentiment" yaml:"sentiment"`
	Mood      []core.Sentiment   `json:"mood" yaml:"mood"`
	TopTags   []TagCount         `json:"top_tags" yaml:"top_tags"`
	Activity  []DayBucket        `json:"activity" yaml:"activity"`
	Budget    *BudgetUsage       `json:"budget,omitempty" yaml:"budget,omitempty"`
	NetWorth  []TrendPoint       `json:"net_worth,omitempty" yaml:"net_worth,omitempty"`
	Wellness  []RadarAxis        `json:"wellness,omitempty" yaml:"wellness,omitempty"`
	Goals     *GoalSummary       `json:"goals,omitempty" yaml:"goals,omitempty"`
	Streak    *StreakSummary     `json:"streak,omitempty" yaml:"streak,omitempty"`
}

type Dashboard struct {
	OverallScore    int                   `json:"overall_score" yaml:"overall_score"`
	HasInsight      bool                  `json:"has_insight" yaml:"has_insight"`
	Summary         string                `json:"summary" yaml:"summary"`
	Cards           []DomainCard          `json:"cards" yaml:"cards"`
	Radar           []RadarAxis           `json:"radar" yaml:"radar"`
	Activity        []DayBucket           `json:"activity" yaml:"activity"`
	TopTags         []TagCount            `json:"top_tags" yaml:"top_tags"`
	Patterns        []string              `json:"patterns" yaml:"patterns"`
	Recommendations []core.Recommendation `json:"recommendations" yaml:"recommendations"`
	TotalEntries    int                   `json:"total_entries" yaml:"total_entries"`
}

func domainScore(insight *core.InsightData, d core.Domain) int {
	if insight == nil {
		return core.DefaultScore
	}
	return insight.DomainScores.Score(d)
}

func buildCard(d core.Domain, entries []core.DomainEntry, insight *core.InsightData, loc *time.Location) DomainCard {
	score := domainScore(insight, d)
	return DomainCard{
		Domain:     d,
		Label:      d.Label(),
		Score:      score,
		Trend:      ScoreTrend(score),
		EntryCount: len(entries),
		LastEntry:  LastEntryLabel(entries, loc),
	}
}

// BuildDomainView aggregates one domain's entries. insight may be nil.
func BuildDomainView(d core.Domain, entries []core.DomainEntry, insight *core.InsightData, now time.Time, loc *time.Location) DomainView {
	if entries == nil {
		entries = []core.DomainEntry{}
	}
	v := DomainView{
		DomainCard: buildCard(d, entries, insight, loc),
		Entries:    entries,
		Sentiment:  Sentiments(entries),
		Mood:       MoodTimeline(entries, 7),
		TopTags:    TopTags(entries, 5),
		Activity:   Activity(entries, 14, now, loc),
	}
	switch d {
	case core.Finance:
		b := Budget(entries)
		v.Budget = &b
		v.NetWorth = NetWorthTrend(entries)
	case core.Health:
		v.Wellness = WellnessRadar(entries)
	case core.Goals:
		g := Goals(entries)
		v.Goals = &g
	case core.Habits:
		s := Streak(entries, now)
		v.Streak = &s
	}
	return v
}

// BuildDashboard aggregates the whole store. Without an insight the overall
// score is 0 and domain scores fall back to the default.
func BuildDashboard(store core.EntryStore, insight *core.InsightData, now time.Time, loc *time.Location) Dashboard {
	all := store.All()
	dash := Dashboard{
		Cards:           make([]DomainCard, 0, len(core.Domains)),
		Activity:        Activity(all, 7, now, loc),
		TopTags:         TopTags(all, 6),
		Patterns:        []string{},
		Recommendations: []core.Recommendation{},
		TotalEntries:    len(all),
	}
	for _, d := range core.Domains {
		dash.Cards = append(dash.Cards, buildCard(d, store.Entries(d), insight, loc))
	}
	if insight == nil {
		dash.Radar = DomainRadar(nil)
		return dash
	}
	dash.HasInsight = true
	dash.OverallScore = insight.OverallScore
	dash.Summary = insight.Summary
	dash.Radar = DomainRadar(insight.DomainScores)
	if insight.Patterns != nil {
		dash.Patterns = insight.Patterns
	}
	recs := insight.Recommendations
	if len(recs) > 3 {
		recs = recs[:3]
	}
	dash.Recommendations = append(dash.Recommendations, recs...)
	return dash
}
