package aggregate

import (
	"strings"

	"lifeos/internal/core"
)

// MonthlyBudget is the fixed spending limit budget usage is measured against.
const MonthlyBudget = 2000.0

const (
	BudgetOnTrack  = "On track"
	BudgetWatch    = "Watch spending"
	BudgetOverRisk = "Over budget risk"
)

var (
	spendKeywords    = []string{"expense", "spend", "over budget", "dining"}
	netWorthKeywords = []string{"amount", "bonus", "savings"}
)

type BudgetUsage struct {
	Spent   float64 `json:"spent" yaml:"spent"`
	Limit   float64 `json:"limit" yaml:"limit"`
	Percent int     `json:"percent" yaml:"percent"`
	Status  string  `json:"status" yaml:"status"`
}

type TrendPoint struct {
	Timestamp string  `json:"timestamp" yaml:"timestamp"`
	Total     float64 `json:"total" yaml:"total"`
}

func nameMatches(name string, keywords []string) bool {
	name = strings.ToLower(name)
	for _, k := range keywords {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

func sumMatching(e core.DomainEntry, keywords []string) float64 {
	total := 0.0
	for _, m := range e.Metrics {
		if nameMatches(m.Name, keywords) {
			total += core.ParseMetricValue(m.Value)
		}
	}
	return total
}

// Budget sums spending metrics across entries and rates them against
// MonthlyBudget.
func Budget(entries []core.DomainEntry) BudgetUsage {
	spent := 0.0
	for _, e := range entries {
		spent += sumMatching(e, spendKeywords)
	}
	pct := clampInt(roundHalfUp(spent*100/MonthlyBudget), 0, 100)
	return BudgetUsage{
		Spent:   spent,
		Limit:   MonthlyBudget,
		Percent: pct,
		Status:  BudgetStatus(pct),
	}
}

// BudgetStatus classifies a usage percentage. 50 and 80 start the upper tiers.
// Budget passes the rounded percent, so the tier always agrees with it.
func BudgetStatus(pct int) string {
	switch {
	case pct >= 80:
		return BudgetOverRisk
	case pct >= 50:
		return BudgetWatch
	default:
		return BudgetOnTrack
	}
}

// NetWorthTrend walks entries oldest first and emits the running total of
// savings-like metrics after each one. Entries without a match repeat the
// previous total. The total is not clamped, so negative values can lower it.
func NetWorthTrend(entries []core.DomainEntry) []TrendPoint {
	if len(entries) == 0 {
		return []TrendPoint{{Total: 0}}
	}
	points := make([]TrendPoint, 0, len(entries))
	total := 0.0
	for i := len(entries) - 1; i >= 0; i-- {
		total += sumMatching(entries[i], netWorthKeywords)
		points = append(points, TrendPoint{Timestamp: entries[i].Timestamp, Total: total})
	}
	return points
}
