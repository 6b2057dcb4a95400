package aggregate

import (
	"strings"

	"lifeos/internal/core"
)

type GoalProgress struct {
	Content     string  `json:"content" yaml:"content"`
	Progress    int     `json:"progress" yaml:"progress"`
	Current     float64 `json:"current,omitempty" yaml:"current,omitempty"`
	Target      float64 `json:"target,omitempty" yaml:"target,omitempty"`
	Unit        string  `json:"unit,omitempty" yaml:"unit,omitempty"`
	HasAbsolute bool    `json:"has_absolute" yaml:"has_absolute"`
	Timestamp   string  `json:"timestamp" yaml:"timestamp"`
}

type GoalSummary struct {
	Goals   []GoalProgress `json:"goals" yaml:"goals"`
	Average int            `json:"average" yaml:"average"`
}

// Goals treats every entry as a goal record. Progress comes from the first
// metric named "progress"; current and target are read independently.
func Goals(entries []core.DomainEntry) GoalSummary {
	summary := GoalSummary{Goals: make([]GoalProgress, 0, len(entries))}
	if len(entries) == 0 {
		return summary
	}
	sum := 0
	for _, e := range entries {
		g := goalFrom(e)
		sum += g.Progress
		summary.Goals = append(summary.Goals, g)
	}
	summary.Average = roundHalfUp(float64(sum) / float64(len(entries)))
	return summary
}

func goalFrom(e core.DomainEntry) GoalProgress {
	g := GoalProgress{Content: e.Content, Timestamp: e.Timestamp}
	var current, target *core.Metric
	found := false
	for i := range e.Metrics {
		m := &e.Metrics[i]
		name := strings.ToLower(strings.TrimSpace(m.Name))
		switch {
		case name == "progress":
			if !found {
				found = true
				g.Progress = clampInt(roundHalfUp(core.ParseMetricValue(m.Value)), 0, 100)
			}
		case strings.Contains(name, "current"):
			if current == nil {
				current = m
			}
		case strings.Contains(name, "target"):
			if target == nil {
				target = m
			}
		}
	}
	if current != nil && target != nil {
		g.HasAbsolute = true
		g.Current = core.ParseMetricValue(current.Value)
		g.Target = core.ParseMetricValue(target.Value)
		g.Unit = target.Unit
		if g.Unit == "" {
			g.Unit = current.Unit
		}
	}
	return g
}

