package core

const (
	DefaultScore    = 50
	DefaultGlow     = 0.5
	DefaultOrbColor = "#BF9B30"
	DefaultPulse    = "medium"
	RoleUser        = "user"
	RoleAssistant   = "assistant"
)

type (
	// DomainScores holds one 0-100 score per domain.
	DomainScores map[Domain]int

	Recommendation struct {
		Domain      string `json:"domain" yaml:"domain"`
		Title       string `json:"title" yaml:"title"`
		Description string `json:"description" yaml:"description"`
		Priority    string `json:"priority" yaml:"priority"`
	}

	OrbState struct {
		GlowIntensity float64 `json:"glow_intensity" yaml:"glow_intensity"`
		Color         string  `json:"color" yaml:"color"`
		PulseSpeed    string  `json:"pulse_speed" yaml:"pulse_speed"`
	}

	// InsightData is the cross-domain analysis. It is always replaced wholesale.
	InsightData struct {
		OverallScore    int              `json:"overall_score" yaml:"overall_score"`
		DomainScores    DomainScores     `json:"domain_scores" yaml:"domain_scores"`
		Patterns        []string         `json:"patterns" yaml:"patterns"`
		Recommendations []Recommendation `json:"recommendations" yaml:"recommendations"`
		OrbState        OrbState         `json:"orb_state" yaml:"orb_state"`
		Summary         string           `json:"summary" yaml:"summary"`
	}

	ActionItem struct {
		Task      string `json:"task" yaml:"task"`
		Domain    string `json:"domain" yaml:"domain"`
		Timeframe string `json:"timeframe" yaml:"timeframe"`
	}

	ChatMessage struct {
		Role               string       `json:"role" yaml:"role"`
		Content            string       `json:"content" yaml:"content"`
		ActionItems        []ActionItem `json:"action_items,omitempty" yaml:"action_items,omitempty"`
		SuggestedFollowups []string     `json:"suggested_followups,omitempty" yaml:"suggested_followups,omitempty"`
		Timestamp          string       `json:"timestamp" yaml:"timestamp"`
	}

	ChecklistItem struct {
		Label string `json:"label" yaml:"label"`
		Done  bool   `json:"done" yaml:"done"`
	}
)

// Score returns the score for d, or DefaultScore when absent.
func (s DomainScores) Score(d Domain) int {
	if v, ok := s[d]; ok {
		return v
	}
	return DefaultScore
}

// DefaultInsight is what an empty agent response coerces to.
func DefaultInsight() InsightData {
	scores := make(DomainScores, len(Domains))
	for _, d := range Domains {
		scores[d] = DefaultScore
	}
	return InsightData{
		OverallScore:    DefaultScore,
		DomainScores:    scores,
		Patterns:        []string{},
		Recommendations: []Recommendation{},
		OrbState: OrbState{
			GlowIntensity: DefaultGlow,
			Color:         DefaultOrbColor,
			PulseSpeed:    DefaultPulse,
		},
	}
}

func DefaultChecklist() []ChecklistItem {
	labels := []string{
		"Log one health entry",
		"Review today's spending",
		"Check in with someone",
		"Complete a habit",
		"Review goal progress",
	}
	items := make([]ChecklistItem, len(labels))
	for i, l := range labels {
		items[i] = ChecklistItem{Label: l}
	}
	return items
}
