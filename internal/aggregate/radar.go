package aggregate

import (
	"strings"

	"lifeos/internal/core"
)

const (
	wellnessIncrement = 0.3
	wellnessFloor     = 0.15
)

type RadarAxis struct {
	Axis  string  `json:"axis" yaml:"axis"`
	Value float64 `json:"value" yaml:"value"`
}

// DomainRadar normalizes domain scores to [0,1] in domain order.
// Missing scores count as the default score.
func DomainRadar(scores core.DomainScores) []RadarAxis {
	axes := make([]RadarAxis, 0, len(core.Domains))
	for _, d := range core.Domains {
		axes = append(axes, RadarAxis{
			Axis:  d.Label(),
			Value: clamp(float64(scores.Score(d))/100, 0, 1),
		})
	}
	return axes
}

var wellnessAxes = []struct {
	name     string
	keywords []string
}{
	{"Active", []string{"exercise", "running", "cardio", "workout", "gym", "walk", "cycling", "strength"}},
	{"Rest", []string{"sleep", "rest", "nap", "recovery"}},
	{"Nutrition", []string{"nutrition", "diet", "meal", "food", "hydration", "water"}},
	{"Mind", []string{"meditation", "mindfulness", "stress", "mental", "mood"}},
	{"Vitals", []string{"heart", "vitals", "blood", "weight", "checkup"}},
}

// WellnessRadar derives five health axes from entry tags. Each entry with a
// matching tag adds a fixed increment to the axis, capped at 1. Axes with no
// signal sit at a small floor so the shape keeps a visible area.
func WellnessRadar(entries []core.DomainEntry) []RadarAxis {
	axes := make([]RadarAxis, 0, len(wellnessAxes))
	for _, ax := range wellnessAxes {
		v := 0.0
		for _, e := range entries {
			if tagsMatch(e.Tags, ax.keywords) {
				v += wellnessIncrement
			}
		}
		if v == 0 {
			v = wellnessFloor
		}
		axes = append(axes, RadarAxis{Axis: ax.name, Value: clamp(v, 0, 1)})
	}
	return axes
}

func tagsMatch(tags, keywords []string) bool {
	for _, t := range tags {
		t = strings.ToLower(t)
		for _, k := range keywords {
			if strings.Contains(t, k) {
				return true
			}
		}
	}
	return false
}
