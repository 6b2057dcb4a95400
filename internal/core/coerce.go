package core

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
)

// The helpers below read untyped JSON (as produced by encoding/json into
// map[string]any) and substitute a default whenever a field has the wrong
// type. They never fail.

var ErrNotObject = errors.New("value is not a JSON object")

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asStringOr(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

// asStrings keeps only the string elements of an array.
func asStrings(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		if s, ok := el.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// asScore reads a 0-100 score, rounding and clamping numbers.
func asScore(v any) int {
	f, ok := asFloat(v)
	if !ok {
		return DefaultScore
	}
	return clampInt(int(math.Round(f)), 0, 100)
}

func asMetricValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64, json.Number:
		if f, ok := asFloat(x); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return ""
}

func asMetrics(v any) []Metric {
	arr, ok := v.([]any)
	if !ok {
		return []Metric{}
	}
	out := make([]Metric, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Metric{
			Name:  asString(m["name"]),
			Value: asMetricValue(m["value"]),
			Unit:  asString(m["unit"]),
		})
	}
	return out
}

// AsSentiment maps anything that is not a known sentiment to Neutral.
func AsSentiment(v any) Sentiment {
	s := Sentiment(asString(v))
	if s.Valid() {
		return s
	}
	return Neutral
}

// EntryFromMap builds an entry from untyped JSON.
func EntryFromMap(m map[string]any) DomainEntry {
	return DomainEntry{
		Domain:      Domain(asString(m["domain"])),
		Content:     asString(m["content"]),
		Tags:        asStrings(m["tags"]),
		Metrics:     asMetrics(m["metrics"]),
		Sentiment:   AsSentiment(m["sentiment"]),
		Timestamp:   asString(m["timestamp"]),
		Summary:     asString(m["summary"]),
		Suggestions: nilIfEmpty(asStrings(m["suggestions"])),
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

// UnmarshalJSON decodes an entry leniently; only a non-object is an error.
func (e *DomainEntry) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	if m == nil {
		return ErrNotObject
	}
	*e = EntryFromMap(m)
	return nil
}

// EntryStoreFromMap keeps the six known domains and skips non-object
// entries. Domains missing from m get an empty list.
func EntryStoreFromMap(m map[string]any) EntryStore {
	store := NewEntryStore()
	for _, d := range Domains {
		arr, ok := m[string(d)].([]any)
		if !ok {
			continue
		}
		list := make([]DomainEntry, 0, len(arr))
		for _, el := range arr {
			if obj, ok := el.(map[string]any); ok {
				list = append(list, EntryFromMap(obj))
			}
		}
		store[d] = list
	}
	return store
}

func scoresFromMap(v any) DomainScores {
	m, _ := v.(map[string]any)
	scores := make(DomainScores, len(Domains))
	for _, d := range Domains {
		scores[d] = asScore(m[string(d)])
	}
	return scores
}

func recommendationsFrom(v any) []Recommendation {
	arr, ok := v.([]any)
	if !ok {
		return []Recommendation{}
	}
	out := make([]Recommendation, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Recommendation{
			Domain:      asString(m["domain"]),
			Title:       asString(m["title"]),
			Description: asString(m["description"]),
			Priority:    asString(m["priority"]),
		})
	}
	return out
}

func orbFrom(v any) OrbState {
	m, _ := v.(map[string]any)
	glow := DefaultGlow
	if f, ok := asFloat(m["glow_intensity"]); ok {
		glow = math.Max(0, math.Min(1, f))
	}
	pulse := asString(m["pulse_speed"])
	switch pulse {
	case "slow", "medium", "fast":
	default:
		pulse = DefaultPulse
	}
	return OrbState{
		GlowIntensity: glow,
		Color:         asStringOr(m["color"], DefaultOrbColor),
		PulseSpeed:    pulse,
	}
}

// InsightFromMap coerces an insight payload, applying the documented
// defaults field by field.
func InsightFromMap(m map[string]any) InsightData {
	return InsightData{
		OverallScore:    asScore(m["overall_score"]),
		DomainScores:    scoresFromMap(m["domain_scores"]),
		Patterns:        asStrings(m["patterns"]),
		Recommendations: recommendationsFrom(m["recommendations"]),
		OrbState:        orbFrom(m["orb_state"]),
		Summary:         asString(m["summary"]),
	}
}

// ActionItemsFrom keeps object elements of an action item array.
func ActionItemsFrom(v any) []ActionItem {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]ActionItem, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, ActionItem{
			Task:      asString(m["task"]),
			Domain:    asString(m["domain"]),
			Timeframe: asString(m["timeframe"]),
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// StringsFrom exposes the lenient string-array reader to other packages.
func StringsFrom(v any) []string {
	return asStrings(v)
}

// StringFrom returns v when it is a string, else "".
func StringFrom(v any) string {
	return asString(v)
}

func chatMessageFromMap(m map[string]any) ChatMessage {
	role := asString(m["role"])
	if role != RoleUser {
		role = RoleAssistant
	}
	return ChatMessage{
		Role:               role,
		Content:            asString(m["content"]),
		ActionItems:        ActionItemsFrom(m["action_items"]),
		SuggestedFollowups: nilIfEmpty(asStrings(m["suggested_followups"])),
		Timestamp:          asString(m["timestamp"]),
	}
}

// ChatFromSlice coerces a stored transcript, skipping non-object elements.
func ChatFromSlice(arr []any) []ChatMessage {
	out := make([]ChatMessage, 0, len(arr))
	for _, el := range arr {
		if m, ok := el.(map[string]any); ok {
			out = append(out, chatMessageFromMap(m))
		}
	}
	return out
}

// ChecklistFromSlice coerces a stored checklist, skipping unlabeled items.
func ChecklistFromSlice(arr []any) []ChecklistItem {
	out := make([]ChecklistItem, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		label := asString(m["label"])
		if label == "" {
			continue
		}
		done, _ := m["done"].(bool)
		out = append(out, ChecklistItem{Label: label, Done: done})
	}
	return out
}
