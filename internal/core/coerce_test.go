package core

import (
	"encoding/json"
	"reflect"
	"testing"
)

func decodeMap(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return m
}

func TestEntryFromMap_Defensive(t *testing.T) {
	m := decodeMap(t, `{
		"domain": "finance",
		"content": 42,
		"tags": ["food", 3, null, "dining"],
		"metrics": [{"name": "Expense", "value": 12.5, "unit": "USD"}, "junk", {"name": 1, "value": true}],
		"sentiment": "ecstatic",
		"timestamp": "2025-02-22T18:00:00Z",
		"suggestions": "none"
	}`)
	e := EntryFromMap(m)

	if e.Domain != Finance || e.Content != "" {
		t.Fatalf("unexpected domain/content: %q %q", e.Domain, e.Content)
	}
	if !reflect.DeepEqual(e.Tags, []string{"food", "dining"}) {
		t.Fatalf("unexpected tags: %v", e.Tags)
	}
	want := []Metric{{Name: "Expense", Value: "12.5", Unit: "USD"}, {}}
	if !reflect.DeepEqual(e.Metrics, want) {
		t.Fatalf("unexpected metrics: %+v", e.Metrics)
	}
	if e.Sentiment != Neutral {
		t.Fatalf("expected neutral sentiment, got %q", e.Sentiment)
	}
	if e.Suggestions != nil {
		t.Fatalf("expected no suggestions, got %v", e.Suggestions)
	}
}

func TestDomainEntryUnmarshalJSON(t *testing.T) {
	var e DomainEntry
	if err := json.Unmarshal([]byte(`{"domain":"health","content":"walk","tags":"x"}`), &e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Content != "walk" || len(e.Tags) != 0 || e.Sentiment != Neutral {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if err := json.Unmarshal([]byte(`[1,2]`), &e); err == nil {
		t.Fatal("expected error for non-object entry")
	}
}

func TestEntryStoreFromMap(t *testing.T) {
	m := decodeMap(t, `{"health": [{"content": "run"}, 7], "finance": "oops", "pets": [{"content": "dog"}]}`)
	store := EntryStoreFromMap(m)

	if len(store) != len(Domains) {
		t.Fatalf("expected %d domains, got %d", len(Domains), len(store))
	}
	if len(store[Health]) != 1 || store[Health][0].Content != "run" {
		t.Fatalf("unexpected health entries: %+v", store[Health])
	}
	if store[Finance] == nil || len(store[Finance]) != 0 {
		t.Fatalf("expected empty finance list, got %+v", store[Finance])
	}
	if _, ok := store["pets"]; ok {
		t.Fatal("unknown domain should be dropped")
	}
}

func TestInsightFromMap(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, in InsightData)
	}{
		{
			name:  "empty payload uses defaults",
			input: `{}`,
			check: func(t *testing.T, in InsightData) {
				if !reflect.DeepEqual(in, DefaultInsight()) {
					t.Fatalf("expected defaults, got %+v", in)
				}
			},
		},
		{
			name:  "scores clamp and round",
			input: `{"overall_score": 120, "domain_scores": {"health": -5, "finance": 64.6, "career": "high"}}`,
			check: func(t *testing.T, in InsightData) {
				if in.OverallScore != 100 {
					t.Fatalf("overall: %d", in.OverallScore)
				}
				if in.DomainScores[Health] != 0 || in.DomainScores[Finance] != 65 || in.DomainScores[Career] != 50 {
					t.Fatalf("scores: %v", in.DomainScores)
				}
				if in.DomainScores.Score(Goals) != 50 {
					t.Fatalf("goals: %d", in.DomainScores.Score(Goals))
				}
			},
		},
		{
			name:  "orb state validated",
			input: `{"orb_state": {"glow_intensity": 3, "color": "", "pulse_speed": "warp"}, "patterns": ["a", 1]}`,
			check: func(t *testing.T, in InsightData) {
				want := OrbState{GlowIntensity: 1, Color: DefaultOrbColor, PulseSpeed: DefaultPulse}
				if in.OrbState != want {
					t.Fatalf("orb: %+v", in.OrbState)
				}
				if !reflect.DeepEqual(in.Patterns, []string{"a"}) {
					t.Fatalf("patterns: %v", in.Patterns)
				}
			},
		},
		{
			name:  "recommendations skip non-objects",
			input: `{"recommendations": [{"domain": "health", "title": "Sleep", "priority": "high"}, "x"]}`,
			check: func(t *testing.T, in InsightData) {
				if len(in.Recommendations) != 1 || in.Recommendations[0].Title != "Sleep" {
					t.Fatalf("recommendations: %+v", in.Recommendations)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, InsightFromMap(decodeMap(t, tt.input)))
		})
	}
}

func TestChatAndChecklistFromSlice(t *testing.T) {
	var arr []any
	if err := json.Unmarshal([]byte(`[
		{"role": "user", "content": "hi", "timestamp": "t1"},
		{"role": "bot", "content": "hello", "action_items": [{"task": "walk"}], "suggested_followups": ["more?"]},
		"junk"
	]`), &arr); err != nil {
		t.Fatal(err)
	}
	chat := ChatFromSlice(arr)
	if len(chat) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(chat))
	}
	if chat[1].Role != RoleAssistant || len(chat[1].ActionItems) != 1 || chat[1].SuggestedFollowups[0] != "more?" {
		t.Fatalf("unexpected assistant message: %+v", chat[1])
	}

	var items []any
	if err := json.Unmarshal([]byte(`[{"label": "a", "done": true}, {"done": true}, {"label": "b", "done": "yes"}]`), &items); err != nil {
		t.Fatal(err)
	}
	got := ChecklistFromSlice(items)
	want := []ChecklistItem{{Label: "a", Done: true}, {Label: "b"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("checklist: %+v", got)
	}
}
