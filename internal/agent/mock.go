package agent

import (
	"context"
	"strings"
	"sync"
)

// MockCaller answers locally with shape-correct payloads. It is used for
// offline runs and tests.
type MockCaller struct {
	ids IDs

	mu    sync.Mutex
	calls []MockCall
}

type MockCall struct {
	Message string
	AgentID string
}

func NewMockCaller(ids IDs) *MockCaller {
	return &MockCaller{ids: ids}
}

func (m *MockCaller) Call(ctx context.Context, message, agentID string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Message: message, AgentID: agentID})
	m.mu.Unlock()

	switch agentID {
	case m.ids.Insight:
		return Result{Success: true, Response: mockInsight()}, nil
	case m.ids.Tracker:
		if strings.Contains(message, "[Query]") {
			return Result{Success: true, Response: map[string]any{
				"answer": "Keep logging consistently; a week of entries gives a clearer picture.",
			}}, nil
		}
		return Result{Success: true, Response: map[string]any{"result": mockEntry(message)}}, nil
	case m.ids.Coach:
		return Result{Success: true, Response: map[string]any{
			"message":             "Pick one small action for today and log it when it is done.",
			"action_items":        []any{map[string]any{"task": "Log one entry tonight", "domain": "habits", "timeframe": "Today"}},
			"suggested_followups": []any{"What should I focus on this week?"},
		}}, nil
	}
	return Result{Success: false}, nil
}

// Calls returns a copy of the calls received so far.
func (m *MockCaller) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

func mockInsight() map[string]any {
	scores := map[string]any{}
	for _, d := range []string{"health", "finance", "career", "relationships", "habits", "goals"} {
		scores[d] = float64(60)
	}
	return map[string]any{
		"overall_score": float64(60),
		"domain_scores": scores,
		"patterns":      []any{"Entries are spread evenly across domains"},
		"recommendations": []any{map[string]any{
			"domain": "habits", "title": "Keep the streak", "description": "Log something every day this week.", "priority": "medium",
		}},
		"orb_state": map[string]any{"glow_intensity": 0.6, "color": "#BF9B30", "pulse_speed": "medium"},
		"summary":   "Offline insight generated locally.",
	}
}

func mockEntry(message string) map[string]any {
	content := message
	if i := strings.Index(message, "] "); strings.HasPrefix(message, "[Domain: ") && i >= 0 {
		content = message[i+2:]
	}
	return map[string]any{
		"entry": map[string]any{
			"content":   content,
			"tags":      []any{},
			"metrics":   []any{},
			"sentiment": "neutral",
		},
		"summary": "Entry recorded.",
	}
}
