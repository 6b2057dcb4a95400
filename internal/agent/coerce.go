package agent

import (
	"time"

	"lifeos/internal/core"
)

const (
	noDetailReply = "I received your message but could not generate a detailed response."
	noAnswerReply = "No answer was returned for this question."
)

// InsightFrom coerces an insight payload.
func InsightFrom(data map[string]any) core.InsightData {
	return core.InsightFromMap(data)
}

// EntryFrom builds the logged entry from a tracker payload. The entry is
// filed under d regardless of what the agent returned, the content falls
// back to the user's input, and the timestamp is now.
func EntryFrom(data map[string]any, d core.Domain, input string, now time.Time) core.DomainEntry {
	raw, _ := data["entry"].(map[string]any)
	e := core.EntryFromMap(raw)
	e.Domain = d
	if e.Content == "" {
		e.Content = input
	}
	e.Timestamp = core.FormatTimestamp(now)
	e.Summary = core.StringFrom(data["summary"])
	if s := core.StringsFrom(data["suggestions"]); len(s) > 0 {
		e.Suggestions = s
	} else {
		e.Suggestions = nil
	}
	return e
}

// Answer is the tracker's reply in query mode.
type Answer struct {
	Question    string   `json:"question" yaml:"question"`
	Answer      string   `json:"answer" yaml:"answer"`
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// AnswerFrom reads a query reply from the first non-empty of "answer",
// "message" and "summary".
func AnswerFrom(data map[string]any, question string) Answer {
	a := Answer{Question: question, Answer: noAnswerReply}
	for _, key := range []string{"answer", "message", "summary"} {
		if s := core.StringFrom(data[key]); s != "" {
			a.Answer = s
			break
		}
	}
	if s := core.StringsFrom(data["suggestions"]); len(s) > 0 {
		a.Suggestions = s
	}
	return a
}

// ChatReplyFrom builds the assistant message from a coach payload.
func ChatReplyFrom(data map[string]any, now time.Time) core.ChatMessage {
	msg := core.StringFrom(data["message"])
	if msg == "" {
		msg = noDetailReply
	}
	reply := core.ChatMessage{
		Role:        core.RoleAssistant,
		Content:     msg,
		ActionItems: core.ActionItemsFrom(data["action_items"]),
		Timestamp:   core.FormatTimestamp(now),
	}
	if f := core.StringsFrom(data["suggested_followups"]); len(f) > 0 {
		reply.SuggestedFollowups = f
	}
	return reply
}
