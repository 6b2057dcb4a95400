// Package agent is the boundary to the external agent-calling API.
//
// A call sends a plain text message to one of three capabilities and gets
// back arbitrary JSON. Everything returned here has already been coerced
// into the typed shapes of package core.
package agent

import (
	"context"
	"errors"
	"fmt"
)

type Capability string

const (
	Insight Capability = "insight"
	Tracker Capability = "tracker"
	Coach   Capability = "coach"
)

// Default agent ids of the hosted capabilities.
const (
	DefaultInsightID = "699f59be790ead763ca87cd2"
	DefaultCoachID   = "699f59be87c8da309e64d88e"
	DefaultTrackerID = "699f59be0a4cf39744b0dfff"
)

// ErrUnparseable is returned when a call succeeded at the transport level but
// the payload has no usable object.
var ErrUnparseable = errors.New("agent response could not be parsed")

// Result is the raw envelope returned by the agent API.
type Result struct {
	Success  bool           `json:"success"`
	Response map[string]any `json:"response"`
	Error    string         `json:"error,omitempty"`
}

// Caller sends one message to one agent.
type Caller interface {
	Call(ctx context.Context, message, agentID string) (Result, error)
}

// IDs maps capabilities to agent ids.
type IDs struct {
	Insight string
	Tracker string
	Coach   string
}

func DefaultIDs() IDs {
	return IDs{Insight: DefaultInsightID, Tracker: DefaultTrackerID, Coach: DefaultCoachID}
}

func (ids IDs) For(c Capability) string {
	switch c {
	case Insight:
		return ids.Insight
	case Tracker:
		return ids.Tracker
	case Coach:
		return ids.Coach
	}
	return ""
}

// TransportError wraps failures that happened before a result envelope was
// available: network errors, non-2xx statuses and undecodable bodies.
type TransportError struct {
	AgentID string
	Status  int
	Err     error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("agent %s: http %d: %v", e.AgentID, e.Status, e.Err)
	}
	return fmt.Sprintf("agent %s: %v", e.AgentID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseResponse extracts the payload object. A non-empty nested "result"
// object wins over the flat response.
func ParseResponse(r Result) (map[string]any, bool) {
	if !r.Success || r.Response == nil {
		return nil, false
	}
	if nested, ok := r.Response["result"].(map[string]any); ok && len(nested) > 0 {
		return nested, true
	}
	return r.Response, true
}

// Ask calls the agent for capability c and returns the parsed payload.
// Transport failures come back as *TransportError; a result that cannot be
// parsed as ErrUnparseable.
func Ask(ctx context.Context, caller Caller, ids IDs, c Capability, message string) (map[string]any, error) {
	agentID := ids.For(c)
	res, err := caller.Call(ctx, message, agentID)
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			return nil, err
		}
		return nil, &TransportError{AgentID: agentID, Err: err}
	}
	data, ok := ParseResponse(res)
	if !ok {
		return nil, fmt.Errorf("%s agent: %w", c, ErrUnparseable)
	}
	return data, nil
}
