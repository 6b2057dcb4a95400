package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 90 * time.Second

// HTTPCaller posts messages to the agent API as JSON.
type HTTPCaller struct {
	http     *http.Client
	endpoint string
	apiKey   string
}

// NewHTTPCaller builds a caller for endpoint. A nil client gets a default
// one with timeout; a zero timeout means the default.
func NewHTTPCaller(httpClient *http.Client, endpoint, apiKey string, timeout time.Duration) *HTTPCaller {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPCaller{
		http:     httpClient,
		endpoint: strings.TrimSpace(endpoint),
		apiKey:   strings.TrimSpace(apiKey),
	}
}

type callRequest struct {
	Message string `json:"message"`
	AgentID string `json:"agent_id"`
}

func (c *HTTPCaller) Call(ctx context.Context, message, agentID string) (Result, error) {
	if c == nil || c.http == nil {
		return Result{}, fmt.Errorf("agent client is not initialized")
	}
	if c.endpoint == "" {
		return Result{}, &TransportError{AgentID: agentID, Err: fmt.Errorf("agent endpoint is required")}
	}

	body, err := json.Marshal(callRequest{Message: message, AgentID: agentID})
	if err != nil {
		return Result{}, fmt.Errorf("marshal agent payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, &TransportError{AgentID: agentID, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, &TransportError{AgentID: agentID, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Result{}, &TransportError{AgentID: agentID, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &TransportError{AgentID: agentID, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(raw)))}
	}

	// The envelope is decoded loosely: a response that is not an object
	// leaves Response nil, which ParseResponse rejects.
	var envelope struct {
		Success  bool            `json:"success"`
		Response json.RawMessage `json:"response"`
		Error    string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Result{}, &TransportError{AgentID: agentID, Status: resp.StatusCode, Err: fmt.Errorf("decode agent response: %w", err)}
	}
	res := Result{Success: envelope.Success, Error: envelope.Error}
	if len(envelope.Response) > 0 {
		var obj map[string]any
		if json.Unmarshal(envelope.Response, &obj) == nil {
			res.Response = obj
		}
	}
	return res, nil
}
