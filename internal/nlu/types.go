// Package nlu queries an api.ai (v1) style agent with user text or events.
package nlu

import "encoding/json"

// Event triggers an intent by name rather than by text.
type Event struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Request is one query for a conversation session. Exactly one of Query and
// Event is set.
type Request struct {
	SessionID string
	Query     string
	Event     *Event
	// OriginalEvent is the platform event that produced the query.
	OriginalEvent json.RawMessage
}

type originalRequest struct {
	Source string          `json:"source"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type wireRequest struct {
	Query           string           `json:"query,omitempty"`
	Event           *Event           `json:"event,omitempty"`
	Lang            string           `json:"lang"`
	SessionID       string           `json:"sessionId"`
	OriginalRequest *originalRequest `json:"originalRequest,omitempty"`
}

// Response is the agent's answer.
type Response struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	Result    Result `json:"result"`
	Status    Status `json:"status"`
}

// Status reports the outcome of the query at the agent.
type Status struct {
	Code         int    `json:"code"`
	ErrorType    string `json:"errorType"`
	ErrorDetails string `json:"errorDetails,omitempty"`
}

// Result is the matched intent.
type Result struct {
	Source        string                     `json:"source"`
	ResolvedQuery string                     `json:"resolvedQuery"`
	Action        string                     `json:"action"`
	Parameters    map[string]json.RawMessage `json:"parameters"`
	Fulfillment   *Fulfillment               `json:"fulfillment"`
}

// Fulfillment holds what the agent wants said. Messages is the generic
// tagged list; Data carries platform-specific payloads keyed by platform.
type Fulfillment struct {
	Speech   string                     `json:"speech"`
	Messages []json.RawMessage          `json:"messages"`
	Data     map[string]json.RawMessage `json:"data"`
}

// PlatformData returns Data[platform] when present and not null.
func (f *Fulfillment) PlatformData(platform string) (json.RawMessage, bool) {
	if f == nil {
		return nil, false
	}
	raw, ok := f.Data[platform]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}

// Param returns a string parameter. Numbers are returned in their literal
// form; missing or non-scalar values yield "".
func (r Result) Param(name string) string {
	return scalar(r.Parameters[name])
}

// NestedParam returns parameters[name][field] as a string.
func (r Result) NestedParam(name, field string) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(r.Parameters[name], &obj); err != nil {
		return ""
	}
	return scalar(obj[field])
}

func scalar(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
