package domain

import "encoding/json"

// ToolCallRequest is one tool invocation requested by the completion service.
type ToolCallRequest struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolCallResult is the outcome of one tool invocation. Results for a turn
// are reported back to the completion service in request order.
type ToolCallResult struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Output    string `json:"output"`
	Succeeded bool   `json:"succeeded"`
}
