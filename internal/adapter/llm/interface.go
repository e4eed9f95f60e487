// Package llm provides an abstraction for the completion service.
package llm

import "context"

// CompletionClient defines the completion-service operations the assistant
// needs: given instructions, a conversation, and a tool catalog, return
// either a final answer or a set of tool invocations to perform.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
}

// Ensure Client implements CompletionClient.
var _ CompletionClient = (*Client)(nil)
