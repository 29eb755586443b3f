package model

import "context"

// Completer sends a chat-completion request to a hosted model.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}

// ChatMessage is a single prompt message.
type ChatMessage struct {
	Role    string
	Content string
}

// CompletionRequest describes one non-streaming completion call.
type CompletionRequest struct {
	APIKey      string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

// CompletionResult is the first choice of a completion response.
type CompletionResult struct {
	Content string
	Model   string
}
