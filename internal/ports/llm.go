package ports

import "context"

// ChatRequest is a single-turn chat completion request.
type ChatRequest struct {
	System      string
	User        string
	Temperature *float64 // nil keeps the vendor default
	MaxTokens   int
}

// ChatModel produces a completion for a single system+user exchange.
type ChatModel interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}
