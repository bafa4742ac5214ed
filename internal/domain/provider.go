package domain

import "context"

// LLMProvider is the interface for the completion endpoint client.
type LLMProvider interface {
	// Chat sends a request and returns a complete response in a single
	// synchronous round trip.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	// Name returns the provider's identifier (e.g., "gemini-openai").
	Name() string
}
