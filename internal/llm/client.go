package llm

import "context"

// Client is the interface every provider implementation satisfies. The
// brain selects a model per call (spec §4.7's importance-driven model
// routing); the client itself is model-agnostic. The brain only ever
// needs a single-shot completion per trigger, so the interface has no
// streaming method — nothing in this domain renders tokens incrementally.
type Client interface {
	// Chat sends a non-streaming chat completion request, capped at
	// maxTokens output tokens.
	Chat(ctx context.Context, model string, messages []Message, maxTokens int) (*ChatResponse, error)

	// Ping checks if the provider is reachable, used as a startup health
	// check whose result cmd/hub logs; it does not decide whether the
	// fallback brain is active.
	Ping(ctx context.Context) error
}
