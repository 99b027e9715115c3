// Package llm provides the LLM client abstraction used by the brain
// (internal/brain) to turn admitted triggers into companion responses.
package llm

import "time"

// Message represents one turn of a chat request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`

	// ImageJPEGBase64 optionally attaches a downscaled screen capture to
	// this message (spec §4.7's "vision = context.screen present" model
	// parameter). Providers that don't support vision may ignore it.
	ImageJPEGBase64 string `json:"-"`
}

// ChatResponse is the provider-neutral result of a chat completion.
type ChatResponse struct {
	Model     string
	CreatedAt time.Time
	Message   Message
	Done      bool

	InputTokens  int
	OutputTokens int
}
