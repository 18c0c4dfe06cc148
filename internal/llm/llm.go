package llm

import (
	"context"

	"ai-diet-planner/internal/shared"
)

// Models used by the planner agents.
const (
	ModelNutritionist = "llama-3.3-70b-versatile"
	ModelReviser      = "llama-3.1-8b-instant"
	ModelGemini       = "gemini-1.5-flash"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
