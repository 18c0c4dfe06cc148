// Package shared holds types passed between the llm, planner and metrics packages.
package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
}

// AgentMeta holds operational metadata for an agent execution.
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
}

// HasUsage reports whether the provider reported any token counts.
func (m AgentMeta) HasUsage() bool {
	return m.Usage.PromptTokens > 0 || m.Usage.CompletionTokens > 0
}
