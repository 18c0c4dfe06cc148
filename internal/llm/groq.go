package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ai-diet-planner/internal/config"
	"ai-diet-planner/internal/shared"

	openai "github.com/sashabaranov/go-openai"
)

// GroqBaseURL is Groq's OpenAI-compatible endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// groqClient talks to Groq through the OpenAI chat completions API.
type groqClient struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewGroqClient creates a new Groq API client for the given model.
func NewGroqClient(cfg *config.Config, model string, temperature float32) TextGenerator {
	return newGroqClient(cfg.GroqAPIKey, GroqBaseURL, model, temperature)
}

func newGroqClient(apiKey, baseURL, model string, temperature float32) *groqClient {
	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = baseURL
	clientCfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}

	return &groqClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: temperature,
	}
}

// GenerateContent sends a prompt to the Groq model and returns the generated text.
func (c *groqClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return ContentResponse{}, fmt.Errorf("groq api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	return ContentResponse{
		Content: resp.Choices[0].Message.Content,
		Usage: shared.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
			Model:            c.model,
		},
	}, nil
}
