package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-diet-planner/internal/config"
	"ai-diet-planner/internal/shared"
)

type stubGenerator struct {
	content string
	err     error
	calls   int
}

func (s *stubGenerator) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	s.calls++
	if s.err != nil {
		return ContentResponse{}, s.err
	}
	return ContentResponse{Content: s.content, Usage: shared.TokenUsage{Model: "stub"}}, nil
}

func TestFallbackGenerator(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstSucceeds", func(t *testing.T) {
		first, second := &stubGenerator{content: "a"}, &stubGenerator{content: "b"}
		resp, err := NewFallbackGenerator(first, second).GenerateContent(ctx, "p")
		if err != nil || resp.Content != "a" || second.calls != 0 {
			t.Errorf("Expected first response only, got %+v, %v, %d", resp, err, second.calls)
		}
	})

	t.Run("FallsBack", func(t *testing.T) {
		first, second := &stubGenerator{err: errors.New("rate limited")}, &stubGenerator{content: "b"}
		resp, err := NewFallbackGenerator(nil, first, second).GenerateContent(ctx, "p")
		if err != nil || resp.Content != "b" {
			t.Errorf("Expected fallback response, got %+v, %v", resp, err)
		}
	})

	t.Run("AllFail", func(t *testing.T) {
		g := NewFallbackGenerator(&stubGenerator{err: errors.New("one")}, &stubGenerator{err: errors.New("two")})
		_, err := g.GenerateContent(ctx, "p")
		if err == nil || !strings.Contains(err.Error(), "one") || !strings.Contains(err.Error(), "two") {
			t.Errorf("Expected joined errors, got %v", err)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if _, err := NewFallbackGenerator().GenerateContent(ctx, "p"); err == nil {
			t.Error("Expected an error without providers")
		}
	})
}

func TestNewFromConfig(t *testing.T) {
	gen, closeFn, err := NewFromConfig(context.Background(), &config.Config{})
	if err != nil || gen != nil {
		t.Errorf("Expected no generator without keys, got %v, %v", gen, err)
	}
	if closeFn() != nil {
		t.Error("Expected no-op close")
	}

	gen, _, err = NewFromConfig(context.Background(), &config.Config{GroqAPIKey: "k", GroqModel: ModelNutritionist})
	if err != nil || gen == nil {
		t.Errorf("Expected a Groq generator, got %v, %v", gen, err)
	}
}
