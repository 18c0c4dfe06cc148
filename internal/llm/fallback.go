package llm

import (
	"context"
	"errors"
	"fmt"

	"ai-diet-planner/internal/config"
	"ai-diet-planner/internal/logging"
)

// FallbackGenerator tries each generator in order until one succeeds.
type FallbackGenerator struct {
	generators []TextGenerator
}

// NewFallbackGenerator chains generators. Nil entries are skipped.
func NewFallbackGenerator(generators ...TextGenerator) *FallbackGenerator {
	f := &FallbackGenerator{}
	for _, g := range generators {
		if g != nil {
			f.generators = append(f.generators, g)
		}
	}
	return f
}

// GenerateContent returns the first successful response, or all errors joined.
func (f *FallbackGenerator) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	var errs []error
	for i, g := range f.generators {
		resp, err := g.GenerateContent(ctx, prompt)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return ContentResponse{}, err
		}
		if i < len(f.generators)-1 {
			logging.Warn("LLM provider failed, trying next", "provider", i, "error", err)
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return ContentResponse{}, errors.New("no LLM provider configured")
	}
	return ContentResponse{}, errors.Join(errs...)
}

// NewFromConfig builds the text generator for the configured keys: Groq first,
// Gemini as fallback. It returns a nil generator when neither key is set. The
// returned close function is never nil.
func NewFromConfig(ctx context.Context, cfg *config.Config) (TextGenerator, func() error, error) {
	noop := func() error { return nil }
	if !cfg.GenerationEnabled() {
		return nil, noop, nil
	}

	var groq TextGenerator
	if cfg.GroqAPIKey != "" {
		groq = NewGroqClient(cfg, cfg.GroqModel, 0.4)
	}

	if cfg.GeminiAPIKey == "" {
		return groq, noop, nil
	}

	gemini, err := NewGeminiClient(ctx, cfg)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	if groq == nil {
		return gemini, gemini.Close, nil
	}
	return NewFallbackGenerator(groq, gemini), gemini.Close, nil
}
