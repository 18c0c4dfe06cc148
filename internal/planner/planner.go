package planner

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"text/template"
	"time"

	"ai-diet-planner/internal/dietplan"
	"ai-diet-planner/internal/llm"
	"ai-diet-planner/internal/shared"
)

//go:embed nutritionist_prompt.md
var nutritionistPrompt string

// DefaultDays is the plan length requested when the caller does not choose one.
const DefaultDays = 7

type nutritionistPromptData struct {
	Days    int
	Request string
	Profile dietplan.Profile
}

// Planner handles the generation of diet plans.
type Planner struct {
	textGen llm.TextGenerator
	repo    *PlanRepository
}

// NewPlanner creates a new Planner instance.
func NewPlanner(textGen llm.TextGenerator, repo *PlanRepository) *Planner {
	return &Planner{
		textGen: textGen,
		repo:    repo,
	}
}

// GeneratePlan asks the model for a plan in the marker format, checks that it
// has at least one day section and stores it.
func (p *Planner) GeneratePlan(
	ctx context.Context,
	userID string,
	request string,
	profile dietplan.Profile,
) (*StoredPlan, shared.AgentMeta, error) {
	start := time.Now()
	meta := shared.AgentMeta{AgentName: "Nutritionist"}

	prompt, err := renderPrompt("nutritionist", nutritionistPrompt, nutritionistPromptData{
		Days:    DefaultDays,
		Request: request,
		Profile: profile,
	})
	if err != nil {
		return nil, meta, err
	}

	resp, err := p.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, meta, fmt.Errorf("failed to generate diet plan from LLM: %w", err)
	}
	meta.Usage = resp.Usage

	raw := llm.StripCodeFence(resp.Content)
	if len(dietplan.Sections(raw)) == 0 {
		return nil, meta, fmt.Errorf("%w. Response: %s", ErrNoDaySections, resp.Content)
	}

	plan := &StoredPlan{
		UserID:  userID,
		Request: request,
		RawText: raw,
		Profile: profile,
		Source:  SourceGenerated,
	}
	if err := p.repo.Save(ctx, plan); err != nil {
		return nil, meta, err
	}

	meta.Latency = time.Since(start)
	return plan, meta, nil
}

func renderPrompt(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s prompt: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", name, err)
	}
	return buf.String(), nil
}
