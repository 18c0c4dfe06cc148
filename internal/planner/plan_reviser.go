package planner

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"ai-diet-planner/internal/dietplan"
	"ai-diet-planner/internal/llm"
	"ai-diet-planner/internal/shared"
)

//go:embed plan_reviser_prompt.md
var planReviserPrompt string

type planReviserPromptData struct {
	Request     string
	CurrentPlan string
	Feedback    string
	Profile     dietplan.Profile
}

// RevisePlan rewrites an existing plan according to user feedback and stores the
// result as a new plan for the same user. The original plan is left untouched.
func (p *Planner) RevisePlan(
	ctx context.Context,
	current *StoredPlan,
	feedback string,
) (*StoredPlan, shared.AgentMeta, error) {
	start := time.Now()
	meta := shared.AgentMeta{AgentName: "PlanReviser"}

	prompt, err := renderPrompt("planreviser", planReviserPrompt, planReviserPromptData{
		Request:     current.Request,
		CurrentPlan: current.RawText,
		Feedback:    feedback,
		Profile:     current.Profile,
	})
	if err != nil {
		return nil, meta, err
	}

	resp, err := p.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, meta, fmt.Errorf("failed to revise diet plan: %w", err)
	}
	meta.Usage = resp.Usage

	raw := llm.StripCodeFence(resp.Content)
	if len(dietplan.Sections(raw)) == 0 {
		return nil, meta, fmt.Errorf("%w. Response: %s", ErrNoDaySections, resp.Content)
	}

	revised := &StoredPlan{
		UserID:  current.UserID,
		Request: current.Request,
		RawText: raw,
		Profile: current.Profile,
		Source:  SourceRevised,
	}
	if err := p.repo.Save(ctx, revised); err != nil {
		return nil, meta, err
	}

	meta.Latency = time.Since(start)
	return revised, meta, nil
}
