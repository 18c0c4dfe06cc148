package planner

import (
	"errors"
	"time"

	"ai-diet-planner/internal/dietplan"
)

// Source records how a plan entered the system.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceRevised   Source = "revised"
	SourceImported  Source = "imported"
	SourceURL       Source = "url"
	SourceBackend   Source = "backend"
)

// ErrNoDaySections is returned when generated text has no "### Day N - ..." heading.
var ErrNoDaySections = errors.New("plan text contains no day sections")

// StoredPlan is a persisted raw diet plan and the profile it was written for.
type StoredPlan struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Request   string           `json:"request,omitempty"`
	RawText   string           `json:"raw_text"`
	Profile   dietplan.Profile `json:"profile"`
	Source    Source           `json:"source"`
	CreatedAt time.Time        `json:"created_at"`
}

// DayCount is the number of day sections in the plan.
func (p *StoredPlan) DayCount() int {
	return len(dietplan.Sections(p.RawText))
}
