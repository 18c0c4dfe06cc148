package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	metricsdb "ai-diet-planner/internal/metrics/metrics_db"
	"ai-diet-planner/internal/shared"
)

// ExecutionMetric records metadata for a single agent execution.
type ExecutionMetric struct {
	AgentName        string
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	queries *metricsdb.Queries
	now     func() time.Time
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{
		queries: metricsdb.New(db),
		now:     time.Now,
	}
}

// Record saves a metric to the database.
func (s *Store) Record(m ExecutionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	err := s.queries.InsertExecutionMetric(context.Background(), metricsdb.InsertExecutionMetricParams{
		AgentName:        m.AgentName,
		Model:            m.Model,
		PromptTokens:     int64(m.PromptTokens),
		CompletionTokens: int64(m.CompletionTokens),
		LatencyMs:        m.LatencyMS,
		Timestamp:        ts.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to record execution metric: %w", err)
	}
	return nil
}

// RecordMeta records metrics directly from shared.AgentMeta. Executions without
// reported usage are skipped.
func (s *Store) RecordMeta(meta shared.AgentMeta) error {
	if !meta.HasUsage() {
		return nil
	}
	m := MapUsage(meta.AgentName, meta.Usage, meta.Latency)
	m.Timestamp = s.now()
	return s.Record(m)
}

// DailyUsage represents token totals for a single day.
type DailyUsage struct {
	Date            string
	TotalPrompt     int
	TotalCompletion int
	TotalExecution  int
}

// GetDailyUsage retrieves usage for the last N days, newest day first.
func (s *Store) GetDailyUsage(days int) ([]DailyUsage, error) {
	since := s.now().UTC().AddDate(0, 0, -days)
	rows, err := s.queries.GetDailyUsage(context.Background(), since)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily usage: %w", err)
	}

	results := make([]DailyUsage, 0, len(rows))
	for _, r := range rows {
		u := DailyUsage{
			Date:           r.Day,
			TotalExecution: int(r.Executions),
		}
		if r.TotalPrompt.Valid {
			u.TotalPrompt = int(r.TotalPrompt.Float64)
		}
		if r.TotalCompletion.Valid {
			u.TotalCompletion = int(r.TotalCompletion.Float64)
		}
		results = append(results, u)
	}
	return results, nil
}

// AgentUsage aggregates token usage per agent.
type AgentUsage struct {
	AgentName       string
	TotalPrompt     int
	TotalCompletion int
	AvgLatencyMS    int64
	Executions      int
}

// GetUsageByAgent retrieves per-agent totals for the last N days.
func (s *Store) GetUsageByAgent(days int) ([]AgentUsage, error) {
	since := s.now().UTC().AddDate(0, 0, -days)
	rows, err := s.queries.GetUsageByAgent(context.Background(), since)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage by agent: %w", err)
	}

	results := make([]AgentUsage, 0, len(rows))
	for _, r := range rows {
		results = append(results, AgentUsage{
			AgentName:       r.AgentName,
			TotalPrompt:     int(r.TotalPrompt.Float64),
			TotalCompletion: int(r.TotalCompletion.Float64),
			AvgLatencyMS:    r.AvgLatencyMs,
			Executions:      int(r.Executions),
		})
	}
	return results, nil
}

// Cleanup removes records older than the specified number of days and returns
// how many were deleted.
func (s *Store) Cleanup(olderThanDays int) (int64, error) {
	threshold := s.now().UTC().AddDate(0, 0, -olderThanDays)
	n, err := s.queries.CleanupExecutionMetrics(context.Background(), threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup execution metrics: %w", err)
	}
	return n, nil
}

// MapUsage helper to convert shared.TokenUsage to ExecutionMetric.
func MapUsage(agentName string, usage shared.TokenUsage, latency time.Duration) ExecutionMetric {
	return ExecutionMetric{
		AgentName:        agentName,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        latency.Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}
}
