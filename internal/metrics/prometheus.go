package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Number of rate limiter buckets currently tracked",
		},
	)

	// PlanExtractionsTotal counts day extractions by whether the day was present.
	PlanExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diet_plan_extractions_total",
			Help: "Day extractions served, labelled by view and result",
		},
		[]string{"view", "result"},
	)

	PlanGenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diet_plan_generations_total",
			Help: "LLM plan generations by agent and outcome",
		},
		[]string{"agent", "outcome"},
	)

	LLMTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Tokens consumed by agents",
		},
		[]string{"agent", "kind"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(PlanExtractionsTotal)
	prometheus.MustRegister(PlanGenerationsTotal)
	prometheus.MustRegister(LLMTokensTotal)
}

// ObserveGeneration updates the generation and token counters for one agent run.
func ObserveGeneration(agent string, promptTokens, completionTokens int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	PlanGenerationsTotal.WithLabelValues(agent, outcome).Inc()
	LLMTokensTotal.WithLabelValues(agent, "prompt").Add(float64(promptTokens))
	LLMTokensTotal.WithLabelValues(agent, "completion").Add(float64(completionTokens))
}

// ObserveExtraction counts one extraction for the given view.
func ObserveExtraction(view string, found bool) {
	result := "found"
	if !found {
		result = "missing"
	}
	PlanExtractionsTotal.WithLabelValues(view, result).Inc()
}
