package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	foremost = "foremost"

	// Pipeline metrics
	pipelineRunsTotal     = "pipeline_runs_total"
	pipelineStageDuration = "pipeline_stage_duration_seconds"

	// Dispatch metrics
	dispatchAttemptsTotal = "dispatch_attempts_total"

	// Rate limit metrics
	rateLimitDeniedTotal = "rate_limit_denied_total"

	// Labels
	pipelineLabel = "pipeline"
	statusLabel   = "status"
	stageLabel    = "stage"
	outcomeLabel  = "outcome"
	purposeLabel  = "purpose"
)

/**
* Metrics definition
**/
var pipelineRunsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: foremost,
		Name:      pipelineRunsTotal,
		Help:      "number of pipeline runs partitioned by pipeline and terminal status",
	},
	[]string{pipelineLabel, statusLabel},
)

var pipelineStageDurationMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: foremost,
		Name:      pipelineStageDuration,
		Help:      "duration of individual pipeline stages in seconds",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60},
	},
	[]string{pipelineLabel, stageLabel},
)

var dispatchAttemptsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: foremost,
		Name:      dispatchAttemptsTotal,
		Help:      "number of notification delivery attempts partitioned by outcome",
	},
	[]string{outcomeLabel},
)

var rateLimitDeniedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: foremost,
		Name:      rateLimitDeniedTotal,
		Help:      "number of requests denied by the rate limiter partitioned by route purpose",
	},
	[]string{purposeLabel},
)

func IncreasePipelineRunsTotalMetric(pipeline, status string) {
	pipelineRunsTotalMetric.With(prometheus.Labels{
		pipelineLabel: pipeline,
		statusLabel:   status,
	}).Inc()
}

func ObservePipelineStageDurationMetric(pipeline, stage string, seconds float64) {
	pipelineStageDurationMetric.With(prometheus.Labels{
		pipelineLabel: pipeline,
		stageLabel:    stage,
	}).Observe(seconds)
}

func IncreaseDispatchAttemptsTotalMetric(outcome string) {
	dispatchAttemptsTotalMetric.With(prometheus.Labels{
		outcomeLabel: outcome,
	}).Inc()
}

func IncreaseRateLimitDeniedTotalMetric(purpose string) {
	rateLimitDeniedTotalMetric.With(prometheus.Labels{
		purposeLabel: purpose,
	}).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(pipelineRunsTotalMetric)
	prometheus.MustRegister(pipelineStageDurationMetric)
	prometheus.MustRegister(dispatchAttemptsTotalMetric)
	prometheus.MustRegister(rateLimitDeniedTotalMetric)
}
