package metrics

import (
	"github.com/Layr-Labs/eigensdk-go/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsGenerator interface {
	metrics.Metrics

	IncVoteAttempt(path string)
	IncVoteOutcome(path, status string)
	IncFallback()
	IncBundlerError(kind string)
}

// VoteMetrics contains instrumented metrics that should be incremented by the vote pipeline using the methods below
type VoteMetrics struct {
	metrics.Metrics

	numVoteAttempts *prometheus.CounterVec
	numVoteOutcomes *prometheus.CounterVec
	numFallbacks    prometheus.Counter
	// if numBundlerErrors{kind="paymaster_insufficient"} keeps rising, the paymaster needs a top up
	numBundlerErrors *prometheus.CounterVec
}

const gvNamespace = "gv"

func NewVoteMetrics(eigenMetrics metrics.Metrics, reg prometheus.Registerer) *VoteMetrics {
	return &VoteMetrics{
		Metrics: eigenMetrics,

		numVoteAttempts: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: gvNamespace,
				Name:      "vote_attempts_total",
				Help:      "The number of vote attempts entering a submission path",
			}, []string{"path"}),

		numVoteOutcomes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: gvNamespace,
				Name:      "vote_outcomes_total",
				Help:      "The number of vote attempts reaching a terminal state",
			}, []string{"path", "status"}),

		numFallbacks: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: gvNamespace,
				Name:      "vote_fallbacks_total",
				Help:      "The number of gasless votes re-issued on the standard path after a paymaster deposit rejection",
			}),

		numBundlerErrors: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: gvNamespace,
				Name:      "bundler_errors_total",
				Help:      "The number of failed bundler submissions by error kind",
			}, []string{"kind"}),
	}
}

func (m *VoteMetrics) IncVoteAttempt(path string) {
	m.numVoteAttempts.WithLabelValues(path).Inc()
}

func (m *VoteMetrics) IncVoteOutcome(path, status string) {
	m.numVoteOutcomes.WithLabelValues(path, status).Inc()
}

func (m *VoteMetrics) IncFallback() {
	m.numFallbacks.Inc()
}

func (m *VoteMetrics) IncBundlerError(kind string) {
	m.numBundlerErrors.WithLabelValues(kind).Inc()
}
