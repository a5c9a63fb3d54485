package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// NoopMetrics is used when enable_metrics is off and in tests.
type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (m *NoopMetrics) AddFeeEarnedTotal(amount float64, token string) {}
func (m *NoopMetrics) SetPerformanceScore(score float64)              {}

func (m *NoopMetrics) Start(ctx context.Context, reg prometheus.Gatherer) <-chan error {
	return nil
}

func (m *NoopMetrics) IncVoteAttempt(path string)         {}
func (m *NoopMetrics) IncVoteOutcome(path, status string) {}
func (m *NoopMetrics) IncFallback()                       {}
func (m *NoopMetrics) IncBundlerError(kind string)        {}
