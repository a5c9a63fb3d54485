package metrics

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Layr-Labs/eigensdk-go/logging"
)

type MetricsOnlyLogger struct {
	logging.Logger
}

func (l *MetricsOnlyLogger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error(fmt.Sprintf("[METRICS ONLY] %s", msg), keysAndValues...)
}

func (l *MetricsOnlyLogger) Errorf(format string, args ...interface{}) {
	l.Logger.Errorf("[METRICS ONLY] "+format, args...)
}

// DepositReader reads the paymaster deposit held by the EntryPoint.
type DepositReader interface {
	Deposit(ctx context.Context) (*big.Int, error)
}

// PaymasterCollector exports the paymaster deposit as a gauge on every scrape.
// It is an exported metric read from the chain, so it is registered separately
// from the instrumented counters in VoteMetrics.
type PaymasterCollector struct {
	reader    DepositReader
	paymaster common.Address
	timeout   time.Duration
	logger    logging.Logger

	deposit *prometheus.GaugeVec
}

func NewPaymasterCollector(reader DepositReader, paymaster common.Address, logger logging.Logger) *PaymasterCollector {
	return &PaymasterCollector{
		reader:    reader,
		paymaster: paymaster,
		timeout:   5 * time.Second,
		logger:    &MetricsOnlyLogger{Logger: logger},
		deposit: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: gvNamespace,
				Subsystem: "paymaster",
				Name:      "deposit_wei",
				Help:      "The paymaster deposit held by the EntryPoint, in wei",
			},
			[]string{"paymaster"},
		),
	}
}

func (c *PaymasterCollector) Describe(ch chan<- *prometheus.Desc) {
	c.deposit.Describe(ch)
}

func (c *PaymasterCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	deposit, err := c.reader.Deposit(ctx)
	if err != nil {
		// keep the last value rather than reporting a drop to zero
		c.logger.Error("failed to read paymaster deposit", "paymaster", c.paymaster.Hex(), "error", err)
	} else {
		f, _ := new(big.Float).SetInt(deposit).Float64()
		c.deposit.WithLabelValues(c.paymaster.Hex()).Set(f)
	}

	c.deposit.Collect(ch)
}
