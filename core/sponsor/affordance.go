package sponsor

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	gocron "github.com/go-co-op/gocron/v2"

	"github.com/AvaProtocol/gasless-vote/pkg/logger"
)

type ThresholdChecker interface {
	MeetsThreshold(ctx context.Context) (bool, *big.Int, error)
}

// Snapshot is the last coarse threshold reading.
type Snapshot struct {
	Available bool
	Deposit   *big.Int
	CheckedAt time.Time
	Err       error
}

// Affordance keeps a periodically refreshed answer to "offer a gasless vote at
// all?" for display. Submission never reads it; the pipeline checks the deposit live.
type Affordance struct {
	checker  ThresholdChecker
	interval time.Duration
	timeout  time.Duration
	logger   logger.Logger

	mu        sync.RWMutex
	snapshot  Snapshot
	scheduler gocron.Scheduler
	onChange  func(Snapshot)
}

func NewAffordance(checker ThresholdChecker, interval time.Duration, lgr logger.Logger) *Affordance {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Affordance{
		checker:  checker,
		interval: interval,
		timeout:  10 * time.Second,
		logger:   logger.Component(lgr, "affordance"),
	}
}

// OnChange registers fn to be called after every refresh.
func (a *Affordance) OnChange(fn func(Snapshot)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onChange = fn
}

// Refresh reads the threshold once. A failed read reports the gasless option as unavailable.
func (a *Affordance) Refresh(ctx context.Context) Snapshot {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	ok, deposit, err := a.checker.MeetsThreshold(ctx)
	snap := Snapshot{Available: ok && err == nil, Deposit: deposit, CheckedAt: time.Now(), Err: err}
	if err != nil {
		a.logger.Warn("paymaster threshold refresh failed", "error", err)
	}

	a.mu.Lock()
	a.snapshot = snap
	fn := a.onChange
	a.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
	return snap
}

func (a *Affordance) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// Start refreshes immediately, then on every interval until Stop.
func (a *Affordance) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(a.interval),
		gocron.NewTask(func() {
			a.Refresh(ctx)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule threshold refresh: %w", err)
	}

	a.mu.Lock()
	a.scheduler = scheduler
	a.mu.Unlock()

	scheduler.Start()
	return nil
}

func (a *Affordance) Stop() error {
	a.mu.Lock()
	scheduler := a.scheduler
	a.scheduler = nil
	a.mu.Unlock()

	if scheduler == nil {
		return nil
	}
	return scheduler.Shutdown()
}
