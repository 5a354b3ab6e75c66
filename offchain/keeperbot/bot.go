// Package keeperbot is the off-chain automation that calls harvest and tend
// on router strategies when their triggers fire.
package keeperbot

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"golang.org/x/sync/errgroup"

	routermetrics "github.com/openalpha/yield-router/metrics"
)

// Option configures a Bot
type Option func(*Bot)

// WithMetrics records bot activity on c
func WithMetrics(c *routermetrics.Collector) Option {
	return func(b *Bot) {
		b.metrics = c
	}
}

// WithClock overrides the wall clock used by the poll loop
func WithClock(now func() time.Time) Option {
	return func(b *Bot) {
		b.now = now
	}
}

// Bot watches strategies and submits keeper transactions
type Bot struct {
	config    *Config
	reader    ChainReader
	submitter TxSubmitter
	policy    *Policy
	callCost  math.Int
	logger    log.Logger
	metrics   *routermetrics.Collector
	now       func() time.Time

	mu       sync.Mutex
	schedule *Schedule
}

// New creates a bot. The configuration is validated and the harvest policy compiled.
func New(config *Config, reader ChainReader, submitter TxSubmitter, logger log.Logger, opts ...Option) (*Bot, error) {
	if reader == nil {
		return nil, fmt.Errorf("chain reader is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	callCost, _ := config.callCost()
	policy, err := CompilePolicy(config.HarvestPolicy)
	if err != nil {
		return nil, err
	}
	if submitter == nil {
		submitter = NewMockSubmitter()
	}

	b := &Bot{
		config:    config,
		reader:    reader,
		submitter: submitter,
		policy:    policy,
		callCost:  callCost,
		logger:    logger.With("module", "keeperbot"),
		now:       time.Now,
		schedule:  NewSchedule(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Track starts watching strategy with its first check at due.
// It returns false when the strategy was already watched.
func (b *Bot) Track(strategy string, due time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	added := b.schedule.Add(strategy, due)
	if added {
		b.logger.Info("watching strategy", "strategy", strategy)
	}
	return added
}

// Untrack stops watching strategy
func (b *Bot) Untrack(strategy string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.schedule.Remove(strategy)
}

// Watching reports whether strategy is scheduled
func (b *Bot) Watching(strategy string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.schedule.Contains(strategy)
}

// Scheduled returns the number of watched strategies
func (b *Bot) Scheduled() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.schedule.Len()
}

// Seed watches the configured strategies and every strategy the chain reports
func (b *Bot) Seed(ctx context.Context) error {
	now := b.now()
	for _, s := range b.config.Strategies {
		b.Track(s, now)
	}
	known, err := b.reader.Strategies(ctx)
	if err != nil {
		return fmt.Errorf("failed to list strategies: %w", err)
	}
	for _, s := range known {
		b.Track(s, now)
	}
	return nil
}

// Run seeds the schedule, then runs the poll loop and, when a websocket URL
// is configured, clone discovery until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Seed(ctx); err != nil {
		return err
	}
	b.logger.Info("keeper bot started", "strategies", b.Scheduled(), "policy", b.policy.String())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.pollLoop(ctx)
	})
	if b.config.WebSocketURL != "" {
		g.Go(func() error {
			return b.discoveryLoop(ctx)
		})
	}
	err := g.Wait()
	b.logger.Info("keeper bot stopped")
	return err
}

func (b *Bot) pollLoop(ctx context.Context) error {
	ticker := time.NewTicker(b.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			b.Tick(ctx, b.now())
		}
	}
}

// Tick handles every strategy due at now and returns how many were checked
func (b *Bot) Tick(ctx context.Context, now time.Time) int {
	timer := routermetrics.NewTimer()

	b.mu.Lock()
	due := b.schedule.PopDue(now, b.config.MaxPerTick)
	b.mu.Unlock()

	for _, strategy := range due {
		next := now.Add(b.config.CheckInterval)
		if err := b.check(ctx, strategy, now); err != nil {
			b.logger.Error("strategy check failed", "strategy", strategy, "error", err)
			next = now.Add(b.config.RetryDelay)
		}
		b.mu.Lock()
		b.schedule.Set(strategy, next)
		b.mu.Unlock()
	}

	if b.metrics != nil {
		b.metrics.RecordBotLoop(timer.ElapsedMs(), b.Scheduled())
	}
	if len(due) > 0 {
		b.logger.Debug("tick completed", "checked", len(due), "elapsed_ms", timer.ElapsedMs())
	}
	return len(due)
}

// check harvests when the harvest trigger and policy agree, otherwise tends
// when the tend trigger fires
func (b *Bot) check(ctx context.Context, strategy string, now time.Time) error {
	harvest, err := b.reader.HarvestTrigger(ctx, strategy, b.callCost)
	if err != nil {
		return fmt.Errorf("harvest trigger: %w", err)
	}
	if harvest {
		allowed, err := b.allowHarvest(ctx, strategy, now)
		if err != nil {
			return err
		}
		if allowed {
			return b.submit(ctx, ActionHarvest, strategy)
		}
		b.record(ActionHarvest, "skipped")
	}

	tend, err := b.reader.TendTrigger(ctx, strategy, b.callCost)
	if err != nil {
		return fmt.Errorf("tend trigger: %w", err)
	}
	if tend {
		return b.submit(ctx, ActionTend, strategy)
	}
	return nil
}

func (b *Bot) allowHarvest(ctx context.Context, strategy string, now time.Time) (bool, error) {
	if b.policy.program == nil {
		return true, nil
	}
	info, err := b.reader.Strategy(ctx, strategy)
	if err != nil {
		return false, fmt.Errorf("strategy info: %w", err)
	}
	return b.policy.Allow(PolicyEnv{
		Strategy:        info.Address,
		Name:            info.Name,
		CallCost:        toFloat(b.callCost),
		EstimatedAssets: toFloat(info.EstimatedAssets),
		EmergencyExit:   info.EmergencyExit,
		SinceHarvest:    now.Sub(info.LastHarvestAt).Seconds(),
	})
}

func (b *Bot) submit(ctx context.Context, action, strategy string) error {
	var err error
	switch action {
	case ActionHarvest:
		err = b.submitter.Harvest(ctx, strategy)
	case ActionTend:
		err = b.submitter.Tend(ctx, strategy)
	default:
		err = fmt.Errorf("unknown action %q", action)
	}
	if err != nil {
		b.record(action, "error")
		return fmt.Errorf("%s submission: %w", action, err)
	}
	b.record(action, "ok")
	b.logger.Info("submitted", "action", action, "strategy", strategy)
	return nil
}

func (b *Bot) record(action, status string) {
	if b.metrics != nil {
		b.metrics.RecordBotSubmission(action, status)
	}
}

func toFloat(i math.Int) float64 {
	if i.IsNil() {
		return 0
	}
	f, _ := new(big.Float).SetInt(i.BigInt()).Float64()
	return f
}
