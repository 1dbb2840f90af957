package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"catalog-sync/core/logger"
	"catalog-sync/feature/catalog/reconcile"
	"catalog-sync/feature/catalog/remote"
	"catalog-sync/feature/catalog/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// State identifies where the scheduler is in its per-cycle state machine.
type State string

const (
	StateIdle        State = "idle"
	StateFetching    State = "fetching"
	StateReconciling State = "reconciling"
	StateCommitting  State = "committing"
	StateFailed      State = "failed"
)

// Config holds configuration for the run scheduler.
type Config struct {
	// IntervalSeconds is the wait between successful cycles.
	IntervalSeconds int `mapstructure:"interval_seconds" default:"300"`
	// RetryBackoffSeconds is the shorter wait after a failed cycle.
	RetryBackoffSeconds int `mapstructure:"retry_backoff_seconds" default:"30"`
	// ProductWriteCooldownMS is the pause after each product write.
	ProductWriteCooldownMS int `mapstructure:"product_write_cooldown_ms" default:"250"`
	// OptionWriteCooldownMS is the pause after each option write.
	OptionWriteCooldownMS int `mapstructure:"option_write_cooldown_ms" default:"100"`
	// DryRun computes and logs writes but rolls back every cycle.
	DryRun bool `mapstructure:"dry_run" default:"false"`
}

// Fetcher retrieves one complete remote collection. *remote.Client
// implements it.
type Fetcher interface {
	FetchAll(ctx context.Context, collection remote.Collection) ([]remote.Item, error)
}

// Status is the scheduler's externally visible condition, served by the
// status endpoint.
type Status struct {
	// State is the current cycle state.
	State State `json:"state"`
	// LastCycle is the summary of the most recent cycle, nil before the first.
	LastCycle *reconcile.Summary `json:"last_cycle"`
	// LastError is the failure message of the most recent failed cycle,
	// empty after a successful one.
	LastError string `json:"last_error"`
}

// Scheduler executes reconciliation cycles: fetch both collections, diff
// them against the local catalog inside one transaction, commit, wait,
// repeat. A failed cycle rolls back completely and is retried after a
// shorter backoff. Exactly one cycle runs at a time.
type Scheduler struct {
	db      *gorm.DB
	fetcher Fetcher
	cfg     Config
	log     *zap.Logger

	mu      sync.Mutex
	state   State
	last    *reconcile.Summary
	lastErr string
}

// New creates a scheduler over an open database handle and a fetcher.
func New(db *gorm.DB, fetcher Fetcher, cfg Config, log *zap.Logger) *Scheduler {
	return &Scheduler{
		db:      db,
		fetcher: fetcher,
		cfg:     cfg,
		log:     log,
		state:   StateIdle,
	}
}

// Status reports the current state and last cycle outcome.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{State: s.state, LastCycle: s.last, LastError: s.lastErr}
}

// Run executes cycles until the context is cancelled. An ordinary cycle
// failure never terminates the loop; it only shortens the wait before the
// next attempt.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		sum, err := s.RunCycle(ctx)

		wait := s.interval()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			s.log.Error("Cycle failed", zap.Error(err))
			wait = s.backoff()
		} else {
			s.log.Info("Cycle complete",
				zap.Int("writes", sum.Writes()),
				zap.Duration("duration", sum.Duration),
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// RunCycle performs one fetch → reconcile → commit pass and records its
// outcome for the status endpoint. A panic inside the cycle is recovered
// and reported as an ordinary cycle failure.
func (s *Scheduler) RunCycle(ctx context.Context) (*reconcile.Summary, error) {
	cycleID := uuid.NewString()
	l := logger.WithCycle(s.log, cycleID)
	sum := &reconcile.Summary{CycleID: cycleID, StartedAt: time.Now()}

	l.Info("Cycle started")
	err := s.runCycle(ctx, l, sum)
	sum.Duration = time.Since(sum.StartedAt)

	s.mu.Lock()
	s.last = sum
	if err != nil {
		s.state = StateFailed
		s.lastErr = err.Error()
	} else {
		s.state = StateIdle
		s.lastErr = ""
	}
	s.mu.Unlock()

	return sum, err
}

func (s *Scheduler) runCycle(ctx context.Context, l *zap.Logger, sum *reconcile.Summary) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected cycle failure: %v", r)
		}
	}()

	s.setState(StateFetching)
	products := s.fetchCollection(ctx, l, remote.CollectionProducts, &sum.ProductsUnavailable)
	offers := s.fetchCollection(ctx, l, remote.CollectionOffers, &sum.OffersUnavailable)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.setState(StateReconciling)
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}
	committed := false
	defer func() {
		// Covers failures and panics alike: no partial persistence.
		if !committed {
			tx.Rollback()
		}
	}()

	eng := reconcile.New(store.New(tx), l, reconcile.Options{
		ProductWriteCooldown: time.Duration(s.cfg.ProductWriteCooldownMS) * time.Millisecond,
		OptionWriteCooldown:  time.Duration(s.cfg.OptionWriteCooldownMS) * time.Millisecond,
		DryRun:               s.cfg.DryRun,
	})

	// Products before offers: the offer pass may overwrite a price the
	// product pass just set and must run second.
	if !sum.ProductsUnavailable {
		if err := eng.SyncProducts(ctx, products, sum); err != nil {
			return fmt.Errorf("product pass: %w", err)
		}
	}
	if !sum.OffersUnavailable {
		seen := make(map[string]struct{})
		if err := eng.SyncOffers(ctx, offers, seen, sum); err != nil {
			return fmt.Errorf("offer pass: %w", err)
		}
	}

	s.setState(StateCommitting)
	if s.cfg.DryRun {
		l.Info("Dry run, rolling back", zap.Int("writes_planned", sum.Writes()))
		return nil
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// fetchCollection pulls one collection, marking it unavailable on failure.
// An unavailable collection skips its pass for this cycle only; the other
// collection still reconciles.
func (s *Scheduler) fetchCollection(ctx context.Context, l *zap.Logger, c remote.Collection, unavailable *bool) []remote.Item {
	items, err := s.fetcher.FetchAll(ctx, c)
	if err != nil {
		*unavailable = true
		l.Warn("Collection unavailable, skipping its pass",
			zap.String("collection", string(c)),
			zap.Error(err),
		)
		return nil
	}
	return items
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Scheduler) interval() time.Duration {
	if s.cfg.IntervalSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(s.cfg.IntervalSeconds) * time.Second
}

func (s *Scheduler) backoff() time.Duration {
	if s.cfg.RetryBackoffSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.cfg.RetryBackoffSeconds) * time.Second
}
