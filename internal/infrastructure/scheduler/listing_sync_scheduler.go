package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	appintegration "github.com/erp/marketsync/internal/application/integration"
	"go.uber.org/zap"
)

// CreateProcessor drains pending create operations
type CreateProcessor interface {
	ProcessCreates(ctx context.Context, limit int) (*appintegration.SyncReport, error)
}

// LeaseStore grants named, expiring leases shared between instances
type LeaseStore interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, name, token string) error
}

// BatchRecorder observes every finished batch
type BatchRecorder interface {
	RecordBatch(ctx context.Context, report *appintegration.SyncReport, duration time.Duration, err error)
}

// listingSyncLease is the lease name guarding create batches
const listingSyncLease = "listing-sync:create"

// ListingSyncSchedulerConfig holds configuration for the listing sync scheduler
type ListingSyncSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// PollInterval is the time between two batches
	PollInterval time.Duration

	// BatchSize is the maximum number of operations per batch
	BatchSize int

	// RunTimeout bounds a single batch
	RunTimeout time.Duration
}

// DefaultListingSyncSchedulerConfig returns default configuration
func DefaultListingSyncSchedulerConfig() ListingSyncSchedulerConfig {
	return ListingSyncSchedulerConfig{
		Enabled:      true,
		PollInterval: time.Minute,
		BatchSize:    100,
		RunTimeout:   5 * time.Minute,
	}
}

// Validate checks the configuration
func (c ListingSyncSchedulerConfig) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidConfig)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("%w: batch size must not be negative", ErrInvalidConfig)
	}
	if c.RunTimeout < 0 {
		return fmt.Errorf("%w: run timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ListingSyncScheduler runs create batches on a fixed interval
type ListingSyncScheduler struct {
	processor CreateProcessor
	logger    *zap.Logger
	config    ListingSyncSchedulerConfig

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// runMu serializes batches between the loop and RunOnce
	runMu sync.Mutex

	leases   LeaseStore
	leaseTTL time.Duration
	recorder BatchRecorder
}

// ListingSyncSchedulerOption configures a ListingSyncScheduler
type ListingSyncSchedulerOption func(*ListingSyncScheduler)

// WithLeaseStore makes every batch hold a shared lease for ttl, so only one
// instance drains the queue at a time
func WithLeaseStore(store LeaseStore, ttl time.Duration) ListingSyncSchedulerOption {
	return func(s *ListingSyncScheduler) {
		s.leases = store
		s.leaseTTL = ttl
	}
}

// WithBatchRecorder reports each batch to recorder
func WithBatchRecorder(recorder BatchRecorder) ListingSyncSchedulerOption {
	return func(s *ListingSyncScheduler) {
		s.recorder = recorder
	}
}

// NewListingSyncScheduler creates a new listing sync scheduler
func NewListingSyncScheduler(
	processor CreateProcessor,
	logger *zap.Logger,
	config ListingSyncSchedulerConfig,
	opts ...ListingSyncSchedulerOption,
) (*ListingSyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ListingSyncScheduler{
		processor: processor,
		logger:    logger,
		config:    config,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.leases != nil && s.leaseTTL <= 0 {
		return nil, fmt.Errorf("%w: lease ttl must be positive", ErrInvalidConfig)
	}
	return s, nil
}

// Start starts the scheduler
func (s *ListingSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Listing sync scheduler is disabled")
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Listing sync scheduler started",
		zap.Duration("poll_interval", s.config.PollInterval),
		zap.Int("batch_size", s.config.BatchSize),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *ListingSyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Listing sync scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *ListingSyncScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// RunOnce runs a single batch now. It fails with ErrRunInProgress instead of
// waiting behind a running batch.
func (s *ListingSyncScheduler) RunOnce(ctx context.Context) (*appintegration.SyncReport, error) {
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.runMu.Unlock()
	return s.run(ctx)
}

func (s *ListingSyncScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.runMu.TryLock() {
				s.logger.Debug("Previous listing sync batch still running")
				continue
			}
			if _, err := s.run(ctx); errors.Is(err, ErrRunInProgress) {
				s.logger.Debug("Listing sync lease held by another instance")
			}
			s.runMu.Unlock()
		}
	}
}

func (s *ListingSyncScheduler) run(ctx context.Context) (*appintegration.SyncReport, error) {
	if s.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RunTimeout)
		defer cancel()
	}

	release, err := s.acquireLease(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	report, err := s.processor.ProcessCreates(ctx, s.config.BatchSize)
	if s.recorder != nil {
		s.recorder.RecordBatch(ctx, report, time.Since(start), err)
	}
	if err != nil {
		s.logger.Error("Listing sync batch failed", zap.Error(err))
	}
	if report != nil && report.Total > 0 {
		s.logger.Info("Listing sync batch completed",
			zap.String("batch_id", report.BatchID.String()),
			zap.Int("created", report.Created),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed),
			zap.Duration("duration", time.Since(start)),
		)
	}
	return report, err
}

// acquireLease takes the shared batch lease when a lease store is configured.
// A lease held elsewhere yields ErrRunInProgress.
func (s *ListingSyncScheduler) acquireLease(ctx context.Context) (func(), error) {
	if s.leases == nil {
		return func() {}, nil
	}

	token, ok, err := s.leases.Acquire(ctx, listingSyncLease, s.leaseTTL)
	if err != nil {
		s.logger.Error("Failed to acquire listing sync lease", zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: lease held by another instance", ErrRunInProgress)
	}

	return func() {
		// the batch context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.leases.Release(releaseCtx, listingSyncLease, token); err != nil {
			s.logger.Warn("Failed to release listing sync lease", zap.Error(err))
		}
	}, nil
}
