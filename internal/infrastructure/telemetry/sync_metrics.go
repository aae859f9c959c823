package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	appintegration "github.com/erp/marketsync/internal/application/integration"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Listing outcomes used as the outcome attribute
const (
	OutcomeCreated = "created"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// QueueStatsProvider reports how many sync operations sit in each status
type QueueStatsProvider interface {
	Stats(ctx context.Context) (*appintegration.SyncStats, error)
}

// SyncMetrics records listing sync activity: per-batch outcomes and the
// depth of the operation queue.
type SyncMetrics struct {
	logger *zap.Logger

	batchesTotal  *Counter
	listingsTotal *Counter
	skipsTotal    *Counter
	batchDuration *Histogram
	queueDepth    *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
	wg          sync.WaitGroup
}

// NewSyncMetrics creates the sync instruments on meter
func NewSyncMetrics(meter metric.Meter, logger *zap.Logger) (*SyncMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &SyncMetrics{
		logger:   logger,
		stopChan: make(chan struct{}),
	}

	var err error
	if m.batchesTotal, err = NewCounter(meter,
		"marketsync_batches_total", "Create batches processed", "{batches}"); err != nil {
		return nil, err
	}
	if m.listingsTotal, err = NewCounter(meter,
		"marketsync_listings_total", "Sync operations closed, by outcome", "{operations}"); err != nil {
		return nil, err
	}
	if m.skipsTotal, err = NewCounter(meter,
		"marketsync_skips_total", "Skipped sync operations, by reason", "{operations}"); err != nil {
		return nil, err
	}
	if m.batchDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "marketsync_batch_duration_seconds",
		Description: "Wall time of one create batch",
		Unit:        "s",
		Boundaries:  BatchDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.queueDepth, err = NewGauge(meter,
		"marketsync_queue_depth", "Sync operations per status", "{operations}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordBatch records one processed batch. report may be nil when the batch
// failed before any operation was loaded.
func (m *SyncMetrics) RecordBatch(ctx context.Context, report *appintegration.SyncReport, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.batchesTotal.Inc(ctx, AttrOutcome.String(outcome))
	m.batchDuration.RecordDuration(ctx, duration, AttrOutcome.String(outcome))

	if report == nil {
		return
	}
	if report.Created > 0 {
		m.listingsTotal.Add(ctx, int64(report.Created), AttrOutcome.String(OutcomeCreated))
	}
	if report.Skipped > 0 {
		m.listingsTotal.Add(ctx, int64(report.Skipped), AttrOutcome.String(OutcomeSkipped))
	}
	if report.Failed > 0 {
		m.listingsTotal.Add(ctx, int64(report.Failed), AttrOutcome.String(OutcomeFailed))
	}
	for _, skip := range report.Skips {
		m.skipsTotal.Inc(ctx, AttrSkipReason.String(skip.Reason))
	}
}

// RecordQueueStats sets the queue depth gauge for every status
func (m *SyncMetrics) RecordQueueStats(ctx context.Context, stats *appintegration.SyncStats) {
	m.queueDepth.Record(ctx, stats.Pending, AttrStatus.String("pending"))
	m.queueDepth.Record(ctx, stats.Done, AttrStatus.String("done"))
	m.queueDepth.Record(ctx, stats.Skipped, AttrStatus.String("skipped"))
	m.queueDepth.Record(ctx, stats.Failed, AttrStatus.String("failed"))
}

// StartPeriodicCollection samples queue depth every interval until Stop or
// ctx cancellation. Only the first call starts a collector.
func (m *SyncMetrics) StartPeriodicCollection(ctx context.Context, provider QueueStatsProvider, interval time.Duration) {
	m.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}
		m.wg.Add(1)
		go m.runPeriodicCollection(ctx, provider, interval)
	})
}

func (m *SyncMetrics) runPeriodicCollection(ctx context.Context, provider QueueStatsProvider, interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.collectQueueStats(ctx, provider)
	for {
		select {
		case <-m.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collectQueueStats(ctx, provider)
		}
	}
}

func (m *SyncMetrics) collectQueueStats(ctx context.Context, provider QueueStatsProvider) {
	stats, err := provider.Stats(ctx)
	if err != nil {
		m.logger.Warn("Failed to collect sync queue stats", zap.Error(err))
		return
	}
	m.RecordQueueStats(ctx, stats)
}

// Stop stops the periodic collection and waits for it to exit
func (m *SyncMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
	m.wg.Wait()
}
