// Package service wires the observation pipeline to the Shapley engine
// and exposes the operations embedders call.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	obsqueue "github.com/okian/fairshare/internal/adapters/mq/queue"
	workerpool "github.com/okian/fairshare/internal/adapters/mq/worker"
	repository "github.com/okian/fairshare/internal/adapters/repository"
	"github.com/okian/fairshare/internal/domain/coalition"
	"github.com/okian/fairshare/internal/domain/dedupe"
	"github.com/okian/fairshare/internal/domain/model"
	"github.com/okian/fairshare/internal/domain/observation"
	"github.com/okian/fairshare/internal/domain/shapley"
	"github.com/okian/fairshare/pkg/logger"
	"github.com/okian/fairshare/pkg/metrics"
)

// Service owns the intake pipeline (dedupe, queue, workers), the
// coalition model, and the published allocation store.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	queue      obsqueue.Queue
	model      *observation.Model
	workerPool *workerpool.Pool

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	maxContributors int
	normalize       bool
	strict          bool
	// Recompute cadence; zero disables the background ticker.
	recomputeInterval time.Duration

	// State
	started       bool
	stopCh        chan struct{}
	recomputeDone chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of absorption workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the observation queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxContributors caps the contributor universe accepted for exact
// computation. Values above the enumerable limit are clamped.
func WithMaxContributors(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			if limit > coalition.MaxEnumerable {
				limit = coalition.MaxEnumerable
			}
			s.maxContributors = limit
		}
	}
}

// WithNormalize publishes allocations rescaled to fractions of the total.
func WithNormalize(normalize bool) Option {
	return func(s *Service) {
		s.normalize = normalize
	}
}

// WithStrictValues fails recomputation on coalitions with no recorded
// value instead of treating them as zero.
func WithStrictValues(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
	}
}

// WithRecomputeInterval enables periodic background recomputation.
func WithRecomputeInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.recomputeInterval = interval
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU() * 2, // Default to 2x CPU cores
		queueSize:       100000,               // Default queue size
		dedupeSize:      50000,                // Default dedupe cache size
		maxContributors: 20,
		normalize:       true,
		stopCh:          make(chan struct{}),
		logger:          nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting allocation service...")

	// Initialize components
	s.store = repository.NewTreapStore()
	s.logger.Info(ctx, "using treap store")
	s.model = observation.NewModel()
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = obsqueue.NewInMemoryQueue(
		obsqueue.WithCapacity(s.queueSize),
		obsqueue.WithBufferSize(s.queueSize),
	)

	// Create and start the absorption worker pool
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s.model)
	s.workerPool.Start(ctx)

	if s.recomputeInterval > 0 {
		s.recomputeDone = make(chan struct{})
		go s.recomputeLoop(ctx)
	}

	s.started = true
	s.logger.Info(ctx, "allocation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("maxContributors", s.maxContributors),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return
	}

	s.logger.Info(context.Background(), "stopping allocation service...")

	// Stop the recompute loop before taking the write lock; a recompute
	// in flight holds a read lock and must be allowed to finish.
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}
	if s.recomputeDone != nil {
		<-s.recomputeDone
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	// Shut down the worker pool; this also closes the queue so workers
	// drain the remaining backlog before exiting.
	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(context.Background())
	}

	s.started = false
	s.logger.Info(context.Background(), "allocation service stopped")
}

// recomputeLoop periodically republishes the allocation from the
// current model snapshot.
func (s *Service) recomputeLoop(ctx context.Context) {
	defer close(s.recomputeDone)

	ticker := time.NewTicker(s.recomputeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			if err := s.Recompute(ctx); err != nil {
				s.logger.Warn(ctx, "periodic recompute failed", logger.Error(err))
			}
		}
	}
}

// Submit offers one observation to the pipeline. Duplicate observation
// IDs are dropped and reported as processed. Returns false only when the
// queue rejected the observation; the ID is unrecorded so the caller may
// retry.
func (s *Service) Submit(ctx context.Context, o model.Observation) bool {
	id := o.ObservationID
	if id == "" {
		// Content-derived fallback so redeliveries without an ID still dedupe.
		id = fmt.Sprintf("%v_%d", o.Members, o.TS.UnixNano())
	}

	if s.deduper.SeenAndRecord(ctx, id) {
		metrics.RecordObservationDuplicate()
		s.logger.Debug(ctx, "duplicate observation detected, skipping",
			logger.String("observationID", id),
		)
		return true // processed as duplicate
	}

	if !s.queue.Enqueue(ctx, o) {
		// Backpressure: release the ID so a retry is not mistaken for a
		// duplicate.
		s.deduper.Unrecord(ctx, id)
		s.logger.Warn(ctx, "observation rejected by queue",
			logger.String("observationID", id),
		)
		return false
	}

	return true
}

// Recompute takes a snapshot of the coalition model, computes the exact
// Shapley allocation, and publishes it to the store.
func (s *Service) Recompute(ctx context.Context) error {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	start := time.Now()

	universe := s.model.Universe()
	if universe.Size() > s.maxContributors {
		metrics.RecordComputeError()
		metrics.RecordErrorByComponent("service", "universe_too_large")
		return fmt.Errorf("universe has %d contributors, limit is %d: %w",
			universe.Size(), s.maxContributors, ErrTooManyContributors)
	}
	if universe.IsEmpty() {
		return nil // nothing observed yet
	}

	opts := make([]shapley.Option, 0, 2)
	if s.normalize {
		opts = append(opts, shapley.WithNormalize())
	}
	if s.strict {
		opts = append(opts, shapley.WithStrictLookup())
	}

	allocation, err := shapley.Compute(s.model.Values(), opts...)
	if err != nil {
		metrics.RecordComputeError()
		metrics.RecordErrorByComponent("service", "compute_failed")
		return fmt.Errorf("computing allocation: %w", err)
	}

	total := allocation.Sum()
	shares := make([]model.Share, 0, len(allocation))
	for contributor, value := range allocation {
		fraction := 0.0
		if total != 0 {
			fraction = value / total
		}
		shares = append(shares, model.Share{
			Contributor: contributor,
			Value:       value,
			Fraction:    fraction,
		})
	}

	if err := s.store.Publish(ctx, shares); err != nil {
		metrics.RecordComputeError()
		metrics.RecordErrorByComponent("service", "publish_failed")
		return fmt.Errorf("publishing allocation: %w", err)
	}

	metrics.RecordCompute()
	metrics.RecordComputeDuration(float64(time.Since(start).Milliseconds()))

	s.logger.Info(ctx, "allocation recomputed",
		logger.Int("contributors", len(shares)),
		logger.Int64("observations", s.model.Observations()),
		logger.Int64("durationMs", time.Since(start).Milliseconds()),
	)

	return nil
}

// TopN returns the top N allocation entries by value.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	return s.store.TopN(ctx, n)
}

// Rank returns the rank and share for a given contributor.
func (s *Service) Rank(ctx context.Context, contributor string) (repository.Entry, error) {
	return s.store.Rank(ctx, contributor)
}

// Universe returns all contributors seen in any absorbed observation.
func (s *Service) Universe(ctx context.Context) coalition.Coalition {
	return s.model.Universe()
}

// QueueLen returns the current observation backlog.
func (s *Service) QueueLen(ctx context.Context) int {
	return s.queue.Len(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"dedupeSize":      s.dedupeSize,
		"maxContributors": s.maxContributors,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)

		stats["queueLength"] = queueLen
		stats["observations"] = s.model.Observations()
		stats["coalitions"] = s.model.Len()
		stats["universeSize"] = s.model.Universe().Size()
		stats["publishedContributors"] = s.store.Count(ctx)

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
