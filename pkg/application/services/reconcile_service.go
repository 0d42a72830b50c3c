package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vsinha/stocklink/pkg/application/allocation"
	"github.com/vsinha/stocklink/pkg/application/dto"
	"github.com/vsinha/stocklink/pkg/application/normalize"
	"github.com/vsinha/stocklink/pkg/domain/repositories"
	"github.com/vsinha/stocklink/pkg/infrastructure/events"
)

// Config holds the knobs for a reconciliation run
type Config struct {
	// DayFirst reads ambiguous numeric dates such as 03/04/2024 as 3 April
	DayFirst bool
	// Workers bounds how many products are allocated concurrently (1 = sequential)
	Workers int
}

// DefaultConfig returns a sequential, month-first configuration
func DefaultConfig() Config {
	return Config{Workers: 1}
}

// ReconcileService runs load, normalize, allocate and persist for one pair
// of issue and receipt sources.
type ReconcileService struct {
	config     Config
	normalizer *normalize.Normalizer
	allocator  *allocation.Allocator
	sinks      []repositories.LinkRepository
	journal    *events.Journal
	logger     *zap.Logger
	now        func() time.Time
}

// Option customizes a ReconcileService
type Option func(*ReconcileService)

// WithSinks adds repositories that receive every completed run, in order
func WithSinks(sinks ...repositories.LinkRepository) Option {
	return func(s *ReconcileService) {
		s.sinks = append(s.sinks, sinks...)
	}
}

// WithJournal records allocation events for the run into journal
func WithJournal(journal *events.Journal) Option {
	return func(s *ReconcileService) {
		s.journal = journal
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *ReconcileService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the run start clock
func WithClock(now func() time.Time) Option {
	return func(s *ReconcileService) {
		s.now = now
	}
}

// NewReconcileService creates a reconciliation service
func NewReconcileService(config Config, opts ...Option) *ReconcileService {
	s := &ReconcileService{
		config: config,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.normalizer = normalize.NewNormalizer(normalize.Options{DayFirst: config.DayFirst}, s.logger)
	s.allocator = allocation.NewAllocatorWithWorkers(config.Workers, s.logger)
	return s
}

// Reconcile loads both sources, then allocates issues to receipts FIFO per
// product. Both sources are loaded before any allocation happens, so a
// missing or malformed source fails the run without producing output.
func (s *ReconcileService) Reconcile(ctx context.Context, source repositories.MovementRepository) (*dto.ReconcileResult, error) {
	started := s.now()

	rawIssues, err := source.LoadIssues(ctx)
	if err != nil {
		return nil, err
	}
	rawReceipts, err := source.LoadReceipts(ctx)
	if err != nil {
		return nil, err
	}

	issues, issueStats := s.normalizer.Issues(rawIssues)
	receipts, receiptStats := s.normalizer.Receipts(rawReceipts)

	ledger := allocation.NewReceiptLedger(receipts)
	allocated, err := s.allocator.Allocate(ctx, issues, ledger)
	if err != nil {
		return nil, fmt.Errorf("allocation failed: %w", err)
	}

	result := &dto.ReconcileResult{
		RunID:       uuid.NewString(),
		StartedAt:   started,
		Allocations: allocated.Allocations,
		Shortages:   allocated.Shortages,
		Balances:    ledger.Balances(),
		Stats: dto.RunStats{
			Issues:        issueStats,
			Receipts:      receiptStats,
			SkippedIssues: allocated.Skipped,
			Allocations:   len(allocated.Allocations),
			Shortages:     len(allocated.Shortages),
		},
	}

	if err := s.publish(result); err != nil {
		return nil, fmt.Errorf("failed to record run events: %w", err)
	}

	run := result.Run()
	for _, sink := range s.sinks {
		if err := sink.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to save run %s: %w", result.RunID, err)
		}
	}

	result.Stats.Duration = time.Since(started)
	s.logger.Info("reconciliation complete",
		zap.String("run_id", result.RunID),
		zap.Int("issues", issueStats.Rows),
		zap.Int("receipts", receiptStats.Rows),
		zap.Int("allocations", result.Stats.Allocations),
		zap.Int("shortages", result.Stats.Shortages),
		zap.Int("skipped", result.Stats.SkippedIssues),
		zap.Duration("duration", result.Stats.Duration))

	return result, nil
}

func (s *ReconcileService) publish(result *dto.ReconcileResult) error {
	if s.journal == nil {
		return nil
	}
	for _, a := range result.Allocations {
		if err := s.journal.Record(events.NewAllocationRecordedEvent(a)); err != nil {
			return err
		}
	}
	for _, sh := range result.Shortages {
		if err := s.journal.Record(events.NewIssueUnderfulfilledEvent(sh)); err != nil {
			return err
		}
	}
	return s.journal.Record(events.NewRunCompletedEvent(result.RunID, len(result.Allocations), len(result.Shortages)))
}
