package allocation

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/stocklink/pkg/domain/entities"
)

// Result contains the ordered output of one allocation run
type Result struct {
	Allocations []entities.Allocation
	Shortages   []entities.Shortage
	// Skipped counts issues that carried no demand (corrections or unparseable quantities)
	Skipped int
}

// outcome is what a single issue produced
type outcome struct {
	allocations []entities.Allocation
	shortage    *entities.Shortage
	skipped     bool
}

// Allocator matches issues to receipts first-in-first-out per product
type Allocator struct {
	workers int
	logger  *zap.Logger
}

// NewAllocator creates a sequential allocator
func NewAllocator(logger *zap.Logger) *Allocator {
	return NewAllocatorWithWorkers(1, logger)
}

// NewAllocatorWithWorkers creates an allocator that processes up to workers
// products at once. Issues of one product are always handled in order by a
// single worker, and results are merged back into issue order, so the output
// does not depend on the worker count.
func NewAllocatorWithWorkers(workers int, logger *zap.Logger) *Allocator {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Allocator{workers: workers, logger: logger}
}

// Allocate consumes the ledger against the date-sorted issues. The ledger
// is owned by the allocator for the duration of the call.
func (a *Allocator) Allocate(ctx context.Context, issues []entities.Issue, ledger *ReceiptLedger) (*Result, error) {
	outcomes := make([]outcome, len(issues))

	if a.workers == 1 {
		for i := range issues {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcomes[i] = allocateIssue(issues[i], ledger)
		}
	} else if err := a.allocatePartitioned(ctx, issues, ledger, outcomes); err != nil {
		return nil, err
	}

	result := &Result{
		Allocations: []entities.Allocation{},
		Shortages:   []entities.Shortage{},
	}
	for i := range outcomes {
		o := &outcomes[i]
		if o.skipped {
			result.Skipped++
			continue
		}
		result.Allocations = append(result.Allocations, o.allocations...)
		if o.shortage != nil {
			result.Shortages = append(result.Shortages, *o.shortage)
		}
	}

	a.logger.Debug("allocation complete",
		zap.Int("issues", len(issues)),
		zap.Int("allocations", len(result.Allocations)),
		zap.Int("shortages", len(result.Shortages)),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

// allocatePartitioned runs each product's issues on its own goroutine. Every
// outcome slot and every ledger balance is written by exactly one worker.
func (a *Allocator) allocatePartitioned(ctx context.Context, issues []entities.Issue, ledger *ReceiptLedger, outcomes []outcome) error {
	var order []entities.ProductID
	byProduct := make(map[entities.ProductID][]int)
	for i, issue := range issues {
		if _, seen := byProduct[issue.Product]; !seen {
			order = append(order, issue.Product)
		}
		byProduct[issue.Product] = append(byProduct[issue.Product], i)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for _, product := range order {
		indexes := byProduct[product]
		g.Go(func() error {
			for _, i := range indexes {
				if err := gctx.Err(); err != nil {
					return err
				}
				outcomes[i] = allocateIssue(issues[i], ledger)
			}
			return nil
		})
	}

	return g.Wait()
}

// allocateIssue draws one issue's demand from the earliest receipts of the
// same product until the demand is met or the receipts run out.
func allocateIssue(issue entities.Issue, ledger *ReceiptLedger) outcome {
	if !issue.IsDemand() {
		return outcome{skipped: true}
	}

	var o outcome
	needed := issue.Quantity

	for _, i := range ledger.Candidates(issue.Product) {
		if !needed.IsPositive() {
			break
		}

		used := ledger.consume(i, needed)
		if !used.IsPositive() {
			continue
		}

		receipt := ledger.Receipt(i)
		o.allocations = append(o.allocations, entities.Allocation{
			IssueDocumentCode:   issue.DocumentCode,
			Product:             issue.Product,
			ReceivedDate:        receipt.Date,
			IssuedDate:          issue.Date,
			QuantityIssued:      used,
			ReceiptDocumentCode: receipt.DocumentCode,
		})
		needed = needed.Sub(used)
	}

	if needed.IsPositive() {
		o.shortage = &entities.Shortage{
			IssueDocumentCode: issue.DocumentCode,
			Product:           issue.Product,
			IssuedDate:        issue.Date,
			Requested:         issue.Quantity,
			Unmatched:         needed,
		}
	}
	return o
}
