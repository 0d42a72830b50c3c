package dto

import (
	"time"

	"github.com/vsinha/stocklink/pkg/application/normalize"
	"github.com/vsinha/stocklink/pkg/domain/entities"
)

// ReconcileResult contains the complete output of a reconciliation run
type ReconcileResult struct {
	RunID       string                    `json:"run_id"`
	StartedAt   time.Time                 `json:"started_at"`
	Allocations []entities.Allocation     `json:"allocations"`
	Shortages   []entities.Shortage       `json:"shortages"`
	Balances    []entities.ReceiptBalance `json:"balances,omitempty"`
	Stats       RunStats                  `json:"stats"`
}

// RunStats summarizes a run for reporting
type RunStats struct {
	Issues        normalize.Stats `json:"issues"`
	Receipts      normalize.Stats `json:"receipts"`
	SkippedIssues int             `json:"skipped_issues"`
	Allocations   int             `json:"allocations"`
	Shortages     int             `json:"shortages"`
	Duration      time.Duration   `json:"duration_ns"`
}

// Warnings renders one operator warning line per under-fulfilled issue
func (r *ReconcileResult) Warnings() []string {
	warnings := make([]string, len(r.Shortages))
	for i, s := range r.Shortages {
		warnings[i] = s.Warning()
	}
	return warnings
}

// Run converts the result into its persisted form
func (r *ReconcileResult) Run() *entities.Run {
	return &entities.Run{
		ID:           r.RunID,
		StartedAt:    r.StartedAt,
		IssueCount:   r.Stats.Issues.Rows,
		ReceiptCount: r.Stats.Receipts.Rows,
		Allocations:  r.Allocations,
		Shortages:    r.Shortages,
	}
}
