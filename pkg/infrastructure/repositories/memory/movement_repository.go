package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vsinha/stocklink/pkg/domain/entities"
	"github.com/vsinha/stocklink/pkg/domain/repositories"
)

// MovementRepository provides in-memory issue and receipt rows
type MovementRepository struct {
	issues   []entities.RawMovement
	receipts []entities.RawMovement
}

// NewMovementRepository creates a new in-memory movement repository
func NewMovementRepository() *MovementRepository {
	return &MovementRepository{
		issues:   []entities.RawMovement{},
		receipts: []entities.RawMovement{},
	}
}

// Verify interface compliance
var _ repositories.MovementRepository = (*MovementRepository)(nil)

// AddIssue appends a raw issue row
func (r *MovementRepository) AddIssue(row entities.RawMovement) {
	r.issues = append(r.issues, row)
}

// AddReceipt appends a raw receipt row
func (r *MovementRepository) AddReceipt(row entities.RawMovement) {
	r.receipts = append(r.receipts, row)
}

// LoadIssues returns a copy of the stored issue rows
func (r *MovementRepository) LoadIssues(ctx context.Context) ([]entities.RawMovement, error) {
	rows := make([]entities.RawMovement, len(r.issues))
	copy(rows, r.issues)
	return rows, nil
}

// LoadReceipts returns a copy of the stored receipt rows
func (r *MovementRepository) LoadReceipts(ctx context.Context) ([]entities.RawMovement, error) {
	rows := make([]entities.RawMovement, len(r.receipts))
	copy(rows, r.receipts)
	return rows, nil
}

// RunRepository keeps completed runs in memory
type RunRepository struct {
	mu   sync.RWMutex
	runs map[string]*entities.Run
}

// NewRunRepository creates a new in-memory run repository
func NewRunRepository() *RunRepository {
	return &RunRepository{runs: make(map[string]*entities.Run)}
}

var _ repositories.RunRepository = (*RunRepository)(nil)

// SaveRun stores a run, replacing any run with the same ID
func (r *RunRepository) SaveRun(ctx context.Context, run *entities.Run) error {
	if run.ID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *run
	r.runs[run.ID] = &stored
	return nil
}

// GetRun returns a stored run
func (r *RunRepository) GetRun(ctx context.Context, id string) (*entities.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repositories.ErrRunNotFound, id)
	}
	copied := *run
	return &copied, nil
}

// ListRuns returns run headers, newest first
func (r *RunRepository) ListRuns(ctx context.Context) ([]entities.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]entities.Run, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, entities.Run{
			ID:           run.ID,
			StartedAt:    run.StartedAt,
			IssueCount:   run.IssueCount,
			ReceiptCount: run.ReceiptCount,
		})
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs, nil
}
