package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/stocklink/pkg/domain/entities"
	"github.com/vsinha/stocklink/pkg/domain/repositories"
)

func TestMovementRepository_LoadReturnsCopies(t *testing.T) {
	repo := NewMovementRepository()
	repo.AddIssue(entities.RawMovement{DocumentCode: "ISS-1", Product: "A", Date: "2024-01-02", Quantity: "3"})
	repo.AddReceipt(entities.RawMovement{DocumentCode: "REC-1", Product: "A", Date: "2024-01-01", Quantity: "5"})

	ctx := context.Background()
	issues, err := repo.LoadIssues(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issues[0].Quantity = "999"

	again, err := repo.LoadIssues(ctx)
	require.NoError(t, err)
	assert.Equal(t, "3", again[0].Quantity)

	receipts, err := repo.LoadReceipts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "REC-1", receipts[0].DocumentCode)
}

func TestMovementRepository_Empty(t *testing.T) {
	repo := NewMovementRepository()

	issues, err := repo.LoadIssues(context.Background())
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestRunRepository_SaveAndGet(t *testing.T) {
	repo := NewRunRepository()
	ctx := context.Background()

	run := &entities.Run{
		ID:         "run-1",
		StartedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		IssueCount: 2,
		Allocations: []entities.Allocation{
			{IssueDocumentCode: "ISS-1", Product: "A", QuantityIssued: entities.Q(2), ReceiptDocumentCode: "REC-1"},
		},
	}
	require.NoError(t, repo.SaveRun(ctx, run))

	got, err := repo.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.IssueCount)
	require.Len(t, got.Allocations, 1)
	assert.Equal(t, "REC-1", got.Allocations[0].ReceiptDocumentCode)

	_, err = repo.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrRunNotFound)

	assert.Error(t, repo.SaveRun(ctx, &entities.Run{}))
}

func TestRunRepository_ListRunsNewestFirst(t *testing.T) {
	repo := NewRunRepository()
	ctx := context.Background()

	empty, err := repo.ListRuns(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveRun(ctx, &entities.Run{ID: "old", StartedAt: base, IssueCount: 1}))
	require.NoError(t, repo.SaveRun(ctx, &entities.Run{
		ID:          "new",
		StartedAt:   base.Add(time.Hour),
		IssueCount:  2,
		Allocations: []entities.Allocation{{IssueDocumentCode: "ISS-1"}},
	}))

	runs, err := repo.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, 2, runs[0].IssueCount)
	assert.Nil(t, runs[0].Allocations, "listing carries headers only")
	assert.Equal(t, "old", runs[1].ID)
}
