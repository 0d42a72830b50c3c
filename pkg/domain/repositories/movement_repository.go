package repositories

import (
	"context"
	"errors"

	"github.com/vsinha/stocklink/pkg/domain/entities"
)

// Ingestion failures. Any of these halts a run before allocation starts.
var (
	ErrSourceNotFound   = errors.New("movement source not found")
	ErrSourceUnreadable = errors.New("movement source unreadable")
	ErrMissingColumn    = errors.New("movement source missing required column")
)

// ErrRunNotFound is returned when a stored run does not exist.
var ErrRunNotFound = errors.New("run not found")

// MovementRepository provides the raw issue and receipt rows for one run
type MovementRepository interface {
	LoadIssues(ctx context.Context) ([]entities.RawMovement, error)
	LoadReceipts(ctx context.Context) ([]entities.RawMovement, error)
}

// LinkRepository persists the outcome of a run
type LinkRepository interface {
	SaveRun(ctx context.Context, run *entities.Run) error
}

// RunRepository is a LinkRepository that can also read runs back
type RunRepository interface {
	LinkRepository
	GetRun(ctx context.Context, id string) (*entities.Run, error)
	// ListRuns returns run headers without links or shortages, newest first
	ListRuns(ctx context.Context) ([]entities.Run, error)
}
