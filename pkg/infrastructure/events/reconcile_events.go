package events

import (
	"github.com/vsinha/stocklink/pkg/domain/entities"
)

const (
	AllocationRecordedEvent  = "allocation.recorded"
	IssueUnderfulfilledEvent = "issue.underfulfilled"
	RunCompletedEvent        = "run.completed"
)

type AllocationRecorded struct {
	Allocation entities.Allocation `json:"allocation"`
}

type IssueUnderfulfilled struct {
	Shortage entities.Shortage `json:"shortage"`
}

type RunCompleted struct {
	RunID       string `json:"run_id"`
	Allocations int    `json:"allocations"`
	Shortages   int    `json:"shortages"`
}

func NewAllocationRecordedEvent(allocation entities.Allocation) Event {
	return NewEvent(AllocationRecordedEvent, string(allocation.Product), AllocationRecorded{Allocation: allocation})
}

func NewIssueUnderfulfilledEvent(shortage entities.Shortage) Event {
	return NewEvent(IssueUnderfulfilledEvent, string(shortage.Product), IssueUnderfulfilled{Shortage: shortage})
}

func NewRunCompletedEvent(runID string, allocations, shortages int) Event {
	return NewEvent(RunCompletedEvent, runID, RunCompleted{
		RunID:       runID,
		Allocations: allocations,
		Shortages:   shortages,
	})
}
