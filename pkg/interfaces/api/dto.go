package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vsinha/stocklink/pkg/application/dto"
	"github.com/vsinha/stocklink/pkg/domain/entities"
)

// RowDTO is one posted movement row. Quantity may be sent as a JSON number
// or a string; anything else is kept as text and left for the normalizer.
type RowDTO struct {
	DocumentCode string        `json:"document_code"`
	Product      string        `json:"product"`
	Date         string        `json:"date"`
	Quantity     FlexibleValue `json:"quantity"`
}

// FlexibleValue captures a JSON scalar as text
type FlexibleValue string

func (v *FlexibleValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FlexibleValue(s)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return fmt.Errorf("quantity must be a number or string")
	default:
		*v = FlexibleValue(data)
	}
	return nil
}

// ReconcileRequest is the body of POST /api/reconcile
type ReconcileRequest struct {
	Issues   []RowDTO `json:"issues"`
	Receipts []RowDTO `json:"receipts"`
	DayFirst *bool    `json:"day_first,omitempty"`
}

// ReconcileResponse wraps a result with its rendered warning lines
type ReconcileResponse struct {
	*dto.ReconcileResult
	Warnings []string `json:"warnings"`
}

// RunSummary is one entry of GET /api/runs
type RunSummary struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	IssueCount   int       `json:"issue_count"`
	ReceiptCount int       `json:"receipt_count"`
}

func toRunSummaries(runs []entities.Run) []RunSummary {
	summaries := make([]RunSummary, len(runs))
	for i, run := range runs {
		summaries[i] = RunSummary{
			ID:           run.ID,
			StartedAt:    run.StartedAt,
			IssueCount:   run.IssueCount,
			ReceiptCount: run.ReceiptCount,
		}
	}
	return summaries
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toRawMovements(rows []RowDTO) []entities.RawMovement {
	raw := make([]entities.RawMovement, len(rows))
	for i, row := range rows {
		raw[i] = entities.RawMovement{
			DocumentCode: row.DocumentCode,
			Product:      row.Product,
			Date:         row.Date,
			Quantity:     string(row.Quantity),
			Line:         i + 1,
		}
	}
	return raw
}
