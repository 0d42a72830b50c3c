package entities

import (
	"fmt"
	"time"
)

// MovementKind distinguishes outbound from inbound stock movements
type MovementKind int

const (
	IssueMovement MovementKind = iota
	ReceiptMovement
)

// String method for MovementKind enum
func (k MovementKind) String() string {
	switch k {
	case IssueMovement:
		return "Issue"
	case ReceiptMovement:
		return "Receipt"
	default:
		return "Unknown"
	}
}

// RawMovement is one source row before type coercion. Line is the 1-based
// line number in the source, 0 when the row did not come from a file.
type RawMovement struct {
	DocumentCode string `json:"document_code"`
	Product      string `json:"product"`
	Date         string `json:"date"`
	Quantity     string `json:"quantity"`
	Line         int    `json:"line,omitempty"`
}

// Issue represents an outbound stock movement (demand)
type Issue struct {
	DocumentCode string    `json:"document_code"`
	Product      ProductID `json:"product"`
	Date         Date      `json:"date"`
	Quantity     Quantity  `json:"quantity"`
}

// IsDemand reports whether the issue carries real demand. Corrections
// (zero or negative quantities) and unparseable rows do not.
func (i Issue) IsDemand() bool {
	return i.Quantity.IsPositive()
}

// Receipt represents an inbound stock movement (supply)
type Receipt struct {
	DocumentCode string    `json:"document_code"`
	Product      ProductID `json:"product"`
	Date         Date      `json:"date"`
	Quantity     Quantity  `json:"quantity"`
}

// ReceiptBalance reports what is left of a receipt after an allocation run
type ReceiptBalance struct {
	Receipt   Receipt  `json:"receipt"`
	Remaining Quantity `json:"remaining"`
}

// Consumed returns the quantity drawn from the receipt during the run
func (b ReceiptBalance) Consumed() Quantity {
	if !b.Receipt.Quantity.Valid() {
		return Q(0)
	}
	return b.Receipt.Quantity.Sub(b.Remaining)
}

// Allocation links part of an issue to the receipt that supplied it
type Allocation struct {
	IssueDocumentCode   string    `json:"issue_document_code"`
	Product             ProductID `json:"product"`
	ReceivedDate        Date      `json:"received_date"`
	IssuedDate          Date      `json:"issued_date"`
	QuantityIssued      Quantity  `json:"quantity_issued"`
	ReceiptDocumentCode string    `json:"receipt_document_code"`
}

// LinkHeader is the column order of the issue/receipt link table
var LinkHeader = []string{
	"Issue Document Code",
	"Product",
	"Received Date",
	"Issued Date",
	"Quantity Issued",
	"Receipt Document Code",
}

// Record returns the allocation as a link table row in LinkHeader order
func (a Allocation) Record() []string {
	return []string{
		a.IssueDocumentCode,
		string(a.Product),
		a.ReceivedDate.String(),
		a.IssuedDate.String(),
		a.QuantityIssued.String(),
		a.ReceiptDocumentCode,
	}
}

// Shortage records issue demand that no receipt balance could cover
type Shortage struct {
	IssueDocumentCode string    `json:"issue_document_code"`
	Product           ProductID `json:"product"`
	IssuedDate        Date      `json:"issued_date"`
	Requested         Quantity  `json:"requested"`
	Unmatched         Quantity  `json:"unmatched"`
}

// Warning renders the operator-facing warning line for the shortage
func (s Shortage) Warning() string {
	return fmt.Sprintf("Warning: Issue %s, %s was not fully fulfilled. %s units remain unmatched.",
		s.IssueDocumentCode, s.Product, s.Unmatched)
}

// Run is the persisted outcome of one reconciliation
type Run struct {
	ID           string       `json:"id"`
	StartedAt    time.Time    `json:"started_at"`
	IssueCount   int          `json:"issue_count"`
	ReceiptCount int          `json:"receipt_count"`
	Allocations  []Allocation `json:"allocations"`
	Shortages    []Shortage   `json:"shortages"`
}
