package entities

import (
	"encoding/json"
	"testing"
	"time"
)

func TestIssue_IsDemand(t *testing.T) {
	testCases := []struct {
		name     string
		quantity Quantity
		expected bool
	}{
		{"positive quantity", Q(5), true},
		{"fractional quantity", MustQuantity("0.25"), true},
		{"zero quantity", Q(0), false},
		{"negative correction", Q(-3), false},
		{"unparseable quantity", NoQuantity, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			issue := Issue{DocumentCode: "ISS-1", Product: "A", Date: D(2024, 1, 1), Quantity: tc.quantity}
			if got := issue.IsDemand(); got != tc.expected {
				t.Errorf("Expected IsDemand %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestAllocation_Record(t *testing.T) {
	alloc := Allocation{
		IssueDocumentCode:   "ISS-7",
		Product:             "WIDGET",
		ReceivedDate:        D(2024, time.March, 1),
		IssuedDate:          NewDate(time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC)),
		QuantityIssued:      MustQuantity("2.50"),
		ReceiptDocumentCode: "REC-2",
	}

	expected := []string{"ISS-7", "WIDGET", "2024-03-01", "2024-03-04 09:30:00", "2.5", "REC-2"}
	record := alloc.Record()

	if len(record) != len(LinkHeader) {
		t.Fatalf("Expected %d columns, got %d", len(LinkHeader), len(record))
	}
	for i := range expected {
		if record[i] != expected[i] {
			t.Errorf("Column %q: expected %q, got %q", LinkHeader[i], expected[i], record[i])
		}
	}
}

func TestShortage_Warning(t *testing.T) {
	shortage := Shortage{IssueDocumentCode: "ISS-9", Product: "BOLT", Requested: Q(10), Unmatched: Q(6)}

	expected := "Warning: Issue ISS-9, BOLT was not fully fulfilled. 6 units remain unmatched."
	if got := shortage.Warning(); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestReceiptBalance_Consumed(t *testing.T) {
	balance := ReceiptBalance{
		Receipt:   Receipt{DocumentCode: "REC-1", Product: "A", Date: D(2024, 1, 1), Quantity: Q(8)},
		Remaining: Q(3),
	}
	if got := balance.Consumed(); !got.Equal(Q(5)) {
		t.Errorf("Expected consumed 5, got %s", got)
	}

	unparsed := ReceiptBalance{Receipt: Receipt{DocumentCode: "REC-2", Product: "A"}}
	if got := unparsed.Consumed(); !got.Equal(Q(0)) {
		t.Errorf("Expected consumed 0 for unparsed receipt, got %s", got)
	}
}

func TestAllocation_JSON(t *testing.T) {
	alloc := Allocation{
		IssueDocumentCode:   "ISS-1",
		Product:             "A",
		ReceivedDate:        NoDate,
		IssuedDate:          D(2024, 1, 2),
		QuantityIssued:      Q(4),
		ReceiptDocumentCode: "REC-1",
	}

	data, err := json.Marshal(alloc)
	if err != nil {
		t.Fatalf("Failed to marshal allocation: %v", err)
	}

	var decoded Allocation
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal allocation: %v", err)
	}

	if decoded.ReceivedDate.Valid() {
		t.Errorf("Expected absent received date to stay absent, got %v", decoded.ReceivedDate)
	}
	if !decoded.IssuedDate.Equal(alloc.IssuedDate) {
		t.Errorf("Expected issued date %v, got %v", alloc.IssuedDate, decoded.IssuedDate)
	}
	if !decoded.QuantityIssued.Equal(Q(4)) {
		t.Errorf("Expected quantity 4, got %s", decoded.QuantityIssued)
	}
}
