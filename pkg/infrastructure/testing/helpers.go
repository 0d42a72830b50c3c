package testing

import (
	"fmt"

	"github.com/vsinha/stocklink/pkg/domain/entities"
	"github.com/vsinha/stocklink/pkg/infrastructure/repositories/memory"
)

// Row builds a raw movement the way it would arrive from a source file
func Row(code, product, date, quantity string) entities.RawMovement {
	return entities.RawMovement{
		DocumentCode: code,
		Product:      product,
		Date:         date,
		Quantity:     quantity,
	}
}

// BuildWarehouseTestData builds a small two-product scenario: WIDGET has
// two receipts consumed FIFO by three issues (one under-fulfilled), and
// GADGET has an exact match plus a correction row that must be ignored.
func BuildWarehouseTestData() *memory.MovementRepository {
	repo := memory.NewMovementRepository()

	receipts := []entities.RawMovement{
		Row("GR-002", "WIDGET", "2024-01-10", "5"),
		Row("GR-001", "WIDGET", "2024-01-02", "5"),
		Row("GR-003", "GADGET", "01/05/2024", "3"),
		Row("GR-004", "GADGET", "bad date", "n/a"),
	}
	issues := []entities.RawMovement{
		Row("GI-101", "WIDGET", "2024-01-15", "7"),
		Row("GI-102", "WIDGET", "2024-01-20", "4"),
		Row("GI-201", "GADGET", "2024-01-06", "3"),
		Row("GI-202", "GADGET", "2024-01-07", "-1"),
	}

	for i, r := range receipts {
		r.Line = i + 2
		repo.AddReceipt(r)
	}
	for i, r := range issues {
		r.Line = i + 2
		repo.AddIssue(r)
	}
	return repo
}

// BuildLargeTestData builds a deterministic data set with the given number
// of products, each with receiptsPer receipts and issuesPer issues. Issue
// demand is sized so roughly every fourth product ends short.
func BuildLargeTestData(products, receiptsPer, issuesPer int) *memory.MovementRepository {
	repo := memory.NewMovementRepository()

	for p := 0; p < products; p++ {
		product := fmt.Sprintf("SKU-%04d", p)
		for r := 0; r < receiptsPer; r++ {
			repo.AddReceipt(Row(
				fmt.Sprintf("GR-%04d-%03d", p, r),
				product,
				fmt.Sprintf("2024-%02d-%02d", 1+r%12, 1+(p+r)%28),
				fmt.Sprintf("%d", 10+(p+r)%7),
			))
		}
		for i := 0; i < issuesPer; i++ {
			qty := 3 + (p+i)%5
			if p%4 == 0 {
				qty *= 4
			}
			repo.AddIssue(Row(
				fmt.Sprintf("GI-%04d-%03d", p, i),
				product,
				fmt.Sprintf("2024-%02d-%02d", 1+i%12, 1+(p*3+i)%28),
				fmt.Sprintf("%d", qty),
			))
		}
	}
	return repo
}
