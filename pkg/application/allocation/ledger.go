package allocation

import (
	"github.com/vsinha/stocklink/pkg/domain/entities"
)

// ReceiptLedger is the balance table for one allocation run. Receipts are
// held in date order and addressed by index; remaining balances only ever
// decrease. Indexes belonging to different products are disjoint, so workers
// handling different products may consume concurrently.
type ReceiptLedger struct {
	receipts  []entities.Receipt
	remaining []entities.Quantity
	byProduct map[entities.ProductID][]int
}

// NewReceiptLedger copies the sorted receipts into a fresh balance table.
// Each receipt starts with its full quantity remaining; receipts without a
// parsed quantity start absent and are never offered as candidates.
func NewReceiptLedger(receipts []entities.Receipt) *ReceiptLedger {
	l := &ReceiptLedger{
		receipts:  make([]entities.Receipt, len(receipts)),
		remaining: make([]entities.Quantity, len(receipts)),
		byProduct: make(map[entities.ProductID][]int),
	}
	copy(l.receipts, receipts)

	for i, r := range l.receipts {
		l.remaining[i] = r.Quantity
		l.byProduct[r.Product] = append(l.byProduct[r.Product], i)
	}
	return l
}

func (l *ReceiptLedger) size() int {
	return len(l.receipts)
}

// Receipt returns the receipt at index i
func (l *ReceiptLedger) Receipt(i int) entities.Receipt {
	return l.receipts[i]
}

// balance returns the unconsumed balance of receipt i
func (l *ReceiptLedger) balance(i int) entities.Quantity {
	return l.remaining[i]
}

// Candidates returns the indexes of the product's receipts that still hold a
// positive balance, earliest first.
func (l *ReceiptLedger) Candidates(product entities.ProductID) []int {
	var candidates []int
	for _, i := range l.byProduct[product] {
		if l.remaining[i].IsPositive() {
			candidates = append(candidates, i)
		}
	}
	return candidates
}

// available sums the positive balances left for a product
func (l *ReceiptLedger) available(product entities.ProductID) entities.Quantity {
	total := entities.Q(0)
	for _, i := range l.Candidates(product) {
		total = total.Add(l.remaining[i])
	}
	return total
}

// consume draws up to want from receipt i and returns what was taken
func (l *ReceiptLedger) consume(i int, want entities.Quantity) entities.Quantity {
	used := want.Min(l.remaining[i])
	if !used.IsPositive() {
		return entities.Q(0)
	}
	l.remaining[i] = l.remaining[i].Sub(used)
	return used
}

// Balances reports every receipt with its remaining balance, in ledger order
func (l *ReceiptLedger) Balances() []entities.ReceiptBalance {
	balances := make([]entities.ReceiptBalance, l.size())
	for i := range balances {
		balances[i] = entities.ReceiptBalance{Receipt: l.Receipt(i), Remaining: l.balance(i)}
	}
	return balances
}

