package normalize

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/stocklink/pkg/domain/entities"
)

// Options controls how raw fields are coerced
type Options struct {
	// DayFirst prefers day/month/year for ambiguous numeric dates.
	// The default reads them month first.
	DayFirst bool
}

// Stats counts the row-level defects found while normalizing a record set
type Stats struct {
	Rows            int `json:"rows"`
	InvalidQuantity int `json:"invalid_quantity"`
	InvalidDate     int `json:"invalid_date"`
}

// Normalizer coerces raw movements into typed, date-sorted records
type Normalizer struct {
	options Options
	logger  *zap.Logger
}

// NewNormalizer creates a normalizer; a nil logger discards output
func NewNormalizer(options Options, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{options: options, logger: logger}
}

// Issues converts raw issue rows and sorts them by date. Equal dates keep
// their input order.
func (n *Normalizer) Issues(raw []entities.RawMovement) ([]entities.Issue, Stats) {
	issues := make([]entities.Issue, len(raw))
	stats := Stats{Rows: len(raw)}

	for i, row := range raw {
		date, quantity := n.coerce(entities.IssueMovement, row, &stats)
		issues[i] = entities.Issue{
			DocumentCode: row.DocumentCode,
			Product:      entities.ProductID(row.Product),
			Date:         date,
			Quantity:     quantity,
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Date.Before(issues[j].Date)
	})
	return issues, stats
}

// Receipts converts raw receipt rows and sorts them by date. Equal dates keep
// their input order, which is the FIFO tie-break.
func (n *Normalizer) Receipts(raw []entities.RawMovement) ([]entities.Receipt, Stats) {
	receipts := make([]entities.Receipt, len(raw))
	stats := Stats{Rows: len(raw)}

	for i, row := range raw {
		date, quantity := n.coerce(entities.ReceiptMovement, row, &stats)
		receipts[i] = entities.Receipt{
			DocumentCode: row.DocumentCode,
			Product:      entities.ProductID(row.Product),
			Date:         date,
			Quantity:     quantity,
		}
	}

	sort.SliceStable(receipts, func(i, j int) bool {
		return receipts[i].Date.Before(receipts[j].Date)
	})
	return receipts, stats
}

func (n *Normalizer) coerce(kind entities.MovementKind, row entities.RawMovement, stats *Stats) (entities.Date, entities.Quantity) {
	quantity := ParseQuantity(row.Quantity)
	if !quantity.Valid() {
		stats.InvalidQuantity++
		n.logger.Debug("unparseable quantity",
			zap.Stringer("kind", kind),
			zap.String("document_code", row.DocumentCode),
			zap.Int("line", row.Line),
			zap.String("value", row.Quantity))
	}

	date := ParseDate(row.Date, n.options.DayFirst)
	if !date.Valid() {
		stats.InvalidDate++
		n.logger.Debug("unparseable date",
			zap.Stringer("kind", kind),
			zap.String("document_code", row.DocumentCode),
			zap.Int("line", row.Line),
			zap.String("value", row.Date))
	}

	return date, quantity
}

// maxExponent bounds the decimal exponent of a quantity. Larger magnitudes
// cannot be real stock counts, and rescaling them makes arithmetic unbounded.
const maxExponent = 64

// ParseQuantity reads a decimal quantity. Blank, non-numeric, non-finite and
// out-of-range values yield the absent quantity instead of an error.
func ParseQuantity(s string) entities.Quantity {
	s = strings.TrimSpace(s)
	if s == "" {
		return entities.NoQuantity
	}
	switch strings.ToLower(strings.TrimLeft(s, "+-")) {
	case "nan", "inf", "infinity":
		return entities.NoQuantity
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return entities.NoQuantity
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return entities.NoQuantity
	}
	return entities.NewQuantity(d)
}
