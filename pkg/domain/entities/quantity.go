package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductID represents a unique product identifier
type ProductID string

// Quantity represents an exact decimal stock quantity. A Quantity may be
// absent: the zero value is the "unparseable" marker produced when a source
// field cannot be read as a number, and it never takes part in matching.
type Quantity struct {
	value decimal.Decimal
	valid bool
}

// NoQuantity is the absent quantity.
var NoQuantity = Quantity{}

// NewQuantity creates a valid Quantity from a decimal value
func NewQuantity(value decimal.Decimal) Quantity {
	return Quantity{value: value, valid: true}
}

// Q creates a valid Quantity from an integer
func Q(value int64) Quantity {
	return NewQuantity(decimal.NewFromInt(value))
}

// MustQuantity creates a valid Quantity from a decimal string and panics on bad input.
// Intended for tests and constants.
func MustQuantity(s string) Quantity {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("invalid quantity %q: %v", s, err))
	}
	return NewQuantity(d)
}

// Valid reports whether the quantity holds a parsed number.
func (q Quantity) Valid() bool { return q.valid }

// Decimal returns the underlying value; absent quantities return zero.
func (q Quantity) Decimal() decimal.Decimal {
	if !q.valid {
		return decimal.Zero
	}
	return q.value
}

// IsPositive reports whether the quantity is present and strictly greater than zero.
func (q Quantity) IsPositive() bool { return q.valid && q.value.IsPositive() }

func (q Quantity) IsZero() bool { return q.valid && q.value.IsZero() }

// Equal compares two quantities; two absent quantities are equal.
func (q Quantity) Equal(o Quantity) bool {
	if q.valid != o.valid {
		return false
	}
	return !q.valid || q.value.Equal(o.value)
}

// Arithmetic on quantities treats an absent operand as zero and always
// produces a valid result.

func (q Quantity) Add(o Quantity) Quantity { return NewQuantity(q.Decimal().Add(o.Decimal())) }
func (q Quantity) Sub(o Quantity) Quantity { return NewQuantity(q.Decimal().Sub(o.Decimal())) }

func (q Quantity) LessThan(o Quantity) bool { return q.Decimal().LessThan(o.Decimal()) }

// Min returns the smaller of two quantities
func (q Quantity) Min(o Quantity) Quantity {
	if o.LessThan(q) {
		return NewQuantity(o.Decimal())
	}
	return NewQuantity(q.Decimal())
}

// String renders the minimal decimal form, or "" when absent.
func (q Quantity) String() string {
	if !q.valid {
		return ""
	}
	return q.value.String()
}

// MarshalJSON encodes an absent quantity as null and a present one as a JSON string.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.valid {
		return []byte("null"), nil
	}
	return q.value.MarshalJSON()
}

// UnmarshalJSON accepts null, a JSON number or a quoted decimal.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*q = NoQuantity
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*q = NewQuantity(d)
	return nil
}
