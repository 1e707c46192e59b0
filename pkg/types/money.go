package types

import (
	"github.com/shopspring/decimal"
)

// Money is a decimal amount that always renders with two decimal places.
type Money struct {
	decimal.Decimal
}

// NewMoney rounds d half-up to cents.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

// MarshalJSON writes a JSON number such as 64.80.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}
