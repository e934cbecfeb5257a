package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Money is an amount in a specific currency, as opposed to the bare reference
// currency amounts carried by products and orders.
type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}
