// Package pricing computes the regular and effective prices shown for a product.
//
// A product's Price is already the discounted unit price. The discount
// percentage only reconstructs the pre-discount "regular" price for
// strikethrough display and is never subtracted from Price.
package pricing

import (
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Quote struct {
	Quantity  int
	Regular   decimal.Decimal
	Effective decimal.Decimal
	// Strikethrough is set when the regular price should be displayed next to the effective one.
	Strikethrough bool
}

func (q Quote) Savings() decimal.Decimal {
	return q.Regular.Sub(q.Effective)
}

// Regular returns (price + discount/100 * price) * qty.
func Regular(p domain.Product, qty int) decimal.Decimal {
	unit := p.Price.Add(p.DiscountPercentage.Div(hundred).Mul(p.Price))
	return unit.Mul(quantity(qty))
}

// Effective returns price * qty.
func Effective(p domain.Product, qty int) decimal.Decimal {
	return p.Price.Mul(quantity(qty))
}

// QuoteFor prices p for display. A nil line means the product is not in the
// cart and is priced at quantity 1. For a product in the cart the regular
// figure comes from the stored snapshot while the effective figure uses p.
func QuoteFor(p domain.Product, line *domain.CartLine) Quote {
	if line == nil {
		return Quote{
			Quantity:      1,
			Regular:       Regular(p, 1),
			Effective:     Effective(p, 1),
			Strikethrough: p.HasDiscount(),
		}
	}

	qty := line.Quantity
	if qty < 1 {
		qty = 1
	}
	return Quote{
		Quantity:      qty,
		Regular:       Regular(line.Snapshot, qty),
		Effective:     Effective(p, qty),
		Strikethrough: p.HasDiscount(),
	}
}

func LineQuote(line domain.CartLine) Quote {
	return QuoteFor(line.Snapshot, &line)
}

// Subtotal is the amount charged for the lines.
func Subtotal(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(Effective(line.Snapshot, line.Quantity))
	}
	return total
}

func RegularTotal(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(Regular(line.Snapshot, line.Quantity))
	}
	return total
}

func Savings(lines []domain.CartLine) decimal.Decimal {
	return RegularTotal(lines).Sub(Subtotal(lines))
}

func quantity(qty int) decimal.Decimal {
	if qty < 1 {
		qty = 1
	}
	return decimal.NewFromInt(int64(qty))
}
