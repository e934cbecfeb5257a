// Package cartview exposes read-only projections of the cart for presentation:
// badge counts, per-product lookups and prices.
package cartview

import (
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

// View is an immutable projection of one cart snapshot.
type View struct {
	lines []domain.CartLine
	index map[string]int
}

func NewView(c domain.Cart) View {
	lines := append([]domain.CartLine(nil), c.Lines...)
	index := make(map[string]int, len(lines))
	for i, line := range lines {
		index[line.ProductID] = i
	}
	return View{lines: lines, index: index}
}

// Badge is the header cart badge: distinct lines, not units.
func (v View) Badge() int {
	return len(v.lines)
}

func (v View) Units() int {
	var units int
	for _, line := range v.lines {
		units += line.Quantity
	}
	return units
}

func (v View) Lines() []domain.CartLine {
	return append([]domain.CartLine(nil), v.lines...)
}

func (v View) Lookup(productID string) (domain.CartLine, bool) {
	i, ok := v.index[productID]
	if !ok {
		return domain.CartLine{}, false
	}
	return v.lines[i], true
}

func (v View) InCart(productID string) bool {
	_, ok := v.index[productID]
	return ok
}

// CanDecrease is false at quantity 1, where the stepper's minus control is disabled.
func (v View) CanDecrease(productID string) bool {
	line, ok := v.Lookup(productID)
	return ok && line.Quantity > 1
}

func (v View) Quote(p domain.Product) pricing.Quote {
	line, ok := v.Lookup(p.ID)
	if !ok {
		return pricing.QuoteFor(p, nil)
	}
	return pricing.QuoteFor(p, &line)
}

func (v View) Subtotal() decimal.Decimal {
	return pricing.Subtotal(v.lines)
}

func (v View) Savings() decimal.Decimal {
	return pricing.Savings(v.lines)
}
