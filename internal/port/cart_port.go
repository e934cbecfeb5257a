package port

import (
	"github.com/nikolayk812/storefront/internal/domain"
)

// CartReader is the read-only side of the cart store that projections subscribe to.
type CartReader interface {
	Snapshot() domain.Cart
	Subscribe() (<-chan domain.Cart, func())
}

// CartWriter is what order-driven flows may do to the cart.
type CartWriter interface {
	AddQuietly(p domain.Product) bool
	ClearCart()
}
