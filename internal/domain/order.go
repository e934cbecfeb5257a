package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            string
	Status        string
	PaymentStatus string
	PaymentMethod string
	Amount        decimal.Decimal
	Items         []OrderItem

	CreatedAt time.Time
}

type OrderItem struct {
	ProductID string
	Name      string
	Image     string
	Price     decimal.Decimal
	Quantity  int
}

// Product rebuilds a catalog product from an order item so it can be put back in the cart.
func (i OrderItem) Product() Product {
	price := i.Price
	if price.IsNegative() {
		price = decimal.Zero
	}
	return Product{
		ID:    i.ProductID,
		Name:  i.Name,
		Price: price,
		Image: i.Image,
	}
}
