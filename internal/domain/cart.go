package domain

import (
	"time"
)

type Cart struct {
	Lines []CartLine
}

type CartLine struct {
	ProductID string
	Quantity  int
	Snapshot  Product

	CreatedAt time.Time
}

// Len is the number of distinct lines, which is what the header badge shows.
func (c Cart) Len() int {
	return len(c.Lines)
}

func (c Cart) Units() int {
	var units int
	for _, line := range c.Lines {
		units += line.Quantity
	}
	return units
}

func (c Cart) Line(productID string) (CartLine, bool) {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return CartLine{}, false
}
