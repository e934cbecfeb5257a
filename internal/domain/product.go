package domain

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Product is a read-only catalog record. Numeric fields are always set:
// NewProduct decides the defaults once so callers never guard against missing values.
type Product struct {
	ID                 string
	Name               string
	Price              decimal.Decimal
	DiscountPercentage decimal.Decimal
	HasOffer           bool
	Image              string

	Category    string
	Brand       string
	Description string
}

// ProductRecord is the loosely typed shape products arrive in.
type ProductRecord struct {
	ID                 string
	Name               string
	Price              *float64
	DiscountPercentage *float64
	HasOffer           bool
	Image              string
	Images             []string
	Category           string
	Brand              string
	Description        string
}

func NewProduct(r ProductRecord) Product {
	image := strings.TrimSpace(r.Image)
	if image == "" && len(r.Images) > 0 {
		image = r.Images[0]
	}

	discount := finiteOrZero(r.DiscountPercentage)
	if discount.GreaterThan(hundred) {
		discount = hundred
	}

	return Product{
		ID:                 r.ID,
		Name:               r.Name,
		Price:              finiteOrZero(r.Price),
		DiscountPercentage: discount,
		HasOffer:           r.HasOffer,
		Image:              image,
		Category:           r.Category,
		Brand:              r.Brand,
		Description:        r.Description,
	}
}

// HasDiscount reports whether a strikethrough regular price should be shown.
func (p Product) HasDiscount() bool {
	return p.HasOffer && p.DiscountPercentage.IsPositive()
}

func finiteOrZero(v *float64) decimal.Decimal {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v)
}
