package backend

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// number decodes a JSON number, a numeric string or null. Anything else
// decodes as absent instead of failing the whole payload.
type number struct {
	v *float64
}

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		n.v = nil
		return nil
	}

	s := string(b)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		n.v = nil
		return nil
	}
	n.v = &f
	return nil
}

func (n number) decimal() decimal.Decimal {
	if n.v == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*n.v)
}

// ref is an id that may arrive as a plain string or as a populated
// document with an _id field.
type ref string

func (r *ref) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = ref(s)
		return nil
	}
	var doc struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &doc); err == nil {
		*r = ref(doc.ID)
		return nil
	}
	*r = ""
	return nil
}

type productDTO struct {
	ID                   string   `json:"_id"`
	Name                 string   `json:"name"`
	Price                number   `json:"price"`
	DiscountedPercentage number   `json:"discountedPercentage"`
	Offer                bool     `json:"offer"`
	Image                string   `json:"image"`
	Images               []string `json:"images"`
	Category             string   `json:"category"`
	Brand                string   `json:"brand"`
	Description          string   `json:"description"`
}

func (d productDTO) toDomain() domain.Product {
	return domain.NewProduct(domain.ProductRecord{
		ID:                 d.ID,
		Name:               d.Name,
		Price:              d.Price.v,
		DiscountPercentage: d.DiscountedPercentage.v,
		HasOffer:           d.Offer,
		Image:              d.Image,
		Images:             d.Images,
		Category:           d.Category,
		Brand:              d.Brand,
		Description:        d.Description,
	})
}

type userDTO struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (d userDTO) toDomain() domain.UserInfo {
	return domain.UserInfo{ID: d.ID, Name: d.Name, Email: d.Email, Role: d.Role}
}

type orderItemDTO struct {
	ProductID ref    `json:"productId"`
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Price     number `json:"price"`
	Quantity  number `json:"quantity"`
	Image     string `json:"image"`
}

func (d orderItemDTO) toDomain() domain.OrderItem {
	id := string(d.ProductID)
	if id == "" {
		id = d.ID
	}

	qty := 1
	if d.Quantity.v != nil && *d.Quantity.v >= 1 {
		qty = int(*d.Quantity.v)
	}

	price := d.Price.decimal()
	if price.IsNegative() {
		price = decimal.Zero
	}

	return domain.OrderItem{
		ProductID: id,
		Name:      d.Name,
		Image:     d.Image,
		Price:     price,
		Quantity:  qty,
	}
}

type orderDTO struct {
	ID            string         `json:"_id"`
	Status        string         `json:"status"`
	PaymentStatus string         `json:"paymentStatus"`
	PaymentMethod string         `json:"paymentMethod"`
	Amount        number         `json:"amount"`
	Items         []orderItemDTO `json:"items"`
	CreatedAt     string         `json:"createdAt"`
	Date          string         `json:"date"`
}

func (d orderDTO) toDomain() domain.Order {
	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, it.toDomain())
	}

	created := parseTime(d.CreatedAt)
	if created.IsZero() {
		created = parseTime(d.Date)
	}

	return domain.Order{
		ID:            d.ID,
		Status:        d.Status,
		PaymentStatus: d.PaymentStatus,
		PaymentMethod: d.PaymentMethod,
		Amount:        d.Amount.decimal(),
		Items:         items,
		CreatedAt:     created,
	}
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
