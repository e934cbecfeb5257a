package orders

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
)

type SortKey string

const (
	SortDate   SortKey = "date"
	SortAmount SortKey = "amount"
	SortStatus SortKey = "status"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortDate, SortAmount, SortStatus:
		return k, nil
	default:
		return "", fmt.Errorf("unknown order sort %q", s)
	}
}

// Toggle flips the direction when the same key is chosen again and starts at
// ascending for a new key.
func Toggle(prevKey SortKey, prevDir Direction, key SortKey) Direction {
	if prevKey == key && prevDir == Asc {
		return Desc
	}
	return Asc
}

// Sort returns a sorted copy; ties keep their original order.
func Sort(list []domain.Order, key SortKey, dir Direction) []domain.Order {
	out := slices.Clone(list)

	var cmp func(a, b domain.Order) int
	switch key {
	case SortDate:
		cmp = func(a, b domain.Order) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortAmount:
		cmp = func(a, b domain.Order) int { return a.Amount.Cmp(b.Amount) }
	case SortStatus:
		cmp = func(a, b domain.Order) int { return strings.Compare(a.Status, b.Status) }
	default:
		return out
	}

	slices.SortStableFunc(out, func(a, b domain.Order) int {
		if dir == Desc {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
	return out
}
