// Package catalog filters, sorts and pages the product list for the shop view.
package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const DefaultPageSize = 12

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortName      SortKey = "name"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortNewest, nil
	case SortNewest, SortPriceLow, SortPriceHigh, SortName:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort %q", s)
	}
}

type Query struct {
	Category   string
	Brand      string
	Search     string
	PriceRange string
	Sort       SortKey
	Page       int
	PageSize   int
	Lang       language.Tag
}

type Page struct {
	Items []domain.Product
	Page  int
	Pages int
	Total int
}

// From and To are the 1-based positions of the first and last item shown,
// both zero for an empty page.
func (p Page) From(pageSize int) int {
	if p.Total == 0 {
		return 0
	}
	return (p.Page-1)*pageSize + 1
}

func (p Page) To(pageSize int) int {
	if p.Total == 0 {
		return 0
	}
	return p.From(pageSize) + len(p.Items) - 1
}

// Apply never modifies products. An unparsable price range is ignored.
func Apply(products []domain.Product, q Query) Page {
	filtered := filter(products, q)
	sortProducts(filtered, q.Sort, q.Lang)

	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := max((len(filtered)+size-1)/size, 1)
	page := min(max(q.Page, 1), pages)

	start := min((page-1)*size, len(filtered))
	end := min(start+size, len(filtered))

	return Page{
		Items: filtered[start:end],
		Page:  page,
		Pages: pages,
		Total: len(filtered),
	}
}

func filter(products []domain.Product, q Query) []domain.Product {
	category := strings.ToLower(strings.TrimSpace(q.Category))
	brand := strings.ToLower(strings.TrimSpace(q.Brand))
	search := strings.ToLower(strings.TrimSpace(q.Search))
	lo, hi, hasRange := ParsePriceRange(q.PriceRange)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if category != "" && !strings.Contains(strings.ToLower(p.Category), category) {
			continue
		}
		if brand != "" && !strings.Contains(strings.ToLower(p.Brand), brand) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if hasRange {
			if lo != nil && p.Price.LessThan(*lo) {
				continue
			}
			if hi != nil && p.Price.GreaterThan(*hi) {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func sortProducts(products []domain.Product, key SortKey, lang language.Tag) {
	switch key {
	case SortPriceLow:
		slices.SortStableFunc(products, func(a, b domain.Product) int { return a.Price.Cmp(b.Price) })
	case SortPriceHigh:
		slices.SortStableFunc(products, func(a, b domain.Product) int { return b.Price.Cmp(a.Price) })
	case SortName:
		if lang == language.Und {
			lang = language.English
		}
		c := collate.New(lang, collate.IgnoreCase)
		slices.SortStableFunc(products, func(a, b domain.Product) int { return c.CompareString(a.Name, b.Name) })
	}
}

// ParsePriceRange reads "min-max" where either bound may be left empty.
func ParsePriceRange(s string) (lo, hi *decimal.Decimal, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil, false
	}
	left, right, found := strings.Cut(s, "-")
	if !found {
		return nil, nil, false
	}

	parse := func(v string) (*decimal.Decimal, bool) {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, true
		}
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return nil, false
		}
		return &d, true
	}

	lo, okLo := parse(left)
	hi, okHi := parse(right)
	if !okLo || !okHi || (lo == nil && hi == nil) {
		return nil, nil, false
	}
	return lo, hi, true
}

type Facets struct {
	Categories []string
	Brands     []string
}

// FacetsOf returns the distinct non-empty categories and brands in first-seen order.
func FacetsOf(products []domain.Product) Facets {
	var f Facets
	seenCat := make(map[string]bool)
	seenBrand := make(map[string]bool)
	for _, p := range products {
		if c := strings.TrimSpace(p.Category); c != "" && !seenCat[strings.ToLower(c)] {
			seenCat[strings.ToLower(c)] = true
			f.Categories = append(f.Categories, c)
		}
		if b := strings.TrimSpace(p.Brand); b != "" && !seenBrand[strings.ToLower(b)] {
			seenBrand[strings.ToLower(b)] = true
			f.Brands = append(f.Brands, b)
		}
	}
	return f
}
