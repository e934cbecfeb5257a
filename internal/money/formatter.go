// Package money converts reference-currency amounts into display strings for
// the storefront's supported locales.
package money

import (
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Locale is one row of the conversion table.
type Locale struct {
	Lang           string
	Tag            language.Tag
	Currency       currency.Unit
	Rate           decimal.Decimal
	FractionDigits int32
	Symbol         string
	SymbolAfter    bool
}

const nbsp = "\u00a0"

// VND has no predeclared unit in x/text/currency.
var VND = currency.MustParseISO("VND")

var (
	English = Locale{
		Lang:           "en",
		Tag:            language.AmericanEnglish,
		Currency:       currency.USD,
		Rate:           decimal.NewFromInt(1),
		FractionDigits: 2,
		Symbol:         "$",
	}
	Vietnamese = Locale{
		Lang:           "vi",
		Tag:            language.MustParse("vi-VN"),
		Currency:       VND,
		Rate:           decimal.NewFromInt(25000),
		FractionDigits: 0,
		Symbol:         "₫",
		SymbolAfter:    true,
	}
)

type Formatter struct {
	locales   map[string]Locale
	reference Locale
}

type Option func(*Formatter)

// WithLocale adds or replaces a table entry.
func WithLocale(l Locale) Option {
	return func(f *Formatter) {
		f.locales[l.Lang] = l
	}
}

func NewFormatter(opts ...Option) *Formatter {
	f := &Formatter{
		locales: map[string]Locale{
			English.Lang:    English,
			Vietnamese.Lang: Vietnamese,
		},
		reference: English,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Resolve picks the table entry for a locale code such as "vi", "vi-VN" or "en_US".
// Unknown or unparsable codes resolve to the reference locale.
func (f *Formatter) Resolve(lang string) Locale {
	if l, ok := f.Lookup(lang); ok {
		return l
	}
	return f.reference
}

// Lookup is Resolve without the fallback.
func (f *Formatter) Lookup(lang string) (Locale, bool) {
	code := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if code == "" {
		return Locale{}, false
	}

	tag, err := language.Parse(code)
	if err != nil {
		return Locale{}, false
	}
	base, _ := tag.Base()

	l, ok := f.locales[base.String()]
	return l, ok
}

// Languages lists the codes present in the table.
func (f *Formatter) Languages() []string {
	langs := make([]string, 0, len(f.locales))
	for lang := range f.locales {
		langs = append(langs, lang)
	}
	return langs
}

// Convert moves an amount in the reference currency into the locale's
// currency, rounded to the locale's fraction digits.
func (f *Formatter) Convert(amount decimal.Decimal, lang string) domain.Money {
	l := f.Resolve(lang)
	return domain.Money{
		Amount:   amount.Mul(l.Rate).Round(l.FractionDigits),
		Currency: l.Currency,
	}
}

func (f *Formatter) Format(amount decimal.Decimal, lang string) string {
	return f.FormatMoney(f.Convert(amount, lang))
}

// FormatMoney renders an amount that is already denominated in one of the
// table's currencies. Other currencies print as "<ISO code> <amount>".
func (f *Formatter) FormatMoney(m domain.Money) string {
	l, ok := f.byCurrency(m.Currency)
	if !ok {
		return m.Currency.String() + " " + m.Amount.StringFixed(2)
	}

	amount := m.Amount.Round(l.FractionDigits)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}

	p := message.NewPrinter(l.Tag)
	digits := p.Sprint(number.Decimal(amount.InexactFloat64(), number.Scale(int(l.FractionDigits))))

	if l.SymbolAfter {
		return sign + digits + nbsp + l.Symbol
	}
	return sign + l.Symbol + digits
}

func (f *Formatter) byCurrency(unit currency.Unit) (Locale, bool) {
	if f.reference.Currency == unit {
		return f.reference, true
	}
	for _, l := range f.locales {
		if l.Currency == unit {
			return l, true
		}
	}
	return Locale{}, false
}
