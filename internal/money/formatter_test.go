package money_test

import (
	"testing"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/currency"
)

func TestFormat(t *testing.T) {
	f := money.NewFormatter()

	tests := []struct {
		name   string
		amount decimal.Decimal
		lang   string
		want   string
	}{
		{
			name:   "reference locale: two fraction digits",
			amount: decimal.NewFromInt(10),
			lang:   "en",
			want:   "$10.00",
		},
		{
			name:   "alternate locale: converted without fraction digits",
			amount: decimal.NewFromInt(10),
			lang:   "vi",
			want:   "250.000\u00a0₫",
		},
		{
			name:   "reference locale: grouping",
			amount: decimal.RequireFromString("1234.5"),
			lang:   "en",
			want:   "$1,234.50",
		},
		{
			name:   "reference locale: rounding to cents",
			amount: decimal.RequireFromString("19.999"),
			lang:   "en",
			want:   "$20.00",
		},
		{
			name:   "region subtag resolves to base language",
			amount: decimal.NewFromInt(2),
			lang:   "vi-VN",
			want:   "50.000\u00a0₫",
		},
		{
			name:   "underscore separator resolves",
			amount: decimal.NewFromInt(2),
			lang:   "vi_VN",
			want:   "50.000\u00a0₫",
		},
		{
			name:   "unknown locale falls back to reference",
			amount: decimal.NewFromInt(10),
			lang:   "fr",
			want:   "$10.00",
		},
		{
			name:   "unset locale falls back to reference",
			amount: decimal.NewFromInt(10),
			lang:   "",
			want:   "$10.00",
		},
		{
			name:   "garbage locale falls back to reference",
			amount: decimal.NewFromInt(10),
			lang:   "???",
			want:   "$10.00",
		},
		{
			name:   "negative amount",
			amount: decimal.NewFromInt(-5),
			lang:   "en",
			want:   "-$5.00",
		},
		{
			name:   "zero",
			amount: decimal.Zero,
			lang:   "en",
			want:   "$0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Format(tt.amount, tt.lang))
		})
	}
}

func TestConvert(t *testing.T) {
	f := money.NewFormatter()

	m := f.Convert(decimal.NewFromInt(10), "vi")
	assert.True(t, decimal.NewFromInt(250000).Equal(m.Amount))
	assert.Equal(t, money.VND, m.Currency)

	m = f.Convert(decimal.NewFromInt(10), "de")
	assert.True(t, decimal.NewFromInt(10).Equal(m.Amount))
	assert.Equal(t, currency.USD, m.Currency)
}

func TestFormatMoney(t *testing.T) {
	f := money.NewFormatter()

	m := f.Convert(decimal.NewFromInt(10), "vi")
	assert.Equal(t, "250.000\u00a0₫", f.FormatMoney(m))

	assert.Equal(t, "-$5.00", f.FormatMoney(domain.Money{Amount: decimal.NewFromInt(-5), Currency: currency.USD}))
	assert.Equal(t, "EUR 3.50", f.FormatMoney(domain.Money{Amount: decimal.RequireFromString("3.5"), Currency: currency.EUR}))
}

func TestWithLocale(t *testing.T) {
	euro := money.Locale{
		Lang:           "de",
		Tag:            money.English.Tag,
		Currency:       currency.EUR,
		Rate:           decimal.RequireFromString("0.5"),
		FractionDigits: 2,
		Symbol:         "€",
	}
	f := money.NewFormatter(money.WithLocale(euro))

	assert.Equal(t, "€5.00", f.Format(decimal.NewFromInt(10), "de-DE"))
	assert.ElementsMatch(t, []string{"en", "vi", "de"}, f.Languages())
}

func TestResolveAndLookup(t *testing.T) {
	f := money.NewFormatter()

	tests := []struct {
		lang     string
		expected string
		found    bool
	}{
		{lang: "vi", expected: "vi", found: true},
		{lang: "vi_VN", expected: "vi", found: true},
		{lang: "en-GB", expected: "en", found: true},
		{lang: "fr", expected: "en", found: false},
		{lang: "", expected: "en", found: false},
		{lang: "!!", expected: "en", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.Resolve(tt.lang).Lang)

			_, ok := f.Lookup(tt.lang)
			assert.Equal(t, tt.found, ok)
		})
	}
}
