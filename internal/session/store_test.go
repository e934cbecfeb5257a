package session_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomUser() domain.UserInfo {
	return domain.UserInfo{
		ID:    gofakeit.UUID(),
		Name:  gofakeit.Name(),
		Email: gofakeit.Email(),
		Role:  "user",
	}
}

func TestSignInSignOut(t *testing.T) {
	s := session.NewStore("en", zerolog.Nop())

	_, ok := s.User()
	require.False(t, ok)
	assert.False(t, s.SignedIn())

	user := randomUser()
	s.SignIn(user)

	got, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, user, got)

	s.SignOut()
	assert.False(t, s.SignedIn())

	// signing out twice is harmless
	s.SignOut()
	assert.False(t, s.SignedIn())
}

func TestOrderCount(t *testing.T) {
	s := session.NewStore("en", zerolog.Nop())

	orders := make([]domain.Order, 5)
	s.SyncOrders(orders)
	assert.Equal(t, 5, s.OrderCount())

	s.SetOrderCount(-1)
	assert.Equal(t, 0, s.OrderCount())

	s.SyncOrders(nil)
	assert.Equal(t, 0, s.OrderCount())
}

func TestOrderCountIsIndependentOfCart(t *testing.T) {
	s := session.NewStore("en", zerolog.Nop())
	s.SyncOrders(make([]domain.Order, 5))

	store := cart.NewStore()
	store.AddToCart(domain.Product{ID: "a", Name: "a"})
	store.IncreaseQuantity("a")
	store.DeleteItem("a")
	store.ClearCart()

	assert.Equal(t, 5, s.OrderCount())
}

func TestOrderBadge(t *testing.T) {
	tests := []struct {
		name      string
		signedIn  bool
		count     int
		wantCount int
		wantShow  bool
	}{
		{name: "signed in with orders: shown", signedIn: true, count: 3, wantCount: 3, wantShow: true},
		{name: "signed in without orders: hidden", signedIn: true, count: 0},
		{name: "signed out with orders: hidden", signedIn: false, count: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := session.NewStore("en", zerolog.Nop())
			if tt.signedIn {
				s.SignIn(randomUser())
			}
			s.SetOrderCount(tt.count)

			count, show := s.OrderBadge()
			assert.Equal(t, tt.wantCount, count)
			assert.Equal(t, tt.wantShow, show)
		})
	}
}

func TestLang(t *testing.T) {
	s := session.NewStore("en", zerolog.Nop())
	assert.Equal(t, "en", s.Lang())

	s.SetLang("vi")
	assert.Equal(t, "vi", s.Lang())
}
