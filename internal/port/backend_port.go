package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

type ProductSource interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
}

type LoginResult struct {
	User    domain.UserInfo
	Token   string
	Message string
}

type AuthGateway interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
	Register(ctx context.Context, name, email, password string) (message string, err error)
}

type OrderSource interface {
	MyOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
}

type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, orderID string) (clientSecret string, err error)
	ConfirmPayment(ctx context.Context, paymentIntentID, orderID string) (domain.Order, error)
}

type PaymentIntent struct {
	ID     string
	Status string
}

// CardConfirmer is the payment processor's hosted card widget.
type CardConfirmer interface {
	ConfirmCardPayment(ctx context.Context, clientSecret string) (PaymentIntent, error)
}
