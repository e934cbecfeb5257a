package checkout

import (
	"context"
	"errors"
	"strings"

	"github.com/nikolayk812/storefront/internal/port"
)

var (
	ErrCardDeclined  = errors.New("checkout: card declined")
	ErrInvalidSecret = errors.New("checkout: invalid client secret")
)

// SimulatedCard stands in for the hosted card widget when no real processor
// is attached. Intent ids come from the client secret, "pi_x_secret_y" -> "pi_x".
type SimulatedCard struct {
	Decline bool
}

func (c SimulatedCard) ConfirmCardPayment(ctx context.Context, clientSecret string) (port.PaymentIntent, error) {
	if err := ctx.Err(); err != nil {
		return port.PaymentIntent{}, err
	}

	id, _, found := strings.Cut(clientSecret, "_secret_")
	if !found || id == "" {
		return port.PaymentIntent{}, ErrInvalidSecret
	}
	if c.Decline {
		return port.PaymentIntent{ID: id, Status: "requires_payment_method"}, ErrCardDeclined
	}
	return port.PaymentIntent{ID: id, Status: intentSucceeded}, nil
}
