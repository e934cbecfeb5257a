// Package checkout drives payment of a placed order: method selection, card
// payment through the processor's widget, and confirmation with the backend.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/nikolayk812/storefront/internal/backend"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/notify"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type Step string

const (
	StepSelection  Step = "selection"
	StepStripe     Step = "stripe"
	StepProcessing Step = "processing"
	StepSucceeded  Step = "succeeded"
)

type Method string

const (
	MethodStripe Method = "stripe"
	MethodCOD    Method = "cod"
)

var (
	ErrInvalidStep  = errors.New("checkout: action not allowed at this step")
	ErrNoOrder      = errors.New("checkout: no order loaded")
	ErrNotSucceeded = errors.New("checkout: payment not completed")
)

const intentSucceeded = "succeeded"

type orderRefresher interface {
	Refresh(ctx context.Context) error
}

type Flow struct {
	orders   port.OrderSource
	payments port.PaymentGateway
	card     port.CardConfirmer
	cart     port.CartWriter
	refresh  orderRefresher
	notifier port.Notifier
	logger   zerolog.Logger

	mu    sync.Mutex
	order *domain.Order
	step  Step
}

type Option func(*Flow)

func WithNotifier(n port.Notifier) Option {
	return func(f *Flow) {
		if n != nil {
			f.notifier = n
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(f *Flow) {
		f.logger = logger
	}
}

// WithOrderRefresher refreshes the order badge after a confirmed payment.
func WithOrderRefresher(r orderRefresher) Option {
	return func(f *Flow) {
		f.refresh = r
	}
}

func NewFlow(orders port.OrderSource, payments port.PaymentGateway, card port.CardConfirmer, cart port.CartWriter, opts ...Option) (*Flow, error) {
	if orders == nil {
		return nil, fmt.Errorf("orders is nil")
	}
	if payments == nil {
		return nil, fmt.Errorf("payments is nil")
	}
	if card == nil {
		return nil, fmt.Errorf("card is nil")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart is nil")
	}

	f := &Flow{
		orders:   orders,
		payments: payments,
		card:     card,
		cart:     cart,
		notifier: notify.Nop{},
		logger:   zerolog.Nop(),
		step:     StepSelection,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Load fetches the order to pay and starts over at method selection.
func (f *Flow) Load(ctx context.Context, orderID string) (domain.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return domain.Order{}, fmt.Errorf("orderID is empty")
	}

	order, err := f.orders.GetOrder(ctx, orderID)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError && !errors.Is(err, backend.ErrUnauthenticated) {
			notify.Error(f.notifier, "Order not found")
		} else {
			notify.Error(f.notifier, "Failed to load order details")
		}
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = &order
	f.step = StepSelection

	f.logger.Debug().Str("order_id", order.ID).Msg("checkout_loaded")
	return order, nil
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *Flow) Order() (domain.Order, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.order == nil {
		return domain.Order{}, false
	}
	return *f.order, true
}

// Amount is the order total as the backend computed it. It is passed to the
// payment side as is.
func (f *Flow) Amount() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.order == nil {
		return decimal.Zero
	}
	return f.order.Amount
}

func (f *Flow) Choose(method Method) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.order == nil {
		return ErrNoOrder
	}
	if f.step != StepSelection {
		return fmt.Errorf("choose %s at %s: %w", method, f.step, ErrInvalidStep)
	}

	switch method {
	case MethodStripe:
		f.moveLocked(StepStripe)
	case MethodCOD:
		f.logger.Info().Str("order_id", f.order.ID).Msg("checkout_cod")
		notify.Success(f.notifier, "Order confirmed with Cash on Delivery")
	default:
		return fmt.Errorf("unknown payment method %q", method)
	}
	return nil
}

// Cancel leaves the card step and returns to method selection.
func (f *Flow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepStripe {
		return fmt.Errorf("cancel at %s: %w", f.step, ErrInvalidStep)
	}
	f.moveLocked(StepSelection)
	return nil
}

// PayByCard creates a payment intent, confirms it through the card widget and
// then with the backend. On success the cart is cleared. Any failure returns
// the flow to the card step.
func (f *Flow) PayByCard(ctx context.Context) (domain.Order, error) {
	f.mu.Lock()
	if f.order == nil {
		f.mu.Unlock()
		return domain.Order{}, ErrNoOrder
	}
	if f.step != StepStripe {
		step := f.step
		f.mu.Unlock()
		return domain.Order{}, fmt.Errorf("pay at %s: %w", step, ErrInvalidStep)
	}
	orderID := f.order.ID
	f.moveLocked(StepProcessing)
	f.mu.Unlock()

	order, err := f.pay(ctx, orderID)
	if err != nil {
		f.mu.Lock()
		f.moveLocked(StepStripe)
		f.mu.Unlock()
		return domain.Order{}, err
	}

	f.cart.ClearCart()
	if f.refresh != nil {
		if err := f.refresh.Refresh(ctx); err != nil {
			f.logger.Warn().Err(err).Str("order_id", orderID).Msg("order_count_refresh_failed")
		}
	}

	f.mu.Lock()
	f.order = &order
	f.moveLocked(StepSucceeded)
	f.mu.Unlock()

	notify.Success(f.notifier, "Payment confirmed successfully!")
	return order, nil
}

func (f *Flow) pay(ctx context.Context, orderID string) (domain.Order, error) {
	secret, err := f.payments.CreatePaymentIntent(ctx, orderID)
	if err != nil {
		notify.Error(f.notifier, "%s", backend.UserMessage(err, "Payment processing failed"))
		return domain.Order{}, fmt.Errorf("payments.CreatePaymentIntent: %w", err)
	}

	intent, err := f.card.ConfirmCardPayment(ctx, secret)
	if err != nil {
		notify.Error(f.notifier, "%s", cardMessage(err))
		return domain.Order{}, fmt.Errorf("card.ConfirmCardPayment: %w", err)
	}
	if intent.Status != intentSucceeded {
		notify.Error(f.notifier, "Payment was not completed")
		return domain.Order{}, fmt.Errorf("intent %s is %s: %w", intent.ID, intent.Status, ErrNotSucceeded)
	}

	order, err := f.payments.ConfirmPayment(ctx, intent.ID, orderID)
	if err != nil {
		notify.Error(f.notifier, "%s", backend.UserMessage(err, "Failed to confirm payment"))
		return domain.Order{}, fmt.Errorf("payments.ConfirmPayment: %w", err)
	}

	f.logger.Info().Str("order_id", orderID).Str("payment_intent", intent.ID).Msg("checkout_paid")
	return order, nil
}

func cardMessage(err error) string {
	switch {
	case errors.Is(err, ErrCardDeclined):
		return "Your card was declined."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Payment was cancelled"
	default:
		return "Payment processing failed"
	}
}

func (f *Flow) moveLocked(next Step) {
	if f.step == next {
		return
	}
	f.logger.Debug().Str("from", string(f.step)).Str("step", string(next)).Msg("checkout_step")
	f.step = next
}
