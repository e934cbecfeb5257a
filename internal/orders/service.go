// Package orders lists the signed-in user's orders, keeps the order badge in
// sync and puts past orders back into the cart.
package orders

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/notify"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/session"
	"github.com/rs/zerolog"
)

type Service struct {
	source   port.OrderSource
	session  *session.Store
	cart     port.CartWriter
	notifier port.Notifier
	logger   zerolog.Logger

	mu     sync.RWMutex
	orders []domain.Order
}

type Option func(*Service)

func WithNotifier(n port.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(source port.OrderSource, sess *session.Store, cart port.CartWriter, opts ...Option) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("source is nil")
	}
	if sess == nil {
		return nil, fmt.Errorf("session is nil")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart is nil")
	}

	s := &Service{
		source:   source,
		session:  sess,
		cart:     cart,
		notifier: notify.Nop{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Refresh fetches the user's orders and sets the order count to their number.
// On failure the previous count is left untouched.
func (s *Service) Refresh(ctx context.Context) error {
	list, err := s.source.MyOrders(ctx)
	if err != nil {
		return fmt.Errorf("source.MyOrders: %w", err)
	}

	s.mu.Lock()
	s.orders = list
	s.mu.Unlock()

	s.session.SyncOrders(list)
	s.logger.Debug().Int("orders", len(list)).Msg("orders_refreshed")
	return nil
}

// Load is Refresh for the orders page: failures are reported to the user.
func (s *Service) Load(ctx context.Context) ([]domain.Order, error) {
	if err := s.Refresh(ctx); err != nil {
		notify.Error(s.notifier, "Failed to load orders")
		return nil, err
	}
	return s.Orders(), nil
}

// Orders returns the list from the last successful refresh.
func (s *Service) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.orders)
}

func (s *Service) Find(orderID string) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.ID == orderID {
			return o, true
		}
	}
	return domain.Order{}, false
}

type ReorderResult struct {
	Added    int
	Existing int
}

func (r ReorderResult) Message() string {
	switch {
	case r.Added > 0 && r.Existing > 0:
		return fmt.Sprintf("%d new %s added and %d %s already in cart!",
			r.Added, items(r.Added), r.Existing, items(r.Existing))
	case r.Added > 0:
		return fmt.Sprintf("%d %s added to cart!", r.Added, items(r.Added))
	default:
		return fmt.Sprintf("%d %s already in cart!", r.Existing, items(r.Existing))
	}
}

func items(n int) string {
	if n == 1 {
		return "item"
	}
	return "items"
}

// Reorder adds every item of order to the cart and sends one summary notice.
// Items already in the cart are counted as existing and keep their quantity.
func (s *Service) Reorder(order domain.Order) ReorderResult {
	var res ReorderResult
	for _, it := range order.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			continue
		}
		if s.cart.AddQuietly(it.Product()) {
			res.Added++
		} else {
			res.Existing++
		}
	}

	if res.Added == 0 && res.Existing == 0 {
		notify.Info(s.notifier, "Order has no items to add")
		return res
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Int("added", res.Added).
		Int("existing", res.Existing).
		Msg("order_reordered")
	notify.Success(s.notifier, "%s", res.Message())
	return res
}
