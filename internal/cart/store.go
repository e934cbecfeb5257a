// Package cart owns the shopping cart of a client session.
//
// Store is the only component allowed to mutate cart lines. Every operation is
// synchronous and total: invalid requests are ignored rather than reported.
package cart

import (
	"slices"
	"sync"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/notify"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/rs/zerolog"
)

const nameLimit = 10

type Store struct {
	mu    sync.RWMutex
	lines map[string]*domain.CartLine
	order []string

	subs    map[int]chan domain.Cart
	nextSub int

	notifier port.Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

type Option func(*Store)

func WithNotifier(n port.Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		lines:    make(map[string]*domain.CartLine),
		subs:     make(map[int]chan domain.Cart),
		notifier: notify.Nop{},
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddToCart creates a line with quantity 1 for a product that is not in the
// cart yet. Adding a product that is already present changes nothing.
func (s *Store) AddToCart(p domain.Product) bool {
	if !s.add(p) {
		return false
	}
	notify.Success(s.notifier, "%s... is added successfully!", truncate(p.Name, nameLimit))
	return true
}

// AddQuietly is AddToCart without the notice, for callers that report a
// summary of several adds themselves.
func (s *Store) AddQuietly(p domain.Product) bool {
	return s.add(p)
}

func (s *Store) IncreaseQuantity(productID string) bool {
	if !s.step(productID, 1) {
		return false
	}
	notify.Success(s.notifier, "Quantity increased successfully!")
	return true
}

// DecreaseQuantity never takes a line below quantity 1.
func (s *Store) DecreaseQuantity(productID string) bool {
	if !s.step(productID, -1) {
		return false
	}
	notify.Success(s.notifier, "Quantity decreased successfully!")
	return true
}

// Notices are sent by the exported methods once the lock is released, so a
// notifier may read the cart.
func (s *Store) add(p domain.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lines[p.ID]; ok {
		s.logger.Debug().Str("product_id", p.ID).Msg("cart_add_ignored")
		return false
	}

	s.lines[p.ID] = &domain.CartLine{
		ProductID: p.ID,
		Quantity:  1,
		Snapshot:  p,
		CreatedAt: s.now(),
	}
	s.order = append(s.order, p.ID)

	s.logger.Debug().Str("product_id", p.ID).Int("lines", len(s.order)).Msg("cart_add")
	s.publishLocked()
	return true
}

func (s *Store) step(productID string, delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[productID]
	if !ok || line.Quantity+delta < 1 {
		return false
	}
	line.Quantity += delta

	msg := "cart_increase"
	if delta < 0 {
		msg = "cart_decrease"
	}
	s.logger.Debug().Str("product_id", productID).Int("quantity", line.Quantity).Msg(msg)
	s.publishLocked()
	return true
}

func (s *Store) DeleteItem(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lines[productID]; !ok {
		return false
	}
	delete(s.lines, productID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == productID })

	s.logger.Debug().Str("product_id", productID).Msg("cart_delete")
	s.publishLocked()

	return true
}

func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = make(map[string]*domain.CartLine)
	s.order = nil

	s.logger.Debug().Msg("cart_clear")
	s.publishLocked()
}

func (s *Store) Snapshot() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) Line(productID string) (domain.CartLine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	line, ok := s.lines[productID]
	if !ok {
		return domain.CartLine{}, false
	}
	return *line, true
}

func (s *Store) Contains(productID string) bool {
	_, ok := s.Line(productID)
	return ok
}

// Subscribe delivers the current cart immediately and again after every
// change. A subscriber that falls behind only sees the latest cart.
// The returned func releases the subscription and closes the channel.
func (s *Store) Subscribe() (<-chan domain.Cart, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++

	ch := make(chan domain.Cart, 1)
	ch <- s.snapshotLocked()
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) snapshotLocked() domain.Cart {
	lines := make([]domain.CartLine, 0, len(s.order))
	for _, id := range s.order {
		lines = append(lines, *s.lines[id])
	}
	return domain.Cart{Lines: lines}
}

func (s *Store) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		// drop a stale undelivered snapshot so the send never blocks
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
