// Package session tracks the signed-in user and the pending-orders counter for
// the lifetime of the running client. Nothing here is persisted.
package session

import (
	"sync"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/rs/zerolog"
)

type Store struct {
	mu         sync.RWMutex
	user       *domain.UserInfo
	orderCount int
	lang       string
	logger     zerolog.Logger
}

func NewStore(lang string, logger zerolog.Logger) *Store {
	return &Store{lang: lang, logger: logger}
}

func (s *Store) SignIn(user domain.UserInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := user
	s.user = &u
	s.logger.Info().Str("user_id", user.ID).Msg("session_signed_in")
}

// SignOut forgets the user. The order count slot is independent and left as is;
// the order badge is hidden while nobody is signed in.
func (s *Store) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return
	}
	s.logger.Info().Str("user_id", s.user.ID).Msg("session_signed_out")
	s.user = nil
}

func (s *Store) User() (domain.UserInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return domain.UserInfo{}, false
	}
	return *s.user, true
}

func (s *Store) SignedIn() bool {
	_, ok := s.User()
	return ok
}

// SetOrderCount overwrites the counter; negative values clamp to zero.
func (s *Store) SetOrderCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 0 {
		n = 0
	}
	s.orderCount = n
	s.logger.Debug().Int("order_count", n).Msg("session_order_count")
}

// SyncOrders sets the counter from a freshly fetched order list.
func (s *Store) SyncOrders(orders []domain.Order) {
	s.SetOrderCount(len(orders))
}

func (s *Store) OrderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orderCount
}

// OrderBadge reports the count to show next to "Orders" and whether to show it at all.
func (s *Store) OrderBadge() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil || s.orderCount <= 0 {
		return 0, false
	}
	return s.orderCount, true
}

func (s *Store) Lang() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lang
}

func (s *Store) SetLang(lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lang = lang
}
