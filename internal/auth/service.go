// Package auth signs users in and out and keeps the bearer token the backend
// client sends with authenticated calls.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/nikolayk812/storefront/internal/backend"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/notify"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/session"
	"github.com/rs/zerolog"
)

type orderRefresher interface {
	Refresh(ctx context.Context) error
}

type Service struct {
	gateway  port.AuthGateway
	session  *session.Store
	tokens   *TokenKeeper
	orders   orderRefresher
	notifier port.Notifier
	logger   zerolog.Logger
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

func NewService(gateway port.AuthGateway, sess *session.Store, tokens *TokenKeeper, orders orderRefresher, opts ...Option) (*Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway is nil")
	}
	if sess == nil {
		return nil, fmt.Errorf("session is nil")
	}
	if tokens == nil {
		return nil, fmt.Errorf("tokens is nil")
	}

	s := &Service{
		gateway:  gateway,
		session:  sess,
		tokens:   tokens,
		orders:   orders,
		notifier: notify.Nop{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SignIn logs in, keeps the token and refreshes the order badge. A failed
// order refresh is logged and does not fail the sign-in.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (domain.UserInfo, error) {
	req.normalize()
	if err := req.Validate(); err != nil {
		return domain.UserInfo{}, err
	}

	res, err := s.gateway.Login(ctx, req.Email, req.Password)
	if err != nil {
		notify.Error(s.notifier, "%s", backend.UserMessage(err, "Login failed"))
		return domain.UserInfo{}, fmt.Errorf("gateway.Login: %w", err)
	}

	s.tokens.Set(res.Token)
	s.session.SignIn(res.User)

	if s.orders != nil {
		if err := s.orders.Refresh(ctx); err != nil {
			s.logger.Warn().Err(err).Str("user_id", res.User.ID).Msg("order_count_refresh_failed")
		}
	}

	notify.Success(s.notifier, "%s", orDefault(res.Message, "Login successful"))
	return res.User, nil
}

func (s *Service) SignUp(ctx context.Context, req SignUpRequest) error {
	req.normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	msg, err := s.gateway.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		notify.Error(s.notifier, "%s", backend.UserMessage(err, "Registration failed"))
		return fmt.Errorf("gateway.Register: %w", err)
	}

	notify.Success(s.notifier, "%s", orDefault(msg, "Registration successful"))
	return nil
}

func (s *Service) SignOut() {
	wasSignedIn := s.session.SignedIn()
	s.tokens.Clear()
	s.session.SignOut()
	if wasSignedIn {
		notify.Success(s.notifier, "Logged out successfully")
	}
}

// CheckExpiry signs the user out once the held token has expired and reports
// whether it did.
func (s *Service) CheckExpiry(now time.Time) bool {
	if s.tokens.Token() == "" || !s.tokens.Expired(now) {
		return false
	}

	s.logger.Info().Msg("token_expired")
	s.tokens.Clear()
	s.session.SignOut()
	notify.Info(s.notifier, "Your session has expired, please sign in again")
	return true
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
