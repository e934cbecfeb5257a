// Package app wires the storefront's stores, services and backend client.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nikolayk812/storefront/internal/auth"
	"github.com/nikolayk812/storefront/internal/backend"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/cartview"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/money"
	"github.com/nikolayk812/storefront/internal/notify"
	"github.com/nikolayk812/storefront/internal/obs"
	"github.com/nikolayk812/storefront/internal/orders"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/resilience"
	"github.com/nikolayk812/storefront/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const tokenSkew = 30 * time.Second

// App holds every long-lived component of a client session.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Metrics   *prometheus.Registry
	Formatter *money.Formatter
	Notifier  port.Notifier

	Cart     *cart.Store
	CartView *cartview.Binder
	Session  *session.Store
	Tokens   *auth.TokenKeeper

	Backend  *backend.Client
	Auth     *auth.Service
	Orders   *orders.Service
	Checkout *checkout.Flow
}

type options struct {
	card       port.CardConfirmer
	httpClient *http.Client
	notifier   port.Notifier
}

type Option func(*options)

// WithCard attaches a card widget; the simulated one is used otherwise.
func WithCard(c port.CardConfirmer) Option {
	return func(o *options) {
		o.card = c
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

func WithNotifier(n port.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

func New(cfg *config.Config, logger zerolog.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	o := options{
		card:     checkout.SimulatedCard{},
		notifier: notify.Nop{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Transport: obs.HTTPTransport(http.DefaultTransport, nil)}
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   prometheus.NewRegistry(),
		Formatter: money.NewFormatter(),
		Notifier:  o.notifier,
	}
	if err := resilience.Register(a.Metrics); err != nil {
		return nil, fmt.Errorf("resilience.Register: %w", err)
	}

	a.Cart = cart.NewStore(
		cart.WithNotifier(a.Notifier),
		cart.WithLogger(logger.With().Str("component", "cart").Logger()),
	)
	a.CartView = cartview.NewBinder(a.Cart, logger.With().Str("component", "cartview").Logger())
	a.Session = session.NewStore(a.Formatter.Resolve(cfg.Locale).Lang, logger.With().Str("component", "session").Logger())
	a.Tokens = auth.NewTokenKeeper(tokenSkew)

	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Target:       "backend",
		MinRequests:  cfg.BreakerMinRequests,
		FailureRatio: cfg.BreakerFailureRatio,
		OpenFor:      cfg.BreakerOpenFor,
	}, resilience.WithBreakerLogger(logger.With().Str("component", "breaker").Logger()))

	var err error
	a.Backend, err = backend.NewClient(cfg.BackendURL, resilience.HTTPClient{
		Client:      o.httpClient,
		Breaker:     breaker,
		BaseBackoff: cfg.HTTPBackoff,
		MaxAttempts: cfg.HTTPMaxAttempts,
		Jitter:      0.2,
		Timeout:     cfg.HTTPTimeout,
	}, a.Tokens, backend.WithLogger(logger.With().Str("component", "backend").Logger()))
	if err != nil {
		return nil, fmt.Errorf("backend.NewClient: %w", err)
	}

	a.Orders, err = orders.NewService(a.Backend, a.Session, a.Cart,
		orders.WithNotifier(a.Notifier),
		orders.WithLogger(logger.With().Str("component", "orders").Logger()),
	)
	if err != nil {
		return nil, fmt.Errorf("orders.NewService: %w", err)
	}

	a.Auth, err = auth.NewService(a.Backend, a.Session, a.Tokens, a.Orders,
		auth.WithNotifier(a.Notifier),
		auth.WithLogger(logger.With().Str("component", "auth").Logger()),
	)
	if err != nil {
		return nil, fmt.Errorf("auth.NewService: %w", err)
	}

	a.Checkout, err = checkout.NewFlow(a.Backend, a.Backend, o.card, a.Cart,
		checkout.WithNotifier(a.Notifier),
		checkout.WithOrderRefresher(a.Orders),
		checkout.WithLogger(logger.With().Str("component", "checkout").Logger()),
	)
	if err != nil {
		return nil, fmt.Errorf("checkout.NewFlow: %w", err)
	}

	return a, nil
}

// Run keeps the cart view current until ctx is done.
func (a *App) Run(ctx context.Context) error {
	return a.CartView.Run(ctx)
}
