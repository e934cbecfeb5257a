// Package shell is the interactive storefront front end: a line-oriented
// command loop over the app's stores and services.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nikolayk812/storefront/internal/app"
	"github.com/nikolayk812/storefront/internal/auth"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/orders"
	"github.com/nikolayk812/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

type Shell struct {
	app      *app.App
	out      io.Writer
	registry *Registry
	now      func() time.Time

	products  []domain.Product
	orderSort orders.SortKey
	orderDir  orders.Direction
}

type Option func(*Shell)

func WithClock(now func() time.Time) Option {
	return func(s *Shell) {
		if now != nil {
			s.now = now
		}
	}
}

func New(a *app.App, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		app:      a,
		out:      out,
		registry: NewRegistry(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerCommands()
	return s
}

// Run reads commands from in until it is exhausted, ctx is done or the user quits.
// A cancelled ctx ends Run even while it waits for input.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	lines, scanErr := scanLines(ctx, in)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		s.printHeader()
		fmt.Fprint(s.out, "> ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(s.out)
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			line = l
		}

		err := s.Exec(ctx, line)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil && !errors.Is(err, errReported) {
			s.printError(err)
		}
	}
}

// scanLines feeds lines of in to the returned channel, which is closed once in
// is exhausted or ctx is done. A read error is delivered on the second channel.
func scanLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	return lines, scanErr
}

// Exec runs a single command line.
func (s *Shell) Exec(ctx context.Context, line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	s.app.Auth.CheckExpiry(s.now())

	s.app.Logger.Debug().Str("command", args[0]).Msg("shell_exec")
	return s.registry.Execute(ctx, args)
}

func (s *Shell) printHeader() {
	view := s.app.CartView.Refresh()

	parts := []string{fmt.Sprintf("cart %d", view.Badge())}
	if n, ok := s.app.Session.OrderBadge(); ok {
		parts = append(parts, fmt.Sprintf("orders %d", n))
	}
	if user, ok := s.app.Session.User(); ok {
		parts = append(parts, displayName(user))
	}
	parts = append(parts, s.app.Session.Lang())

	fmt.Fprintf(s.out, "[%s]\n", strings.Join(parts, " | "))
}

func (s *Shell) printError(err error) {
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			fmt.Fprintf(s.out, "  %s: %s\n", strings.ToLower(f.Field), f.Message)
		}
		return
	}
	fmt.Fprintf(s.out, "error: %v\n", err)
}

func (s *Shell) price(amount decimal.Decimal) string {
	return s.app.Formatter.Format(amount, s.app.Session.Lang())
}

// quote renders the effective price, followed by the struck-through regular
// price when the product is discounted.
func (s *Shell) quote(q pricing.Quote) string {
	if !q.Strikethrough {
		return s.price(q.Effective)
	}
	return fmt.Sprintf("%s (was %s)", s.price(q.Effective), s.price(q.Regular))
}

func displayName(u domain.UserInfo) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
