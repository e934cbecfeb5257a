package cartview

import (
	"context"
	"sync/atomic"

	"github.com/nikolayk812/storefront/internal/port"
	"github.com/rs/zerolog"
)

// Binder keeps the latest View of a cart source.
type Binder struct {
	src    port.CartReader
	view   atomic.Pointer[View]
	logger zerolog.Logger
}

func NewBinder(src port.CartReader, logger zerolog.Logger) *Binder {
	b := &Binder{src: src, logger: logger}
	v := NewView(src.Snapshot())
	b.view.Store(&v)
	return b
}

func (b *Binder) View() View {
	return *b.view.Load()
}

// Refresh rebuilds the view from the source's current snapshot without
// waiting for Run to observe the change.
func (b *Binder) Refresh() View {
	v := NewView(b.src.Snapshot())
	b.view.Store(&v)
	return v
}

// Run follows the source until ctx is done or the subscription is closed.
func (b *Binder) Run(ctx context.Context) error {
	updates, cancel := b.src.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-updates:
			if !ok {
				return nil
			}
			v := NewView(c)
			b.view.Store(&v)
			b.logger.Debug().Int("badge", v.Badge()).Msg("cart_view_updated")
		}
	}
}
