package shop

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"Storefront/internal/catalog"
	"Storefront/internal/storage"
)

func (s *Store) persistLocked(d dirty) {
	if s.writer == nil {
		return
	}
	if d&dirtyCart != 0 {
		s.enqueueJSON(storage.KeyCart, nonNil(s.cart))
	}
	if d&dirtyWishlist != 0 {
		s.enqueueJSON(storage.KeyWishlist, nonNil(s.wishlist))
	}
	if d&dirtyOrders != 0 {
		s.enqueueJSON(storage.KeyOrders, nonNil(s.orders))
	}
}

func (s *Store) enqueueJSON(key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Error("encode for storage failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.writer.Enqueue(key, string(b))
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// Hydrate loads the persisted cart, wishlist and receipts once. Each
// collection found in storage replaces the in-memory one wholesale; a
// missing, unreadable or corrupt value leaves the in-memory one untouched.
// Nothing is written back. Later calls are no-ops.
func (s *Store) Hydrate(ctx context.Context) {
	s.hydrateOnce.Do(func() { s.hydrate(ctx) })
}

// HydrateAsync runs Hydrate on its own goroutine; the returned channel is
// closed when it finishes.
func (s *Store) HydrateAsync(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Hydrate(ctx)
	}()
	return done
}

func (s *Store) hydrate(ctx context.Context) {
	var (
		cart     []CartLine
		wishlist []catalog.Product
		orders   []Order
	)
	var cartOK, wishlistOK, ordersOK bool

	if s.kv != nil {
		var g errgroup.Group
		g.Go(func() error { cartOK = s.load(ctx, storage.KeyCart, &cart); return nil })
		g.Go(func() error { wishlistOK = s.load(ctx, storage.KeyWishlist, &wishlist); return nil })
		g.Go(func() error { ordersOK = s.load(ctx, storage.KeyOrders, &orders); return nil })
		_ = g.Wait()
	}

	s.mu.Lock()
	if cartOK {
		s.cart = s.sanitizeCart(cart)
	}
	if wishlistOK {
		s.wishlist = s.sanitizeWishlist(wishlist)
	}
	if ordersOK {
		s.orders = orders
	}
	s.hydrated = true
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Info("store hydrated",
		zap.Int("cart_lines", len(snap.Cart)),
		zap.Int("wishlist", len(snap.Wishlist)),
	)
	s.notify(snap)
}

func (s *Store) load(ctx context.Context, key string, dst any) bool {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		s.log.Warn("storage read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.Warn("stored value is corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// sanitizeCart restores the cart invariants on data written by an older or
// foreign build: one line per id, quantity >= 1. Oversized quantities are
// capped at MaxQuantity.
func (s *Store) sanitizeCart(in []CartLine) []CartLine {
	out := make([]CartLine, 0, len(in))
	for _, l := range in {
		if l.Quantity <= 0 || lineIndex(out, l.ID) >= 0 {
			continue
		}
		l.Quantity = min(l.Quantity, MaxQuantity)
		out = append(out, l)
	}
	if dropped := len(in) - len(out); dropped > 0 {
		s.log.Warn("dropped invalid stored cart lines", zap.Int("dropped", dropped))
	}
	return out
}

func (s *Store) sanitizeWishlist(in []catalog.Product) []catalog.Product {
	out := make([]catalog.Product, 0, len(in))
	for _, p := range in {
		if wishlistIndex(out, p.ID) < 0 {
			out = append(out, p)
		}
	}
	return out
}
