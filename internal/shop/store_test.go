package shop

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/internal/storage"
)

type fixture struct {
	kv    *storage.MemKV
	queue *storage.Queue
	store *Store
}

func newFixture(t *testing.T, kv *storage.MemKV) *fixture {
	t.Helper()

	if kv == nil {
		kv = storage.NewMemKV()
	}
	q := storage.NewQueue("shop", kv, zap.NewNop())
	t.Cleanup(q.Close)

	s := NewStore(Deps{
		Products: catalog.Seed(),
		Storage:  kv,
		Writer:   q,
		Log:      zap.NewNop(),
		Now:      func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) },
		NewID:    func() string { return "o_test" },
	})
	return &fixture{kv: kv, queue: q, store: s}
}

func (f *fixture) flush(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.queue.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func (f *fixture) product(t *testing.T, id int) catalog.Product {
	t.Helper()
	p, ok := f.store.Product(id)
	if !ok {
		t.Fatalf("product %d not in catalog", id)
	}
	return p
}

func priced(id int, price string) catalog.Product {
	return catalog.Product{ID: id, Name: "p" + price, Price: decimal.RequireFromString(price)}
}

func TestAddToCart_NewLine(t *testing.T) {
	f := newFixture(t, nil)
	p := f.product(t, 1)

	before := f.store.CartCount()
	f.store.AddToCart(p, 3)

	if got := f.store.CartCount() - before; got != 3 {
		t.Fatalf("count grew by %d want=3", got)
	}
	cart := f.store.Cart()
	if len(cart) != 1 || cart[0].ID != 1 || cart[0].Quantity != 3 {
		t.Fatalf("cart=%+v", cart)
	}
}

func TestAddToCart_ExistingLineIncrements(t *testing.T) {
	f := newFixture(t, nil)
	p := f.product(t, 2)

	f.store.AddOne(p)
	f.store.AddToCart(p, 4)

	cart := f.store.Cart()
	if len(cart) != 1 {
		t.Fatalf("lines=%d want=1", len(cart))
	}
	if cart[0].Quantity != 5 {
		t.Fatalf("quantity=%d want=5", cart[0].Quantity)
	}
}

func TestAddToCart_NonPositiveQuantity(t *testing.T) {
	f := newFixture(t, nil)
	p := f.product(t, 3)

	f.store.AddToCart(p, 0)
	f.store.AddToCart(p, -2)
	if len(f.store.Cart()) != 0 {
		t.Fatalf("non-positive add created a line")
	}

	f.store.AddToCart(p, 2)
	f.store.AddToCart(p, -2)
	if len(f.store.Cart()) != 0 {
		t.Fatalf("line with zero quantity kept: %+v", f.store.Cart())
	}
}

func TestAddToCart_LargeQuantitySaturates(t *testing.T) {
	f := newFixture(t, nil)
	p := f.product(t, 1)

	f.store.AddOne(p)
	f.store.AddToCart(p, math.MaxInt)

	cart := f.store.Cart()
	if len(cart) != 1 || cart[0].Quantity != MaxQuantity {
		t.Fatalf("cart=%+v want one line of %d", cart, MaxQuantity)
	}

	f.store.AddToCart(p, math.MaxInt)
	if got := f.store.Cart(); len(got) != 1 || got[0].Quantity != MaxQuantity {
		t.Fatalf("add at cap changed the line: %+v", got)
	}

	f.store.AddToCart(p, math.MinInt)
	if len(f.store.Cart()) != 0 {
		t.Fatalf("large negative add kept the line: %+v", f.store.Cart())
	}
}

func TestCartCount_LargeLinesStayPositive(t *testing.T) {
	f := newFixture(t, nil)

	f.store.AddToCart(f.product(t, 1), math.MaxInt/2+1)
	f.store.AddToCart(f.product(t, 2), math.MaxInt/2+1)
	f.store.UpdateCartQuantity(2, math.MaxInt)

	if got := f.store.CartCount(); got != 2*MaxQuantity {
		t.Fatalf("count=%d want=%d", got, 2*MaxQuantity)
	}
}

func TestUpdateCartQuantity(t *testing.T) {
	for _, qty := range []int{0, -1} {
		f := newFixture(t, nil)
		f.store.AddToCart(f.product(t, 1), 2)
		f.store.AddToCart(f.product(t, 2), 1)

		f.store.UpdateCartQuantity(1, qty)

		cart := f.store.Cart()
		if len(cart) != 1 || cart[0].ID != 2 {
			t.Fatalf("qty=%d cart=%+v", qty, cart)
		}
	}

	f := newFixture(t, nil)
	f.store.AddToCart(f.product(t, 1), 2)
	f.store.UpdateCartQuantity(1, 7)
	f.store.UpdateCartQuantity(99, 3)

	cart := f.store.Cart()
	if len(cart) != 1 || cart[0].Quantity != 7 {
		t.Fatalf("cart=%+v", cart)
	}
}

func TestRemoveFromCart_AbsentIsNoop(t *testing.T) {
	f := newFixture(t, nil)
	f.store.AddToCart(f.product(t, 4), 1)
	v := f.store.Snapshot().Version

	f.store.RemoveFromCart(42)

	if got := f.store.Snapshot().Version; got != v {
		t.Fatalf("version changed on no-op: %d -> %d", v, got)
	}
	if len(f.store.Cart()) != 1 {
		t.Fatalf("cart changed")
	}
}

func TestClearCart(t *testing.T) {
	f := newFixture(t, nil)
	f.store.AddToCart(f.product(t, 1), 1)
	f.store.AddToCart(f.product(t, 2), 1)

	f.store.ClearCart()

	if len(f.store.Cart()) != 0 || f.store.CartCount() != 0 {
		t.Fatalf("cart not empty")
	}
	if !f.store.CartTotal().IsZero() {
		t.Fatalf("total=%s", f.store.CartTotal())
	}
}

func TestCartTotalAndCount(t *testing.T) {
	f := newFixture(t, nil)
	f.store.AddToCart(priced(1, "249.00"), 1)
	f.store.AddToCart(priced(2, "189.00"), 2)

	if want := decimal.RequireFromString("627.00"); !f.store.CartTotal().Equal(want) {
		t.Fatalf("total=%s want=%s", f.store.CartTotal(), want)
	}
	if got := f.store.CartCount(); got != 3 {
		t.Fatalf("count=%d want=3", got)
	}
}

func TestCartTotal_ExactDecimal(t *testing.T) {
	f := newFixture(t, nil)
	for i := 1; i <= 10; i++ {
		f.store.AddToCart(priced(i, "0.10"), 1)
	}
	f.store.AddToCart(priced(11, "19.99"), 3)

	want := decimal.RequireFromString("60.97")
	if got := f.store.CartTotal(); !got.Equal(want) {
		t.Fatalf("total=%s want=%s", got, want)
	}
}

func TestWishlist_SetOnce(t *testing.T) {
	f := newFixture(t, nil)
	p := f.product(t, 5)

	f.store.AddToWishlist(p)
	f.store.AddToWishlist(p)

	if got := len(f.store.Wishlist()); got != 1 {
		t.Fatalf("wishlist len=%d want=1", got)
	}
	if !f.store.IsInWishlist(5) {
		t.Fatalf("IsInWishlist(5)=false")
	}

	f.store.RemoveFromWishlist(5)
	f.store.RemoveFromWishlist(5)
	if f.store.IsInWishlist(5) {
		t.Fatalf("IsInWishlist(5)=true after remove")
	}
}

func TestToggleWishlist(t *testing.T) {
	f := newFixture(t, nil)
	p := f.product(t, 6)

	if !f.store.ToggleWishlist(p) {
		t.Fatalf("first toggle must save")
	}
	if f.store.ToggleWishlist(p) {
		t.Fatalf("second toggle must remove")
	}
	if f.store.IsInWishlist(6) {
		t.Fatalf("still saved")
	}
}

func TestSearchQuery_FiltersVisibleProducts(t *testing.T) {
	f := newFixture(t, nil)

	if got := len(f.store.VisibleProducts()); got != 12 {
		t.Fatalf("visible=%d want=12", got)
	}

	f.store.SetSearchQuery("mouse")
	visible := f.store.VisibleProducts()
	if len(visible) != 1 || visible[0].ID != 11 {
		t.Fatalf("visible=%+v", visible)
	}

	f.flush(t)
	if f.kv.Sets() != 0 {
		t.Fatalf("search query must not be persisted, sets=%d", f.kv.Sets())
	}
}

func TestMutationsPersistFullCollections(t *testing.T) {
	f := newFixture(t, nil)
	f.store.AddToCart(f.product(t, 1), 1)
	f.store.AddToCart(f.product(t, 2), 2)
	f.store.AddToWishlist(f.product(t, 3))
	f.flush(t)

	raw, found, err := f.kv.Get(context.Background(), storage.KeyCart)
	if err != nil || !found {
		t.Fatalf("cart not persisted: found=%v err=%v", found, err)
	}
	var lines []map[string]any
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("persisted lines=%d", len(lines))
	}
	for _, k := range []string{"id", "name", "price", "image", "quantity"} {
		if _, ok := lines[1][k]; !ok {
			t.Fatalf("persisted line missing %q: %v", k, lines[1])
		}
	}
	if _, ok := lines[1]["price"].(float64); !ok {
		t.Fatalf("persisted price is %T, want a number", lines[1]["price"])
	}

	f.store.ClearCart()
	f.flush(t)
	raw, _, _ = f.kv.Get(context.Background(), storage.KeyCart)
	if raw != "[]" {
		t.Fatalf("cleared cart persisted as %q", raw)
	}
}

func TestRoundTripAcrossRestart(t *testing.T) {
	kv := storage.NewMemKV()

	first := newFixture(t, kv)
	first.store.AddToCart(first.product(t, 1), 1)
	first.store.AddToCart(first.product(t, 7), 3)
	first.store.AddToWishlist(first.product(t, 9))
	first.flush(t)

	second := newFixture(t, kv)
	if second.store.Hydrated() {
		t.Fatalf("hydrated before Hydrate")
	}
	<-second.store.HydrateAsync(context.Background())

	got := second.store.Cart()
	want := first.store.Cart()
	sortLines(got)
	sortLines(want)

	if len(got) != len(want) {
		t.Fatalf("lines=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Quantity != want[i].Quantity {
			t.Fatalf("line %d: got=%+v want=%+v", i, got[i], want[i])
		}
		if !got[i].Price.Equal(want[i].Price) {
			t.Fatalf("line %d price=%s want=%s", i, got[i].Price, want[i].Price)
		}
	}
	if !second.store.IsInWishlist(9) {
		t.Fatalf("wishlist not restored")
	}
	if !second.store.Hydrated() {
		t.Fatalf("not marked hydrated")
	}
}

func TestHydrate_ReplacesPreHydrationState(t *testing.T) {
	kv := storage.NewMemKV()
	_ = kv.Set(context.Background(), storage.KeyCart, `[{"id":2,"name":"Nova Runner","price":189,"image":"x","quantity":1}]`)

	f := newFixture(t, kv)
	f.store.AddToCart(f.product(t, 5), 1)
	f.store.Hydrate(context.Background())

	cart := f.store.Cart()
	if len(cart) != 1 || cart[0].ID != 2 {
		t.Fatalf("loaded cart must replace in-memory cart, got=%+v", cart)
	}
	if want := decimal.NewFromInt(189); !f.store.CartTotal().Equal(want) {
		t.Fatalf("numeric price not decoded: total=%s", f.store.CartTotal())
	}
}

func TestHydrateAsync(t *testing.T) {
	kv := storage.NewMemKV()
	_ = kv.Set(context.Background(), storage.KeyCart, `[{"id":3,"name":"c","price":"10","image":"","quantity":2}]`)

	f := newFixture(t, kv)
	if f.store.Hydrated() {
		t.Fatalf("hydrated before load")
	}

	select {
	case <-f.store.HydrateAsync(context.Background()):
	case <-time.After(2 * time.Second):
		t.Fatalf("hydration did not finish")
	}

	if !f.store.Hydrated() || f.store.CartCount() != 2 {
		t.Fatalf("hydrated=%v count=%d", f.store.Hydrated(), f.store.CartCount())
	}
}

func TestHydrate_RunsOnce(t *testing.T) {
	kv := storage.NewMemKV()
	_ = kv.Set(context.Background(), storage.KeyWishlist, `[{"id":1,"name":"a","price":"1","image":""}]`)

	f := newFixture(t, kv)
	f.store.Hydrate(context.Background())
	f.store.RemoveFromWishlist(1)
	f.store.Hydrate(context.Background())

	if f.store.IsInWishlist(1) {
		t.Fatalf("second Hydrate reloaded storage")
	}
}

func TestHydrate_FailuresFallBackToEmpty(t *testing.T) {
	kv := storage.NewMemKV()
	_ = kv.Set(context.Background(), storage.KeyCart, `{not json`)
	kv.FailGets(false)

	f := newFixture(t, kv)
	f.store.Hydrate(context.Background())

	if len(f.store.Cart()) != 0 {
		t.Fatalf("corrupt cart loaded")
	}
	if !f.store.Hydrated() {
		t.Fatalf("store must be hydrated even when loading fails")
	}

	kv2 := storage.NewMemKV()
	kv2.FailGets(true)
	g := newFixture(t, kv2)
	g.store.Hydrate(context.Background())
	if len(g.store.Cart()) != 0 || len(g.store.Wishlist()) != 0 {
		t.Fatalf("unreadable storage must leave empty collections")
	}
}

func TestHydrate_SanitizesStoredCart(t *testing.T) {
	kv := storage.NewMemKV()
	_ = kv.Set(context.Background(), storage.KeyCart, `[
		{"id":1,"name":"a","price":"10","image":"","quantity":2},
		{"id":1,"name":"a","price":"10","image":"","quantity":5},
		{"id":2,"name":"b","price":"5","image":"","quantity":0},
		{"id":3,"name":"c","price":"1","image":"","quantity":99999999}
	]`)

	f := newFixture(t, kv)
	f.store.Hydrate(context.Background())

	cart := f.store.Cart()
	if len(cart) != 2 || cart[0].ID != 1 || cart[0].Quantity != 2 {
		t.Fatalf("cart=%+v", cart)
	}
	if cart[1].ID != 3 || cart[1].Quantity != MaxQuantity {
		t.Fatalf("oversized stored line not capped: %+v", cart[1])
	}
}

func TestWriteFailuresDoNotAffectState(t *testing.T) {
	kv := storage.NewMemKV()
	kv.FailSets(true)

	f := newFixture(t, kv)
	f.store.AddToCart(f.product(t, 1), 2)
	f.flush(t)

	if f.store.CartCount() != 2 {
		t.Fatalf("in-memory state lost after failed write")
	}

	kv.FailSets(false)
	f.store.AddToCart(f.product(t, 1), 1)
	f.flush(t)

	raw, found, _ := kv.Get(context.Background(), storage.KeyCart)
	if !found {
		t.Fatalf("next mutation did not retry the write")
	}
	var lines []CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 3 {
		t.Fatalf("persisted=%+v", lines)
	}
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t, nil)

	var got []Snapshot
	unsubscribe := f.store.Subscribe(func(s Snapshot) { got = append(got, s) })

	f.store.AddToCart(f.product(t, 1), 2)
	f.store.RemoveFromCart(99)
	f.store.SetSearchQuery("watch")

	if len(got) != 2 {
		t.Fatalf("notifications=%d want=2", len(got))
	}
	if got[0].Count != 2 || got[1].SearchQuery != "watch" {
		t.Fatalf("snapshots=%+v", got)
	}
	if got[1].Version <= got[0].Version {
		t.Fatalf("versions not increasing: %d, %d", got[0].Version, got[1].Version)
	}

	unsubscribe()
	unsubscribe()
	f.store.ClearCart()
	if len(got) != 2 {
		t.Fatalf("notified after unsubscribe")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	f := newFixture(t, nil)
	f.store.AddToCart(f.product(t, 1), 1)

	snap := f.store.Snapshot()
	snap.Cart[0].Quantity = 100

	if f.store.CartCount() != 1 {
		t.Fatalf("snapshot aliases store state")
	}
}

func TestSummaryAndCheckout(t *testing.T) {
	f := newFixture(t, nil)

	if _, err := f.store.Checkout(); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err=%v want ErrEmptyCart", err)
	}

	f.store.AddToCart(priced(1, "249.00"), 1)
	f.store.AddToCart(priced(2, "189.00"), 2)

	sum := f.store.Summary()
	if !sum.Subtotal.Equal(decimal.RequireFromString("627")) {
		t.Fatalf("subtotal=%s", sum.Subtotal)
	}
	if !sum.Tax.Equal(decimal.RequireFromString("50.16")) {
		t.Fatalf("tax=%s", sum.Tax)
	}
	if !sum.Total.Equal(decimal.RequireFromString("677.16")) {
		t.Fatalf("total=%s", sum.Total)
	}

	o, err := f.store.Checkout()
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if o.ID != "o_test" || o.Status != StatusPlaced || len(o.Lines) != 2 {
		t.Fatalf("order=%+v", o)
	}
	if !o.Total.Equal(sum.Total) {
		t.Fatalf("order total=%s want=%s", o.Total, sum.Total)
	}
	if len(f.store.Cart()) != 0 {
		t.Fatalf("cart not cleared after checkout")
	}

	f.flush(t)
	restarted := newFixture(t, f.kv)
	restarted.store.Hydrate(context.Background())
	orders := restarted.store.Orders()
	if len(orders) != 1 || orders[0].ID != "o_test" {
		t.Fatalf("orders not restored: %+v", orders)
	}
}

func sortLines(lines []CartLine) {
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
}
