// Package shop owns the storefront's session state: the cart, the wishlist,
// the search query and local checkout receipts. Screens read snapshots and
// call mutations; every cart, wishlist or receipt change is written back to
// device storage in the background.
package shop

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/internal/storage"
	"Storefront/pkg/kit"
)

// CartLine is a product with the quantity held in the cart. Quantity is
// always at least 1.
type CartLine struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is a copy of the store state. Version increases with every
// change, so a subscriber can drop a snapshot older than one it has seen.
type Snapshot struct {
	Version     uint64            `json:"version"`
	Cart        []CartLine        `json:"cart"`
	Wishlist    []catalog.Product `json:"wishlist"`
	SearchQuery string            `json:"search_query"`
	Hydrated    bool              `json:"hydrated"`
	Count       int               `json:"count"`
	Total       decimal.Decimal   `json:"total"`
}

// Writer schedules a background write; *storage.Queue implements it.
type Writer interface {
	Enqueue(key, value string)
}

type Deps struct {
	Products []catalog.Product
	Storage  storage.KV
	Writer   Writer
	Log      *zap.Logger

	Now   func() time.Time
	NewID func() string
}

type Store struct {
	products []catalog.Product
	byID     map[int]catalog.Product
	kv       storage.KV
	writer   Writer
	log      *zap.Logger
	now      func() time.Time
	newID    func() string

	hydrateOnce sync.Once

	mu       sync.Mutex
	version  uint64
	cart     []CartLine
	wishlist []catalog.Product
	orders   []Order
	query    string
	hydrated bool

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

func NewStore(deps Deps) *Store {
	s := &Store{
		products: slices.Clone(deps.Products),
		byID:     make(map[int]catalog.Product, len(deps.Products)),
		kv:       deps.Storage,
		writer:   deps.Writer,
		log:      kit.OrNop(deps.Log),
		now:      deps.Now,
		newID:    deps.NewID,
		subs:     make(map[int]func(Snapshot)),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return "o_" + uuid.NewString() }
	}
	for _, p := range s.products {
		s.byID[p.ID] = p
	}
	return s
}

func (s *Store) Products() []catalog.Product {
	return slices.Clone(s.products)
}

func (s *Store) Product(id int) (catalog.Product, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// VisibleProducts is the catalog filtered by the current search query.
func (s *Store) VisibleProducts() []catalog.Product {
	return catalog.Filter(s.products, s.SearchQuery())
}

func (s *Store) Cart() []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cart)
}

func (s *Store) Wishlist() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.wishlist)
}

func (s *Store) SearchQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) SetSearchQuery(text string) {
	s.mutate(func() dirty {
		if s.query == text {
			return 0
		}
		s.query = text
		return dirtyQuery
	})
}

// Subscribe registers fn to receive a snapshot after every change. fn runs
// on the mutating goroutine after the store lock is released.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

type dirty uint8

const (
	dirtyCart dirty = 1 << iota
	dirtyWishlist
	dirtyOrders
	dirtyQuery
)

// mutate applies fn under the lock. A non-zero result bumps the version,
// enqueues write-backs for the touched collections while still locked (so
// queue order matches mutation order) and then notifies subscribers.
func (s *Store) mutate(fn func() dirty) {
	s.mu.Lock()
	d := fn()
	if d == 0 {
		s.mu.Unlock()
		return
	}
	s.version++
	s.persistLocked(d)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Version:     s.version,
		Cart:        slices.Clone(s.cart),
		Wishlist:    slices.Clone(s.wishlist),
		SearchQuery: s.query,
		Hydrated:    s.hydrated,
		Count:       cartCount(s.cart),
		Total:       cartTotal(s.cart),
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
