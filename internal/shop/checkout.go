package shop

import (
	"errors"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPlaced = "PLACED"

	taxPlaces = 2
)

var (
	ErrEmptyCart = errors.New("cart is empty")

	taxRate = decimal.RequireFromString("0.08")
)

// Summary is what the cart screen shows below the lines.
type Summary struct {
	Lines    []CartLine      `json:"lines"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Order is a local receipt for a checked-out cart. No payment is taken.
type Order struct {
	ID        string          `json:"id"`
	Lines     []CartLine      `json:"lines"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

func summarize(cart []CartLine) Summary {
	subtotal := cartTotal(cart)
	tax := subtotal.Mul(taxRate).Round(taxPlaces)
	return Summary{
		Lines:    nonNil(slices.Clone(cart)),
		Count:    cartCount(cart),
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return summarize(s.cart)
}

// Checkout records a receipt for the current cart and empties it.
func (s *Store) Checkout() (Order, error) {
	var (
		o   Order
		err error
	)

	s.mutate(func() dirty {
		if len(s.cart) == 0 {
			err = ErrEmptyCart
			return 0
		}

		sum := summarize(s.cart)
		o = Order{
			ID:        s.newID(),
			Lines:     sum.Lines,
			Subtotal:  sum.Subtotal,
			Tax:       sum.Tax,
			Total:     sum.Total,
			Status:    StatusPlaced,
			CreatedAt: s.now().UTC(),
		}
		s.orders = append(s.orders, o)
		s.cart = nil
		return dirtyCart | dirtyOrders
	})

	return o, err
}

// Orders returns receipts oldest first.
func (s *Store) Orders() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.orders)
}
