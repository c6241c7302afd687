package shop

import (
	"slices"

	"github.com/shopspring/decimal"

	"Storefront/internal/catalog"
)

// MaxQuantity caps a single cart line. Larger requests saturate at it, which
// also keeps CartCount far from overflow.
const MaxQuantity = 9999

// AddToCart adds quantity units of p. An existing line for p.ID grows by
// quantity up to MaxQuantity; otherwise a new line is appended. A result of
// zero or fewer units removes the line, and a non-positive quantity never
// creates one.
func (s *Store) AddToCart(p catalog.Product, quantity int) {
	s.mutate(func() dirty {
		i := lineIndex(s.cart, p.ID)
		if i < 0 {
			if quantity <= 0 {
				return 0
			}
			s.cart = append(s.cart, CartLine{Product: p, Quantity: min(quantity, MaxQuantity)})
			return dirtyCart
		}

		q := addQuantity(s.cart[i].Quantity, quantity)
		if q == s.cart[i].Quantity {
			return 0
		}
		if q > 0 {
			s.cart[i].Quantity = q
		} else {
			s.cart = slices.Delete(s.cart, i, i+1)
		}
		return dirtyCart
	})
}

// addQuantity returns cur+delta clamped to MaxQuantity. cur is always in
// [1, MaxQuantity], so neither direction can overflow.
func addQuantity(cur, delta int) int {
	if delta > MaxQuantity-cur {
		return MaxQuantity
	}
	if delta < -MaxQuantity {
		return 0
	}
	return cur + delta
}

func (s *Store) AddOne(p catalog.Product) {
	s.AddToCart(p, 1)
}

func (s *Store) RemoveFromCart(id int) {
	s.mutate(func() dirty {
		i := lineIndex(s.cart, id)
		if i < 0 {
			return 0
		}
		s.cart = slices.Delete(s.cart, i, i+1)
		return dirtyCart
	})
}

// UpdateCartQuantity sets the quantity of an existing line, capped at
// MaxQuantity; quantity <= 0 removes it. Absent ids are ignored.
func (s *Store) UpdateCartQuantity(id, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(id)
		return
	}
	quantity = min(quantity, MaxQuantity)

	s.mutate(func() dirty {
		i := lineIndex(s.cart, id)
		if i < 0 || s.cart[i].Quantity == quantity {
			return 0
		}
		s.cart[i].Quantity = quantity
		return dirtyCart
	})
}

func (s *Store) ClearCart() {
	s.mutate(func() dirty {
		if len(s.cart) == 0 {
			return 0
		}
		s.cart = nil
		return dirtyCart
	})
}

// CartTotal is the exact sum of price * quantity over all lines.
func (s *Store) CartTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cartTotal(s.cart)
}

// CartCount sums quantities, not distinct lines.
func (s *Store) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cartCount(s.cart)
}

func lineIndex(cart []CartLine, id int) int {
	return slices.IndexFunc(cart, func(l CartLine) bool { return l.ID == id })
}

func cartTotal(cart []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range cart {
		total = total.Add(l.LineTotal())
	}
	return total
}

func cartCount(cart []CartLine) int {
	n := 0
	for _, l := range cart {
		n += l.Quantity
	}
	return n
}
