package shop

import (
	"slices"

	"Storefront/internal/catalog"
)

// AddToWishlist inserts p unless its id is already saved.
func (s *Store) AddToWishlist(p catalog.Product) {
	s.mutate(func() dirty {
		if wishlistIndex(s.wishlist, p.ID) >= 0 {
			return 0
		}
		s.wishlist = append(s.wishlist, p)
		return dirtyWishlist
	})
}

func (s *Store) RemoveFromWishlist(id int) {
	s.mutate(func() dirty {
		i := wishlistIndex(s.wishlist, id)
		if i < 0 {
			return 0
		}
		s.wishlist = slices.Delete(s.wishlist, i, i+1)
		return dirtyWishlist
	})
}

func (s *Store) IsInWishlist(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return wishlistIndex(s.wishlist, id) >= 0
}

// ToggleWishlist saves p if absent and removes it otherwise. It reports
// whether p is saved afterwards.
func (s *Store) ToggleWishlist(p catalog.Product) bool {
	var saved bool
	s.mutate(func() dirty {
		if i := wishlistIndex(s.wishlist, p.ID); i >= 0 {
			s.wishlist = slices.Delete(s.wishlist, i, i+1)
			return dirtyWishlist
		}
		s.wishlist = append(s.wishlist, p)
		saved = true
		return dirtyWishlist
	})
	return saved
}

func wishlistIndex(list []catalog.Product, id int) int {
	return slices.IndexFunc(list, func(p catalog.Product) bool { return p.ID == id })
}
