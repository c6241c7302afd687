package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Prices and totals are written as JSON numbers, matching the cart and
// wishlist layout already on devices. The decimal text is emitted as is, so
// no precision is lost.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is an immutable catalog entry. JSON keys match the persisted
// cart and wishlist layout.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	InStock     bool            `json:"inStock"`
	Rating      float64         `json:"rating,omitempty"`
	Reviews     int             `json:"reviews,omitempty"`
}

type Category struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Icon          string   `json:"icon"`
	Image         string   `json:"image"`
	SubCategories []string `json:"sub_categories"`
}

type Store interface {
	Ping(ctx context.Context) error
	ListSortedByID(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int) (Product, bool, error)
}
