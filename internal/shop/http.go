package shop

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/pkg/kit"
)

const (
	mutationLimitPerMin = 120
	limitWindow         = 60 * time.Second
)

type Server struct {
	Store *Store
	Log   *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

func (s *Server) Register(r chi.Router) {
	limiter := kit.NewIPRateLimiter(mutationLimitPerMin, limitWindow)

	r.Get("/cart", s.getCart)
	r.Get("/wishlist", s.getWishlist)
	r.Get("/wishlist/{id}", s.inWishlist)
	r.Get("/search", s.getSearch)
	r.Get("/feed", s.feed)
	r.Get("/orders", s.listOrders)

	r.Group(func(mr chi.Router) {
		mr.Use(limiter.Middleware)

		mr.Post("/cart/items", s.addItem)
		mr.Patch("/cart/items/{id}", s.updateItem)
		mr.Delete("/cart/items/{id}", s.removeItem)
		mr.Delete("/cart", s.clearCart)
		mr.Post("/cart/checkout", s.checkout)

		mr.Put("/wishlist/{id}", s.addWishlist)
		mr.Delete("/wishlist/{id}", s.removeWishlist)

		mr.Put("/search", s.setSearch)
	})
}

var quantityRange = map[string]any{"min": 1, "max": MaxQuantity}

type addItemReq struct {
	ProductID int  `json:"product_id"`
	Quantity  *int `json:"quantity,omitempty"`
}

type updateItemReq struct {
	Quantity int `json:"quantity"`
}

type searchReq struct {
	Query string `json:"query"`
}

type wishlistResp struct {
	Items []catalog.Product `json:"items"`
	Count int               `json:"count"`
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Store.Summary())
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if qty <= 0 || qty > MaxQuantity {
		kit.WriteError(w, r, http.StatusBadRequest, "bad quantity", quantityRange)
		return
	}

	p, ok := s.Store.Product(req.ProductID)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "product not found", map[string]any{"id": req.ProductID})
		return
	}

	s.Store.AddToCart(p, qty)
	kit.WriteJSON(w, http.StatusOK, s.Store.Summary())
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateItemReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if req.Quantity > MaxQuantity {
		kit.WriteError(w, r, http.StatusBadRequest, "bad quantity", quantityRange)
		return
	}

	s.Store.UpdateCartQuantity(id, req.Quantity)
	kit.WriteJSON(w, http.StatusOK, s.Store.Summary())
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.Store.RemoveFromCart(id)
	kit.WriteJSON(w, http.StatusOK, s.Store.Summary())
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	s.Store.ClearCart()
	kit.WriteJSON(w, http.StatusOK, s.Store.Summary())
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	o, err := s.Store.Checkout()
	if errors.Is(err, ErrEmptyCart) {
		kit.WriteError(w, r, http.StatusConflict, "cart is empty", nil)
		return
	}
	if err != nil {
		if s.Log != nil {
			s.Log.Error("checkout failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	if s.Log != nil {
		s.Log.Info("order placed", zap.String("order_id", o.ID), zap.String("total", o.Total.StringFixed(2)))
	}
	kit.WriteJSON(w, http.StatusCreated, o)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, nonNil(s.Store.Orders()))
}

func (s *Server) getWishlist(w http.ResponseWriter, r *http.Request) {
	items := nonNil(s.Store.Wishlist())
	kit.WriteJSON(w, http.StatusOK, wishlistResp{Items: items, Count: len(items)})
}

func (s *Server) inWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "in_wishlist": s.Store.IsInWishlist(id)})
}

func (s *Server) addWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, found := s.Store.Product(id)
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "product not found", map[string]any{"id": id})
		return
	}
	s.Store.AddToWishlist(p)
	s.getWishlist(w, r)
}

func (s *Server) removeWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.Store.RemoveFromWishlist(id)
	s.getWishlist(w, r)
}

func (s *Server) getSearch(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, searchReq{Query: s.Store.SearchQuery()})
}

func (s *Server) setSearch(w http.ResponseWriter, r *http.Request) {
	var req searchReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	s.Store.SetSearchQuery(req.Query)
	s.feed(w, r)
}

func (s *Server) feed(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Store.VisibleProducts())
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}
