package theme

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

const (
	mutationLimitPerMin = 60
	limitWindow         = 60 * time.Second
)

type Server struct {
	Store  *Store
	System *SystemAppearance
	Log    *zap.Logger

	// Limiter guards the mutation routes; nil uses the default per-IP limit.
	Limiter *kit.IPRateLimiter
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

func (s *Server) Register(r chi.Router) {
	limiter := s.Limiter
	if limiter == nil {
		limiter = kit.NewIPRateLimiter(mutationLimitPerMin, limitWindow)
	}

	r.Get("/theme", s.get)

	r.Group(func(mr chi.Router) {
		mr.Use(limiter.Middleware)

		mr.Put("/theme", s.set)
		mr.Post("/theme/toggle", s.toggle)

		if s.System != nil {
			mr.Put("/system/appearance", s.setAppearance)
		}
	})
}

type setModeReq struct {
	Mode string `json:"mode"`
}

type setAppearanceReq struct {
	Appearance string `json:"appearance"`
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Store.State())
}

func (s *Server) set(w http.ResponseWriter, r *http.Request) {
	var req setModeReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	mode, err := ParseMode(req.Mode)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad mode", map[string]any{"allowed": []Mode{ModeLight, ModeDark, ModeAuto}})
		return
	}
	if err := s.Store.Set(mode); err != nil {
		if s.Log != nil {
			s.Log.Error("set theme failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Store.State())
}

func (s *Server) toggle(w http.ResponseWriter, r *http.Request) {
	s.Store.Toggle()
	kit.WriteJSON(w, http.StatusOK, s.Store.State())
}

func (s *Server) setAppearance(w http.ResponseWriter, r *http.Request) {
	var req setAppearanceReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	a, err := ParseAppearance(req.Appearance)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad appearance", nil)
		return
	}
	s.System.Set(a)
	kit.WriteJSON(w, http.StatusOK, s.Store.State())
}
