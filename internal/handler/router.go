package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mmeshcher/san-gateway/internal/metrics"
	custommiddleware "github.com/mmeshcher/san-gateway/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware шлюза SAN.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/user", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.limiter.Handler)

			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Get("/recovery/{email}", h.RequestRecovery)
			r.Post("/recovery", h.ResetPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Post("/logout", h.Logout)
			r.Get("/account", h.GetAccount)
			r.Patch("/profile", h.UpdateProfile)
			r.Post("/photo", h.UploadPhoto)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Route("/api/san", func(r chi.Router) {
			r.Get("/available", h.GetAvailableSans)
			r.Post("/join", h.JoinSan)
			r.Post("/payment", h.PaySan)
			r.Get("/{id}", h.GetSanDetail)
		})

		r.Get("/api/transactions", h.GetTransactions)
		r.Get("/api/banks", h.GetBanks)

		r.Route("/api/payment-methods", func(r chi.Router) {
			r.Get("/", h.GetPaymentMethods)
			r.Post("/", h.CreatePaymentMethod)
			r.Get("/{id}", h.GetPaymentMethod)
			r.Patch("/{id}", h.UpdatePaymentMethod)
			r.Delete("/{id}", h.DeletePaymentMethod)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
