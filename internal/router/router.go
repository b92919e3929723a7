package router

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mkanatbekov/epay-gateway/internal/logger"
	"github.com/mkanatbekov/epay-gateway/internal/merchant"
	"github.com/mkanatbekov/epay-gateway/internal/middleware"
	"github.com/mkanatbekov/epay-gateway/internal/payment"
	"github.com/mkanatbekov/epay-gateway/internal/stats"
)

func NewRouter(
	merchantH *merchant.Handler,
	paymentH *payment.Handler,
	statsH *stats.Handler,
	jwtSecret []byte,
	merchantRepo merchant.MerchantRepository,
) chi.Router {
	r := chi.NewRouter()

	r.Use(logger.WithLogging)
	r.Use(chiMiddleware.Recoverer)

	r.Use(middleware.GzipHandler)

	r.Route("/api/merchant", func(r chi.Router) {
		r.Post("/register", merchantH.Register)
		r.Post("/login", merchantH.Login)
	})

	// the bank posts settlement callbacks here, unauthenticated; the payload
	// signature is the authentication
	r.Post("/api/payments/postback", paymentH.Postback)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTMiddleware(jwtSecret, merchantRepo))

		r.Post("/api/payments", paymentH.CreatePayment)
		r.Get("/api/payments/{id}", paymentH.GetPayment)
		r.Get("/api/merchant/stats", statsH.GetStats)
	})

	return r
}
