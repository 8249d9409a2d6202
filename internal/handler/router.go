package handler

import (
	"context"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nikolayk812/orders-demo/internal/auth"
	"github.com/nikolayk812/orders-demo/internal/observability"
	"go.uber.org/zap"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

// Pinger reports store reachability, e.g. *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(orders *OrdersHandler, authn *auth.Authenticator, store Pinger, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", health(store))

	r.Route("/v1/orders", func(r chi.Router) {
		r.Use(authn.Middleware(writeAuthError))

		r.Post("/", orders.Create)
		r.Get("/", orders.Query)
		r.Delete("/{cartID}", orders.Delete)
		r.Patch("/{cartID}", orders.UpdateItems)
		r.Post("/{cartID}/checkout", orders.Checkout)
	})

	return r
}

func health(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()

			if err := store.Ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, detailResponse{Detail: "store unavailable"})
				return
			}
		}

		writeJSON(w, http.StatusOK, detailResponse{Detail: "ok"})
	}
}
