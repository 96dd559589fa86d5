package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps bundles everything the router wires up.
type Deps struct {
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
	Payments *PaymentHandler
	Reviews  *ReviewHandler
	Tokens   TokenSink

	RequestTimeout time.Duration
}

// NewRouter builds the storefront HTTP surface. The payment callback is
// left outside the auth group: the gateway relay calls it server-to-server
// without the user's bearer credential.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/payments/callback", deps.Payments.Callback)
		r.Get("/products/{productID}/reviews", deps.Reviews.ListForProduct)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(deps.Tokens))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", deps.Cart.GetCart)
				r.Post("/refresh", deps.Cart.Refresh)
				r.Post("/items", deps.Cart.AddItem)
				r.Put("/items/{productID}/{size}", deps.Cart.SetQuantity)
				r.Post("/items/{productID}/{size}/decrement", deps.Cart.Decrement)
				r.Delete("/items/{productID}/{size}", deps.Cart.RemoveItem)
			})

			r.Post("/checkout", deps.Checkout.Checkout)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", deps.Orders.ListOrders)
				r.Post("/{orderID}/pay", deps.Payments.Pay)
				r.Post("/{orderID}/reviews", deps.Reviews.Submit)
			})
		})
	})

	return r
}
