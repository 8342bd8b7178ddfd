package router

import (
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Products *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Orders   *handler.OrderHandler
	Metrics  http.Handler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(
	h Handlers,
	tokens middleware.TokenParser,
	recorder middleware.RequestRecorder,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}

	// Public catalogue
	mux.HandleFunc("GET /api/products", h.Products.GetAll)
	mux.HandleFunc("GET /api/products/{id}", h.Products.GetByID)

	authed := middleware.Authenticate(tokens, logger)
	admin := func(next http.HandlerFunc) http.Handler {
		return authed(middleware.RequireRole(auth.RoleAdmin)(next))
	}

	mux.Handle("GET /api/cart", authed(http.HandlerFunc(h.Cart.View)))
	mux.Handle("DELETE /api/cart", authed(http.HandlerFunc(h.Cart.Clear)))
	mux.Handle("POST /api/cart/items", authed(http.HandlerFunc(h.Cart.AddItem)))
	mux.Handle("PUT /api/cart/items/{productID}", authed(http.HandlerFunc(h.Cart.UpdateItem)))
	mux.Handle("DELETE /api/cart/items/{productID}", authed(http.HandlerFunc(h.Cart.RemoveItem)))

	mux.Handle("GET /api/checkout/preview", authed(http.HandlerFunc(h.Checkout.Preview)))
	mux.Handle("POST /api/checkout", authed(http.HandlerFunc(h.Checkout.Checkout)))

	mux.Handle("GET /api/orders", authed(http.HandlerFunc(h.Orders.List)))
	mux.Handle("GET /api/orders/{orderNumber}", authed(http.HandlerFunc(h.Orders.GetByNumber)))

	mux.Handle("PATCH /api/admin/orders/{orderNumber}/status", admin(h.Orders.UpdateStatus))
	mux.Handle("PATCH /api/admin/orders/{orderNumber}/payment-status", admin(h.Orders.UpdatePaymentStatus))

	// Apply middleware in order: Recovery -> CorrelationID -> Logging -> Metrics -> CORS
	var handler http.Handler = mux
	handler = middleware.CORS(handler)
	if recorder != nil {
		handler = middleware.Metrics(recorder)(handler)
	}
	handler = middleware.Logging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
