package httppresentation

import (
	"context"
	"net/http"
	"strings"

	appcart "github.com/Zhima-Mochi/corralon-storefront/internal/application/cart"
	appcatalog "github.com/Zhima-Mochi/corralon-storefront/internal/application/catalog"
	apporder "github.com/Zhima-Mochi/corralon-storefront/internal/application/order"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	componentHTTPHandler = "http_server"

	headerSessionID      = "X-Session-ID"
	headerUserID         = "X-User-ID"
	headerIdempotencyKey = "X-Idempotency-Key"
)

// Deps are the use cases the HTTP surface drives.
type Deps struct {
	Cart     *appcart.Service
	Catalog  *appcatalog.Service
	Checkout *apporder.PlaceOrderUseCase
	History  *apporder.History
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// RatePerSecond and RateBurst bound mutating cart and dashboard calls
	// per session or user. Zero disables limiting.
	RatePerSecond float64
	RateBurst     int
}

type Handler struct {
	deps    Deps
	log     observability.Logger
	tel     observability.Observability
	limiter *keyedLimiter
}

func NewHandler(deps Deps, tel observability.Observability) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	h := &Handler{
		deps: deps,
		log:  tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:  tel,
	}
	if deps.RatePerSecond > 0 && deps.RateBurst > 0 {
		h.limiter = newKeyedLimiter(deps.RatePerSecond, deps.RateBurst)
	}
	return h
}

// Router wires every route behind
// Trace → ObservabilityMiddleware (request logger + metrics) → Access log → Handler.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		withTrace,
		ObservabilityMiddleware(h.log, requestIDOf, userIDOf, h.tel),
		withAccessLog(h.log),
		middleware.Recoverer,
	)

	r.Get("/health", h.handleHealth)
	if h.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.deps.Metrics)
	}

	r.Get("/stores", h.handleListStores)
	r.Get("/stores/{storeID}", h.handleGetStore)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.handleListProducts)
		r.Get("/categories", h.handleCategories)
		r.Get("/{productID}", h.handleGetProduct)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(requireSession)
		r.Get("/", h.handleGetCart)

		r.Group(func(r chi.Router) {
			r.Use(rateLimited(h.limiter, func(r *http.Request) string { return "session:" + sessionIDFrom(r.Context()) }))
			r.Delete("/", h.handleClearCart)
			r.Post("/items", h.handleAddItem)
			r.Patch("/items/{productID}", h.handleUpdateItem)
			r.Delete("/items/{productID}", h.handleRemoveItem)
			r.Put("/store", h.handleSwitchStore)
			r.Delete("/session", h.handleEndSession)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.With(requireSession).Post("/checkout", h.handleCheckout)
		r.Get("/orders", h.handleListOrders)
		r.Get("/orders/{orderID}", h.handleGetOrder)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/products", h.handleOwnProducts)
			r.Get("/stats", h.handleStats)

			r.Group(func(r chi.Router) {
				r.Use(rateLimited(h.limiter, func(r *http.Request) string { return "user:" + userIDFrom(r.Context()) }))
				r.Post("/products", h.handleCreateProduct)
				r.Put("/products/{productID}", h.handleUpdateProduct)
				r.Delete("/products/{productID}", h.handleDeleteProduct)
			})
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type sessionKey struct{}

type userKey struct{}

func requestIDOf(r *http.Request) string { return r.Header.Get(headerRequestID) }

func userIDOf(r *http.Request) string { return strings.TrimSpace(r.Header.Get(headerUserID)) }

func requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerSessionID))
		if id == "" {
			writeError(w, r, http.StatusBadRequest, errSessionRequired)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := userIDOf(r)
		if id == "" {
			writeError(w, r, http.StatusUnauthorized, errUserRequired)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, id)))
	})
}

func sessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userKey{}).(string)
	return id
}
