package httppresentation

import (
	"net/http"
	"strings"

	apporder "github.com/Zhima-Mochi/corralon-storefront/internal/application/order"
	domorder "github.com/Zhima-Mochi/corralon-storefront/internal/domain/order"
	"github.com/go-chi/chi/v5"
)

const headerReplayed = "Idempotent-Replayed"

// handleCheckout places an order from the session cart. A replayed
// idempotency key answers 200 with the original order instead of 201.
func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	res, err := h.deps.Checkout.Execute(r.Context(), apporder.PlaceOrderInput{
		IdempotencyKey: strings.TrimSpace(r.Header.Get(headerIdempotencyKey)),
		CustomerID:     userIDFrom(r.Context()),
		SessionID:      sessionIDFrom(r.Context()),
		Shipping:       domorder.ShippingMethod(strings.ToLower(req.Shipping)),
		PaymentMethod:  domorder.PaymentMethod(strings.ToLower(req.PaymentMethod)),
		Contact:        domorder.Contact(req.Contact),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
		w.Header().Set(headerReplayed, "true")
	}
	w.Header().Set("Location", "/orders/"+res.Order.ID)
	writeJSON(w, status, toOrderResponse(res.Order))
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.deps.History.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.deps.History.Get(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "orderID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}
