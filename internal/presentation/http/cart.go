package httppresentation

import (
	"net/http"

	appcart "github.com/Zhima-Mochi/corralon-storefront/internal/application/cart"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.Cart.Get(r.Context(), sessionIDFrom(r.Context()))
	h.writeCart(w, r, http.StatusOK, v, err)
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	v, err := h.deps.Cart.AddItem(r.Context(), appcart.AddItemInput{
		SessionID: sessionIDFrom(r.Context()),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	h.writeCart(w, r, http.StatusOK, v, err)
}

// handleUpdateItem sets the quantity; zero or less removes the line and an
// absent product leaves the cart as it was.
func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	v, err := h.deps.Cart.UpdateItemQuantity(r.Context(), appcart.UpdateItemInput{
		SessionID: sessionIDFrom(r.Context()),
		ProductID: chi.URLParam(r, "productID"),
		Quantity:  req.Quantity,
	})
	h.writeCart(w, r, http.StatusOK, v, err)
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.Cart.RemoveItem(r.Context(), sessionIDFrom(r.Context()), chi.URLParam(r, "productID"))
	h.writeCart(w, r, http.StatusOK, v, err)
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.Cart.Clear(r.Context(), sessionIDFrom(r.Context()))
	h.writeCart(w, r, http.StatusOK, v, err)
}

func (h *Handler) handleSwitchStore(w http.ResponseWriter, r *http.Request) {
	var req switchStoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	v, err := h.deps.Cart.SwitchStore(r.Context(), appcart.SwitchStoreInput{
		SessionID: sessionIDFrom(r.Context()),
		StoreID:   req.StoreID,
		Confirm:   req.Confirm,
	})
	h.writeCart(w, r, http.StatusOK, v, err)
}

func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Cart.EndSession(r.Context(), sessionIDFrom(r.Context())); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, status int, v appcart.View, err error) {
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, status, toCartResponse(v))
}
