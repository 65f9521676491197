package httppresentation

import (
	"net/http"

	appcatalog "github.com/Zhima-Mochi/corralon-storefront/internal/application/catalog"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleOwnProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.deps.Catalog.OwnProducts(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductList(products))
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	p, err := h.deps.Catalog.CreateProduct(r.Context(), userIDFrom(r.Context()), req.input())
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/products/"+p.ID)
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	p, err := h.deps.Catalog.UpdateProduct(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "productID"), req.input())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Catalog.DeleteProduct(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "productID")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.deps.Catalog.Stats(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse(s))
}

func (req productRequest) input() appcatalog.ProductInput {
	return appcatalog.ProductInput{
		StoreID:            req.StoreID,
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		Brand:              req.Brand,
		SKU:                req.SKU,
		Price:              string(req.Price),
		DiscountPercentage: req.DiscountPercentage,
		Rating:             req.Rating,
		Stock:              req.Stock,
		Tags:               req.Tags,
		Images:             req.Images,
		Thumbnail:          req.Thumbnail,
	}
}
