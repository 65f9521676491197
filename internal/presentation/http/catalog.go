package httppresentation

import (
	"net/http"
	"net/url"

	domcatalog "github.com/Zhima-Mochi/corralon-storefront/internal/domain/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func (h *Handler) handleListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.deps.Catalog.Stores(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]storefrontResponse, 0, len(stores))
	for _, s := range stores {
		out = append(out, toStorefrontResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetStore(w http.ResponseWriter, r *http.Request) {
	s, err := h.deps.Catalog.Store(r.Context(), chi.URLParam(r, "storeID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStorefrontResponse(s))
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q, err := parseProductQuery(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}
	products, err := h.deps.Catalog.List(r.Context(), q)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductList(products))
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.deps.Catalog.Categories(r.Context(), r.URL.Query().Get("store"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Catalog.Get(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func parseProductQuery(v url.Values) (domcatalog.Query, error) {
	q := domcatalog.Query{
		StoreID:    v.Get("store"),
		Categories: v["category"],
		Text:       v.Get("q"),
	}
	sort, ok := domcatalog.ParseSortOrder(v.Get("sort"))
	if !ok {
		return q, invalid("unknown sort %q", v.Get("sort"))
	}
	q.Sort = sort

	for _, bound := range []struct {
		param string
		dst   **decimal.Decimal
	}{{"min_price", &q.MinPrice}, {"max_price", &q.MaxPrice}} {
		raw := v.Get(bound.param)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return q, invalid("%s must be a number", bound.param)
		}
		*bound.dst = &d
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return q, invalid("min_price is greater than max_price")
	}
	return q, nil
}
