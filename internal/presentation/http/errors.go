package httppresentation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Zhima-Mochi/corralon-storefront/internal/application"
	appcart "github.com/Zhima-Mochi/corralon-storefront/internal/application/cart"
	domcart "github.com/Zhima-Mochi/corralon-storefront/internal/domain/cart"
	domcatalog "github.com/Zhima-Mochi/corralon-storefront/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/corralon-storefront/internal/domain/order"
	domstore "github.com/Zhima-Mochi/corralon-storefront/internal/domain/storefront"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability/logctx"
)

var (
	errRateLimited     = errors.New("too many requests")
	errSessionRequired = errors.New("X-Session-ID header is required")
	errUserRequired    = errors.New("X-User-ID header is required")
)

// badRequest marks malformed input that never reached a use case.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func invalid(format string, args ...any) error {
	return badRequest{err: fmt.Errorf(format, args...)}
}

func statusFor(err error) int {
	var br badRequest
	switch {
	case errors.As(err, &br),
		errors.Is(err, application.ErrValidation),
		errors.Is(err, domcart.ErrInvalidQuantity),
		errors.Is(err, domcart.ErrStockExceeded),
		errors.Is(err, domcart.ErrInvalidProduct),
		errors.Is(err, domcatalog.ErrInvalidProduct),
		errors.Is(err, domcatalog.ErrInvalidQuantity),
		errors.Is(err, domorder.ErrNoLines),
		errors.Is(err, domorder.ErrInvalidQuantity),
		errors.Is(err, domorder.ErrInvalidAmount),
		errors.Is(err, domorder.ErrInvalidShipping),
		errors.Is(err, domorder.ErrInvalidPaymentMethod),
		errors.Is(err, domorder.ErrInvalidContact):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrUnauthorized),
		errors.Is(err, errUserRequired):
		return http.StatusUnauthorized
	case errors.Is(err, domcatalog.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domcatalog.ErrNotFound),
		errors.Is(err, domstore.ErrNotFound),
		errors.Is(err, domorder.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domcart.ErrStoreMismatch),
		errors.Is(err, domcart.ErrCartNotEmpty),
		errors.Is(err, domcart.ErrEmptyCart),
		errors.Is(err, domorder.ErrConflict),
		errors.Is(err, domcatalog.ErrAlreadyExists),
		errors.Is(err, appcart.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, statusFor(err), err)
}

// writeError hides the cause of server errors from the client and logs it
// instead.
func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logctx.FromOr(r.Context(), nil).Error("http_internal_error",
			observability.F("error", err),
		)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return invalid("malformed body: %v", err)
	}
	return nil
}
