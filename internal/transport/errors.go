package transport

import (
	"errors"
	"net/http"

	"retailflow/internal/middleware"
	"retailflow/internal/store"
)

// respondStoreError maps the store's error kinds onto HTTP statuses. Every
// kind is expected and frequent, so none of them is logged as a server
// error.
func respondStoreError(w http.ResponseWriter, err error) {
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		middleware.RespondWithValidationErrors(w, verr.Fields)
		return
	}

	var nferr *store.NotFoundError
	if errors.As(err, &nferr) {
		middleware.RespondWithError(w, http.StatusNotFound, nferr.Error())
		return
	}

	var stockErr *store.InsufficientStockError
	if errors.As(err, &stockErr) {
		middleware.RespondWithErrorDetails(w, http.StatusConflict, stockErr.Error(), map[string]interface{}{
			"productId": stockErr.ProductID.String(),
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
		return
	}

	if errors.Is(err, store.ErrEmptyCart) {
		middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
}
