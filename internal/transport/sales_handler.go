package transport

import (
	"net/http"

	"retailflow/internal/middleware"
	"retailflow/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartRequest is the payload for adding to the cart. Quantity bounds are
// the store's rule, so the store reports them.
type CartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// QuantityRequest carries the absolute quantity for a cart line update.
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SalesHandler handles the billing flow: cart mutations, sale confirmation,
// and the role-scoped sales ledger.
type SalesHandler struct {
	store  *store.Store
	logger *zap.Logger
}

// NewSalesHandler creates a new SalesHandler
func NewSalesHandler(s *store.Store, logger *zap.Logger) *SalesHandler {
	return &SalesHandler{store: s, logger: logger}
}

// RegisterEmployeeRoutes mounts the cart and billing routes.
func (h *SalesHandler) RegisterEmployeeRoutes(r chi.Router) {
	r.Get("/cart", h.Cart)
	r.Post("/cart", h.AddToCart)
	r.Put("/cart/{productId}", h.UpdateCartItem)
	r.Delete("/cart/{productId}", h.RemoveFromCart)
	r.Delete("/cart", h.ClearCart)
	r.Post("/sales", h.ConfirmSale)
	r.Get("/sales", h.Sales)
}

// RegisterOwnerRoutes mounts the full-ledger view.
func (h *SalesHandler) RegisterOwnerRoutes(r chi.Router) {
	r.Get("/sales", h.Sales)
}

// Cart returns the current cart lines.
func (h *SalesHandler) Cart(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	middleware.RespondWithJSON(w, http.StatusOK, snap.Cart)
}

// AddToCart adds a quantity of a product, merging with an existing line.
func (h *SalesHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req CartRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if fields := middleware.FormatValidationErrors(err); len(fields) > 0 {
			middleware.RespondWithValidationErrors(w, fields)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	line, err := h.store.AddToCart(r.Context(), productID, req.Quantity)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, line)
}

// UpdateCartItem sets a line's quantity outright.
func (h *SalesHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req QuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.UpdateCartItem(r.Context(), productID, req.Quantity); err != nil {
		respondStoreError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// RemoveFromCart drops a line; absent lines are a no-op.
func (h *SalesHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	h.store.RemoveFromCart(r.Context(), productID)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// ClearCart empties the cart.
func (h *SalesHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.store.ClearCart(r.Context())
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// ConfirmSale finalizes the cart into an immutable ledger entry.
func (h *SalesHandler) ConfirmSale(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sale, err := h.store.ConfirmSale(r.Context(), identity.Role)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, sale)
}

// Sales returns the ledger scoped to the caller's role: owners see all
// sales, employees only the current session's.
func (h *SalesHandler) Sales(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, h.store.Sales(identity.Role))
}
