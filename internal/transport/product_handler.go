package transport

import (
	"net/http"

	"retailflow/internal/middleware"
	"retailflow/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductRequest is the payload for creating and updating products.
// Quantity is declared as an int so fractional values fail at decode time.
type ProductRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Category string  `json:"category"`
}

func (req ProductRequest) input() store.ProductInput {
	return store.ProductInput{
		Name:     req.Name,
		Price:    req.Price,
		Quantity: req.Quantity,
		Category: req.Category,
	}
}

// ProductHandler handles HTTP requests for catalog management
type ProductHandler struct {
	store  *store.Store
	logger *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(s *store.Store, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{store: s, logger: logger}
}

// RegisterOwnerRoutes mounts the catalog CRUD under the owner subtree.
func (h *ProductHandler) RegisterOwnerRoutes(r chi.Router) {
	r.Get("/products", h.List)
	r.Post("/products", h.Create)
	r.Put("/products/{id}", h.Update)
	r.Delete("/products/{id}", h.Delete)
	r.Get("/products/low-stock", h.LowStock)
}

// RegisterEmployeeRoutes mounts the read-only catalog views employees need
// for billing.
func (h *ProductHandler) RegisterEmployeeRoutes(r chi.Router) {
	r.Get("/products", h.List)
	r.Get("/products/low-stock", h.LowStock)
}

// List returns the full catalog.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	middleware.RespondWithJSON(w, http.StatusOK, snap.Products)
}

// Create adds a product; validation failures report every violated field.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.store.AddProduct(r.Context(), req.input())
	if err != nil {
		respondStoreError(w, err)
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update merges the payload into the product. An unknown id answers 200 with
// no body change marker, matching the store's silent no-op.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.store.UpdateProduct(r.Context(), id, req.input())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if product == nil {
		middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "no-op"})
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes the product unconditionally.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	h.store.DeleteProduct(r.Context(), id)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// LowStock returns products below the low-stock threshold.
func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.store.LowStockProducts())
}
