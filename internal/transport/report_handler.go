package transport

import (
	"net/http"
	"time"

	"retailflow/internal/domain"
	"retailflow/internal/middleware"
	"retailflow/internal/report"
	"retailflow/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SellersResponse pairs the two ends of the ranking.
type SellersResponse struct {
	Best  []report.SellerStat `json:"bestSellers"`
	Worst []report.SellerStat `json:"worstSellers"`
}

// RevenueTrendResponse is the month-of-year revenue line.
type RevenueTrendResponse struct {
	Labels []string    `json:"labels"`
	Values [12]float64 `json:"values"`
}

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// ReportHandler serves the dashboard projections. Every response is computed
// from a fresh snapshot; nothing here caches or mutates.
type ReportHandler struct {
	store  *store.Store
	logger *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(s *store.Store, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{store: s, logger: logger}
}

// RegisterOwnerRoutes mounts the owner dashboard projections.
func (h *ReportHandler) RegisterOwnerRoutes(r chi.Router) {
	r.Get("/kpis", h.OwnerKPIs)
	r.Get("/reports/sellers", h.Sellers)
	r.Get("/reports/revenue-trend", h.RevenueTrend)
	r.Get("/reports/category-sales", h.CategorySales)
}

// RegisterEmployeeRoutes mounts the session-scoped projections.
func (h *ReportHandler) RegisterEmployeeRoutes(r chi.Router) {
	r.Get("/kpis", h.EmployeeKPIs)
	r.Get("/reports/sellers", h.Sellers)
}

// visibleSales resolves the role-scoped sales subset for the caller.
func (h *ReportHandler) visibleSales(r *http.Request) ([]domain.Sale, bool) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		return nil, false
	}
	return h.store.Sales(identity.Role), true
}

// OwnerKPIs returns the owner dashboard headline numbers.
func (h *ReportHandler) OwnerKPIs(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	kpis := report.ComputeOwnerKPIs(time.Now(), snap.Sales, snap.Products)
	middleware.RespondWithJSON(w, http.StatusOK, kpis)
}

// EmployeeKPIs returns the employee dashboard headline numbers over the
// session-visible sales.
func (h *ReportHandler) EmployeeKPIs(w http.ResponseWriter, r *http.Request) {
	sales, ok := h.visibleSales(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	snap := h.store.Snapshot()
	kpis := report.ComputeEmployeeKPIs(time.Now(), sales, snap.Products)
	middleware.RespondWithJSON(w, http.StatusOK, kpis)
}

// Sellers returns best and worst sellers over the caller's visible sales.
func (h *ReportHandler) Sellers(w http.ResponseWriter, r *http.Request) {
	sales, ok := h.visibleSales(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	snap := h.store.Snapshot()
	best, worst := report.RankSellers(sales, snap.Products)
	middleware.RespondWithJSON(w, http.StatusOK, SellersResponse{Best: best, Worst: worst})
}

// RevenueTrend returns all-time revenue bucketed by calendar month.
func (h *ReportHandler) RevenueTrend(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	middleware.RespondWithJSON(w, http.StatusOK, RevenueTrendResponse{
		Labels: monthLabels,
		Values: report.MonthlyRevenue(snap.Sales),
	})
}

// CategorySales returns sale totals bucketed by each product's current
// category.
func (h *ReportHandler) CategorySales(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	middleware.RespondWithJSON(w, http.StatusOK, report.CategorySales(snap.Sales, snap.Products))
}
