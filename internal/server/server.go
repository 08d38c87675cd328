package server

import (
	"fmt"
	"net/http"
	"time"

	"retailflow/internal/auth"
	"retailflow/internal/config"
	"retailflow/internal/domain"
	custommiddleware "retailflow/internal/middleware"
	"retailflow/internal/store"
	"retailflow/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
}

// NewServer wires the dashboard API: a public auth surface plus the two
// role-gated subtrees mirroring the owner and employee dashboards.
func NewServer(cfg *config.Config, logger *zap.Logger, domainStore *store.Store, authenticator *auth.Authenticator) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Initialize handlers
	authHandler := transport.NewAuthHandler(authenticator, logger)
	productHandler := transport.NewProductHandler(domainStore, logger)
	salesHandler := transport.NewSalesHandler(domainStore, logger)
	reportHandler := transport.NewReportHandler(domainStore, logger)

	authMiddleware := custommiddleware.Authenticate(authenticator, logger)

	authHandler.RegisterRoutes(router, authMiddleware)

	router.Route("/api/owner", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(custommiddleware.RequireRole(domain.RoleOwner, logger))
		productHandler.RegisterOwnerRoutes(r)
		salesHandler.RegisterOwnerRoutes(r)
		reportHandler.RegisterOwnerRoutes(r)
	})

	router.Route("/api/employee", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(custommiddleware.RequireRole(domain.RoleEmployee, logger))
		productHandler.RegisterEmployeeRoutes(r)
		salesHandler.RegisterEmployeeRoutes(r)
		reportHandler.RegisterEmployeeRoutes(r)
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")
	s.logger.Sync()
	return nil
}
