package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/api/handlers"
	custommiddleware "github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/api/middleware"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/config"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	portfolioService *service.PortfolioService,
	reconciler *service.Reconciler,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
			positionHandler := handlers.NewPositionHandler(portfolioService, reconciler)
			fillHandler := handlers.NewFillHandler(portfolioService)

			r.Get("/", portfolioHandler.Portfolios)
			r.Post("/", portfolioHandler.CreatePortfolio)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)

				r.Get("/", portfolioHandler.GetPortfolio)
				r.Delete("/", portfolioHandler.DeletePortfolio)
				r.Put("/settings", portfolioHandler.UpdateSettings)

				r.Get("/positions", positionHandler.Positions)
				r.Post("/reconcile", positionHandler.Reconcile)
				r.Delete("/positions/{figi}", positionHandler.DeletePosition)

				r.Get("/fills/{ticker}", fillHandler.Fills)
				r.Put("/fill/{id}", fillHandler.UpdateFill)
			})
		})
	})

	return r
}
