package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"item-crowdfund/internal/core/port"
)

// AccountHeader carries the caller identity. Authentication happens in
// front of this service.
const AccountHeader = "X-Account-ID"

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP over the item registry.
type Handler struct {
	svc    port.CrowdfundUseCase
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(svc port.CrowdfundUseCase, logger *slog.Logger) *Handler {
	h := &Handler{svc: svc, logger: logger}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/operators", h.handleAddOperator)
		r.Post("/payments", h.handlePayment)

		r.Post("/items", h.handleCreateItem)
		r.Get("/items", h.handleListItems)
		r.Route("/items/{index}", func(r chi.Router) {
			r.Get("/", h.handleGetItem)
			r.Get("/progress", h.handleGetProgress)
			r.Get("/goal", h.handleGetGoal)
			r.Get("/fee-percentage", h.handleGetFeePercentage)
			r.Get("/ledger", h.handleGetLedger)

			r.Get("/tokenization", h.handleListDispatches)
			r.Post("/tokenization/callback", h.handleMintCallback)
			r.Post("/tokenization/retry", h.handleRetryMint)
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}
