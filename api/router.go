// Package api exposes the operator HTTP surface: standings reads, manual
// recompute, override submission with audit history, and the legacy import
// flow.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/open-forensics/tab-service/api/handlers"
	ledgerservice "github.com/open-forensics/tab-service/app/modules/ledger/application"
	reconcileservice "github.com/open-forensics/tab-service/app/modules/reconcile/application"
	standingsservice "github.com/open-forensics/tab-service/app/modules/standings/application"
	standingsqueue "github.com/open-forensics/tab-service/app/modules/standings/infrastructure/queue"
)

// Deps are the module services the API fronts.
type Deps struct {
	Standings standingsservice.Service
	Scheduler standingsqueue.Scheduler
	Ledger    ledgerservice.Service
	Reconcile reconcileservice.Service
}

// NewRouter builds the operator API router.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/standings", handlers.NewStandingsHandler(deps.Standings, deps.Scheduler).Routes())
		r.Mount("/overrides", handlers.NewOverrideHandler(deps.Ledger).Routes())
		r.Mount("/imports", handlers.NewImportHandler(deps.Reconcile).Routes())
	})

	return r
}
