// Package app composes the tab service: database, event bus, module routers,
// and the operator API.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/open-forensics/tab-service/api"
	"github.com/open-forensics/tab-service/app/eventbus"
	ledgermodule "github.com/open-forensics/tab-service/app/modules/ledger"
	reconcilemodule "github.com/open-forensics/tab-service/app/modules/reconcile"
	resultsmodule "github.com/open-forensics/tab-service/app/modules/results"
	standingsmodule "github.com/open-forensics/tab-service/app/modules/standings"
	"github.com/open-forensics/tab-service/app/shared/utils"
	"github.com/open-forensics/tab-service/config"
	"github.com/open-forensics/tab-service/db/bundb"
)

// App holds the composed service.
type App struct {
	Config *config.Config

	Results   *resultsmodule.Module
	Ledger    *ledgermodule.Module
	Standings *standingsmodule.Module
	Reconcile *reconcilemodule.Module

	db            *bundb.DBService
	bus           eventbus.EventBus
	routers       []*message.Router
	httpServer    *http.Server
	metricsServer *http.Server
	logger        *slog.Logger
}

// NewApp wires every module onto shared infrastructure.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	bus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tracer := otel.Tracer("tab-service")
	helpers := utils.NewHelpers()
	wmLogger := watermill.NewStdLogger(false, false)
	db := dbService.GetDB()

	// Each consuming module gets its own watermill router so one module's
	// backlog cannot stall another's handlers.
	resultsRouter, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create results router: %w", err)
	}
	standingsRouter, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create standings router: %w", err)
	}

	resultsModule, err := resultsmodule.NewModule(ctx, db, bus, resultsRouter, logger, tracer, helpers, registry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize results module: %w", err)
	}

	ledgerModule, err := ledgermodule.NewModule(ctx, db, bus, logger, tracer, helpers, registry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ledger module: %w", err)
	}

	standingsModule, err := standingsmodule.NewModule(ctx, db, bus, standingsRouter, logger, tracer, helpers, registry, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize standings module: %w", err)
	}

	reconcileModule, err := reconcilemodule.NewModule(ctx, db, bus, logger, tracer, helpers, registry, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize reconcile module: %w", err)
	}

	httpServer := &http.Server{
		Addr: cfg.HTTP.Address,
		Handler: api.NewRouter(api.Deps{
			Standings: standingsModule.Service,
			Scheduler: standingsModule.Scheduler,
			Ledger:    ledgerModule.Service,
			Reconcile: reconcileModule.Service,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var metricsServer *http.Server
	if cfg.Observability.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{
			Addr:              cfg.Observability.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return &App{
		Config:        cfg,
		Results:       resultsModule,
		Ledger:        ledgerModule,
		Standings:     standingsModule,
		Reconcile:     reconcileModule,
		db:            dbService,
		bus:           bus,
		routers:       []*message.Router{resultsRouter, standingsRouter},
		httpServer:    httpServer,
		metricsServer: metricsServer,
		logger:        logger,
	}, nil
}

// Run starts the routers, modules, and HTTP listeners, then blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	for _, router := range a.routers {
		wg.Add(1)
		go func(r *message.Router) {
			defer wg.Done()
			if err := r.Run(ctx); err != nil {
				a.logger.Error("Watermill router stopped", slog.Any("error", err))
			}
		}(router)
	}

	wg.Add(4)
	go a.Results.Run(ctx, &wg)
	go a.Ledger.Run(ctx, &wg)
	go a.Standings.Run(ctx, &wg)
	go a.Reconcile.Run(ctx, &wg)

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.logger.Info("Operator API listening", slog.String("address", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Operator API stopped", slog.Any("error", err))
		}
	}()

	if a.metricsServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.logger.Info("Metrics listening", slog.String("address", a.metricsServer.Addr))
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("Metrics listener stopped", slog.Any("error", err))
			}
		}()
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Operator API shutdown failed", slog.Any("error", err))
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("Metrics shutdown failed", slog.Any("error", err))
		}
	}

	wg.Wait()
	return nil
}

// Close releases every shared resource.
func (a *App) Close() error {
	var errs []error

	for _, m := range []interface{ Close() error }{a.Reconcile, a.Standings, a.Ledger, a.Results} {
		if err := m.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, router := range a.routers {
		if err := router.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.bus.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
