package standingsmodule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"

	"github.com/open-forensics/tab-service/app/eventbus"
	ledgerdb "github.com/open-forensics/tab-service/app/modules/ledger/infrastructure/repositories"
	pairingdb "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories"
	resultdb "github.com/open-forensics/tab-service/app/modules/results/infrastructure/repositories"
	rosterdb "github.com/open-forensics/tab-service/app/modules/roster/infrastructure/repositories"
	standingsservice "github.com/open-forensics/tab-service/app/modules/standings/application"
	standingshandlers "github.com/open-forensics/tab-service/app/modules/standings/infrastructure/handlers"
	standingsqueue "github.com/open-forensics/tab-service/app/modules/standings/infrastructure/queue"
	standingsdb "github.com/open-forensics/tab-service/app/modules/standings/infrastructure/repositories"
	standingsrouter "github.com/open-forensics/tab-service/app/modules/standings/infrastructure/router"
	"github.com/open-forensics/tab-service/app/shared/metrics"
	"github.com/open-forensics/tab-service/app/shared/utils"
	"github.com/open-forensics/tab-service/config"
)

// Module bundles the standings service, its recompute queue, and its router.
type Module struct {
	Service   standingsservice.Service
	Scheduler standingsqueue.Scheduler
	Router    *standingsrouter.StandingsRouter

	logger     *slog.Logger
	cancelFunc context.CancelFunc
}

// NewModule wires the standings module onto its message router and starts
// nothing; Run brings the queue up.
func NewModule(
	ctx context.Context,
	db *bun.DB,
	bus eventbus.EventBus,
	router *message.Router,
	logger *slog.Logger,
	tracer trace.Tracer,
	helpers utils.Helpers,
	registry *prometheus.Registry,
	cfg *config.Config,
) (*Module, error) {
	var recorder metrics.Recorder = metrics.NoOp{}
	if registry != nil {
		recorder = metrics.NewPrometheusRecorder(registry, "standings")
	}

	service := standingsservice.NewStandingsService(
		&standingsdb.StandingsDBImpl{DB: db},
		&rosterdb.RosterDBImpl{DB: db},
		&pairingdb.PairingDBImpl{DB: db},
		&resultdb.ResultDBImpl{DB: db},
		&ledgerdb.LedgerDBImpl{DB: db},
		bus,
		helpers,
		logger,
		recorder,
		tracer,
		db,
		cfg.Tab,
	)

	scheduler, err := standingsqueue.NewService(ctx, cfg.Postgres.DSN, cfg.Tab.RecomputeDebounce, service, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create standings queue: %w", err)
	}

	handlers := standingshandlers.NewStandingsHandlers(scheduler, logger, tracer, helpers, recorder)

	moduleRouter := standingsrouter.NewStandingsRouter(logger, router, bus, registry)
	if err := moduleRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure standings router: %w", err)
	}

	return &Module{
		Service:   service,
		Scheduler: scheduler,
		Router:    moduleRouter,
		logger:    logger,
	}, nil
}

// Run starts the recompute queue and keeps the module alive until the
// context is canceled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.Scheduler.Start(ctx); err != nil {
		m.logger.Error("Failed to start standings queue", slog.Any("error", err))
		return
	}

	<-ctx.Done()
	if err := m.Scheduler.Stop(context.Background()); err != nil {
		m.logger.Error("Failed to stop standings queue", slog.Any("error", err))
	}
	m.logger.Info("Standings module stopped")
}

// Close stops the module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
