package resultsmodule

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
	pairingdb "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories"
	resultservice "github.com/open-forensics/tab-service/app/modules/results/application"
	resulthandlers "github.com/open-forensics/tab-service/app/modules/results/infrastructure/handlers"
	resultdb "github.com/open-forensics/tab-service/app/modules/results/infrastructure/repositories"
	resultrouter "github.com/open-forensics/tab-service/app/modules/results/infrastructure/router"
	"github.com/open-forensics/tab-service/app/shared/metrics"
	"github.com/open-forensics/tab-service/app/shared/utils"
)

// Module bundles the results module's service and router.
type Module struct {
	Service resultservice.Service
	Router  *resultrouter.ResultRouter

	logger     *slog.Logger
	cancelFunc context.CancelFunc
}

// NewModule wires the results module onto its message router.
func NewModule(
	ctx context.Context,
	db *bun.DB,
	bus eventbus.EventBus,
	router *message.Router,
	logger *slog.Logger,
	tracer trace.Tracer,
	helpers utils.Helpers,
	registry *prometheus.Registry,
) (*Module, error) {
	var recorder metrics.Recorder = metrics.NoOp{}
	if registry != nil {
		recorder = metrics.NewPrometheusRecorder(registry, "results")
	}

	service := resultservice.NewResultService(
		&resultdb.ResultDBImpl{DB: db},
		&pairingdb.PairingDBImpl{DB: db},
		bus,
		helpers,
		logger,
		recorder,
		tracer,
		db,
	)

	handlers := resulthandlers.NewResultHandlers(service, logger, tracer, helpers, recorder)

	moduleRouter := resultrouter.NewResultRouter(logger, router, bus, registry)
	if err := moduleRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure results router: %w", err)
	}

	return &Module{
		Service: service,
		Router:  moduleRouter,
		logger:  logger,
	}, nil
}

// Run keeps the module alive until the context is canceled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.Info("Results module stopped")
}

// Close stops the module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
