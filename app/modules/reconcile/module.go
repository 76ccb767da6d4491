package reconcilemodule

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"

	"github.com/open-forensics/tab-service/app/eventbus"
	pairingdb "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories"
	reconcileservice "github.com/open-forensics/tab-service/app/modules/reconcile/application"
	"github.com/open-forensics/tab-service/app/modules/reconcile/application/parsers"
	rosterdb "github.com/open-forensics/tab-service/app/modules/roster/infrastructure/repositories"
	"github.com/open-forensics/tab-service/app/shared/metrics"
	"github.com/open-forensics/tab-service/app/shared/utils"
	"github.com/open-forensics/tab-service/config"
)

// Module bundles the legacy import reconciler. It consumes nothing from the
// bus; imports arrive through the operator API and the confirmation commit is
// published out.
type Module struct {
	Service reconcileservice.Service

	logger     *slog.Logger
	cancelFunc context.CancelFunc
}

// NewModule wires the reconciler onto the shared database and event bus.
func NewModule(
	ctx context.Context,
	db *bun.DB,
	bus eventbus.EventBus,
	logger *slog.Logger,
	tracer trace.Tracer,
	helpers utils.Helpers,
	registry *prometheus.Registry,
	cfg *config.Config,
) (*Module, error) {
	var recorder metrics.Recorder = metrics.NoOp{}
	if registry != nil {
		recorder = metrics.NewPrometheusRecorder(registry, "reconcile")
	}

	service := reconcileservice.NewReconcileService(
		&pairingdb.PairingDBImpl{DB: db},
		&rosterdb.RosterDBImpl{DB: db},
		parsers.NewFactory(),
		reconcileservice.NewMatcher(cfg.Tab.MatchExactThreshold, cfg.Tab.MatchGoodThreshold),
		bus,
		helpers,
		logger,
		recorder,
		tracer,
	)

	return &Module{
		Service: service,
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
	m.logger.Info("Reconcile module stopped")
}

// Close stops the module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
