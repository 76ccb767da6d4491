package ledgermodule

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"

	"github.com/open-forensics/tab-service/app/eventbus"
	ledgerservice "github.com/open-forensics/tab-service/app/modules/ledger/application"
	ledgerdb "github.com/open-forensics/tab-service/app/modules/ledger/infrastructure/repositories"
	pairingdb "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories"
	resultdb "github.com/open-forensics/tab-service/app/modules/results/infrastructure/repositories"
	rosterdb "github.com/open-forensics/tab-service/app/modules/roster/infrastructure/repositories"
	"github.com/open-forensics/tab-service/app/shared/metrics"
	"github.com/open-forensics/tab-service/app/shared/utils"
)

// Module bundles the ledger module's service. The ledger consumes nothing
// from the bus; overrides arrive through the operator API and commits are
// published out.
type Module struct {
	Service ledgerservice.Service

	logger     *slog.Logger
	cancelFunc context.CancelFunc
}

// NewModule wires the ledger service onto the shared database and event bus.
func NewModule(
	ctx context.Context,
	db *bun.DB,
	bus eventbus.EventBus,
	logger *slog.Logger,
	tracer trace.Tracer,
	helpers utils.Helpers,
	registry *prometheus.Registry,
) (*Module, error) {
	var recorder metrics.Recorder = metrics.NoOp{}
	if registry != nil {
		recorder = metrics.NewPrometheusRecorder(registry, "ledger")
	}

	service := ledgerservice.NewLedgerService(
		&ledgerdb.LedgerDBImpl{DB: db},
		&resultdb.ResultDBImpl{DB: db},
		&rosterdb.RosterDBImpl{DB: db},
		&pairingdb.PairingDBImpl{DB: db},
		bus,
		helpers,
		logger,
		recorder,
		tracer,
		db,
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
	m.logger.Info("Ledger module stopped")
}

// Close stops the module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
