package standingsservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/open-forensics/tab-service/app/eventbus"
	ledgerdb "github.com/open-forensics/tab-service/app/modules/ledger/infrastructure/repositories"
	pairingdb "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories"
	resultdb "github.com/open-forensics/tab-service/app/modules/results/infrastructure/repositories"
	rosterdb "github.com/open-forensics/tab-service/app/modules/roster/infrastructure/repositories"
	standingsdb "github.com/open-forensics/tab-service/app/modules/standings/infrastructure/repositories"
	"github.com/open-forensics/tab-service/app/shared/attr"
	"github.com/open-forensics/tab-service/app/shared/metrics"
	"github.com/open-forensics/tab-service/app/shared/results"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
	"github.com/open-forensics/tab-service/app/shared/utils"
	"github.com/open-forensics/tab-service/config"
)

// LedgerReader is the slice of the ledger store the calculator needs.
type LedgerReader interface {
	ListByTournament(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]ledgerdb.TabAuditEntry, error)
}

// StandingsService implements the Service interface.
type StandingsService struct {
	repo        standingsdb.Repository
	rosterRepo  rosterdb.Repository
	pairingRepo pairingdb.Repository
	resultRepo  resultdb.Repository
	ledgerRepo  LedgerReader
	eventBus    eventbus.EventBus
	helpers     utils.Helpers
	logger      *slog.Logger
	metrics     metrics.Recorder
	tracer      trace.Tracer
	db          *bun.DB
	tabConfig   config.TabConfig
}

var _ Service = (*StandingsService)(nil)

// NewStandingsService creates a new StandingsService.
func NewStandingsService(
	repo standingsdb.Repository,
	rosterRepo rosterdb.Repository,
	pairingRepo pairingdb.Repository,
	resultRepo resultdb.Repository,
	ledgerRepo LedgerReader,
	bus eventbus.EventBus,
	helpers utils.Helpers,
	logger *slog.Logger,
	recorder metrics.Recorder,
	tracer trace.Tracer,
	db *bun.DB,
	tabConfig config.TabConfig,
) *StandingsService {
	return &StandingsService{
		repo:        repo,
		rosterRepo:  rosterRepo,
		pairingRepo: pairingRepo,
		resultRepo:  resultRepo,
		ledgerRepo:  ledgerRepo,
		eventBus:    bus,
		helpers:     helpers,
		logger:      logger,
		metrics:     recorder,
		tracer:      tracer,
		db:          db,
		tabConfig:   tabConfig,
	}
}

type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *StandingsService,
	ctx context.Context,
	operationName string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.Any("failure_payload", *result.Failure),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
	}

	if result.IsSuccess() {
		s.metrics.RecordOperationSuccess(ctx, operationName)
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *StandingsService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}

// GetStandings returns the stored snapshot in rank order.
func (s *StandingsService) GetStandings(ctx context.Context, tournamentID sharedtypes.TournamentID) ([]standingsdb.ComputedStanding, error) {
	return s.repo.GetSnapshot(ctx, nil, tournamentID)
}
