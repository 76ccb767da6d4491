package ledgerservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/open-forensics/tab-service/app/eventbus"
	ledgerdb "github.com/open-forensics/tab-service/app/modules/ledger/infrastructure/repositories"
	pairingdb "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories"
	resultdb "github.com/open-forensics/tab-service/app/modules/results/infrastructure/repositories"
	rosterdb "github.com/open-forensics/tab-service/app/modules/roster/infrastructure/repositories"
	"github.com/open-forensics/tab-service/app/shared/attr"
	"github.com/open-forensics/tab-service/app/shared/metrics"
	"github.com/open-forensics/tab-service/app/shared/results"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
	"github.com/open-forensics/tab-service/app/shared/utils"
)

// LedgerService implements the Service interface.
type LedgerService struct {
	repo        ledgerdb.Repository
	resultRepo  resultdb.Repository
	rosterRepo  rosterdb.Repository
	pairingRepo pairingdb.Repository
	eventBus    eventbus.EventBus
	helpers     utils.Helpers
	logger      *slog.Logger
	metrics     metrics.Recorder
	tracer      trace.Tracer
	db          *bun.DB
}

var _ Service = (*LedgerService)(nil)

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	repo ledgerdb.Repository,
	resultRepo resultdb.Repository,
	rosterRepo rosterdb.Repository,
	pairingRepo pairingdb.Repository,
	bus eventbus.EventBus,
	helpers utils.Helpers,
	logger *slog.Logger,
	recorder metrics.Recorder,
	tracer trace.Tracer,
	db *bun.DB,
) *LedgerService {
	return &LedgerService{
		repo:        repo,
		resultRepo:  resultRepo,
		rosterRepo:  rosterRepo,
		pairingRepo: pairingRepo,
		eventBus:    bus,
		helpers:     helpers,
		logger:      logger,
		metrics:     recorder,
		tracer:      tracer,
		db:          db,
	}
}

type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *LedgerService,
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
	s *LedgerService,
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

// HistoryEntry is one audit entry plus its review markers. Racing overrides
// are all persisted and the newest one wins, so the trail itself has to say
// which entries lost and which targets are contested.
type HistoryEntry struct {
	ledgerdb.TabAuditEntry

	// Superseded marks an entry a later entry on the same target replaced.
	Superseded bool `json:"superseded"`
	// Conflict marks every entry of a target that was overridden more than
	// once, the surviving one included, for operator review.
	Conflict bool `json:"conflict"`
}

// historyTarget is the granularity at which overrides race: two entries
// collide only when they rewrite the same aspect of the same entity.
type historyTarget struct {
	EntityType ledgerdb.EntityType
	EntityID   uuid.UUID
	Action     ledgerdb.Action
}

func annotateHistory(entries []ledgerdb.TabAuditEntry) []HistoryEntry {
	latest := make(map[historyTarget]int, len(entries))
	counts := make(map[historyTarget]int, len(entries))
	for i, entry := range entries {
		target := historyTarget{EntityType: entry.EntityType, EntityID: entry.EntityID, Action: entry.Action}
		latest[target] = i
		counts[target]++
	}

	out := make([]HistoryEntry, len(entries))
	for i, entry := range entries {
		target := historyTarget{EntityType: entry.EntityType, EntityID: entry.EntityID, Action: entry.Action}
		out[i] = HistoryEntry{
			TabAuditEntry: entry,
			Superseded:    latest[target] != i,
			Conflict:      counts[target] > 1,
		}
	}
	return out
}

// History returns the full audit trail for a tournament in creation order.
func (s *LedgerService) History(ctx context.Context, tournamentID sharedtypes.TournamentID) ([]HistoryEntry, error) {
	entries, err := s.repo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	return annotateHistory(entries), nil
}

// EntityHistory returns the audit trail for one entity in creation order.
func (s *LedgerService) EntityHistory(ctx context.Context, entityType ledgerdb.EntityType, entityID uuid.UUID) ([]HistoryEntry, error) {
	entries, err := s.repo.ListByEntity(ctx, nil, entityType, entityID)
	if err != nil {
		return nil, err
	}
	return annotateHistory(entries), nil
}

// Overlay folds the tournament's ledger into its currently-authoritative view.
func (s *LedgerService) Overlay(ctx context.Context, tournamentID sharedtypes.TournamentID) (*Overlay, error) {
	entries, err := s.repo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	return FoldOverlay(entries), nil
}
