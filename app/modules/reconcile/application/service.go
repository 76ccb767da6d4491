package reconcileservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/open-forensics/tab-service/app/eventbus"
	pairingdb "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories"
	"github.com/open-forensics/tab-service/app/modules/reconcile/application/parsers"
	rosterdb "github.com/open-forensics/tab-service/app/modules/roster/infrastructure/repositories"
	"github.com/open-forensics/tab-service/app/shared/attr"
	"github.com/open-forensics/tab-service/app/shared/metrics"
	"github.com/open-forensics/tab-service/app/shared/results"
	"github.com/open-forensics/tab-service/app/shared/utils"
)

// ReconcileService implements the Service interface.
type ReconcileService struct {
	pairingRepo   pairingdb.Repository
	rosterRepo    rosterdb.Repository
	parserFactory parsers.ParserFactory
	matcher       *Matcher
	eventBus      eventbus.EventBus
	helpers       utils.Helpers
	logger        *slog.Logger
	metrics       metrics.Recorder
	tracer        trace.Tracer
}

var _ Service = (*ReconcileService)(nil)

// NewReconcileService creates a new ReconcileService.
func NewReconcileService(
	pairingRepo pairingdb.Repository,
	rosterRepo rosterdb.Repository,
	parserFactory parsers.ParserFactory,
	matcher *Matcher,
	bus eventbus.EventBus,
	helpers utils.Helpers,
	logger *slog.Logger,
	recorder metrics.Recorder,
	tracer trace.Tracer,
) *ReconcileService {
	return &ReconcileService{
		pairingRepo:   pairingRepo,
		rosterRepo:    rosterRepo,
		parserFactory: parserFactory,
		matcher:       matcher,
		eventBus:      bus,
		helpers:       helpers,
		logger:        logger,
		metrics:       recorder,
		tracer:        tracer,
	}
}

type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *ReconcileService,
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
