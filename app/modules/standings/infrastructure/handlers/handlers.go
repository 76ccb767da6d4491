package standingshandlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/trace"

	standingsqueue "github.com/open-forensics/tab-service/app/modules/standings/infrastructure/queue"
	"github.com/open-forensics/tab-service/app/shared/attr"
	"github.com/open-forensics/tab-service/app/shared/metrics"
	"github.com/open-forensics/tab-service/app/shared/utils"
)

// Handlers is the message-handling surface of the standings module. Both
// handlers only enqueue; the recompute itself runs on the river worker.
type Handlers interface {
	HandleRoundResultCommitted(msg *message.Message) ([]*message.Message, error)
	HandleOverrideCommitted(msg *message.Message) ([]*message.Message, error)
}

// StandingsHandlers bridges watermill messages to the recompute scheduler.
type StandingsHandlers struct {
	scheduler standingsqueue.Scheduler
	logger    *slog.Logger
	tracer    trace.Tracer
	helpers   utils.Helpers
	metrics   metrics.Recorder
}

var _ Handlers = (*StandingsHandlers)(nil)

// NewStandingsHandlers creates the standings module handlers.
func NewStandingsHandlers(
	scheduler standingsqueue.Scheduler,
	logger *slog.Logger,
	tracer trace.Tracer,
	helpers utils.Helpers,
	recorder metrics.Recorder,
) *StandingsHandlers {
	return &StandingsHandlers{
		scheduler: scheduler,
		logger:    logger,
		tracer:    tracer,
		helpers:   helpers,
		metrics:   recorder,
	}
}

// handlerWrapper decodes the payload, seeds the context with the message's
// correlation ID, and records handler metrics around fn.
func (h *StandingsHandlers) handlerWrapper(
	handlerName string,
	unmarshalTo any,
	fn func(ctx context.Context, msg *message.Message, payload any) ([]*message.Message, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx, span := h.tracer.Start(msg.Context(), handlerName)
		defer span.End()

		ctx = attr.WithCorrelationID(ctx, middleware.MessageCorrelationID(msg))

		h.metrics.RecordOperationAttempt(ctx, handlerName)
		start := time.Now()
		defer func() {
			h.metrics.RecordOperationDuration(ctx, handlerName, time.Since(start))
		}()

		if err := h.helpers.UnmarshalPayload(msg, unmarshalTo); err != nil {
			h.metrics.RecordOperationFailure(ctx, handlerName)
			return nil, fmt.Errorf("%s: %w", handlerName, err)
		}

		messages, err := fn(ctx, msg, unmarshalTo)
		if err != nil {
			h.logger.ErrorContext(ctx, "Handler failed",
				attr.CorrelationIDFromMsg(msg),
				attr.String("handler", handlerName),
				attr.Error(err),
			)
			h.metrics.RecordOperationFailure(ctx, handlerName)
			return nil, err
		}

		h.metrics.RecordOperationSuccess(ctx, handlerName)
		return messages, nil
	}
}
