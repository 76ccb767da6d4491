package resulthandlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/trace"

	resultservice "github.com/open-forensics/tab-service/app/modules/results/application"
	"github.com/open-forensics/tab-service/app/shared/attr"
	"github.com/open-forensics/tab-service/app/shared/metrics"
	"github.com/open-forensics/tab-service/app/shared/utils"
)

// Handlers is the message-handling surface of the results module.
type Handlers interface {
	HandlePairingResultSubmitted(msg *message.Message) ([]*message.Message, error)
}

// ResultHandlers bridges watermill messages to the result service.
type ResultHandlers struct {
	service resultservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
	helpers utils.Helpers
	metrics metrics.Recorder
}

var _ Handlers = (*ResultHandlers)(nil)

// NewResultHandlers creates the results module handlers.
func NewResultHandlers(
	service resultservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
	helpers utils.Helpers,
	recorder metrics.Recorder,
) *ResultHandlers {
	return &ResultHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
		helpers: helpers,
		metrics: recorder,
	}
}

// handlerWrapper decodes the payload, seeds the context with the message's
// correlation ID, and records handler metrics around fn.
func (h *ResultHandlers) handlerWrapper(
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
