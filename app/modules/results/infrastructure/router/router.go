package resultrouter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/open-forensics/tab-service/app/eventbus"
	resultevents "github.com/open-forensics/tab-service/app/modules/results/events"
	resulthandlers "github.com/open-forensics/tab-service/app/modules/results/infrastructure/handlers"
	"github.com/open-forensics/tab-service/app/shared/attr"
	"github.com/open-forensics/tab-service/app/shared/utils"
)

// ResultRouter subscribes the results module handlers to their topics.
type ResultRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
}

// NewResultRouter creates a new ResultRouter.
func NewResultRouter(
	logger *slog.Logger,
	router *message.Router,
	bus eventbus.EventBus,
	prometheusRegistry *prometheus.Registry,
) *ResultRouter {
	if prometheusRegistry != nil {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "results")
		builder.AddPrometheusRouterMetrics(router)
	}
	return &ResultRouter{
		logger:     logger,
		Router:     router,
		subscriber: bus,
		publisher:  bus,
	}
}

// Configure registers middleware and handlers on the shared router.
func (r *ResultRouter) Configure(ctx context.Context, handlers resulthandlers.Handlers) error {
	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{MaxRetries: 3}.Middleware,
	)

	eventsToHandlers := map[string]message.HandlerFunc{
		resultevents.PairingResultSubmittedV1: handlers.HandlePairingResultSubmitted,
	}

	for topic, handlerFunc := range eventsToHandlers {
		handlerName := fmt.Sprintf("results.%s", topic)
		r.addHandler(ctx, handlerName, topic, handlerFunc)
	}
	return nil
}

// addHandler wires a subscribe topic to a handler and publishes any returned
// messages to the topic each message carries in its metadata.
func (r *ResultRouter) addHandler(ctx context.Context, handlerName, topic string, handlerFunc message.HandlerFunc) {
	r.Router.AddHandler(
		handlerName,
		topic,
		r.subscriber,
		"",
		nil,
		func(msg *message.Message) ([]*message.Message, error) {
			messages, err := handlerFunc(msg)
			if err != nil {
				r.logger.ErrorContext(ctx, "Error processing message",
					attr.String("handler", handlerName),
					attr.String("message_id", msg.UUID),
					attr.Error(err),
				)
				return nil, err
			}
			for _, m := range messages {
				publishTopic := m.Metadata.Get(utils.TopicMetadataKey)
				if publishTopic == "" {
					r.logger.Error("Result message missing publish topic",
						attr.String("handler", handlerName),
						attr.String("message_id", m.UUID),
					)
					continue
				}
				if err := r.publisher.Publish(publishTopic, m); err != nil {
					return nil, fmt.Errorf("failed to publish to %s: %w", publishTopic, err)
				}
			}
			return nil, nil
		},
	)
}

func (r *ResultRouter) Close() error {
	return r.Router.Close()
}
