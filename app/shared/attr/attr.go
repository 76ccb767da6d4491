// Package attr provides slog attribute helpers shared by every module so log
// fields stay consistently named across services, handlers, and repositories.
package attr

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

type correlationIDKey struct{}

// WithCorrelationID stores a correlation ID on the context for later extraction.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}

// CorrelationIDFromContext returns the correlation ID stored on the context, if any.
func CorrelationIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return v
	}
	return ""
}

// ExtractCorrelationID returns a slog attribute for the context's correlation ID.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	return slog.String("correlation_id", CorrelationIDFromContext(ctx))
}

// CorrelationIDFromMsg returns a slog attribute for a watermill message's correlation ID.
func CorrelationIDFromMsg(msg *message.Message) slog.Attr {
	return slog.String("correlation_id", middleware.MessageCorrelationID(msg))
}

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Int64(key string, value int64) slog.Attr { return slog.Int64(key, value) }

func Float64(key string, value float64) slog.Attr { return slog.Float64(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Any(key string, value any) slog.Attr { return slog.Any(key, value) }

func Error(err error) slog.Attr { return slog.Any("error", err) }

func TournamentID(key string, id sharedtypes.TournamentID) slog.Attr {
	return slog.String(key, id.String())
}

func RegistrationID(key string, id sharedtypes.RegistrationID) slog.Attr {
	return slog.String(key, id.String())
}

func RoundID(key string, id sharedtypes.RoundID) slog.Attr {
	return slog.String(key, id.String())
}

func PairingID(key string, id sharedtypes.PairingID) slog.Attr {
	return slog.String(key, id.String())
}

func UserID(key string, id sharedtypes.UserID) slog.Attr {
	return slog.String(key, id.String())
}
