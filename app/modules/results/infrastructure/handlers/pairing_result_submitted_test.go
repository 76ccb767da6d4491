package resulthandlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	resultservice "github.com/open-forensics/tab-service/app/modules/results/application"
	resultevents "github.com/open-forensics/tab-service/app/modules/results/events"
	"github.com/open-forensics/tab-service/app/shared/metrics"
	"github.com/open-forensics/tab-service/app/shared/results"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
	"github.com/open-forensics/tab-service/app/shared/utils"
)

func newTestHandlers(service resultservice.Service) *ResultHandlers {
	return NewResultHandlers(
		service,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		noop.NewTracerProvider().Tracer("test"),
		utils.NewHelpers(),
		metrics.NoOp{},
	)
}

func newSubmittedMessage(t *testing.T, payload resultevents.PairingResultSubmittedPayloadV1) *message.Message {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	msg := message.NewMessage(watermill.NewUUID(), data)
	middleware.SetCorrelationID("corr-123", msg)
	return msg
}

func TestHandlePairingResultSubmitted(t *testing.T) {
	submission := resultevents.PairingResultSubmittedPayloadV1{
		TournamentID: "state-quals",
		PairingID:    sharedtypes.PairingID(uuid.New()),
		Winner:       sharedtypes.WinnerNeg,
	}

	t.Run("publishes committed event on success", func(t *testing.T) {
		committed := resultevents.RoundResultCommittedPayloadV1{
			TournamentID: submission.TournamentID,
			RoundID:      sharedtypes.RoundID(uuid.New()),
			PairingID:    submission.PairingID,
			CommittedAt:  time.Now().UTC(),
		}
		service := &FakeResultService{
			IngestFunc: func(context.Context, resultevents.PairingResultSubmittedPayloadV1) (resultservice.IngestOperationResult, error) {
				return results.Succeed[resultevents.RoundResultCommittedPayloadV1, resultevents.RoundResultFailedPayloadV1](committed), nil
			},
		}
		handlers := newTestHandlers(service)

		out, err := handlers.HandlePairingResultSubmitted(newSubmittedMessage(t, submission))
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.Equal(t, resultevents.RoundResultCommittedV1, out[0].Metadata.Get(utils.TopicMetadataKey))
		require.Equal(t, "corr-123", middleware.MessageCorrelationID(out[0]))

		var got resultevents.RoundResultCommittedPayloadV1
		require.NoError(t, json.Unmarshal(out[0].Payload, &got))
		require.Equal(t, committed.PairingID, got.PairingID)
		require.Equal(t, committed.RoundID, got.RoundID)

		require.Len(t, service.Submissions, 1)
		require.Equal(t, submission.PairingID, service.Submissions[0].PairingID)
	})

	t.Run("publishes failed event on rejection", func(t *testing.T) {
		service := &FakeResultService{
			IngestFunc: func(_ context.Context, sub resultevents.PairingResultSubmittedPayloadV1) (resultservice.IngestOperationResult, error) {
				return results.Fail[resultevents.RoundResultCommittedPayloadV1, resultevents.RoundResultFailedPayloadV1](
					resultevents.RoundResultFailedPayloadV1{
						TournamentID: sub.TournamentID,
						PairingID:    sub.PairingID,
						Reason:       "result already recorded",
					}), nil
			},
		}
		handlers := newTestHandlers(service)

		out, err := handlers.HandlePairingResultSubmitted(newSubmittedMessage(t, submission))
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.Equal(t, resultevents.RoundResultFailedV1, out[0].Metadata.Get(utils.TopicMetadataKey))

		var got resultevents.RoundResultFailedPayloadV1
		require.NoError(t, json.Unmarshal(out[0].Payload, &got))
		require.Equal(t, "result already recorded", got.Reason)
	})

	t.Run("service errors propagate for retry", func(t *testing.T) {
		boom := errors.New("database unavailable")
		service := &FakeResultService{
			IngestFunc: func(context.Context, resultevents.PairingResultSubmittedPayloadV1) (resultservice.IngestOperationResult, error) {
				return resultservice.IngestOperationResult{}, boom
			},
		}
		handlers := newTestHandlers(service)

		out, err := handlers.HandlePairingResultSubmitted(newSubmittedMessage(t, submission))
		require.ErrorIs(t, err, boom)
		require.Nil(t, out)
	})

	t.Run("malformed payload fails without reaching the service", func(t *testing.T) {
		service := &FakeResultService{}
		handlers := newTestHandlers(service)

		msg := message.NewMessage(watermill.NewUUID(), []byte("{not json"))
		_, err := handlers.HandlePairingResultSubmitted(msg)
		require.Error(t, err)
		require.Empty(t, service.Submissions)
	})
}
