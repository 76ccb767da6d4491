package standingshandlers

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
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	ledgerevents "github.com/open-forensics/tab-service/app/modules/ledger/events"
	resultevents "github.com/open-forensics/tab-service/app/modules/results/events"
	"github.com/open-forensics/tab-service/app/shared/metrics"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
	"github.com/open-forensics/tab-service/app/shared/utils"
)

func newTestStandingsHandlers(scheduler *FakeScheduler) *StandingsHandlers {
	return NewStandingsHandlers(
		scheduler,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		noop.NewTracerProvider().Tracer("test"),
		utils.NewHelpers(),
		metrics.NoOp{},
	)
}

func marshalMessage(t *testing.T, payload any) *message.Message {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), data)
}

func TestHandleRoundResultCommitted(t *testing.T) {
	tournamentID := sharedtypes.TournamentID("district-7")

	t.Run("enqueues a recompute for the tournament", func(t *testing.T) {
		scheduler := &FakeScheduler{}
		handlers := newTestStandingsHandlers(scheduler)

		msg := marshalMessage(t, resultevents.RoundResultCommittedPayloadV1{
			TournamentID: tournamentID,
			RoundID:      sharedtypes.RoundID(uuid.New()),
			PairingID:    sharedtypes.PairingID(uuid.New()),
			CommittedAt:  time.Now().UTC(),
		})

		out, err := handlers.HandleRoundResultCommitted(msg)
		require.NoError(t, err)
		require.Nil(t, out)
		require.Equal(t, []sharedtypes.TournamentID{tournamentID}, scheduler.Enqueued)
	})

	t.Run("scheduler errors propagate for retry", func(t *testing.T) {
		boom := errors.New("queue unavailable")
		scheduler := &FakeScheduler{
			EnqueueRecomputeFunc: func(context.Context, sharedtypes.TournamentID) error {
				return boom
			},
		}
		handlers := newTestStandingsHandlers(scheduler)

		msg := marshalMessage(t, resultevents.RoundResultCommittedPayloadV1{TournamentID: tournamentID})
		_, err := handlers.HandleRoundResultCommitted(msg)
		require.ErrorIs(t, err, boom)
	})
}

func TestHandleOverrideCommitted(t *testing.T) {
	tournamentID := sharedtypes.TournamentID("district-7")

	t.Run("every override action triggers a recompute", func(t *testing.T) {
		scheduler := &FakeScheduler{}
		handlers := newTestStandingsHandlers(scheduler)

		for _, action := range []string{"forfeit", "manual_rank", "tiebreaker_override"} {
			msg := marshalMessage(t, ledgerevents.OverrideCommittedPayloadV1{
				TournamentID: tournamentID,
				AuditEntryID: uuid.New(),
				Action:       action,
				CommittedAt:  time.Now().UTC(),
			})
			out, err := handlers.HandleOverrideCommitted(msg)
			require.NoError(t, err)
			require.Nil(t, out)
		}
		require.Len(t, scheduler.Enqueued, 3)
	})

	t.Run("malformed payload never reaches the scheduler", func(t *testing.T) {
		scheduler := &FakeScheduler{}
		handlers := newTestStandingsHandlers(scheduler)

		_, err := handlers.HandleOverrideCommitted(message.NewMessage(watermill.NewUUID(), []byte("not-json")))
		require.Error(t, err)
		require.Empty(t, scheduler.Enqueued)
	})
}
