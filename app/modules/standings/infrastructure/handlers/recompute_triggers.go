package standingshandlers

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	ledgerevents "github.com/open-forensics/tab-service/app/modules/ledger/events"
	resultevents "github.com/open-forensics/tab-service/app/modules/results/events"
	"github.com/open-forensics/tab-service/app/shared/attr"
)

// HandleRoundResultCommitted schedules a recompute for the tournament the
// committed result belongs to.
func (h *StandingsHandlers) HandleRoundResultCommitted(msg *message.Message) ([]*message.Message, error) {
	wrapped := h.handlerWrapper(
		"HandleRoundResultCommitted",
		&resultevents.RoundResultCommittedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload any) ([]*message.Message, error) {
			committed := payload.(*resultevents.RoundResultCommittedPayloadV1)

			if err := h.scheduler.EnqueueRecompute(ctx, committed.TournamentID); err != nil {
				return nil, err
			}
			h.logger.InfoContext(ctx, "Recompute scheduled for committed result",
				attr.CorrelationIDFromMsg(msg),
				attr.TournamentID("tournament_id", committed.TournamentID),
				attr.PairingID("pairing_id", committed.PairingID),
			)
			return nil, nil
		},
	)
	return wrapped(msg)
}

// HandleOverrideCommitted schedules a recompute whenever the ledger commits
// any override; manual-rank and tiebreaker entries change ordering too, so no
// action filtering happens here.
func (h *StandingsHandlers) HandleOverrideCommitted(msg *message.Message) ([]*message.Message, error) {
	wrapped := h.handlerWrapper(
		"HandleOverrideCommitted",
		&ledgerevents.OverrideCommittedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload any) ([]*message.Message, error) {
			committed := payload.(*ledgerevents.OverrideCommittedPayloadV1)

			if err := h.scheduler.EnqueueRecompute(ctx, committed.TournamentID); err != nil {
				return nil, err
			}
			h.logger.InfoContext(ctx, "Recompute scheduled for committed override",
				attr.CorrelationIDFromMsg(msg),
				attr.TournamentID("tournament_id", committed.TournamentID),
				attr.String("action", committed.Action),
			)
			return nil, nil
		},
	)
	return wrapped(msg)
}
