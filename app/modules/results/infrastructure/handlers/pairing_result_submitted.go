package resulthandlers

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	resultevents "github.com/open-forensics/tab-service/app/modules/results/events"
	"github.com/open-forensics/tab-service/app/shared/attr"
)

// HandlePairingResultSubmitted ingests a submitted outcome and emits either a
// committed or failed event.
func (h *ResultHandlers) HandlePairingResultSubmitted(msg *message.Message) ([]*message.Message, error) {
	wrapped := h.handlerWrapper(
		"HandlePairingResultSubmitted",
		&resultevents.PairingResultSubmittedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload any) ([]*message.Message, error) {
			submission := payload.(*resultevents.PairingResultSubmittedPayloadV1)

			result, err := h.service.IngestPairingResult(ctx, *submission)
			if err != nil {
				return nil, err
			}

			if result.IsFailure() {
				h.logger.WarnContext(ctx, "Pairing result rejected",
					attr.CorrelationIDFromMsg(msg),
					attr.PairingID("pairing_id", submission.PairingID),
					attr.String("reason", result.Failure.Reason),
				)
				failureMsg, err := h.helpers.CreateResultMessage(msg, result.Failure, resultevents.RoundResultFailedV1)
				if err != nil {
					return nil, err
				}
				return []*message.Message{failureMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, result.Success, resultevents.RoundResultCommittedV1)
			if err != nil {
				return nil, err
			}
			return []*message.Message{successMsg}, nil
		},
	)
	return wrapped(msg)
}
