package reconcileservice

import (
	"context"

	reconcileevents "github.com/open-forensics/tab-service/app/modules/reconcile/events"
	"github.com/open-forensics/tab-service/app/shared/results"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// ProposeOperationResult is the result of proposing an import.
type ProposeOperationResult = results.OperationResult[*Proposal, ProposeFailure]

// ConfirmOperationResult is the result of confirming an import.
type ConfirmOperationResult = results.OperationResult[reconcileevents.ImportConfirmedPayloadV1, ConfirmFailure]

// Service is the legacy import reconciler's application interface.
type Service interface {
	Propose(ctx context.Context, tournamentID sharedtypes.TournamentID, filename string, data []byte) (ProposeOperationResult, error)
	Confirm(ctx context.Context, req ConfirmRequest) (ConfirmOperationResult, error)
}
