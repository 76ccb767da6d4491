package ledgerservice

import (
	"context"

	"github.com/google/uuid"

	ledgerevents "github.com/open-forensics/tab-service/app/modules/ledger/events"
	ledgerdb "github.com/open-forensics/tab-service/app/modules/ledger/infrastructure/repositories"
	"github.com/open-forensics/tab-service/app/shared/results"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// OverrideOperationResult is the envelope for override application.
type OverrideOperationResult = results.OperationResult[
	ledgerevents.OverrideCommittedPayloadV1,
	ledgerevents.OverrideFailedPayloadV1,
]

// Service is the override ledger surface. The ledger alone must be able to
// answer "why does the standing look like this".
type Service interface {
	Apply(ctx context.Context, override Override) (OverrideOperationResult, error)
	History(ctx context.Context, tournamentID sharedtypes.TournamentID) ([]HistoryEntry, error)
	EntityHistory(ctx context.Context, entityType ledgerdb.EntityType, entityID uuid.UUID) ([]HistoryEntry, error)
	Overlay(ctx context.Context, tournamentID sharedtypes.TournamentID) (*Overlay, error)
}
