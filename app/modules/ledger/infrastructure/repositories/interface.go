package ledgerdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// Repository is the append-only audit ledger store.
type Repository interface {
	Append(ctx context.Context, db bun.IDB, entry *TabAuditEntry) error
	ListByTournament(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]TabAuditEntry, error)
	ListByEntity(ctx context.Context, db bun.IDB, entityType EntityType, entityID uuid.UUID) ([]TabAuditEntry, error)
	// AcquireEntityLock serializes override writes per target entity for the
	// duration of the surrounding transaction.
	AcquireEntityLock(ctx context.Context, db bun.IDB, entityType EntityType, entityID uuid.UUID) error
}
