package rosterdb

import (
	"context"

	"github.com/uptrace/bun"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// Repository exposes the roster store. Read-mostly; side counts are the only
// mutation this core performs.
type Repository interface {
	GetByID(ctx context.Context, db bun.IDB, id sharedtypes.RegistrationID) (*Registration, error)
	ListByTournament(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]Registration, error)
	IncrementSideCounts(ctx context.Context, db bun.IDB, affIDs, negIDs []sharedtypes.RegistrationID) error
}
