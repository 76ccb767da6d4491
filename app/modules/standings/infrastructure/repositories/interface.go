package standingsdb

import (
	"context"

	"github.com/uptrace/bun"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// Repository stores computed standings snapshots.
type Repository interface {
	// ReplaceSnapshot atomically swaps the tournament's standings for the
	// given rows.
	ReplaceSnapshot(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID, rows []ComputedStanding) error
	GetSnapshot(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]ComputedStanding, error)
}
