package standingsservice

import (
	"context"

	standingsevents "github.com/open-forensics/tab-service/app/modules/standings/events"
	standingsdb "github.com/open-forensics/tab-service/app/modules/standings/infrastructure/repositories"
	"github.com/open-forensics/tab-service/app/shared/results"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// RecomputeOperationResult is the envelope for a standings recompute.
type RecomputeOperationResult = results.OperationResult[
	standingsevents.StandingsRecomputedPayloadV1,
	standingsevents.StandingsRecomputeFailedPayloadV1,
]

// Service is the standings surface.
type Service interface {
	// Recompute rebuilds and stores the tournament's standings wholesale.
	// Safe to run redundantly.
	Recompute(ctx context.Context, tournamentID sharedtypes.TournamentID) (RecomputeOperationResult, error)
	GetStandings(ctx context.Context, tournamentID sharedtypes.TournamentID) ([]standingsdb.ComputedStanding, error)
}
