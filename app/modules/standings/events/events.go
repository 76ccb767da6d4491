// Package standingsevents defines the topics and payloads the standings
// module emits.
package standingsevents

import (
	"time"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

const (
	// StandingsRecomputedV1 is published after a recompute replaces the
	// tournament's standings snapshot.
	StandingsRecomputedV1 = "tab.standings.recomputed.v1"

	// StandingsRecomputeFailedV1 is published when a recompute cannot
	// complete, most often on a data-integrity gap.
	StandingsRecomputeFailedV1 = "tab.standings.recompute.failed.v1"
)

// StandingsRecomputedPayloadV1 announces a fresh snapshot.
type StandingsRecomputedPayloadV1 struct {
	TournamentID sharedtypes.TournamentID `json:"tournament_id"`
	Entries      int                      `json:"entries"`
	ComputedAt   time.Time                `json:"computed_at"`
}

// StandingsRecomputeFailedPayloadV1 reports an aborted recompute.
type StandingsRecomputeFailedPayloadV1 struct {
	TournamentID sharedtypes.TournamentID `json:"tournament_id"`
	Reason       string                   `json:"reason"`
}
