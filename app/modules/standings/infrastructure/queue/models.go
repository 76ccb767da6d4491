package standingsqueue

import (
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// RecomputeArgs is the river job that rebuilds one tournament's standings.
// Uniqueness by args within the debounce window collapses the burst of
// result/override events a round close produces into a single recompute.
type RecomputeArgs struct {
	TournamentID sharedtypes.TournamentID `json:"tournament_id"`
}

// Kind returns the job type identifier for River.
func (RecomputeArgs) Kind() string { return "standings_recompute" }
