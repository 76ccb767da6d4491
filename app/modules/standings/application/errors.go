package standingsservice

import (
	"fmt"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// DataIntegrityError aborts a recompute when a completed round carries a
// pairing with no result. Skipping it silently would corrupt win/loss totals
// tournament-wide, so the calculator surfaces the pairing instead.
type DataIntegrityError struct {
	TournamentID sharedtypes.TournamentID
	RoundID      sharedtypes.RoundID
	Sequence     int
	PairingID    sharedtypes.PairingID
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("round %d is completed but pairing %s has no result (tournament %s)",
		e.Sequence, e.PairingID, e.TournamentID)
}
