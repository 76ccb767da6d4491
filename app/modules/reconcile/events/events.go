package reconcileevents

import (
	"time"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// Topic published when an operator-confirmed import commits a round and its
// full pairing set.
const ImportConfirmedV1 = "tab.import.confirmed.v1"

// ImportConfirmedPayloadV1 announces a committed legacy import.
type ImportConfirmedPayloadV1 struct {
	TournamentID sharedtypes.TournamentID `json:"tournament_id"`
	RoundID      sharedtypes.RoundID      `json:"round_id"`
	Sequence     int                      `json:"sequence"`
	PairingCount int                      `json:"pairing_count"`
	ConfirmedAt  time.Time                `json:"confirmed_at"`
}
