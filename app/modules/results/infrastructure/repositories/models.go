package resultdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// RoundResult is the immutable outcome of one completed pairing. It is never
// updated in place; corrections arrive as ledger overrides which supersede it
// at read time.
type RoundResult struct {
	bun.BaseModel `bun:"table:round_results,alias:rr"`

	ID           uuid.UUID                `bun:"id,pk,type:uuid"`
	TournamentID sharedtypes.TournamentID `bun:"tournament_id,notnull"`
	PairingID    sharedtypes.PairingID    `bun:"pairing_id,notnull,unique,type:uuid"`
	Winner       sharedtypes.WinnerSide   `bun:"winner,notnull"`
	Forfeit      bool                     `bun:"forfeit,notnull,default:false"`
	DQ           bool                     `bun:"dq,notnull,default:false"`
	Bye          bool                     `bun:"bye,notnull,default:false"`
	CreatedAt    time.Time                `bun:",nullzero,notnull,default:current_timestamp"`
}

// SpeakerResult is one side's raw speaker score for a pairing, in tenths.
// Immutable like RoundResult.
type SpeakerResult struct {
	bun.BaseModel `bun:"table:speaker_results,alias:sr"`

	ID             uuid.UUID                  `bun:"id,pk,type:uuid"`
	TournamentID   sharedtypes.TournamentID   `bun:"tournament_id,notnull"`
	PairingID      sharedtypes.PairingID      `bun:"pairing_id,notnull,type:uuid"`
	RegistrationID sharedtypes.RegistrationID `bun:"registration_id,notnull,type:uuid"`
	Side           sharedtypes.Side           `bun:"side,notnull"`
	ScoreTenths    sharedtypes.SpeakerTenths  `bun:"score_tenths,notnull"`
	CreatedAt      time.Time                  `bun:",nullzero,notnull,default:current_timestamp"`
}
