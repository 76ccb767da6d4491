package pairingdb

import (
	"time"

	"github.com/uptrace/bun"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// Round is one debate round in a tournament.
type Round struct {
	bun.BaseModel `bun:"table:rounds,alias:r"`

	ID           sharedtypes.RoundID      `bun:"id,pk,type:uuid"`
	TournamentID sharedtypes.TournamentID `bun:"tournament_id,notnull"`
	Sequence     int                      `bun:"sequence,notnull"`
	Status       sharedtypes.RoundStatus  `bun:"status,notnull"`
	CreatedAt    time.Time                `bun:",nullzero,notnull,default:current_timestamp"`
}

// PairingScheduled is the status of a freshly created pairing. Later
// transitions belong to the external scheduling collaborator.
const PairingScheduled = "scheduled"

// Pairing is one aff/neg matchup within a round. Room and scheduling metadata
// belong to the external scheduling collaborator; room is carried opaquely.
type Pairing struct {
	bun.BaseModel `bun:"table:pairings,alias:p"`

	ID       sharedtypes.PairingID       `bun:"id,pk,type:uuid"`
	RoundID  sharedtypes.RoundID         `bun:"round_id,notnull,type:uuid"`
	AffID    sharedtypes.RegistrationID  `bun:"aff_registration_id,notnull,type:uuid"`
	NegID    sharedtypes.RegistrationID  `bun:"neg_registration_id,notnull,type:uuid"`
	Status   string                      `bun:"status,notnull"`
	WinnerID *sharedtypes.RegistrationID `bun:"winner_registration_id,nullzero,type:uuid"`
	Room     string                      `bun:"room,nullzero"`

	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// PairingWithRound joins a pairing to its round for calculator input loading.
type PairingWithRound struct {
	Pairing
	RoundSequence int                     `bun:"round_sequence"`
	RoundStatus   sharedtypes.RoundStatus `bun:"round_status"`
}
