package pairingdb

import (
	"context"

	"github.com/uptrace/bun"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// Repository exposes the pairing store. The Reconciler writes it; Result
// Ingestion and the Standings Calculator read it.
type Repository interface {
	CreateRound(ctx context.Context, db bun.IDB, round *Round) error
	GetRound(ctx context.Context, db bun.IDB, id sharedtypes.RoundID) (*Round, error)
	InsertPairing(ctx context.Context, db bun.IDB, pairing *Pairing) error
	GetPairing(ctx context.Context, db bun.IDB, id sharedtypes.PairingID) (*Pairing, error)
	ListByRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]Pairing, error)
	ListByTournament(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]PairingWithRound, error)
}
