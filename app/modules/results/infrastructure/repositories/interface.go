package resultdb

import (
	"context"

	"github.com/uptrace/bun"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// Repository stores and loads immutable result records.
type Repository interface {
	InsertRoundResult(ctx context.Context, db bun.IDB, result *RoundResult) error
	InsertSpeakerResults(ctx context.Context, db bun.IDB, results []SpeakerResult) error
	GetRoundResultByPairing(ctx context.Context, db bun.IDB, pairingID sharedtypes.PairingID) (*RoundResult, error)
	GetSpeakerResult(ctx context.Context, db bun.IDB, pairingID sharedtypes.PairingID, registrationID sharedtypes.RegistrationID) (*SpeakerResult, error)
	ListRoundResults(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]RoundResult, error)
	ListSpeakerResults(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]SpeakerResult, error)
}
