package resultsintegrationtests

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	resultdb "github.com/open-forensics/tab-service/app/modules/results/infrastructure/repositories"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
	"github.com/open-forensics/tab-service/integration_tests/testutils"
)

func TestResultRepository(t *testing.T) {
	env := testutils.GetTestEnv(t)
	repo := &resultdb.ResultDBImpl{DB: env.DB}
	gen := testutils.NewTestDataGenerator(11)

	t.Run("round result round-trips by pairing", func(t *testing.T) {
		tournamentID := gen.GenerateTournamentID("results-rr")
		pairingID := sharedtypes.PairingID(uuid.New())

		result := resultdb.RoundResult{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			PairingID:    pairingID,
			Winner:       sharedtypes.WinnerAff,
		}
		require.NoError(t, repo.InsertRoundResult(env.Ctx, nil, &result))

		got, err := repo.GetRoundResultByPairing(env.Ctx, nil, pairingID)
		require.NoError(t, err)
		require.Equal(t, result.ID, got.ID)
		require.Equal(t, sharedtypes.WinnerAff, got.Winner)
		require.False(t, got.Forfeit)
		require.False(t, got.DQ)
		require.False(t, got.Bye)
	})

	t.Run("second result for a pairing is rejected", func(t *testing.T) {
		tournamentID := gen.GenerateTournamentID("results-dup")
		pairingID := sharedtypes.PairingID(uuid.New())

		first := resultdb.RoundResult{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			PairingID:    pairingID,
			Winner:       sharedtypes.WinnerNeg,
		}
		require.NoError(t, repo.InsertRoundResult(env.Ctx, nil, &first))

		second := resultdb.RoundResult{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			PairingID:    pairingID,
			Winner:       sharedtypes.WinnerAff,
		}
		err := repo.InsertRoundResult(env.Ctx, nil, &second)
		require.ErrorIs(t, err, resultdb.ErrDuplicateResult)

		// The original result stands.
		got, err := repo.GetRoundResultByPairing(env.Ctx, nil, pairingID)
		require.NoError(t, err)
		require.Equal(t, sharedtypes.WinnerNeg, got.Winner)
	})

	t.Run("missing results are reported", func(t *testing.T) {
		_, err := repo.GetRoundResultByPairing(env.Ctx, nil, sharedtypes.PairingID(uuid.New()))
		require.ErrorIs(t, err, resultdb.ErrResultNotFound)

		_, err = repo.GetSpeakerResult(env.Ctx, nil,
			sharedtypes.PairingID(uuid.New()), sharedtypes.RegistrationID(uuid.New()))
		require.ErrorIs(t, err, resultdb.ErrResultNotFound)
	})

	t.Run("speaker results round-trip per side", func(t *testing.T) {
		tournamentID := gen.GenerateTournamentID("results-speaks")
		pairingID := sharedtypes.PairingID(uuid.New())
		affID := sharedtypes.RegistrationID(uuid.New())
		negID := sharedtypes.RegistrationID(uuid.New())

		speaks := []resultdb.SpeakerResult{
			{
				ID:             uuid.New(),
				TournamentID:   tournamentID,
				PairingID:      pairingID,
				RegistrationID: affID,
				Side:           sharedtypes.SideAff,
				ScoreTenths:    2855,
			},
			{
				ID:             uuid.New(),
				TournamentID:   tournamentID,
				PairingID:      pairingID,
				RegistrationID: negID,
				Side:           sharedtypes.SideNeg,
				ScoreTenths:    2790,
			},
		}
		require.NoError(t, repo.InsertSpeakerResults(env.Ctx, nil, speaks))

		got, err := repo.GetSpeakerResult(env.Ctx, nil, pairingID, affID)
		require.NoError(t, err)
		require.Equal(t, sharedtypes.SideAff, got.Side)
		require.Equal(t, sharedtypes.SpeakerTenths(2855), got.ScoreTenths)

		got, err = repo.GetSpeakerResult(env.Ctx, nil, pairingID, negID)
		require.NoError(t, err)
		require.Equal(t, sharedtypes.SpeakerTenths(2790), got.ScoreTenths)
	})

	t.Run("tournament listings are scoped", func(t *testing.T) {
		tournamentID := gen.GenerateTournamentID("results-scope")
		otherID := gen.GenerateTournamentID("results-scope-other")

		for i, tid := range []sharedtypes.TournamentID{tournamentID, tournamentID, otherID} {
			pairingID := sharedtypes.PairingID(uuid.New())
			result := resultdb.RoundResult{
				ID:           uuid.New(),
				TournamentID: tid,
				PairingID:    pairingID,
				Winner:       sharedtypes.WinnerAff,
				Bye:          i == 1,
			}
			require.NoError(t, repo.InsertRoundResult(env.Ctx, nil, &result))

			require.NoError(t, repo.InsertSpeakerResults(env.Ctx, nil, []resultdb.SpeakerResult{{
				ID:             uuid.New(),
				TournamentID:   tid,
				PairingID:      pairingID,
				RegistrationID: sharedtypes.RegistrationID(uuid.New()),
				Side:           sharedtypes.SideAff,
				ScoreTenths:    2800,
			}}))
		}

		rounds, err := repo.ListRoundResults(env.Ctx, nil, tournamentID)
		require.NoError(t, err)
		require.Len(t, rounds, 2)
		byes := 0
		for _, rr := range rounds {
			require.Equal(t, tournamentID, rr.TournamentID)
			if rr.Bye {
				byes++
			}
		}
		require.Equal(t, 1, byes)

		speaks, err := repo.ListSpeakerResults(env.Ctx, nil, tournamentID)
		require.NoError(t, err)
		require.Len(t, speaks, 2)
	})
}
