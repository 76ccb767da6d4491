package standingsintegrationtests

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	ledgerdb "github.com/open-forensics/tab-service/app/modules/ledger/infrastructure/repositories"
	pairingdb "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories"
	resultdb "github.com/open-forensics/tab-service/app/modules/results/infrastructure/repositories"
	rosterdb "github.com/open-forensics/tab-service/app/modules/roster/infrastructure/repositories"
	standingsservice "github.com/open-forensics/tab-service/app/modules/standings/application"
	standingsevents "github.com/open-forensics/tab-service/app/modules/standings/events"
	standingsdb "github.com/open-forensics/tab-service/app/modules/standings/infrastructure/repositories"
	"github.com/open-forensics/tab-service/app/shared/metrics"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
	"github.com/open-forensics/tab-service/app/shared/utils"
	"github.com/open-forensics/tab-service/config"
	"github.com/open-forensics/tab-service/integration_tests/testutils"
)

func TestStandingsRepository(t *testing.T) {
	env := testutils.GetTestEnv(t)
	repo := &standingsdb.StandingsDBImpl{DB: env.DB}
	gen := testutils.NewTestDataGenerator(31)

	t.Run("replace snapshot swaps the stored rows wholesale", func(t *testing.T) {
		tournamentID := gen.GenerateTournamentID("standings-swap")

		makeRow := func(rank, wins int) standingsdb.ComputedStanding {
			return standingsdb.ComputedStanding{
				ID:             uuid.New(),
				TournamentID:   tournamentID,
				RegistrationID: sharedtypes.RegistrationID(uuid.New()),
				DisplayName:    gen.GenerateReason(),
				Wins:           wins,
				Rank:           rank,
				DecidedBy:      "record",
				Trace:          []string{"record"},
				ComputedAt:     time.Now().UTC(),
			}
		}

		first := []standingsdb.ComputedStanding{makeRow(1, 3), makeRow(2, 2), makeRow(3, 1)}
		require.NoError(t, repo.ReplaceSnapshot(env.Ctx, nil, tournamentID, first))

		second := []standingsdb.ComputedStanding{makeRow(1, 4), makeRow(2, 3)}
		require.NoError(t, repo.ReplaceSnapshot(env.Ctx, nil, tournamentID, second))

		got, err := repo.GetSnapshot(env.Ctx, nil, tournamentID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, 1, got[0].Rank)
		require.Equal(t, 4, got[0].Wins)
		require.Equal(t, []string{"record"}, got[0].Trace)
	})

	t.Run("replacing with no rows clears the snapshot", func(t *testing.T) {
		tournamentID := gen.GenerateTournamentID("standings-clear")
		rows := []standingsdb.ComputedStanding{{
			ID:             uuid.New(),
			TournamentID:   tournamentID,
			RegistrationID: sharedtypes.RegistrationID(uuid.New()),
			DisplayName:    "Lone Entry",
			Rank:           1,
			ComputedAt:     time.Now().UTC(),
		}}
		require.NoError(t, repo.ReplaceSnapshot(env.Ctx, nil, tournamentID, rows))
		require.NoError(t, repo.ReplaceSnapshot(env.Ctx, nil, tournamentID, nil))

		got, err := repo.GetSnapshot(env.Ctx, nil, tournamentID)
		require.NoError(t, err)
		require.Empty(t, got)
	})
}

// TestRecomputeEndToEnd seeds a small tournament through the real
// repositories and runs a recompute against Postgres: two completed rounds,
// full results, and a ledger forfeit that flips one of them.
func TestRecomputeEndToEnd(t *testing.T) {
	env := testutils.GetTestEnv(t)
	gen := testutils.NewTestDataGenerator(53)
	require.NoError(t, testutils.ResetTables(env.Ctx, env.DB))

	standingsRepo := &standingsdb.StandingsDBImpl{DB: env.DB}
	rosterRepo := &rosterdb.RosterDBImpl{DB: env.DB}
	pairingRepo := &pairingdb.PairingDBImpl{DB: env.DB}
	resultRepo := &resultdb.ResultDBImpl{DB: env.DB}
	ledgerRepo := &ledgerdb.LedgerDBImpl{DB: env.DB}

	bus := testutils.NewCapturingEventBus()
	service := standingsservice.NewStandingsService(
		standingsRepo,
		rosterRepo,
		pairingRepo,
		resultRepo,
		ledgerRepo,
		bus,
		utils.NewHelpers(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.NoOp{},
		noop.NewTracerProvider().Tracer("test_standings_service"),
		env.DB,
		config.TabConfig{DQPolicy: config.DQRetroactive},
	)

	tournamentID := gen.GenerateTournamentID("recompute")
	regs := gen.GenerateRegistrations(tournamentID, 4)
	_, err := env.DB.NewInsert().Model(&regs).Exec(env.Ctx)
	require.NoError(t, err)
	teamA, teamB, teamC, teamD := regs[0], regs[1], regs[2], regs[3]

	roundOne := gen.GenerateRound(tournamentID, 1)
	roundTwo := gen.GenerateRound(tournamentID, 2)
	require.NoError(t, pairingRepo.CreateRound(env.Ctx, nil, &roundOne))
	require.NoError(t, pairingRepo.CreateRound(env.Ctx, nil, &roundTwo))

	seedPairing := func(round pairingdb.Round, aff, neg rosterdb.Registration, winner sharedtypes.WinnerSide, affTenths, negTenths sharedtypes.SpeakerTenths) pairingdb.Pairing {
		t.Helper()
		pairing := gen.GeneratePairing(round.ID, aff.ID, neg.ID)
		require.NoError(t, pairingRepo.InsertPairing(env.Ctx, nil, &pairing))
		require.NoError(t, resultRepo.InsertRoundResult(env.Ctx, nil, &resultdb.RoundResult{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			PairingID:    pairing.ID,
			Winner:       winner,
		}))
		require.NoError(t, resultRepo.InsertSpeakerResults(env.Ctx, nil, []resultdb.SpeakerResult{
			{
				ID: uuid.New(), TournamentID: tournamentID, PairingID: pairing.ID,
				RegistrationID: aff.ID, Side: sharedtypes.SideAff, ScoreTenths: affTenths,
			},
			{
				ID: uuid.New(), TournamentID: tournamentID, PairingID: pairing.ID,
				RegistrationID: neg.ID, Side: sharedtypes.SideNeg, ScoreTenths: negTenths,
			},
		}))
		return pairing
	}

	// Round 1: A over B, C over D. Round 2: A over C, B over D.
	seedPairing(roundOne, teamA, teamB, sharedtypes.WinnerAff, 2850, 2800)
	flipped := seedPairing(roundOne, teamC, teamD, sharedtypes.WinnerAff, 2840, 2750)
	seedPairing(roundTwo, teamA, teamC, sharedtypes.WinnerAff, 2860, 2830)
	seedPairing(roundTwo, teamB, teamD, sharedtypes.WinnerAff, 2810, 2760)

	// The tab room later rules the C/D round a forfeit in D's favor.
	require.NoError(t, ledgerRepo.Append(env.Ctx, nil, &ledgerdb.TabAuditEntry{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Action:       ledgerdb.ActionForfeit,
		EntityType:   ledgerdb.EntityRoundResult,
		EntityID:     flipped.ID.UUID(),
		NewValue: &ledgerdb.Snapshot{
			EntityType: ledgerdb.EntityRoundResult,
			RoundResult: &ledgerdb.RoundResultSnapshot{
				PairingID: &flipped.ID,
				Winner:    sharedtypes.WinnerNeg,
				Forfeit:   true,
			},
		},
		Reason: "evidence violation confirmed after the round",
		UserID: gen.GenerateUserID(),
	}))

	result, err := service.Recompute(env.Ctx, tournamentID)
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	require.Equal(t, 4, result.Success.Entries)
	require.Equal(t, 1, bus.Count(standingsevents.StandingsRecomputedV1))

	rows, err := service.GetStandings(env.Ctx, tournamentID)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	byReg := make(map[sharedtypes.RegistrationID]standingsdb.ComputedStanding, len(rows))
	for i, row := range rows {
		require.Equal(t, i+1, row.Rank)
		byReg[row.RegistrationID] = row
	}

	// A swept both rounds with full speaks.
	require.Equal(t, 1, byReg[teamA.ID].Rank)
	require.Equal(t, 2, byReg[teamA.ID].Wins)
	require.Equal(t, 0, byReg[teamA.ID].Losses)
	require.Equal(t, sharedtypes.SpeakerTenths(5710), byReg[teamA.ID].TotalTenths)
	require.Equal(t, 2, byReg[teamA.ID].RoundsPlayed)

	// The forfeit stripped C's round-one win, leaving C winless.
	require.Equal(t, 0, byReg[teamC.ID].Wins)
	require.Equal(t, 2, byReg[teamC.ID].Losses)
	require.Equal(t, 4, byReg[teamC.ID].Rank)

	// And handed D the round.
	require.Equal(t, 1, byReg[teamD.ID].Wins)
	require.Equal(t, 1, byReg[teamD.ID].Losses)
	require.Equal(t, 1, byReg[teamB.ID].Wins)

	// Recompute is idempotent: a second run replaces the snapshot in place.
	again, err := service.Recompute(env.Ctx, tournamentID)
	require.NoError(t, err)
	require.True(t, again.IsSuccess())

	rows, err = service.GetStandings(env.Ctx, tournamentID)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, teamA.ID, rows[0].RegistrationID)
}
