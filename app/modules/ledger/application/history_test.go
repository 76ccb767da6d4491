package ledgerservice

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	ledgerdb "github.com/open-forensics/tab-service/app/modules/ledger/infrastructure/repositories"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

func TestLedgerService_HistoryFlagsRacingOverrides(t *testing.T) {
	ctx := context.Background()
	tournamentID := sharedtypes.TournamentID("nats-2026")
	contestedID := uuid.New()
	quietID := uuid.New()
	base := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

	repo := NewFakeLedgerRepository()
	repo.Entries = []ledgerdb.TabAuditEntry{
		{
			ID: uuid.New(), TournamentID: tournamentID,
			Action: ledgerdb.ActionSpeakerPointsEdit, EntityType: ledgerdb.EntitySpeakerResult,
			EntityID: contestedID, Reason: "ballot misread", UserID: "tab-a",
			CreatedAt: base,
		},
		{
			ID: uuid.New(), TournamentID: tournamentID,
			Action: ledgerdb.ActionResultCorrection, EntityType: ledgerdb.EntityRoundResult,
			EntityID: quietID, Reason: "wrong ballot entered", UserID: "tab-a",
			CreatedAt: base.Add(time.Second),
		},
		{
			ID: uuid.New(), TournamentID: tournamentID,
			Action: ledgerdb.ActionSpeakerPointsEdit, EntityType: ledgerdb.EntitySpeakerResult,
			EntityID: contestedID, Reason: "judge correction", UserID: "tab-b",
			CreatedAt: base.Add(2 * time.Second),
		},
	}
	service := newTestLedgerService(repo, &FakeResultRepository{}, &FakeRosterRepository{}, &FakePairingRepository{}, NewFakeEventBus())

	entries, err := service.History(ctx, tournamentID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected all racing entries kept, got %d", len(entries))
	}

	// The losing speaker edit is superseded; both edits on the contested
	// score are flagged for review; the lone correction is neither.
	if !entries[0].Superseded || !entries[0].Conflict {
		t.Errorf("older racing edit must be superseded and conflicted: %+v", entries[0])
	}
	if entries[2].Superseded || !entries[2].Conflict {
		t.Errorf("winning racing edit stays authoritative but flagged: %+v", entries[2])
	}
	if entries[1].Superseded || entries[1].Conflict {
		t.Errorf("uncontested correction must carry no markers: %+v", entries[1])
	}

	byEntity, err := service.EntityHistory(ctx, ledgerdb.EntitySpeakerResult, contestedID)
	if err != nil {
		t.Fatalf("EntityHistory: %v", err)
	}
	if len(byEntity) != 2 || !byEntity[0].Superseded || byEntity[1].Superseded {
		t.Errorf("entity trail must mark only the replaced entry: %+v", byEntity)
	}
}
