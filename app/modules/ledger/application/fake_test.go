package ledgerservice

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	ledgerdb "github.com/open-forensics/tab-service/app/modules/ledger/infrastructure/repositories"
	pairingdb "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories"
	resultdb "github.com/open-forensics/tab-service/app/modules/results/infrastructure/repositories"
	rosterdb "github.com/open-forensics/tab-service/app/modules/roster/infrastructure/repositories"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// ------------------------
// Fake Ledger Repo
// ------------------------

// FakeLedgerRepository is a programmable stub for the ledgerdb.Repository
// interface. By default it appends into Entries and serves ListByEntity from
// them, so Apply tests can chain overrides without a database.
type FakeLedgerRepository struct {
	trace   []string
	Entries []ledgerdb.TabAuditEntry

	AppendFunc            func(ctx context.Context, db bun.IDB, entry *ledgerdb.TabAuditEntry) error
	ListByTournamentFunc  func(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]ledgerdb.TabAuditEntry, error)
	ListByEntityFunc      func(ctx context.Context, db bun.IDB, entityType ledgerdb.EntityType, entityID uuid.UUID) ([]ledgerdb.TabAuditEntry, error)
	AcquireEntityLockFunc func(ctx context.Context, db bun.IDB, entityType ledgerdb.EntityType, entityID uuid.UUID) error
}

func NewFakeLedgerRepository() *FakeLedgerRepository {
	return &FakeLedgerRepository{trace: []string{}}
}

func (f *FakeLedgerRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeLedgerRepository) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeLedgerRepository) Append(ctx context.Context, db bun.IDB, entry *ledgerdb.TabAuditEntry) error {
	f.record("Append")
	if f.AppendFunc != nil {
		return f.AppendFunc(ctx, db, entry)
	}
	f.Entries = append(f.Entries, *entry)
	return nil
}

func (f *FakeLedgerRepository) ListByTournament(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]ledgerdb.TabAuditEntry, error) {
	f.record("ListByTournament")
	if f.ListByTournamentFunc != nil {
		return f.ListByTournamentFunc(ctx, db, tournamentID)
	}
	var out []ledgerdb.TabAuditEntry
	for _, e := range f.Entries {
		if e.TournamentID == tournamentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *FakeLedgerRepository) ListByEntity(ctx context.Context, db bun.IDB, entityType ledgerdb.EntityType, entityID uuid.UUID) ([]ledgerdb.TabAuditEntry, error) {
	f.record("ListByEntity")
	if f.ListByEntityFunc != nil {
		return f.ListByEntityFunc(ctx, db, entityType, entityID)
	}
	var out []ledgerdb.TabAuditEntry
	for _, e := range f.Entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *FakeLedgerRepository) AcquireEntityLock(ctx context.Context, db bun.IDB, entityType ledgerdb.EntityType, entityID uuid.UUID) error {
	f.record("AcquireEntityLock")
	if f.AcquireEntityLockFunc != nil {
		return f.AcquireEntityLockFunc(ctx, db, entityType, entityID)
	}
	return nil
}

var _ ledgerdb.Repository = (*FakeLedgerRepository)(nil)

// ------------------------
// Fake Result Repo
// ------------------------

type FakeResultRepository struct {
	GetRoundResultByPairingFunc func(ctx context.Context, db bun.IDB, pairingID sharedtypes.PairingID) (*resultdb.RoundResult, error)
	GetSpeakerResultFunc        func(ctx context.Context, db bun.IDB, pairingID sharedtypes.PairingID, registrationID sharedtypes.RegistrationID) (*resultdb.SpeakerResult, error)
}

func (f *FakeResultRepository) InsertRoundResult(ctx context.Context, db bun.IDB, result *resultdb.RoundResult) error {
	return nil
}

func (f *FakeResultRepository) InsertSpeakerResults(ctx context.Context, db bun.IDB, results []resultdb.SpeakerResult) error {
	return nil
}

func (f *FakeResultRepository) GetRoundResultByPairing(ctx context.Context, db bun.IDB, pairingID sharedtypes.PairingID) (*resultdb.RoundResult, error) {
	if f.GetRoundResultByPairingFunc != nil {
		return f.GetRoundResultByPairingFunc(ctx, db, pairingID)
	}
	return nil, resultdb.ErrResultNotFound
}

func (f *FakeResultRepository) GetSpeakerResult(ctx context.Context, db bun.IDB, pairingID sharedtypes.PairingID, registrationID sharedtypes.RegistrationID) (*resultdb.SpeakerResult, error) {
	if f.GetSpeakerResultFunc != nil {
		return f.GetSpeakerResultFunc(ctx, db, pairingID, registrationID)
	}
	return nil, resultdb.ErrResultNotFound
}

func (f *FakeResultRepository) ListRoundResults(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]resultdb.RoundResult, error) {
	return nil, nil
}

func (f *FakeResultRepository) ListSpeakerResults(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]resultdb.SpeakerResult, error) {
	return nil, nil
}

var _ resultdb.Repository = (*FakeResultRepository)(nil)

// ------------------------
// Fake Roster Repo
// ------------------------

type FakeRosterRepository struct {
	GetByIDFunc func(ctx context.Context, db bun.IDB, id sharedtypes.RegistrationID) (*rosterdb.Registration, error)
}

func (f *FakeRosterRepository) GetByID(ctx context.Context, db bun.IDB, id sharedtypes.RegistrationID) (*rosterdb.Registration, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	return nil, rosterdb.ErrRegistrationNotFound
}

func (f *FakeRosterRepository) ListByTournament(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]rosterdb.Registration, error) {
	return nil, nil
}

func (f *FakeRosterRepository) IncrementSideCounts(ctx context.Context, db bun.IDB, affIDs, negIDs []sharedtypes.RegistrationID) error {
	return nil
}

var _ rosterdb.Repository = (*FakeRosterRepository)(nil)

// ------------------------
// Fake Pairing Repo
// ------------------------

type FakePairingRepository struct {
	GetRoundFunc   func(ctx context.Context, db bun.IDB, id sharedtypes.RoundID) (*pairingdb.Round, error)
	GetPairingFunc func(ctx context.Context, db bun.IDB, id sharedtypes.PairingID) (*pairingdb.Pairing, error)
}

func (f *FakePairingRepository) CreateRound(ctx context.Context, db bun.IDB, round *pairingdb.Round) error {
	return nil
}

func (f *FakePairingRepository) GetRound(ctx context.Context, db bun.IDB, id sharedtypes.RoundID) (*pairingdb.Round, error) {
	if f.GetRoundFunc != nil {
		return f.GetRoundFunc(ctx, db, id)
	}
	return nil, pairingdb.ErrRoundNotFound
}

func (f *FakePairingRepository) InsertPairing(ctx context.Context, db bun.IDB, pairing *pairingdb.Pairing) error {
	return nil
}

func (f *FakePairingRepository) GetPairing(ctx context.Context, db bun.IDB, id sharedtypes.PairingID) (*pairingdb.Pairing, error) {
	if f.GetPairingFunc != nil {
		return f.GetPairingFunc(ctx, db, id)
	}
	return nil, pairingdb.ErrPairingNotFound
}

func (f *FakePairingRepository) ListByRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]pairingdb.Pairing, error) {
	return nil, nil
}

func (f *FakePairingRepository) ListByTournament(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]pairingdb.PairingWithRound, error) {
	return nil, nil
}

var _ pairingdb.Repository = (*FakePairingRepository)(nil)

// ------------------------
// Fake Event Bus
// ------------------------

type FakeEventBus struct {
	Published   map[string][]*message.Message
	PublishFunc func(topic string, messages ...*message.Message) error
}

func NewFakeEventBus() *FakeEventBus {
	return &FakeEventBus{Published: make(map[string][]*message.Message)}
}

func (f *FakeEventBus) Publish(topic string, messages ...*message.Message) error {
	if f.PublishFunc != nil {
		return f.PublishFunc(topic, messages...)
	}
	f.Published[topic] = append(f.Published[topic], messages...)
	return nil
}

func (f *FakeEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (f *FakeEventBus) Close() error { return nil }
