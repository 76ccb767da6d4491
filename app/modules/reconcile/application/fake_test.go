package reconcileservice

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	pairingdb "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories"
	"github.com/open-forensics/tab-service/app/modules/reconcile/application/parsers"
	rosterdb "github.com/open-forensics/tab-service/app/modules/roster/infrastructure/repositories"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// ------------------------
// Fake Pairing Repo
// ------------------------

// FakePairingRepository is a programmable stub for the pairingdb.Repository
// interface. By default it stores into Rounds/Pairings so confirm tests can
// inspect what was committed.
type FakePairingRepository struct {
	trace    []string
	Rounds   []pairingdb.Round
	Pairings []pairingdb.Pairing

	CreateRoundFunc      func(ctx context.Context, db bun.IDB, round *pairingdb.Round) error
	InsertPairingFunc    func(ctx context.Context, db bun.IDB, pairing *pairingdb.Pairing) error
	GetRoundFunc         func(ctx context.Context, db bun.IDB, id sharedtypes.RoundID) (*pairingdb.Round, error)
	GetPairingFunc       func(ctx context.Context, db bun.IDB, id sharedtypes.PairingID) (*pairingdb.Pairing, error)
	ListByRoundFunc      func(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]pairingdb.Pairing, error)
	ListByTournamentFunc func(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]pairingdb.PairingWithRound, error)
}

func (f *FakePairingRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakePairingRepository) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakePairingRepository) CreateRound(ctx context.Context, db bun.IDB, round *pairingdb.Round) error {
	f.record("CreateRound")
	if f.CreateRoundFunc != nil {
		return f.CreateRoundFunc(ctx, db, round)
	}
	for _, r := range f.Rounds {
		if r.TournamentID == round.TournamentID && r.Sequence == round.Sequence {
			return pairingdb.ErrDuplicateRoundSequence
		}
	}
	f.Rounds = append(f.Rounds, *round)
	return nil
}

func (f *FakePairingRepository) InsertPairing(ctx context.Context, db bun.IDB, pairing *pairingdb.Pairing) error {
	f.record("InsertPairing")
	if f.InsertPairingFunc != nil {
		return f.InsertPairingFunc(ctx, db, pairing)
	}
	f.Pairings = append(f.Pairings, *pairing)
	return nil
}

func (f *FakePairingRepository) GetRound(ctx context.Context, db bun.IDB, id sharedtypes.RoundID) (*pairingdb.Round, error) {
	f.record("GetRound")
	if f.GetRoundFunc != nil {
		return f.GetRoundFunc(ctx, db, id)
	}
	for i := range f.Rounds {
		if f.Rounds[i].ID == id {
			return &f.Rounds[i], nil
		}
	}
	return nil, pairingdb.ErrRoundNotFound
}

func (f *FakePairingRepository) GetPairing(ctx context.Context, db bun.IDB, id sharedtypes.PairingID) (*pairingdb.Pairing, error) {
	f.record("GetPairing")
	if f.GetPairingFunc != nil {
		return f.GetPairingFunc(ctx, db, id)
	}
	return nil, pairingdb.ErrPairingNotFound
}

func (f *FakePairingRepository) ListByRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]pairingdb.Pairing, error) {
	f.record("ListByRound")
	if f.ListByRoundFunc != nil {
		return f.ListByRoundFunc(ctx, db, roundID)
	}
	var out []pairingdb.Pairing
	for _, p := range f.Pairings {
		if p.RoundID == roundID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *FakePairingRepository) ListByTournament(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]pairingdb.PairingWithRound, error) {
	f.record("ListByTournament")
	if f.ListByTournamentFunc != nil {
		return f.ListByTournamentFunc(ctx, db, tournamentID)
	}
	return nil, nil
}

// ------------------------
// Fake Roster Repo
// ------------------------

type FakeRosterRepository struct {
	trace         []string
	Registrations []rosterdb.Registration

	GetByIDFunc             func(ctx context.Context, db bun.IDB, id sharedtypes.RegistrationID) (*rosterdb.Registration, error)
	ListByTournamentFunc    func(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]rosterdb.Registration, error)
	IncrementSideCountsFunc func(ctx context.Context, db bun.IDB, affIDs, negIDs []sharedtypes.RegistrationID) error
}

func (f *FakeRosterRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRosterRepository) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRosterRepository) GetByID(ctx context.Context, db bun.IDB, id sharedtypes.RegistrationID) (*rosterdb.Registration, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	for i := range f.Registrations {
		if f.Registrations[i].ID == id {
			return &f.Registrations[i], nil
		}
	}
	return nil, rosterdb.ErrRegistrationNotFound
}

func (f *FakeRosterRepository) ListByTournament(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]rosterdb.Registration, error) {
	f.record("ListByTournament")
	if f.ListByTournamentFunc != nil {
		return f.ListByTournamentFunc(ctx, db, tournamentID)
	}
	return f.Registrations, nil
}

func (f *FakeRosterRepository) IncrementSideCounts(ctx context.Context, db bun.IDB, affIDs, negIDs []sharedtypes.RegistrationID) error {
	f.record("IncrementSideCounts")
	if f.IncrementSideCountsFunc != nil {
		return f.IncrementSideCountsFunc(ctx, db, affIDs, negIDs)
	}
	return nil
}

// ------------------------
// Fake Parser Factory
// ------------------------

// FakeParserFactory serves a fixed row set (or error) regardless of filename.
type FakeParserFactory struct {
	Rows       []parsers.SheetRow
	ParseErr   error
	FactoryErr error
}

func (f *FakeParserFactory) GetParser(filename string) (parsers.Parser, error) {
	if f.FactoryErr != nil {
		return nil, f.FactoryErr
	}
	return &fakeParser{rows: f.Rows, err: f.ParseErr}, nil
}

type fakeParser struct {
	rows []parsers.SheetRow
	err  error
}

func (p *fakeParser) Parse(data []byte) ([]parsers.SheetRow, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.rows, nil
}

// ------------------------
// Fake Event Bus
// ------------------------

type FakeEventBus struct {
	Published  map[string][]*message.Message
	PublishErr error
}

func NewFakeEventBus() *FakeEventBus {
	return &FakeEventBus{Published: make(map[string][]*message.Message)}
}

func (f *FakeEventBus) Publish(topic string, messages ...*message.Message) error {
	if f.PublishErr != nil {
		return f.PublishErr
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
