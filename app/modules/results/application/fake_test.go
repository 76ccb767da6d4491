package resultservice

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	pairingdb "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories"
	resultdb "github.com/open-forensics/tab-service/app/modules/results/infrastructure/repositories"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// FakeResultRepository is a programmable in-memory resultdb.Repository.
type FakeResultRepository struct {
	trace []string

	RoundResults   []resultdb.RoundResult
	SpeakerResults []resultdb.SpeakerResult

	InsertRoundResultFunc    func(ctx context.Context, result *resultdb.RoundResult) error
	InsertSpeakerResultsFunc func(ctx context.Context, results []resultdb.SpeakerResult) error
}

var _ resultdb.Repository = (*FakeResultRepository)(nil)

func (f *FakeResultRepository) record(format string, args ...any) {
	f.trace = append(f.trace, fmt.Sprintf(format, args...))
}

func (f *FakeResultRepository) InsertRoundResult(ctx context.Context, _ bun.IDB, result *resultdb.RoundResult) error {
	f.record("InsertRoundResult(%s)", result.PairingID)
	if f.InsertRoundResultFunc != nil {
		return f.InsertRoundResultFunc(ctx, result)
	}
	for _, existing := range f.RoundResults {
		if existing.PairingID == result.PairingID {
			return fmt.Errorf("%w: %s", resultdb.ErrDuplicateResult, result.PairingID)
		}
	}
	f.RoundResults = append(f.RoundResults, *result)
	return nil
}

func (f *FakeResultRepository) InsertSpeakerResults(ctx context.Context, _ bun.IDB, results []resultdb.SpeakerResult) error {
	f.record("InsertSpeakerResults(%d)", len(results))
	if f.InsertSpeakerResultsFunc != nil {
		return f.InsertSpeakerResultsFunc(ctx, results)
	}
	f.SpeakerResults = append(f.SpeakerResults, results...)
	return nil
}

func (f *FakeResultRepository) GetRoundResultByPairing(_ context.Context, _ bun.IDB, pairingID sharedtypes.PairingID) (*resultdb.RoundResult, error) {
	for i := range f.RoundResults {
		if f.RoundResults[i].PairingID == pairingID {
			return &f.RoundResults[i], nil
		}
	}
	return nil, fmt.Errorf("%w: pairing %s", resultdb.ErrResultNotFound, pairingID)
}

func (f *FakeResultRepository) GetSpeakerResult(_ context.Context, _ bun.IDB, pairingID sharedtypes.PairingID, registrationID sharedtypes.RegistrationID) (*resultdb.SpeakerResult, error) {
	for i := range f.SpeakerResults {
		if f.SpeakerResults[i].PairingID == pairingID && f.SpeakerResults[i].RegistrationID == registrationID {
			return &f.SpeakerResults[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no speaker result for registration %s in pairing %s",
		resultdb.ErrResultNotFound, registrationID, pairingID)
}

func (f *FakeResultRepository) ListRoundResults(_ context.Context, _ bun.IDB, tournamentID sharedtypes.TournamentID) ([]resultdb.RoundResult, error) {
	var out []resultdb.RoundResult
	for _, rr := range f.RoundResults {
		if rr.TournamentID == tournamentID {
			out = append(out, rr)
		}
	}
	return out, nil
}

func (f *FakeResultRepository) ListSpeakerResults(_ context.Context, _ bun.IDB, tournamentID sharedtypes.TournamentID) ([]resultdb.SpeakerResult, error) {
	var out []resultdb.SpeakerResult
	for _, sr := range f.SpeakerResults {
		if sr.TournamentID == tournamentID {
			out = append(out, sr)
		}
	}
	return out, nil
}

// FakePairingRepository serves pairings from memory.
type FakePairingRepository struct {
	Pairings map[sharedtypes.PairingID]pairingdb.Pairing

	GetPairingFunc func(ctx context.Context, id sharedtypes.PairingID) (*pairingdb.Pairing, error)
}

var _ pairingdb.Repository = (*FakePairingRepository)(nil)

func (f *FakePairingRepository) GetPairing(ctx context.Context, _ bun.IDB, id sharedtypes.PairingID) (*pairingdb.Pairing, error) {
	if f.GetPairingFunc != nil {
		return f.GetPairingFunc(ctx, id)
	}
	if pairing, ok := f.Pairings[id]; ok {
		return &pairing, nil
	}
	return nil, fmt.Errorf("%w: %s", pairingdb.ErrPairingNotFound, id)
}

func (f *FakePairingRepository) CreateRound(context.Context, bun.IDB, *pairingdb.Round) error {
	return nil
}

func (f *FakePairingRepository) GetRound(_ context.Context, _ bun.IDB, id sharedtypes.RoundID) (*pairingdb.Round, error) {
	return nil, fmt.Errorf("%w: %s", pairingdb.ErrRoundNotFound, id)
}

func (f *FakePairingRepository) InsertPairing(context.Context, bun.IDB, *pairingdb.Pairing) error {
	return nil
}

func (f *FakePairingRepository) ListByRound(context.Context, bun.IDB, sharedtypes.RoundID) ([]pairingdb.Pairing, error) {
	return nil, nil
}

func (f *FakePairingRepository) ListByTournament(context.Context, bun.IDB, sharedtypes.TournamentID) ([]pairingdb.PairingWithRound, error) {
	return nil, nil
}
