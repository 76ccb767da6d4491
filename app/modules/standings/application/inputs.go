package standingsservice

import (
	ledgerservice "github.com/open-forensics/tab-service/app/modules/ledger/application"
	pairingdb "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories"
	resultdb "github.com/open-forensics/tab-service/app/modules/results/infrastructure/repositories"
	rosterdb "github.com/open-forensics/tab-service/app/modules/roster/infrastructure/repositories"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
	"github.com/open-forensics/tab-service/config"
)

// TournamentInputs is everything one recompute reads. The service loads it in
// a single transaction so the calculator sees a consistent point in time.
type TournamentInputs struct {
	TournamentID   sharedtypes.TournamentID
	Registrations  []rosterdb.Registration
	Pairings       []pairingdb.PairingWithRound
	RoundResults   []resultdb.RoundResult
	SpeakerResults []resultdb.SpeakerResult
	Overlay        *ledgerservice.Overlay
	DQPolicy       config.DQPolicy
}

// EffectiveResult is one pairing's authoritative outcome after the override
// overlay is merged over the stored result. A synthetic bye has no pairing
// and no opponent.
type EffectiveResult struct {
	PairingID sharedtypes.PairingID
	RoundID   sharedtypes.RoundID
	AffID     sharedtypes.RegistrationID
	NegID     sharedtypes.RegistrationID
	Winner    sharedtypes.WinnerSide
	Forfeit   bool
	DQ        bool
	Bye       bool
}

// speakerKey mirrors the ledger's speaker addressing.
type speakerKey = ledgerservice.SpeakerKey

// effectiveResults merges the overlay over base results for every pairing of
// a completed round. A completed pairing without a result is a
// DataIntegrityError; pairings of rounds still open are skipped.
func effectiveResults(in TournamentInputs) ([]EffectiveResult, error) {
	byPairing := make(map[sharedtypes.PairingID]resultdb.RoundResult, len(in.RoundResults))
	for _, rr := range in.RoundResults {
		byPairing[rr.PairingID] = rr
	}

	out := make([]EffectiveResult, 0, len(in.Pairings))
	for _, p := range in.Pairings {
		if p.RoundStatus != sharedtypes.RoundCompleted {
			continue
		}

		eff := EffectiveResult{
			PairingID: p.ID,
			RoundID:   p.RoundID,
			AffID:     p.AffID,
			NegID:     p.NegID,
		}

		base, hasBase := byPairing[p.ID]
		patch, hasPatch := in.Overlay.Results[p.ID]
		switch {
		case hasPatch:
			eff.Winner = patch.Winner
			eff.Forfeit = patch.Forfeit
			eff.DQ = patch.DQ
			eff.Bye = patch.Bye
		case hasBase:
			eff.Winner = base.Winner
			eff.Forfeit = base.Forfeit
			eff.DQ = base.DQ
			eff.Bye = base.Bye
		default:
			return nil, &DataIntegrityError{
				TournamentID: in.TournamentID,
				RoundID:      p.RoundID,
				Sequence:     p.RoundSequence,
				PairingID:    p.ID,
			}
		}

		out = append(out, eff)
	}

	return out, nil
}

// effectiveSpeakers merges speaker-point overrides over the stored scores.
func effectiveSpeakers(in TournamentInputs) map[speakerKey]sharedtypes.SpeakerTenths {
	out := make(map[speakerKey]sharedtypes.SpeakerTenths, len(in.SpeakerResults))
	for _, sr := range in.SpeakerResults {
		out[speakerKey{PairingID: sr.PairingID, RegistrationID: sr.RegistrationID}] = sr.ScoreTenths
	}
	for key, tenths := range in.Overlay.Speakers {
		out[key] = tenths
	}
	return out
}
