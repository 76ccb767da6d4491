package ledgerservice

import (
	"bytes"

	ledgerdb "github.com/open-forensics/tab-service/app/modules/ledger/infrastructure/repositories"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// SpeakerKey identifies one side's speaker score in one pairing.
type SpeakerKey struct {
	PairingID      sharedtypes.PairingID
	RegistrationID sharedtypes.RegistrationID
}

// PairKey is an unordered registration pair, normalized so A sorts before B.
type PairKey struct {
	A sharedtypes.RegistrationID
	B sharedtypes.RegistrationID
}

// NewPairKey normalizes the pair ordering.
func NewPairKey(x, y sharedtypes.RegistrationID) PairKey {
	xu, yu := x.UUID(), y.UUID()
	if bytes.Compare(xu[:], yu[:]) <= 0 {
		return PairKey{A: x, B: y}
	}
	return PairKey{A: y, B: x}
}

// ByeGrant is a synthetic win for a registration in a round.
type ByeGrant struct {
	RegistrationID sharedtypes.RegistrationID
	RoundID        sharedtypes.RoundID
}

// TiebreakDecision orders Above ahead of Below when the cascade reaches the
// manual step.
type TiebreakDecision struct {
	Above sharedtypes.RegistrationID
	Below sharedtypes.RegistrationID
}

// ResultPatch supersedes a stored RoundResult wholesale.
type ResultPatch struct {
	Winner  sharedtypes.WinnerSide
	Forfeit bool
	DQ      bool
	Bye     bool
}

// Overlay is the folded, currently-authoritative view of the ledger for one
// tournament. The calculator merges it over the immutable base records.
// Conflicting overrides on the same entity fold last-write-wins by creation
// order; every conflicting entry stays visible in the ledger itself.
type Overlay struct {
	Results     map[sharedtypes.PairingID]ResultPatch
	Speakers    map[SpeakerKey]sharedtypes.SpeakerTenths
	DQs         map[sharedtypes.RegistrationID]bool
	Byes        map[ByeGrant]struct{}
	ManualRanks map[sharedtypes.RegistrationID]int
	Tiebreaks   map[PairKey]TiebreakDecision
}

// NewOverlay returns an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{
		Results:     make(map[sharedtypes.PairingID]ResultPatch),
		Speakers:    make(map[SpeakerKey]sharedtypes.SpeakerTenths),
		DQs:         make(map[sharedtypes.RegistrationID]bool),
		Byes:        make(map[ByeGrant]struct{}),
		ManualRanks: make(map[sharedtypes.RegistrationID]int),
		Tiebreaks:   make(map[PairKey]TiebreakDecision),
	}
}

// FoldOverlay replays the ledger in creation order into the authoritative
// overlay. It is a pure function of the entries, so recomputes stay
// reproducible. Replaying an already-applied entry yields the same overlay.
func FoldOverlay(entries []ledgerdb.TabAuditEntry) *Overlay {
	overlay := NewOverlay()

	for _, entry := range entries {
		if entry.NewValue == nil {
			continue
		}
		switch entry.Action {
		case ledgerdb.ActionResultCorrection, ledgerdb.ActionForfeit:
			snap := entry.NewValue.RoundResult
			if snap == nil || snap.PairingID == nil {
				continue
			}
			overlay.Results[*snap.PairingID] = ResultPatch{
				Winner:  snap.Winner,
				Forfeit: snap.Forfeit,
				DQ:      snap.DQ,
				Bye:     snap.Bye,
			}
		case ledgerdb.ActionScoreOverride, ledgerdb.ActionSpeakerPointsEdit:
			snap := entry.NewValue.SpeakerResult
			if snap == nil {
				continue
			}
			overlay.Speakers[SpeakerKey{
				PairingID:      snap.PairingID,
				RegistrationID: snap.RegistrationID,
			}] = snap.ScoreTenths
		case ledgerdb.ActionDQ:
			snap := entry.NewValue.Registration
			if snap == nil {
				continue
			}
			overlay.DQs[snap.RegistrationID] = snap.DQ
		case ledgerdb.ActionByeAssigned:
			snap := entry.NewValue.RoundResult
			if snap == nil || snap.RegistrationID == nil || snap.RoundID == nil {
				continue
			}
			overlay.Byes[ByeGrant{
				RegistrationID: *snap.RegistrationID,
				RoundID:        *snap.RoundID,
			}] = struct{}{}
		case ledgerdb.ActionManualRank:
			snap := entry.NewValue.Standing
			if snap == nil || snap.Rank == nil {
				continue
			}
			overlay.ManualRanks[snap.RegistrationID] = *snap.Rank
		case ledgerdb.ActionTiebreakerOverride:
			snap := entry.NewValue.Standing
			if snap == nil || snap.Above == nil || snap.Below == nil {
				continue
			}
			overlay.Tiebreaks[NewPairKey(*snap.Above, *snap.Below)] = TiebreakDecision{
				Above: *snap.Above,
				Below: *snap.Below,
			}
		}
	}

	return overlay
}
