package standingsservice

import (
	ledgerservice "github.com/open-forensics/tab-service/app/modules/ledger/application"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// H2HOutcome is the head-to-head answer for an ordered query (a vs b).
type H2HOutcome int

const (
	// H2HNone means the two registrations never met.
	H2HNone H2HOutcome = iota
	// H2HWin means a beat b in their only decisive direction.
	H2HWin
	// H2HLoss means b beat a.
	H2HLoss
	// H2HUndetermined means they met more than once with split results.
	H2HUndetermined
)

type h2hRecord struct {
	// wins relative to the normalized pair key's A side
	aWins int
	bWins int
}

// HeadToHeadIndex maps unordered registration pairs to their meeting record.
// Rebuilt fresh from effective results on every calculator run; never
// maintained incrementally.
type HeadToHeadIndex struct {
	records map[ledgerservice.PairKey]*h2hRecord
}

// BuildHeadToHead indexes every decisive meeting. Byes have no opponent and
// produce no entries; a result with no winner is ignored.
func BuildHeadToHead(results []EffectiveResult) *HeadToHeadIndex {
	idx := &HeadToHeadIndex{records: make(map[ledgerservice.PairKey]*h2hRecord)}

	for _, r := range results {
		if r.Bye || r.Winner == sharedtypes.WinnerNone {
			continue
		}

		key := ledgerservice.NewPairKey(r.AffID, r.NegID)
		rec, ok := idx.records[key]
		if !ok {
			rec = &h2hRecord{}
			idx.records[key] = rec
		}

		var winner sharedtypes.RegistrationID
		if r.Winner == sharedtypes.WinnerAff {
			winner = r.AffID
		} else {
			winner = r.NegID
		}
		if winner == key.A {
			rec.aWins++
		} else {
			rec.bWins++
		}
	}

	return idx
}

// Between answers the cascade's query for a vs b.
func (idx *HeadToHeadIndex) Between(a, b sharedtypes.RegistrationID) H2HOutcome {
	key := ledgerservice.NewPairKey(a, b)
	rec, ok := idx.records[key]
	if !ok {
		return H2HNone
	}

	if rec.aWins > 0 && rec.bWins > 0 {
		return H2HUndetermined
	}

	aWon := rec.aWins > 0
	if a == key.A {
		if aWon {
			return H2HWin
		}
		return H2HLoss
	}
	if aWon {
		return H2HLoss
	}
	return H2HWin
}

// Meetings reports how many decisive meetings the pair had; used by tests and
// the API's explain surface.
func (idx *HeadToHeadIndex) Meetings(a, b sharedtypes.RegistrationID) int {
	rec, ok := idx.records[ledgerservice.NewPairKey(a, b)]
	if !ok {
		return 0
	}
	return rec.aWins + rec.bWins
}
