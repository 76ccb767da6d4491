package standingsservice

import (
	"bytes"
	"sort"

	ledgerservice "github.com/open-forensics/tab-service/app/modules/ledger/application"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// Criteria names recorded in the tiebreak trace. Operators read these back
// through the audit surface, so they are stable identifiers, not prose.
const (
	critParticipation = "participation"
	critWins          = "wins"
	critTotalSpeaks   = "total_speaker_points"
	critHeadToHead    = "head_to_head"
	critAvgSpeaks     = "average_speaker_points"
	critOverride      = "manual_override"
	critShared        = "shared"
)

type cascade struct {
	h2h     *HeadToHeadIndex
	overlay *ledgerservice.Overlay

	// natural maps each registration to the rank it holds before manual
	// ranks are consulted. It stays nil during the pass that computes it,
	// which disables the manual-rank criterion for that pass.
	natural map[sharedtypes.RegistrationID]int
}

// compare returns >0 when a ranks ahead of b, <0 when behind, 0 when tied
// after every criterion, plus the criteria consulted in order. Registrations
// with no completed rounds sink below everyone who played, before the win
// column is even consulted.
func (c cascade) compare(a, b *StandingRow) (int, []string) {
	var trace []string

	if (a.RoundsPlayed > 0) != (b.RoundsPlayed > 0) {
		trace = append(trace, critParticipation)
		if a.RoundsPlayed > 0 {
			return 1, trace
		}
		return -1, trace
	}

	trace = append(trace, critWins)
	if a.Wins != b.Wins {
		if a.Wins > b.Wins {
			return 1, trace
		}
		return -1, trace
	}

	trace = append(trace, critTotalSpeaks)
	if a.TotalTenths != b.TotalTenths {
		if a.TotalTenths > b.TotalTenths {
			return 1, trace
		}
		return -1, trace
	}

	trace = append(trace, critHeadToHead)
	switch c.h2h.Between(a.RegistrationID, b.RegistrationID) {
	case H2HWin:
		return 1, trace
	case H2HLoss:
		return -1, trace
	}

	// Totals are tied, so averages only differ when round counts differ.
	// Cross-multiplied to stay in integers.
	trace = append(trace, critAvgSpeaks)
	if a.RoundsScored > 0 && b.RoundsScored > 0 {
		left := int64(a.TotalTenths) * int64(b.RoundsScored)
		right := int64(b.TotalTenths) * int64(a.RoundsScored)
		if left != right {
			if left > right {
				return 1, trace
			}
			return -1, trace
		}
	}

	trace = append(trace, critOverride)
	if decision, ok := c.overlay.Tiebreaks[ledgerservice.NewPairKey(a.RegistrationID, b.RegistrationID)]; ok {
		if decision.Above == a.RegistrationID {
			return 1, trace
		}
		return -1, trace
	}
	aRank, aOK := c.overlay.ManualRanks[a.RegistrationID]
	bRank, bOK := c.overlay.ManualRanks[b.RegistrationID]
	if c.natural != nil && (aOK || bOK) {
		// A pinned row sorts by its target rank; an unpinned tied peer
		// sorts by the rank it held without any pins. On equal positions
		// the pinned row takes the slot, displacing the natural holder.
		aPos, bPos := c.natural[a.RegistrationID], c.natural[b.RegistrationID]
		if aOK {
			aPos = aRank
		}
		if bOK {
			bPos = bRank
		}
		if aPos != bPos {
			if aPos < bPos {
				return 1, trace
			}
			return -1, trace
		}
		if aOK != bOK {
			if aOK {
				return 1, trace
			}
			return -1, trace
		}
	}

	return 0, trace
}

// rank orders the rows and assigns competition-style ranks: tied rows share a
// rank and the next distinct row skips past them (1-2-2-4). Ties are shared,
// never broken by id order; the id pre-sort below only pins the presentation
// order of tied rows so repeated recomputes stay byte-identical.
func (c cascade) rank(rows []StandingRow) {
	sort.Slice(rows, func(i, j int) bool {
		iu, ju := rows[i].RegistrationID.UUID(), rows[j].RegistrationID.UUID()
		return bytes.Compare(iu[:], ju[:]) < 0
	})
	sort.SliceStable(rows, func(i, j int) bool {
		ord, _ := c.compare(&rows[i], &rows[j])
		return ord > 0
	})

	// Manual ranks pin a row at its target position among tied peers. They
	// need the pre-override ranks to sort against, so the first sort runs
	// without them and a second pass re-sorts with them active.
	if len(c.overlay.ManualRanks) > 0 {
		natural := make(map[sharedtypes.RegistrationID]int, len(rows))
		for i := range rows {
			if i > 0 {
				if ord, _ := c.compare(&rows[i-1], &rows[i]); ord == 0 {
					natural[rows[i].RegistrationID] = natural[rows[i-1].RegistrationID]
					continue
				}
			}
			natural[rows[i].RegistrationID] = i + 1
		}
		c.natural = natural
		sort.SliceStable(rows, func(i, j int) bool {
			ord, _ := c.compare(&rows[i], &rows[j])
			return ord > 0
		})
	}

	for i := range rows {
		if i == 0 {
			rows[i].Rank = 1
			continue
		}
		ord, _ := c.compare(&rows[i-1], &rows[i])
		if ord == 0 {
			rows[i].Rank = rows[i-1].Rank
		} else {
			rows[i].Rank = i + 1
		}
	}

	// Annotate each row with the criterion separating it from the next one.
	for i := 0; i < len(rows)-1; i++ {
		ord, trace := c.compare(&rows[i], &rows[i+1])
		if ord == 0 {
			rows[i].DecidedBy = critShared
		} else {
			rows[i].DecidedBy = trace[len(trace)-1]
		}
		rows[i].Trace = trace
	}
}
