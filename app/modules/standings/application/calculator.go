package standingsservice

import (
	"time"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
	"github.com/open-forensics/tab-service/config"
)

// StandingRow is one registration's computed standing. Speaker points stay in
// integer tenths; averages are derived at display time only.
type StandingRow struct {
	RegistrationID sharedtypes.RegistrationID `json:"registration_id"`
	DisplayName    string                     `json:"display_name"`
	Wins           int                        `json:"wins"`
	Losses         int                        `json:"losses"`
	TotalTenths    sharedtypes.SpeakerTenths  `json:"total_tenths"`
	RoundsPlayed   int                        `json:"rounds_played"`
	RoundsScored   int                        `json:"rounds_scored"`
	DQ             bool                       `json:"dq"`
	Rank           int                        `json:"rank"`
	DecidedBy      string                     `json:"decided_by,omitempty"`
	Trace          []string                   `json:"trace,omitempty"`
}

// AveragePoints is the display-time average in points.
func (r StandingRow) AveragePoints() float64 {
	if r.RoundsScored == 0 {
		return 0
	}
	return r.TotalTenths.Points() / float64(r.RoundsScored)
}

// Standings is one complete computed snapshot. Rebuilt wholesale on every
// recompute, never patched incrementally.
type Standings struct {
	TournamentID sharedtypes.TournamentID `json:"tournament_id"`
	Rows         []StandingRow            `json:"rows"`
	ComputedAt   time.Time                `json:"computed_at"`
}

// Compute is the pure calculator: same inputs, byte-identical rows. It
// returns a DataIntegrityError when a completed round has a pairing with no
// result rather than silently skipping it.
func Compute(in TournamentInputs) (*Standings, error) {
	eff, err := effectiveResults(in)
	if err != nil {
		return nil, err
	}
	speakers := effectiveSpeakers(in)

	dqSet := make(map[sharedtypes.RegistrationID]bool)
	for id, dq := range in.Overlay.DQs {
		if dq {
			dqSet[id] = true
		}
	}
	if in.DQPolicy == config.DQRetroactive {
		eff = applyRetroactiveDQ(eff, dqSet)
	}

	rows := make(map[sharedtypes.RegistrationID]*StandingRow, len(in.Registrations))
	for _, reg := range in.Registrations {
		rows[reg.ID] = &StandingRow{
			RegistrationID: reg.ID,
			DisplayName:    reg.DisplayName,
			DQ:             dqSet[reg.ID],
		}
	}

	for _, r := range eff {
		aff, affOK := rows[r.AffID]
		neg, negOK := rows[r.NegID]
		if !affOK || !negOK {
			// Pairing references a registration outside the roster snapshot.
			return nil, &DataIntegrityError{
				TournamentID: in.TournamentID,
				RoundID:      r.RoundID,
				PairingID:    r.PairingID,
			}
		}

		if r.Bye {
			// A stored bye is a synthetic win with no speaker delta.
			switch r.Winner {
			case sharedtypes.WinnerAff:
				aff.Wins++
				aff.RoundsPlayed++
			case sharedtypes.WinnerNeg:
				neg.Wins++
				neg.RoundsPlayed++
			}
			continue
		}

		aff.RoundsPlayed++
		neg.RoundsPlayed++

		switch r.Winner {
		case sharedtypes.WinnerAff:
			aff.Wins++
			neg.Losses++
		case sharedtypes.WinnerNeg:
			neg.Wins++
			aff.Losses++
		default:
			// Both sides lose a decisive outcome (double DQ).
			aff.Losses++
			neg.Losses++
		}

		creditSpeaks(aff, r, sharedtypes.SideAff, speakers, dqSet, in.DQPolicy)
		creditSpeaks(neg, r, sharedtypes.SideNeg, speakers, dqSet, in.DQPolicy)
	}

	// Ledger-granted byes layer on top of whatever the results said.
	for grant := range in.Overlay.Byes {
		if row, ok := rows[grant.RegistrationID]; ok {
			row.Wins++
			row.RoundsPlayed++
		}
	}

	if in.DQPolicy == config.DQForwardOnly {
		for id := range dqSet {
			if row, ok := rows[id]; ok {
				row.Wins = 0
				row.Losses = 0
				row.TotalTenths = 0
				row.RoundsPlayed = 0
				row.RoundsScored = 0
			}
		}
	}

	out := make([]StandingRow, 0, len(rows))
	for _, reg := range in.Registrations {
		row := rows[reg.ID]
		if reg.Withdrawn && row.RoundsPlayed == 0 {
			continue
		}
		out = append(out, *row)
	}

	c := cascade{h2h: BuildHeadToHead(eff), overlay: in.Overlay}
	c.rank(out)

	return &Standings{
		TournamentID: in.TournamentID,
		Rows:         out,
		ComputedAt:   time.Now().UTC(),
	}, nil
}

// applyRetroactiveDQ rewrites every meeting a disqualified registration had:
// a loss for it, a win for the opponent. Two disqualified sides leave no
// winner to credit.
func applyRetroactiveDQ(eff []EffectiveResult, dqSet map[sharedtypes.RegistrationID]bool) []EffectiveResult {
	out := make([]EffectiveResult, len(eff))
	for i, r := range eff {
		affDQ, negDQ := dqSet[r.AffID], dqSet[r.NegID]
		switch {
		case affDQ && negDQ:
			r.Winner = sharedtypes.WinnerNone
			r.DQ = true
		case affDQ:
			r.Winner = sharedtypes.WinnerNeg
			r.DQ = true
		case negDQ:
			r.Winner = sharedtypes.WinnerAff
			r.DQ = true
		}
		out[i] = r
	}
	return out
}

// creditSpeaks adds a side's speaker points unless the round is a zero-speaks
// round for it: a forfeit loss, a DQ loss, or any round of a retroactively
// disqualified registration.
func creditSpeaks(
	row *StandingRow,
	r EffectiveResult,
	side sharedtypes.Side,
	speakers map[speakerKey]sharedtypes.SpeakerTenths,
	dqSet map[sharedtypes.RegistrationID]bool,
	policy config.DQPolicy,
) {
	lost := (side == sharedtypes.SideAff && r.Winner != sharedtypes.WinnerAff) ||
		(side == sharedtypes.SideNeg && r.Winner != sharedtypes.WinnerNeg)
	if (r.Forfeit || r.DQ) && lost {
		return
	}
	if policy == config.DQRetroactive && dqSet[row.RegistrationID] {
		return
	}

	tenths, ok := speakers[speakerKey{PairingID: r.PairingID, RegistrationID: row.RegistrationID}]
	if !ok {
		return
	}
	row.TotalTenths += tenths
	row.RoundsScored++
}
