package reconcileservice

import (
	"errors"
	"fmt"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// ErrAmbiguousMatch marks a sheet name with no candidate above the low
// threshold; the row needs an explicit operator selection before it can
// commit. Never auto-resolved.
var ErrAmbiguousMatch = errors.New("no match above threshold; operator selection required")

// Proposal is a parsed, matched pairing sheet awaiting operator confirmation.
type Proposal struct {
	TournamentID sharedtypes.TournamentID `json:"tournament_id"`
	Filename     string                   `json:"filename"`
	Rows         []ProposedRow            `json:"rows"`
}

// ProposedRow is one sheet row with its best-guess matches for both sides.
type ProposedRow struct {
	Line    int         `json:"line"`
	AffName string      `json:"aff_name"`
	NegName string      `json:"neg_name"`
	Aff     MatchResult `json:"aff"`
	Neg     MatchResult `json:"neg"`
}

// Selection is an operator's explicit choice for one row's sides. A nil side
// keeps the auto-match.
type Selection struct {
	Aff *sharedtypes.RegistrationID `json:"aff,omitempty"`
	Neg *sharedtypes.RegistrationID `json:"neg,omitempty"`
}

// ConfirmRequest commits a proposal as round Sequence of its tournament.
// Selections are keyed by sheet line.
type ConfirmRequest struct {
	Proposal   Proposal           `json:"proposal"`
	Sequence   int                `json:"sequence"`
	UserID     sharedtypes.UserID `json:"user_id"`
	Selections map[int]Selection  `json:"selections,omitempty"`
}

// Row commit outcomes.
const (
	RowCommitted  = "committed"
	RowFailed     = "failed"
	RowUnresolved = "unresolved"
)

// RowStatus reports the commit outcome of one sheet row.
type RowStatus struct {
	Line      int                    `json:"line"`
	Status    string                 `json:"status"`
	PairingID *sharedtypes.PairingID `json:"pairing_id,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// PartialCommitError reports an import that created its round but failed to
// insert every pairing. The committed rows stand and are listed so the
// operator knows exactly what needs cleanup.
type PartialCommitError struct {
	RoundID sharedtypes.RoundID
	Rows    []RowStatus
}

func (e *PartialCommitError) Error() string {
	committed := 0
	for _, r := range e.Rows {
		if r.Status == RowCommitted {
			committed++
		}
	}
	return fmt.Sprintf("import partially committed: %d of %d pairings inserted into round %s", committed, len(e.Rows), e.RoundID)
}

// ProposeFailure is the business-failure payload of Propose.
type ProposeFailure struct {
	TournamentID sharedtypes.TournamentID `json:"tournament_id"`
	Filename     string                   `json:"filename"`
	Reason       string                   `json:"reason"`
}

// ConfirmFailure is the business-failure payload of Confirm. Rows carry the
// per-row status whenever the round was already created.
type ConfirmFailure struct {
	TournamentID sharedtypes.TournamentID `json:"tournament_id"`
	Sequence     int                      `json:"sequence"`
	Reason       string                   `json:"reason"`
	RoundID      *sharedtypes.RoundID     `json:"round_id,omitempty"`
	Rows         []RowStatus              `json:"rows,omitempty"`
}
