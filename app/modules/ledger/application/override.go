package ledgerservice

import (
	"errors"
	"fmt"

	ledgerdb "github.com/open-forensics/tab-service/app/modules/ledger/infrastructure/repositories"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// ErrReasonRequired is returned for any override submitted without a reason.
var ErrReasonRequired = errors.New("override reason is required")

// Override is a requested manual intervention. Which fields are required
// depends on the action; Validate enforces the table.
type Override struct {
	TournamentID sharedtypes.TournamentID `json:"tournament_id"`
	Action       ledgerdb.Action          `json:"action"`

	PairingID           *sharedtypes.PairingID      `json:"pairing_id,omitempty"`
	RegistrationID      *sharedtypes.RegistrationID `json:"registration_id,omitempty"`
	OtherRegistrationID *sharedtypes.RegistrationID `json:"other_registration_id,omitempty"`
	RoundID             *sharedtypes.RoundID        `json:"round_id,omitempty"`

	NewWinner      *sharedtypes.WinnerSide    `json:"new_winner,omitempty"`
	ForfeitSide    *sharedtypes.Side          `json:"forfeit_side,omitempty"`
	NewScoreTenths *sharedtypes.SpeakerTenths `json:"new_score_tenths,omitempty"`
	TargetRank     *int                       `json:"target_rank,omitempty"`

	Reason string             `json:"reason"`
	UserID sharedtypes.UserID `json:"user_id"`
}

// Validate checks the per-action required fields. Every action requires a
// reason; destructive history only makes sense with one.
func (o Override) Validate() error {
	if o.Reason == "" {
		return ErrReasonRequired
	}
	if o.TournamentID == "" {
		return errors.New("tournament id is required")
	}

	switch o.Action {
	case ledgerdb.ActionScoreOverride, ledgerdb.ActionSpeakerPointsEdit:
		if o.PairingID == nil || o.RegistrationID == nil {
			return fmt.Errorf("%s requires pairing_id and registration_id", o.Action)
		}
		if o.NewScoreTenths == nil {
			return fmt.Errorf("%s requires new_score_tenths", o.Action)
		}
		if *o.NewScoreTenths < 0 {
			return fmt.Errorf("%s requires a non-negative score", o.Action)
		}
	case ledgerdb.ActionForfeit:
		if o.PairingID == nil || o.ForfeitSide == nil {
			return fmt.Errorf("%s requires pairing_id and forfeit_side", o.Action)
		}
		if *o.ForfeitSide != sharedtypes.SideAff && *o.ForfeitSide != sharedtypes.SideNeg {
			return fmt.Errorf("invalid forfeit side %q", *o.ForfeitSide)
		}
	case ledgerdb.ActionDQ:
		if o.RegistrationID == nil {
			return fmt.Errorf("%s requires registration_id", o.Action)
		}
	case ledgerdb.ActionManualRank:
		if o.RegistrationID == nil || o.TargetRank == nil {
			return fmt.Errorf("%s requires registration_id and target_rank", o.Action)
		}
		if *o.TargetRank < 1 {
			return fmt.Errorf("%s requires target_rank >= 1", o.Action)
		}
	case ledgerdb.ActionByeAssigned:
		if o.RegistrationID == nil || o.RoundID == nil {
			return fmt.Errorf("%s requires registration_id and round_id", o.Action)
		}
	case ledgerdb.ActionResultCorrection:
		if o.PairingID == nil || o.NewWinner == nil {
			return fmt.Errorf("%s requires pairing_id and new_winner", o.Action)
		}
		if *o.NewWinner != sharedtypes.WinnerAff && *o.NewWinner != sharedtypes.WinnerNeg {
			return fmt.Errorf("invalid corrected winner %q", *o.NewWinner)
		}
	case ledgerdb.ActionTiebreakerOverride:
		if o.RegistrationID == nil || o.OtherRegistrationID == nil {
			return fmt.Errorf("%s requires registration_id and other_registration_id", o.Action)
		}
		if *o.RegistrationID == *o.OtherRegistrationID {
			return fmt.Errorf("%s requires two distinct registrations", o.Action)
		}
	default:
		return fmt.Errorf("unknown override action %q", o.Action)
	}

	return nil
}
