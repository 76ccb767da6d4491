package ledgerdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// Action is the kind of manual intervention an audit entry records.
type Action string

const (
	ActionScoreOverride      Action = "score_override"
	ActionForfeit            Action = "forfeit"
	ActionDQ                 Action = "dq"
	ActionManualRank         Action = "manual_rank"
	ActionByeAssigned        Action = "bye_assigned"
	ActionResultCorrection   Action = "result_correction"
	ActionSpeakerPointsEdit  Action = "speaker_points_edit"
	ActionTiebreakerOverride Action = "tiebreaker_override"
)

// EntityType names the kind of entity an audit entry touches.
type EntityType string

const (
	EntityPairing          EntityType = "pairing"
	EntityRegistration     EntityType = "registration"
	EntityRoundResult      EntityType = "round_result"
	EntitySpeakerResult    EntityType = "speaker_result"
	EntityComputedStanding EntityType = "computed_standing"
	EntityHeadToHead       EntityType = "head_to_head"
)

// Snapshot is the tagged union stored as an audit entry's old or new value.
// Exactly one variant matching EntityType is set, so replay and diffing stay
// type-safe. It must round-trip through JSON unchanged.
type Snapshot struct {
	EntityType    EntityType             `json:"entity_type"`
	RoundResult   *RoundResultSnapshot   `json:"round_result,omitempty"`
	SpeakerResult *SpeakerResultSnapshot `json:"speaker_result,omitempty"`
	Registration  *RegistrationSnapshot  `json:"registration,omitempty"`
	Standing      *StandingSnapshot      `json:"standing,omitempty"`
}

// RoundResultSnapshot is the fixed schema for round_result values. A nil
// PairingID with RoundID set describes a synthetic bye.
type RoundResultSnapshot struct {
	PairingID      *sharedtypes.PairingID      `json:"pairing_id,omitempty"`
	RoundID        *sharedtypes.RoundID        `json:"round_id,omitempty"`
	RegistrationID *sharedtypes.RegistrationID `json:"registration_id,omitempty"`
	Winner         sharedtypes.WinnerSide      `json:"winner"`
	Forfeit        bool                        `json:"forfeit"`
	DQ             bool                        `json:"dq"`
	Bye            bool                        `json:"bye"`
}

// SpeakerResultSnapshot is the fixed schema for speaker_result values.
type SpeakerResultSnapshot struct {
	PairingID      sharedtypes.PairingID      `json:"pairing_id"`
	RegistrationID sharedtypes.RegistrationID `json:"registration_id"`
	Side           sharedtypes.Side           `json:"side"`
	ScoreTenths    sharedtypes.SpeakerTenths  `json:"score_tenths"`
}

// RegistrationSnapshot is the fixed schema for registration values.
type RegistrationSnapshot struct {
	RegistrationID sharedtypes.RegistrationID `json:"registration_id"`
	DQ             bool                       `json:"dq"`
	Withdrawn      bool                       `json:"withdrawn"`
}

// StandingSnapshot is the fixed schema for computed_standing values. A manual
// rank sets Rank; a tiebreaker decision sets Above/Below.
type StandingSnapshot struct {
	RegistrationID sharedtypes.RegistrationID  `json:"registration_id"`
	Rank           *int                        `json:"rank,omitempty"`
	Above          *sharedtypes.RegistrationID `json:"above,omitempty"`
	Below          *sharedtypes.RegistrationID `json:"below,omitempty"`
}

// TabAuditEntry is one append-only record of a manual intervention. Entries
// are never updated or deleted; correcting a mistake means appending another
// entry whose reason references this one.
type TabAuditEntry struct {
	bun.BaseModel `bun:"table:tab_audit_entries,alias:ae"`

	ID           uuid.UUID                `bun:"id,pk,type:uuid"`
	TournamentID sharedtypes.TournamentID `bun:"tournament_id,notnull"`
	Action       Action                   `bun:"action,notnull"`
	EntityType   EntityType               `bun:"entity_type,notnull"`
	EntityID     uuid.UUID                `bun:"entity_id,notnull,type:uuid"`
	OldValue     *Snapshot                `bun:"old_value,type:jsonb"`
	NewValue     *Snapshot                `bun:"new_value,type:jsonb"`
	Reason       string                   `bun:"reason,notnull"`
	UserID       sharedtypes.UserID       `bun:"user_id,notnull"`
	CreatedAt    time.Time                `bun:",nullzero,notnull,default:current_timestamp"`
}
